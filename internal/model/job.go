package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ReadinessRequired means only fully job-ready students (100% readiness) may apply directly
	ReadinessRequired = "yes"
	// ReadinessInProgress means students at 30% readiness or above may apply directly
	ReadinessInProgress = "in_progress"
	// ReadinessNotRequired means readiness is not considered for direct application
	ReadinessNotRequired = "no"
)

// JobEligibilityRules are the hard filters a job places on student profiles.
// Nil/empty fields are unset and vacuously satisfied.
type JobEligibilityRules struct {
	MinCGPA        *float64       `json:"min_cgpa,omitempty"`
	Schools        pq.StringArray `gorm:"type:text[]" json:"schools,omitempty"`
	Campuses       pq.StringArray `gorm:"type:text[]" json:"campuses,omitempty"`
	MinModule      *int           `json:"min_module,omitempty"`
	FemaleOnly     *bool          `json:"female_only,omitempty"`
	Houses         pq.StringArray `gorm:"type:text[]" json:"houses,omitempty"`
	MinAttendance  *float64       `json:"min_attendance,omitempty"`
	MinMonthsAtOrg *int           `json:"min_months_at_org,omitempty"`
}

// RequiredSkill is one skill demand on a job. Optional entries (Required=false)
// show up in the match breakdown but do not count toward the skills percentage.
type RequiredSkill struct {
	ID               uint   `gorm:"primaryKey;autoIncrement;->" json:"id"`
	JobID            uint   `gorm:"not null;index" json:"-"`
	SkillName        string `gorm:"type:text;not null" json:"skill_name"`
	ProficiencyLevel int    `gorm:"not null" json:"proficiency_level"`
	Required         bool   `gorm:"not null;default:true" json:"required"`
}

// CustomRequirement is a free-text condition the student must acknowledge at
// application time (e.g. willingness to relocate).
type CustomRequirement struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;->" json:"id"`
	JobID       uint   `gorm:"not null;index" json:"-"`
	Requirement string `gorm:"type:text;not null" json:"requirement"`
	IsMandatory bool   `gorm:"not null;default:true" json:"is_mandatory"`
}

// EditableJobInfo is part of a job definition coordinators can edit
type EditableJobInfo struct {
	Title       string     `gorm:"type:text" json:"title"`
	Company     string     `gorm:"type:text" json:"company"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"type:text" json:"location"`
	Salary      string     `gorm:"type:text" json:"salary"`
	Deadline    *time.Time `gorm:"type:timestamp" json:"deadline,omitempty"`
}

// Job is gorm model for one placement opportunity. Version is bumped on every
// edit so cached match results keyed by it go stale.
type Job struct {
	ID       uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	PostedBy uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"posted_by"`
	EditableJobInfo

	ReadinessRequirement string `gorm:"type:text;not null;default:no" json:"readiness_requirement"`
	Eligibility          JobEligibilityRules `gorm:"embedded;embeddedPrefix:elig_" json:"eligibility"`

	RequiredSkills     []RequiredSkill     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"required_skills"`
	CustomRequirements []CustomRequirement `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"custom_requirements"`

	Version  int       `gorm:"not null;default:1" json:"version"`
	PostTime time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`
}

// Closed reports whether the application deadline has passed at the given time
func (j *Job) Closed(now time.Time) bool {
	return j.Deadline != nil && now.After(*j.Deadline)
}
