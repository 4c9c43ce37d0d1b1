package model

import (
	"github.com/google/uuid"
)

var (
	// ProfileStatusDraft indicates the student has not submitted the profile for review yet
	ProfileStatusDraft = "draft"
	// ProfileStatusPending indicates the profile is waiting for a POC decision
	ProfileStatusPending = "pending_approval"
	// ProfileStatusApproved indicates a POC approved the profile; required before any application
	ProfileStatusApproved = "approved"
	// ProfileStatusNeedsRevision indicates a POC sent the profile back with revision notes
	ProfileStatusNeedsRevision = "needs_revision"
)

// EditableStudentInfo is part of student profile that the student can edit
type EditableStudentInfo struct {
	FirstName   string   `gorm:"type:text" json:"first_name"`
	LastName    string   `gorm:"type:text" json:"last_name"`
	Gender      *string  `gorm:"type:text" json:"gender"`
	House       *string  `gorm:"type:text" json:"house"`
	CGPA        *float64 `json:"cgpa"`
	Module      *int     `json:"module"`
	Attendance  *float64 `json:"attendance"`
	MonthsAtOrg *int     `json:"months_at_org"`
}

// StudentProfile is gorm model for placement candidate data.
// ApprovalStatus gates every application path; ProfileVersion is bumped on
// every edit or resubmission so cached match results keyed by it go stale.
type StudentProfile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`

	School string `gorm:"type:text;not null;index" json:"school"`
	Campus string `gorm:"type:text;index" json:"campus"`
	EditableStudentInfo

	ApprovalStatus string  `gorm:"type:text;not null;default:draft" json:"approval_status"`
	RevisionNotes  *string `gorm:"type:text" json:"revision_notes,omitempty"`
	ProfileVersion int     `gorm:"not null;default:1" json:"profile_version"`

	Skills []SkillEntry `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"skills"`
}
