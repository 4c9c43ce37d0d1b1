package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ApplicationStatusApplied indicates a freshly submitted application
	ApplicationStatusApplied = "applied"
	// ApplicationStatusShortlisted indicates the student passed initial screening
	ApplicationStatusShortlisted = "shortlisted"
	// ApplicationStatusInProgress indicates interviews are ongoing
	ApplicationStatusInProgress = "in_progress"
	// ApplicationStatusSelected indicates the student got the offer
	ApplicationStatusSelected = "selected"
	// ApplicationStatusRejected indicates the company turned the application down
	ApplicationStatusRejected = "rejected"
	// ApplicationStatusWithdrawn indicates the student pulled out; frees the slot for this job
	ApplicationStatusWithdrawn = "withdrawn"
)

var (
	// ApplicationModeDirect marks an application submitted through the normal apply path
	ApplicationModeDirect = "application"
	// ApplicationModeInterest marks an application unlocked by an approved interest request
	ApplicationModeInterest = "interest"
)

// Application is gorm model for a student's application to a job.
// The persistence layer, not the process, enforces at most one non-withdrawn
// application per (student, job): withdrawn rows get ActiveFlag nulled so the
// partial unique index no longer covers them.
type Application struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_active_application;index" json:"student_id"`
	JobID     uint      `gorm:"not null;uniqueIndex:idx_active_application" json:"job_id"`
	Job       Job       `gorm:"foreignKey:JobID;references:ID" json:"-"`

	Status string `gorm:"type:text;not null;default:applied" json:"status"`
	Mode   string `gorm:"type:text;not null;default:application" json:"mode"`

	// ActiveFlag backs the uniqueness constraint; true while the application is
	// not withdrawn, NULL afterwards so Postgres ignores the row in the index.
	ActiveFlag *bool `gorm:"uniqueIndex:idx_active_application" json:"-"`

	// AcknowledgedRequirements holds the CustomRequirement IDs the student
	// confirmed at submission time.
	AcknowledgedRequirements pq.Int64Array `gorm:"type:bigint[]" json:"acknowledged_requirements"`

	AppliedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// Active reports whether the application still blocks a new one for the same job
func (a *Application) Active() bool {
	return a.Status != ApplicationStatusWithdrawn
}

var (
	// InterestStatusPending indicates the request awaits a POC decision
	InterestStatusPending = "pending"
	// InterestStatusApproved indicates a POC cleared the student to apply for this job
	InterestStatusApproved = "approved"
	// InterestStatusRejected indicates a POC denied the request; the student may file a new one
	InterestStatusRejected = "rejected"
)

// InterestRequest is gorm model for a below-threshold student asking a POC for
// permission to apply anyway. At most one active (pending or approved) request
// per (student, job); a new submission replaces a rejected one.
type InterestRequest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_job_interest;index" json:"student_id"`
	JobID     uint      `gorm:"not null;uniqueIndex:idx_student_job_interest" json:"job_id"`
	Job       Job       `gorm:"foreignKey:JobID;references:ID" json:"-"`

	Status          string  `gorm:"type:text;not null;default:pending" json:"status"`
	Reason          string  `gorm:"type:text;not null" json:"reason"`
	AcknowledgedGaps *string `gorm:"type:text" json:"acknowledged_gaps,omitempty"`
	ImprovementPlan  *string `gorm:"type:text" json:"improvement_plan,omitempty"`

	DecisionNotes *string    `gorm:"type:text" json:"decision_notes,omitempty"`
	DecidedBy     *uuid.UUID `gorm:"type:uuid" json:"decided_by,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}
