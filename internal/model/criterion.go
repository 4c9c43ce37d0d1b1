package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// CriterionInputAnswer expects a free-text answer from the student
	CriterionInputAnswer = "answer"
	// CriterionInputLink expects a URL pointing at proof of completion
	CriterionInputLink = "link"
	// CriterionInputYesNo expects a yes/no self declaration
	CriterionInputYesNo = "yes_no"
	// CriterionInputComment expects a longer written reflection
	CriterionInputComment = "comment"
)

// CriterionInputTypes lists every accepted input type for a readiness criterion
var CriterionInputTypes = []string{
	CriterionInputAnswer,
	CriterionInputLink,
	CriterionInputYesNo,
	CriterionInputComment,
}

var (
	// CriterionStatusNotStarted is the initial state before the student reports anything
	CriterionStatusNotStarted = "not_started"
	// CriterionStatusInProgress indicates the student started but has not submitted, or a POC rejected the submission
	CriterionStatusInProgress = "in_progress"
	// CriterionStatusCompleted indicates the student submitted and is waiting for POC verification
	CriterionStatusCompleted = "completed"
	// CriterionStatusVerified is the terminal state after POC verification
	CriterionStatusVerified = "verified"
)

// CriterionDefinition is gorm model for one readiness checklist item a school defines.
// CriteriaID is immutable after creation and unique within a school.
type CriterionDefinition struct {
	ID         uint   `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CriteriaID string `gorm:"type:text;not null;uniqueIndex:idx_school_criteria;<-:create" json:"criteria_id"`
	School     string `gorm:"type:text;not null;uniqueIndex:idx_school_criteria;index;<-:create" json:"school"`

	Name               string  `gorm:"type:text;not null" json:"name"`
	Description        string  `gorm:"type:text" json:"description"`
	InputType          string  `gorm:"type:text;not null" json:"input_type"`
	Category           string  `gorm:"type:text" json:"category"`
	IsMandatory        bool    `gorm:"not null;default:true" json:"is_mandatory"`
	POCCommentRequired bool    `gorm:"not null;default:false" json:"poc_comment_required"`
	POCCommentTemplate *string `gorm:"type:text" json:"poc_comment_template,omitempty"`
	POCRatingRequired  bool    `gorm:"not null;default:false" json:"poc_rating_required"`
	POCRatingScale     int     `gorm:"not null;default:5" json:"poc_rating_scale"`

	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}

// CriterionStatus is gorm model for one student's progress on one criterion.
// It belongs to exactly one StudentReadinessRecord.
type CriterionStatus struct {
	ID       uint   `gorm:"primaryKey;autoIncrement;->" json:"id"`
	RecordID uint   `gorm:"not null;uniqueIndex:idx_record_criteria;index" json:"-"`
	CriteriaID string `gorm:"type:text;not null;uniqueIndex:idx_record_criteria" json:"criteria_id"`

	Status            string  `gorm:"type:text;not null;default:not_started" json:"status"`
	SelfReportedValue *string `gorm:"type:text" json:"self_reported_value,omitempty"`
	ProofURL          *string `gorm:"type:text" json:"proof_url,omitempty"`
	Notes             *string `gorm:"type:text" json:"notes,omitempty"`
	VerificationNotes *string `gorm:"type:text" json:"verification_notes,omitempty"`
	POCComment        *string `gorm:"type:text" json:"poc_comment,omitempty"`
	POCRating         *int    `json:"poc_rating,omitempty"`

	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// StudentReadinessRecord is gorm model for a student's readiness checklist state
// within one school. Created lazily on the student's first criterion report.
type StudentReadinessRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_school" json:"student_id"`
	Student   StudentProfile `gorm:"foreignKey:StudentID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	School    string    `gorm:"type:text;not null;uniqueIndex:idx_student_school" json:"school"`

	IsJobReady    bool    `gorm:"not null;default:false" json:"is_job_ready"`
	JobReadyNotes *string `gorm:"type:text" json:"job_ready_notes,omitempty"`

	CriteriaStatus []CriterionStatus `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"criteria_status"`
}

// StatusFor returns the stored status entry for criteriaID, or nil when the
// student never touched that criterion.
func (r *StudentReadinessRecord) StatusFor(criteriaID string) *CriterionStatus {
	for i := range r.CriteriaStatus {
		if r.CriteriaStatus[i].CriteriaID == criteriaID {
			return &r.CriteriaStatus[i]
		}
	}
	return nil
}
