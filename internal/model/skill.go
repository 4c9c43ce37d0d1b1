package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// SkillSourceCatalog marks a skill picked from the school catalog, needs POC approval
	SkillSourceCatalog = "catalog"
	// SkillSourceSelfReported marks a skill the student added themselves, no approval needed
	SkillSourceSelfReported = "self_reported"
)

var (
	// SkillApprovalPending indicates a catalog skill waiting for POC decision
	SkillApprovalPending = "pending"
	// SkillApprovalApproved indicates a POC confirmed the skill claim
	SkillApprovalApproved = "approved"
	// SkillApprovalRejected indicates a POC rejected the skill claim
	SkillApprovalRejected = "rejected"
)

var (
	// SkillCategoryTechnical is for technical skills rated 0-4
	SkillCategoryTechnical = "technical"
	// SkillCategorySoft is for soft skills rated 1-4
	SkillCategorySoft = "soft"
)

// SkillEntry is gorm model for one skill claim on a student profile.
// ApprovalStatus only applies to catalog skills; self-reported entries keep it empty.
type SkillEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_skill;index" json:"student_id"`

	SkillName      string `gorm:"type:text;not null;uniqueIndex:idx_student_skill" json:"skill_name"`
	Source         string `gorm:"type:text;not null" json:"source"`
	Category       string `gorm:"type:text;not null" json:"category"`
	SelfRating     int    `gorm:"not null" json:"self_rating"`
	ApprovalStatus string `gorm:"type:text" json:"approval_status,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// Counted reports whether the entry should count toward job matching.
// Catalog skills only count once a POC approved them.
func (s SkillEntry) Counted() bool {
	if s.Source == SkillSourceCatalog {
		return s.ApprovalStatus == SkillApprovalApproved
	}
	return true
}
