package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// RoleStudent is role for placement candidates
	RoleStudent = "student"
	// RoleCoordinator is role for campus coordinators who own the criterion catalog and job postings
	RoleCoordinator = "coordinator"
	// RoleManager is role for placement managers, superset of coordinator permissions
	RoleManager = "manager"
	// RoleCampusPOC is role for campus point-of-contact reviewers
	RoleCampusPOC = "campus_poc"
	// RoleAdmin is role for platform administrators
	RoleAdmin = "admin"
)

// ReviewerRoles are roles allowed to perform POC review operations
// (criterion verification, skill approval, profile review, interest decisions).
var ReviewerRoles = []string{RoleCampusPOC, RoleManager, RoleAdmin}

// ContactInfo holds optional contact channels shared by every account type
type ContactInfo struct {
	Tel   *string `json:"tel"`
	Email *string `json:"email"`
}

// EditableUserInfo is part of user account that the owner can edit
type EditableUserInfo struct {
	ContactInfo `gorm:"embedded"`
	DisplayName string `gorm:"type:text" json:"display_name"`
}

// User is gorm model for every account on the platform
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Password string    `gorm:"type:text" json:"-"`
	Role     string    `gorm:"type:text;not null;index" json:"role"`
	EditableUserInfo
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// IsReviewer reports whether the user may perform POC review operations
func (u User) IsReviewer() bool {
	for _, r := range ReviewerRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}
