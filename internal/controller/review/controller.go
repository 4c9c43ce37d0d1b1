// Package review provides HTTP handlers for the student profile lifecycle:
// edits, submission for approval, and POC review decisions.
package review

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/notification"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewController handles profile lifecycle endpoints
type ReviewController struct {
	DB       *database.DBinstanceStruct
	Notifier notification.Notifier
}

// NewReviewController creates a new instance of ReviewController with the provided database connection.
func NewReviewController(db *database.DBinstanceStruct, notifier notification.Notifier) *ReviewController {
	return &ReviewController{
		DB:       db,
		Notifier: notifier,
	}
}

// GetProfile returns the caller's profile with skills. POC roles can inspect
// any student via the student_id query parameter.
// @Summary Get a student profile
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_id query string false "Student to inspect (POC only)"
// @Success 200 {object} model.StudentProfile "Profile"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Inspecting another student without a POC role"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Router /profile [get]
func (rc *ReviewController) GetProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	targetID := user.ID
	if queried := c.Query("student_id"); queried != "" {
		parsed, err := uuid.Parse(queried)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid student_id"})
			return
		}
		if parsed != user.ID && !user.IsReviewer() {
			c.JSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "Only POC roles can inspect another student's profile",
			})
			return
		}
		targetID = parsed
	}

	var profile model.StudentProfile
	if err := rc.DB.Preload("User").Preload("Skills").First(&profile, "user_id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// EditProfile updates the caller's editable profile fields
// @Summary Edit own student profile
// @Description Non-empty fields overwrite the stored values. Every edit bumps the profile version; editing an approved profile sends it back for re-approval.
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body model.EditableStudentInfo true "Fields to update"
// @Success 200 {object} model.StudentProfile "Updated profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile [patch]
func (rc *ReviewController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req model.EditableStudentInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var profile model.StudentProfile
	if err := rc.DB.First(&profile, "user_id = ?", user.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	utilities.MergeNonEmpty(&profile.EditableStudentInfo, &req)
	profile.ProfileVersion++
	if profile.ApprovalStatus == model.ProfileStatusApproved {
		// Changed data needs a fresh POC look before it gates applications.
		profile.ApprovalStatus = model.ProfileStatusPending
	}

	if err := rc.DB.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SubmitProfile sends the caller's profile for POC approval
// @Summary Submit own profile for approval
// @Description Allowed from draft or needs_revision.
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.StudentProfile "Updated profile"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 409 {object} utilities.ErrorResponse "Profile is already pending or approved"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/submit [post]
func (rc *ReviewController) SubmitProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var profile model.StudentProfile
	if err := rc.DB.First(&profile, "user_id = ?", user.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	if profile.ApprovalStatus != model.ProfileStatusDraft &&
		profile.ApprovalStatus != model.ProfileStatusNeedsRevision {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: fmt.Sprintf("Profile is %s and cannot be submitted", profile.ApprovalStatus),
		})
		return
	}

	profile.ApprovalStatus = model.ProfileStatusPending
	profile.RevisionNotes = nil
	if err := rc.DB.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListPendingProfiles returns profiles awaiting review
// @Summary List profiles pending approval (POC)
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.StudentProfile "Pending profiles"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/pending [get]
func (rc *ReviewController) ListPendingProfiles(c *gin.Context) {
	var profiles []model.StudentProfile
	if err := rc.DB.Preload("User").Preload("Skills").
		Where("approval_status = ?", model.ProfileStatusPending).
		Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profiles: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

type decideProfileRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	Decision  string    `json:"decision" binding:"required,oneof=approved needs_revision"`
	Notes     *string   `json:"notes"`
}

// DecideProfile records a POC review decision on a pending profile
// @Summary Approve or send back a pending profile
// @Description needs_revision requires notes telling the student what to fix.
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param decision body decideProfileRequest true "Decision"
// @Success 200 {object} model.StudentProfile "Updated profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or missing revision notes"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 409 {object} utilities.ErrorResponse "Profile is not pending"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/decision [patch]
func (rc *ReviewController) DecideProfile(c *gin.Context) {
	var req decideProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Decision == model.ProfileStatusNeedsRevision && (req.Notes == nil || *req.Notes == "") {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Revision notes are required when sending a profile back",
		})
		return
	}

	var profile model.StudentProfile
	err := rc.DB.Preload("User").First(&profile, "user_id = ?", req.StudentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profile: %s", err.Error()),
		})
		return
	}

	if profile.ApprovalStatus != model.ProfileStatusPending {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: fmt.Sprintf("Profile is %s, not pending approval", profile.ApprovalStatus),
		})
		return
	}

	profile.ApprovalStatus = req.Decision
	if req.Decision == model.ProfileStatusNeedsRevision {
		profile.RevisionNotes = req.Notes
	} else {
		profile.RevisionNotes = nil
	}

	if err := rc.DB.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save profile: %s", err.Error()),
		})
		return
	}

	if req.Decision == model.ProfileStatusNeedsRevision {
		recipient := ""
		if profile.User.Email != nil {
			recipient = *profile.User.Email
		}
		notes := ""
		if req.Notes != nil {
			notes = *req.Notes
		}
		notification.Dispatch(rc.Notifier, notification.Event{
			Type:      notification.EventProfileRevision,
			Recipient: recipient,
			Subject:   "Your profile needs revision",
			Message:   fmt.Sprintf("A POC sent your profile back for revision: %s", notes),
		})
	}

	c.JSON(http.StatusOK, profile)
}
