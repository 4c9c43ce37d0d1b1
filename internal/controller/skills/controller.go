// Package skills provides HTTP handlers for the student skill ledger:
// adding claims, listing them, and POC approval of catalog skills.
package skills

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
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SkillController handles skill ledger endpoints
type SkillController struct {
	DB       *database.DBinstanceStruct
	Notifier notification.Notifier
}

// NewSkillController creates a new instance of SkillController with the provided database connection.
func NewSkillController(db *database.DBinstanceStruct, notifier notification.Notifier) *SkillController {
	return &SkillController{
		DB:       db,
		Notifier: notifier,
	}
}

type addSkillRequest struct {
	SkillName  string `json:"skill_name" binding:"required"`
	Source     string `json:"source" binding:"required,oneof=catalog self_reported"`
	Category   string `json:"category" binding:"required,oneof=technical soft"`
	SelfRating int    `json:"self_rating"`
}

func validRating(category string, rating int) bool {
	if category == model.SkillCategorySoft {
		return rating >= 1 && rating <= 4
	}
	return rating >= 0 && rating <= 4
}

// AddSkill records a skill claim on the caller's profile
// @Summary Add a skill claim
// @Description Catalog skills start pending and need POC approval before they count toward matching. Self-reported skills count immediately.
// @Tags Skills
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param skill body addSkillRequest true "Skill claim"
// @Success 201 {object} model.SkillEntry "Created skill entry"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or rating out of range"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 409 {object} utilities.ErrorResponse "Skill already claimed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /skills [post]
func (sc *SkillController) AddSkill(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req addSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if !validRating(req.Category, req.SelfRating) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Rating %d is out of range for %s skills", req.SelfRating, req.Category),
		})
		return
	}

	entry := model.SkillEntry{
		StudentID:  user.ID,
		SkillName:  req.SkillName,
		Source:     req.Source,
		Category:   req.Category,
		SelfRating: req.SelfRating,
	}
	if req.Source == model.SkillSourceCatalog {
		entry.ApprovalStatus = model.SkillApprovalPending
	}

	if err := sc.DB.Create(&entry).Error; err != nil {
		var pqErr *pgconn.PgError
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{
				Error: fmt.Sprintf("Skill %q is already on your profile", req.SkillName),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save skill: %s", err.Error()),
		})
		return
	}

	if err := sc.bumpProfileVersion(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update profile version: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListSkills returns the caller's skill entries. POC roles can inspect any
// student via the student_id query parameter.
// @Summary List skill claims
// @Tags Skills
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_id query string false "Student to inspect (POC only)"
// @Success 200 {array} model.SkillEntry "Skill entries"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Inspecting another student without a POC role"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /skills [get]
func (sc *SkillController) ListSkills(c *gin.Context) {
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
				Error: "Only POC roles can inspect another student's skills",
			})
			return
		}
		targetID = parsed
	}

	var entries []model.SkillEntry
	if err := sc.DB.Where("student_id = ?", targetID).Order("skill_name ASC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve skills: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

type decideSkillRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

// DecideSkill records a POC approval or rejection of one catalog skill claim
// @Summary Approve or reject a catalog skill claim
// @Tags Skills
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Skill entry ID"
// @Param decision body decideSkillRequest true "Decision"
// @Success 200 {object} model.SkillEntry "Updated skill entry"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Skill entry not found"
// @Failure 409 {object} utilities.ErrorResponse "Skill is self-reported or already decided"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /skills/{id}/decision [patch]
func (sc *SkillController) DecideSkill(c *gin.Context) {
	var req decideSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var entry model.SkillEntry
	if err := sc.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Skill entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve skill: %s", err.Error()),
		})
		return
	}

	if err := sc.decide(&entry, req.Decision); err != nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := sc.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save skill: %s", err.Error()),
		})
		return
	}

	if err := sc.bumpProfileVersion(entry.StudentID); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update profile version: %s", err.Error()),
		})
		return
	}

	sc.notifySkillDecision(entry)
	c.JSON(http.StatusOK, entry)
}

type bulkDecideRequest struct {
	IDs      []uint `json:"ids" binding:"required,min=1"`
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

type bulkDecideResult struct {
	ID    uint   `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkDecideSkills applies one decision to several catalog skill claims.
// Entries are processed independently; failures on one do not roll back the rest.
// @Summary Approve or reject several catalog skill claims at once
// @Tags Skills
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param decisions body bulkDecideRequest true "Decision and targets"
// @Success 200 {array} bulkDecideResult "Per-entry outcomes"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Router /skills/decisions [post]
func (sc *SkillController) BulkDecideSkills(c *gin.Context) {
	var req bulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	results := make([]bulkDecideResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		res := bulkDecideResult{ID: id}

		var entry model.SkillEntry
		if err := sc.DB.First(&entry, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Error = "skill entry not found"
			} else {
				res.Error = err.Error()
			}
			results = append(results, res)
			continue
		}

		if err := sc.decide(&entry, req.Decision); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		if err := sc.DB.Save(&entry).Error; err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		if err := sc.bumpProfileVersion(entry.StudentID); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		sc.notifySkillDecision(entry)
		res.OK = true
		results = append(results, res)
	}

	c.JSON(http.StatusOK, results)
}

func (sc *SkillController) decide(entry *model.SkillEntry, decision string) error {
	if entry.Source != model.SkillSourceCatalog {
		return fmt.Errorf("skill %q is self-reported and needs no approval", entry.SkillName)
	}
	if entry.ApprovalStatus != model.SkillApprovalPending {
		return fmt.Errorf("skill %q is already %s", entry.SkillName, entry.ApprovalStatus)
	}
	entry.ApprovalStatus = decision
	return nil
}

// bumpProfileVersion invalidates cached match results keyed by the old version
func (sc *SkillController) bumpProfileVersion(studentID uuid.UUID) error {
	return sc.DB.Model(&model.StudentProfile{}).
		Where("user_id = ?", studentID).
		UpdateColumn("profile_version", gorm.Expr("profile_version + 1")).Error
}

func (sc *SkillController) notifySkillDecision(entry model.SkillEntry) {
	var user model.User
	if err := sc.DB.First(&user, "id = ?", entry.StudentID).Error; err != nil {
		return
	}
	recipient := ""
	if user.Email != nil {
		recipient = *user.Email
	}
	notification.Dispatch(sc.Notifier, notification.Event{
		Type:      notification.EventSkillDecided,
		Recipient: recipient,
		Subject:   fmt.Sprintf("Skill %q %s", entry.SkillName, entry.ApprovalStatus),
		Message:   fmt.Sprintf("A POC marked your skill claim %q as %s.", entry.SkillName, entry.ApprovalStatus),
	})
}
