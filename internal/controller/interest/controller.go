// Package interest provides HTTP handlers for interest requests: the escape
// hatch that lets a below-threshold student ask a POC for permission to apply.
package interest

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/eligibility"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/notification"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// InterestController handles interest request endpoints
type InterestController struct {
	DB       *database.DBinstanceStruct
	Notifier notification.Notifier
}

// NewInterestController creates a new instance of InterestController with the provided database connection.
func NewInterestController(db *database.DBinstanceStruct, notifier notification.Notifier) *InterestController {
	return &InterestController{
		DB:       db,
		Notifier: notifier,
	}
}

type submitInterestRequest struct {
	JobID            uint    `json:"job_id" binding:"required"`
	Reason           string  `json:"reason" binding:"required"`
	AcknowledgedGaps *string `json:"acknowledged_gaps"`
	ImprovementPlan  *string `json:"improvement_plan"`
}

// SubmitInterest files an interest request for the caller
// @Summary Submit an interest request for a job
// @Description The justification must be at least 50 characters. A new submission replaces a rejected request; pending or approved requests block resubmission.
// @Tags Interest
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param request body submitInterestRequest true "Interest request"
// @Success 201 {object} model.InterestRequest "Created request"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or reason too short"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student or job closed"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 409 {object} utilities.ErrorResponse "A pending or approved request already exists"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /interest [post]
func (ic *InterestController) SubmitInterest(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req submitInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if len(req.Reason) < eligibility.MinInterestReasonLen {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Reason must be at least %d characters", eligibility.MinInterestReasonLen),
		})
		return
	}

	var job model.Job
	if err := ic.DB.First(&job, "id = ?", req.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job: %s", err.Error()),
		})
		return
	}
	if job.Closed(time.Now()) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "The application deadline has passed"})
		return
	}

	var existing model.InterestRequest
	err = ic.DB.Where("student_id = ? AND job_id = ?", user.ID, req.JobID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := model.InterestRequest{
			StudentID:        user.ID,
			JobID:            req.JobID,
			Status:           model.InterestStatusPending,
			Reason:           req.Reason,
			AcknowledgedGaps: req.AcknowledgedGaps,
			ImprovementPlan:  req.ImprovementPlan,
		}
		if err := ic.DB.Create(&entry).Error; err != nil {
			// The unique index catches a concurrent double submission the
			// lookup above could not see.
			var pqErr *pgconn.PgError
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				c.JSON(http.StatusConflict, utilities.ErrorResponse{
					Error: "You already have an interest request for this job",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to save interest request: %s", err.Error()),
			})
			return
		}
		c.JSON(http.StatusCreated, entry)
	case err != nil:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check existing request: %s", err.Error()),
		})
	case existing.Status == model.InterestStatusRejected:
		// Resubmission resets the rejected request back to pending.
		existing.Status = model.InterestStatusPending
		existing.Reason = req.Reason
		existing.AcknowledgedGaps = req.AcknowledgedGaps
		existing.ImprovementPlan = req.ImprovementPlan
		existing.DecisionNotes = nil
		existing.DecidedBy = nil
		if err := ic.DB.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to save interest request: %s", err.Error()),
			})
			return
		}
		c.JSON(http.StatusCreated, existing)
	default:
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: fmt.Sprintf("You already have a %s interest request for this job", existing.Status),
		})
	}
}

// ListPendingInterests returns all requests awaiting a decision
// @Summary List pending interest requests (POC)
// @Tags Interest
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.InterestRequest "Pending requests, oldest first"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /interest/pending [get]
func (ic *InterestController) ListPendingInterests(c *gin.Context) {
	var entries []model.InterestRequest
	if err := ic.DB.Where("status = ?", model.InterestStatusPending).
		Order("created_at ASC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve interest requests: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}

type decideInterestRequest struct {
	Decision      string  `json:"decision" binding:"required,oneof=approved rejected"`
	DecisionNotes *string `json:"decision_notes"`
}

// DecideInterest records a POC decision on a pending interest request
// @Summary Approve or reject an interest request
// @Description Approval clears the student to apply for this specific job only.
// @Tags Interest
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Interest request ID"
// @Param decision body decideInterestRequest true "Decision"
// @Success 200 {object} model.InterestRequest "Updated request"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Request not found"
// @Failure 409 {object} utilities.ErrorResponse "Request is not pending"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /interest/{id}/decision [patch]
func (ic *InterestController) DecideInterest(c *gin.Context) {
	reviewer, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req decideInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var entry model.InterestRequest
	if err := ic.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Interest request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve interest request: %s", err.Error()),
		})
		return
	}

	if entry.Status != model.InterestStatusPending {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: fmt.Sprintf("Interest request is already %s", entry.Status),
		})
		return
	}

	entry.Status = req.Decision
	entry.DecisionNotes = req.DecisionNotes
	entry.DecidedBy = &reviewer.ID
	if err := ic.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save interest request: %s", err.Error()),
		})
		return
	}

	ic.notifyStudent(entry)
	c.JSON(http.StatusOK, entry)
}

func (ic *InterestController) notifyStudent(entry model.InterestRequest) {
	var user model.User
	if err := ic.DB.First(&user, "id = ?", entry.StudentID).Error; err != nil {
		return
	}
	recipient := ""
	if user.Email != nil {
		recipient = *user.Email
	}
	notification.Dispatch(ic.Notifier, notification.Event{
		Type:      notification.EventInterestDecided,
		Recipient: recipient,
		Subject:   fmt.Sprintf("Interest request %s", entry.Status),
		Message:   fmt.Sprintf("A POC marked your interest request for job %d as %s.", entry.JobID, entry.Status),
	})
}
