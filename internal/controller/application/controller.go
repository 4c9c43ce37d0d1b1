// Package application provides HTTP handlers for submitting and withdrawing
// job applications. The eligibility gate runs server-side on every submission;
// the client's view of its own eligibility is never trusted.
package application

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/eligibility"
	"CampusReady-backend/internal/match"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/readiness"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ApplicationController handles application workflow endpoints
type ApplicationController struct {
	DB *database.DBinstanceStruct
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct) *ApplicationController {
	return &ApplicationController{
		DB: db,
	}
}

type applyRequest struct {
	JobID uint `json:"job_id" binding:"required"`

	// AcknowledgedRequirements lists the CustomRequirement IDs the student
	// confirms. Every mandatory requirement of the job must appear here.
	AcknowledgedRequirements []uint `json:"acknowledged_requirements"`
}

// Apply submits an application for the caller
// @Summary Apply to a job
// @Description Re-runs the full eligibility gate server-side. All mandatory custom requirements must be acknowledged in the request.
// @Tags Applications
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body applyRequest true "Application"
// @Success 201 {object} model.Application "Created application"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or unacknowledged mandatory requirement"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Gate decision forbids applying"
// @Failure 404 {object} utilities.ErrorResponse "Job or profile not found"
// @Failure 409 {object} utilities.ErrorResponse "Active application already exists"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [post]
func (ac *ApplicationController) Apply(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var job model.Job
	err = ac.DB.Preload("RequiredSkills").Preload("CustomRequirements").
		First(&job, "id = ?", req.JobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job: %s", err.Error()),
		})
		return
	}

	var profile model.StudentProfile
	if err := ac.DB.Preload("Skills").First(&profile, "user_id = ?", user.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	acknowledged := make(map[uint]bool, len(req.AcknowledgedRequirements))
	for _, id := range req.AcknowledgedRequirements {
		acknowledged[id] = true
	}
	for _, cr := range job.CustomRequirements {
		if cr.IsMandatory && !acknowledged[cr.ID] {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Mandatory requirement %q must be acknowledged", cr.Requirement),
			})
			return
		}
	}

	res := match.Compute(profile, profile.Skills, job, acknowledged)

	readinessPct, err := ac.readinessPercentage(&profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to compute readiness: %s", err.Error()),
		})
		return
	}

	application, interest, err := ac.loadWorkflowState(user.ID, job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load application state: %s", err.Error()),
		})
		return
	}

	decision := eligibility.Decide(eligibility.Input{
		ProfileApprovalStatus: profile.ApprovalStatus,
		ReadinessRequirement:  job.ReadinessRequirement,
		ReadinessPercentage:   readinessPct,
		Match:                 res,
		Application:           application,
		Interest:              interest,
		Deadline:              job.Deadline,
		Now:                   time.Now(),
	})
	if decision.Action != eligibility.ActionApply {
		status := http.StatusForbidden
		if decision.Action == eligibility.ActionAlreadyApplied {
			status = http.StatusConflict
		}
		c.JSON(status, utilities.ErrorResponse{
			Error: fmt.Sprintf("Cannot apply: %s", decision.Reason),
		})
		return
	}

	mode := model.ApplicationModeDirect
	if interest != nil && interest.Status == model.InterestStatusApproved {
		mode = model.ApplicationModeInterest
	}

	ackIDs := make(pq.Int64Array, 0, len(req.AcknowledgedRequirements))
	for _, id := range req.AcknowledgedRequirements {
		ackIDs = append(ackIDs, int64(id))
	}

	active := true
	entry := model.Application{
		StudentID:                user.ID,
		JobID:                    job.ID,
		Status:                   model.ApplicationStatusApplied,
		Mode:                     mode,
		ActiveFlag:               &active,
		AcknowledgedRequirements: ackIDs,
	}
	if err := ac.DB.Create(&entry).Error; err != nil {
		// The unique index catches a concurrent double submission the gate
		// check above could not see.
		var pqErr *pgconn.PgError
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{
				Error: "You already have an active application for this job",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Withdraw pulls the caller's active application for a job
// @Summary Withdraw an application
// @Description Marks the application withdrawn and frees the slot so the student can apply again later.
// @Tags Applications
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id path int true "Job ID"
// @Success 200 {object} model.Application "Withdrawn application"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "No active application for this job"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{job_id} [delete]
func (ac *ApplicationController) Withdraw(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job id"})
		return
	}

	var entry model.Application
	err = ac.DB.Where("student_id = ? AND job_id = ? AND active_flag = ?", user.ID, uint(jobID), true).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "No active application for this job"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
		})
		return
	}

	// Nulling ActiveFlag drops the row out of the unique index so a future
	// application for the same job is allowed.
	if err := ac.DB.Model(&entry).Updates(map[string]interface{}{
		"status":      model.ApplicationStatusWithdrawn,
		"active_flag": nil,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to withdraw application: %s", err.Error()),
		})
		return
	}
	entry.Status = model.ApplicationStatusWithdrawn
	entry.ActiveFlag = nil

	c.JSON(http.StatusOK, entry)
}

// ListApplications returns the caller's applications, newest first
// @Summary List own applications
// @Tags Applications
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application "Applications"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [get]
func (ac *ApplicationController) ListApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var entries []model.Application
	if err := ac.DB.Where("student_id = ?", user.ID).Order("applied_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=applied shortlisted in_progress selected rejected"`
}

// UpdateStatus moves an application through the hiring pipeline
// @Summary Update an application's pipeline status (coordinator)
// @Tags Applications
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} model.Application "Updated application"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as coordinator"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Application is withdrawn"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/status [patch]
func (ac *ApplicationController) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var entry model.Application
	if err := ac.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
		})
		return
	}

	if !entry.Active() {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Cannot change the status of a withdrawn application",
		})
		return
	}

	entry.Status = req.Status
	if err := ac.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (ac *ApplicationController) readinessPercentage(profile *model.StudentProfile) (int, error) {
	var catalog []model.CriterionDefinition
	if err := ac.DB.Where("school = ?", profile.School).Find(&catalog).Error; err != nil {
		return 0, err
	}

	var record model.StudentReadinessRecord
	err := ac.DB.Preload("CriteriaStatus").
		Where("student_id = ? AND school = ?", profile.UserID, profile.School).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return readiness.Percentage(0, len(catalog), readiness.EmptyCatalogFull()), nil
	}
	if err != nil {
		return 0, err
	}
	return readiness.RecordPercentage(&record, catalog), nil
}

func (ac *ApplicationController) loadWorkflowState(studentID uuid.UUID, jobID uint) (*model.Application, *model.InterestRequest, error) {
	var application model.Application
	err := ac.DB.Where("student_id = ? AND job_id = ? AND active_flag = ?", studentID, jobID, true).
		First(&application).Error
	app := &application
	if errors.Is(err, gorm.ErrRecordNotFound) {
		app = nil
	} else if err != nil {
		return nil, nil, err
	}

	var interest model.InterestRequest
	err = ac.DB.Where("student_id = ? AND job_id = ?", studentID, jobID).First(&interest).Error
	intr := &interest
	if errors.Is(err, gorm.ErrRecordNotFound) {
		intr = nil
	} else if err != nil {
		return nil, nil, err
	}

	return app, intr, nil
}
