// Package jobs provides HTTP handlers for coordinators to manage job
// postings: eligibility rules, required skills, and custom requirements.
package jobs

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// JobController handles job posting endpoints
type JobController struct {
	DB *database.DBinstanceStruct
}

// NewJobController creates a new instance of JobController with the provided database connection.
func NewJobController(db *database.DBinstanceStruct) *JobController {
	return &JobController{
		DB: db,
	}
}

type requiredSkillInput struct {
	SkillName        string `json:"skill_name" binding:"required"`
	ProficiencyLevel int    `json:"proficiency_level" binding:"min=0,max=4"`
	Required         *bool  `json:"required"`
}

type customRequirementInput struct {
	Requirement string `json:"requirement" binding:"required"`
	IsMandatory *bool  `json:"is_mandatory"`
}

type jobRequest struct {
	model.EditableJobInfo
	ReadinessRequirement string                    `json:"readiness_requirement" binding:"omitempty,oneof=yes in_progress no"`
	Eligibility          model.JobEligibilityRules `json:"eligibility"`
	RequiredSkills       []requiredSkillInput      `json:"required_skills"`
	CustomRequirements   []customRequirementInput  `json:"custom_requirements"`
}

func (req *jobRequest) skills(jobID uint) []model.RequiredSkill {
	out := make([]model.RequiredSkill, 0, len(req.RequiredSkills))
	for _, s := range req.RequiredSkills {
		required := true
		if s.Required != nil {
			required = *s.Required
		}
		out = append(out, model.RequiredSkill{
			JobID:            jobID,
			SkillName:        s.SkillName,
			ProficiencyLevel: s.ProficiencyLevel,
			Required:         required,
		})
	}
	return out
}

func (req *jobRequest) requirements(jobID uint) []model.CustomRequirement {
	out := make([]model.CustomRequirement, 0, len(req.CustomRequirements))
	for _, r := range req.CustomRequirements {
		mandatory := true
		if r.IsMandatory != nil {
			mandatory = *r.IsMandatory
		}
		out = append(out, model.CustomRequirement{
			JobID:       jobID,
			Requirement: r.Requirement,
			IsMandatory: mandatory,
		})
	}
	return out
}

// CreateJob posts a new job
// @Summary Create a job posting (coordinator)
// @Tags Jobs
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job body jobRequest true "Job definition"
// @Success 201 {object} model.Job "Created job"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as coordinator"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [post]
func (jc *JobController) CreateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if req.Title == "" || req.Company == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Title and company are required"})
		return
	}

	job := model.Job{
		PostedBy:             user.ID,
		EditableJobInfo:      req.EditableJobInfo,
		ReadinessRequirement: req.ReadinessRequirement,
		Eligibility:          req.Eligibility,
		RequiredSkills:       req.skills(0),
		CustomRequirements:   req.requirements(0),
	}
	if job.ReadinessRequirement == "" {
		job.ReadinessRequirement = model.ReadinessNotRequired
	}

	if err := jc.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save job: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs returns job postings with skills and requirements preloaded
// @Summary List job postings
// @Description open=true filters to jobs whose deadline has not passed.
// @Tags Jobs
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param open query bool false "Only jobs still accepting applications"
// @Success 200 {array} model.Job "Jobs, newest first"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [get]
func (jc *JobController) ListJobs(c *gin.Context) {
	query := jc.DB.Preload("RequiredSkills").Preload("CustomRequirements").Order("post_time DESC")
	if c.Query("open") == "true" {
		query = query.Where("deadline IS NULL OR deadline > ?", time.Now())
	}

	var out []model.Job
	if err := query.Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve jobs: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetJob returns one job posting
// @Summary Get a job posting
// @Tags Jobs
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job ID"
// @Success 200 {object} model.Job "Job"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (jc *JobController) GetJob(c *gin.Context) {
	var job model.Job
	err := jc.DB.Preload("RequiredSkills").Preload("CustomRequirements").
		First(&job, "id = ?", c.Param("id")).Error
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

	c.JSON(http.StatusOK, job)
}

// EditJob replaces a job's definition and bumps its version
// @Summary Edit a job posting (coordinator)
// @Description Replaces required skills and custom requirements wholesale. The version bump invalidates cached match results.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job ID"
// @Param job body jobRequest true "New job definition"
// @Success 200 {object} model.Job "Updated job"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as coordinator"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [put]
func (jc *JobController) EditJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var job model.Job
	err := jc.DB.First(&job, "id = ?", c.Param("id")).Error
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

	utilities.MergeNonEmpty(&job.EditableJobInfo, &req.EditableJobInfo)
	if req.ReadinessRequirement != "" {
		job.ReadinessRequirement = req.ReadinessRequirement
	}
	job.Eligibility = req.Eligibility
	job.Version++

	err = jc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", job.ID).Delete(&model.RequiredSkill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", job.ID).Delete(&model.CustomRequirement{}).Error; err != nil {
			return err
		}
		job.RequiredSkills = req.skills(job.ID)
		job.CustomRequirements = req.requirements(job.ID)
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&job).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save job: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job posting
// @Summary Delete a job posting (coordinator)
// @Tags Jobs
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Job ID"
// @Success 200 {object} utilities.MessageResponse "Deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as coordinator"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [delete]
func (jc *JobController) DeleteJob(c *gin.Context) {
	var job model.Job
	err := jc.DB.First(&job, "id = ?", c.Param("id")).Error
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

	if err := jc.DB.Select("RequiredSkills", "CustomRequirements").Delete(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete job: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job deleted"})
}
