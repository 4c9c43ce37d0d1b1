// Package matching provides HTTP handlers for match previews and the
// eligibility gate. Match results are computed on demand and cached by
// profile/job version; they are never persisted.
package matching

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/eligibility"
	"CampusReady-backend/internal/match"
	"CampusReady-backend/internal/matchcache"
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
	"gorm.io/gorm"
)

// MatchController handles match preview and eligibility gate endpoints
type MatchController struct {
	DB    *database.DBinstanceStruct
	Cache *matchcache.Cache
}

// NewMatchController creates a new instance of MatchController with the provided database connection.
func NewMatchController(db *database.DBinstanceStruct, cache *matchcache.Cache) *MatchController {
	return &MatchController{
		DB:    db,
		Cache: cache,
	}
}

func (mc *MatchController) loadJob(c *gin.Context) (*model.Job, bool) {
	jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job id"})
		return nil, false
	}

	var job model.Job
	err = mc.DB.Preload("RequiredSkills").Preload("CustomRequirements").
		First(&job, "id = ?", uint(jobID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job: %s", err.Error()),
		})
		return nil, false
	}
	return &job, true
}

func (mc *MatchController) loadProfile(c *gin.Context, userID uuid.UUID) (*model.StudentProfile, bool) {
	var profile model.StudentProfile
	if err := mc.DB.Preload("Skills").First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve profile: %s", err.Error()),
			})
		}
		return nil, false
	}
	return &profile, true
}

// computeMatch runs the scorer through the version-keyed cache
func (mc *MatchController) computeMatch(c *gin.Context, profile *model.StudentProfile, job *model.Job) match.Result {
	if res, ok := mc.Cache.Get(c.Request.Context(), profile.UserID, job.ID, profile.ProfileVersion, job.Version); ok {
		return res
	}
	res := match.Compute(*profile, profile.Skills, *job, nil)
	mc.Cache.Set(c.Request.Context(), profile.UserID, job.ID, profile.ProfileVersion, job.Version, res)
	return res
}

// GetMatch returns the match breakdown between the caller and a job
// @Summary Preview the match score for a job
// @Description Scores skills, eligibility rules and custom requirements. Custom requirements are unacknowledged at preview time.
// @Tags Matching
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id path int true "Job ID"
// @Success 200 {object} match.Result "Match breakdown"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Job or profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /match/{job_id} [get]
func (mc *MatchController) GetMatch(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, ok := mc.loadJob(c)
	if !ok {
		return
	}
	profile, ok := mc.loadProfile(c, user.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mc.computeMatch(c, profile, job))
}

type eligibilityResponse struct {
	Decision eligibility.Decision `json:"decision"`
	Match    match.Result         `json:"match"`

	ReadinessRequirement string `json:"readiness_requirement"`
	ReadinessPercentage  int    `json:"readiness_percentage"`
}

// GetEligibility runs the ordered eligibility gate for the caller and a job
// @Summary Decide what the caller may do about a job
// @Description Returns a single action: apply, interest_required, or one of the blocking states. The order of checks is fixed.
// @Tags Matching
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id path int true "Job ID"
// @Success 200 {object} eligibilityResponse "Gate decision with match breakdown"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Job or profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /eligibility/{job_id} [get]
func (mc *MatchController) GetEligibility(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, ok := mc.loadJob(c)
	if !ok {
		return
	}
	profile, ok := mc.loadProfile(c, user.ID)
	if !ok {
		return
	}

	res := mc.computeMatch(c, profile, job)

	readinessPct, err := mc.readinessPercentage(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to compute readiness: %s", err.Error()),
		})
		return
	}

	application, interest, err := mc.loadWorkflowState(user.ID, job.ID)
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

	c.JSON(http.StatusOK, eligibilityResponse{
		Decision:             decision,
		Match:                res,
		ReadinessRequirement: job.ReadinessRequirement,
		ReadinessPercentage:  readinessPct,
	})
}

func (mc *MatchController) readinessPercentage(profile *model.StudentProfile) (int, error) {
	var catalog []model.CriterionDefinition
	if err := mc.DB.Where("school = ?", profile.School).Find(&catalog).Error; err != nil {
		return 0, err
	}

	var record model.StudentReadinessRecord
	err := mc.DB.Preload("CriteriaStatus").
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

// loadWorkflowState returns the latest non-withdrawn application and the
// current interest request for the pair, either may be nil.
func (mc *MatchController) loadWorkflowState(studentID uuid.UUID, jobID uint) (*model.Application, *model.InterestRequest, error) {
	var application model.Application
	err := mc.DB.Where("student_id = ? AND job_id = ? AND active_flag = ?", studentID, jobID, true).
		First(&application).Error
	app := &application
	if errors.Is(err, gorm.ErrRecordNotFound) {
		app = nil
	} else if err != nil {
		return nil, nil, err
	}

	var interest model.InterestRequest
	err = mc.DB.Where("student_id = ? AND job_id = ?", studentID, jobID).First(&interest).Error
	intr := &interest
	if errors.Is(err, gorm.ErrRecordNotFound) {
		intr = nil
	} else if err != nil {
		return nil, nil, err
	}

	return app, intr, nil
}
