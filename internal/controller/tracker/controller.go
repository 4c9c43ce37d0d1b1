// Package tracker provides HTTP handlers for the readiness checklist:
// student criterion reports, POC verification, and job-ready certification.
package tracker

import (
	"CampusReady-backend/internal/apperror"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/notification"
	"CampusReady-backend/internal/readiness"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackerController handles readiness tracking endpoints
type TrackerController struct {
	DB       *database.DBinstanceStruct
	Notifier notification.Notifier
}

// NewTrackerController creates a new instance of TrackerController with the provided database connection.
func NewTrackerController(db *database.DBinstanceStruct, notifier notification.Notifier) *TrackerController {
	return &TrackerController{
		DB:       db,
		Notifier: notifier,
	}
}

type readinessResponse struct {
	Record              model.StudentReadinessRecord `json:"record"`
	ReadinessPercentage int                          `json:"readiness_percentage"`
	TotalCriteria       int                          `json:"total_criteria"`
	VerifiedCriteria    int                          `json:"verified_criteria"`
}

func (tc *TrackerController) respondEngineError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), utilities.ErrorResponse{Error: err.Error()})
}

// loadCatalog returns the criterion definitions for a school
func (tc *TrackerController) loadCatalog(school string) ([]model.CriterionDefinition, error) {
	var catalog []model.CriterionDefinition
	err := tc.DB.Where("school = ?", school).Order("id ASC").Find(&catalog).Error
	return catalog, err
}

// loadOrCreateRecord fetches the student's readiness record, creating it
// lazily on first interaction.
func (tc *TrackerController) loadOrCreateRecord(studentID uuid.UUID, school string) (*model.StudentReadinessRecord, error) {
	var record model.StudentReadinessRecord
	err := tc.DB.Preload("CriteriaStatus").
		Where("student_id = ? AND school = ?", studentID, school).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = model.StudentReadinessRecord{StudentID: studentID, School: school}
		if err := tc.DB.Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (tc *TrackerController) studentProfileFor(userID uuid.UUID) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	if err := tc.DB.Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

type reportCriterionRequest struct {
	CriteriaID string  `json:"criteria_id" binding:"required"`
	Value      string  `json:"value" binding:"required"`
	ProofURL   *string `json:"proof_url"`
	Notes      *string `json:"notes"`
}

// ReportCriterion records a student's submission on one criterion
// @Summary Report completion of a readiness criterion
// @Description Only the owning student can report. Allowed while the criterion is not started or in progress; verified criteria reject resubmission.
// @Tags Readiness
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param report body reportCriterionRequest true "Criterion submission"
// @Success 200 {object} readinessResponse "Updated readiness state"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Unknown criterion"
// @Failure 409 {object} utilities.ErrorResponse "Criterion already submitted or verified"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /readiness/report [post]
func (tc *TrackerController) ReportCriterion(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req reportCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	profile, err := tc.studentProfileFor(user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	var def model.CriterionDefinition
	if err := tc.DB.Where("school = ? AND criteria_id = ?", profile.School, req.CriteriaID).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{
				Error: fmt.Sprintf("Criterion %q is not defined for school %q", req.CriteriaID, profile.School),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve criterion: %s", err.Error()),
		})
		return
	}

	record, err := tc.loadOrCreateRecord(user.ID, profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load readiness record: %s", err.Error()),
		})
		return
	}

	cs := record.StatusFor(req.CriteriaID)
	isNew := cs == nil
	if isNew {
		cs = &model.CriterionStatus{
			RecordID:   record.ID,
			CriteriaID: req.CriteriaID,
			Status:     model.CriterionStatusNotStarted,
		}
	}

	if err := readiness.Report(cs, req.Value, req.ProofURL, req.Notes, time.Now()); err != nil {
		tc.respondEngineError(c, err)
		return
	}

	if err := tc.DB.Save(cs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save criterion status: %s", err.Error()),
		})
		return
	}
	if isNew {
		record.CriteriaStatus = append(record.CriteriaStatus, *cs)
	}

	tc.respondReadiness(c, record, profile.School)
}

type verifyCriterionRequest struct {
	StudentID         uuid.UUID `json:"student_id" binding:"required"`
	CriteriaID        string    `json:"criteria_id" binding:"required"`
	Decision          string    `json:"decision" binding:"required,oneof=verified rejected"`
	VerificationNotes *string   `json:"verification_notes"`
	POCComment        *string   `json:"poc_comment"`
	POCRating         *int      `json:"poc_rating"`
}

// VerifyCriterion applies a POC decision to a completed criterion
// @Summary Verify or reject a completed readiness criterion
// @Description Only POC roles can verify. Rejection sends the criterion back to in progress and keeps the notes for the student.
// @Tags Readiness
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param decision body verifyCriterionRequest true "Verification decision"
// @Success 200 {object} readinessResponse "Updated readiness state"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or missing required POC comment/rating"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Unknown student or criterion"
// @Failure 409 {object} utilities.ErrorResponse "Criterion is not awaiting verification"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /readiness/verify [patch]
func (tc *TrackerController) VerifyCriterion(c *gin.Context) {
	var req verifyCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	profile, err := tc.studentProfileFor(req.StudentID)
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	var def model.CriterionDefinition
	if err := tc.DB.Where("school = ? AND criteria_id = ?", profile.School, req.CriteriaID).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{
				Error: fmt.Sprintf("Criterion %q is not defined for school %q", req.CriteriaID, profile.School),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve criterion: %s", err.Error()),
		})
		return
	}

	record, err := tc.loadOrCreateRecord(req.StudentID, profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load readiness record: %s", err.Error()),
		})
		return
	}

	cs := record.StatusFor(req.CriteriaID)
	if cs == nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: fmt.Sprintf("Student has not reported criterion %q yet", req.CriteriaID),
		})
		return
	}

	if err := readiness.Verify(cs, def, readiness.VerifyDecision(req.Decision), req.VerificationNotes, req.POCComment, req.POCRating, time.Now()); err != nil {
		tc.respondEngineError(c, err)
		return
	}

	if err := tc.DB.Save(cs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save criterion status: %s", err.Error()),
		})
		return
	}

	eventType := notification.EventCriterionVerified
	if req.Decision == string(readiness.DecisionRejected) {
		eventType = notification.EventCriterionRejected
	}
	tc.notifyStudent(profile, eventType,
		fmt.Sprintf("Criterion %q %s", def.Name, req.Decision),
		fmt.Sprintf("A POC marked your criterion %q as %s.", def.Name, req.Decision))

	tc.respondReadiness(c, record, profile.School)
}

type unverifyCriterionRequest struct {
	StudentID  uuid.UUID `json:"student_id" binding:"required"`
	CriteriaID string    `json:"criteria_id" binding:"required"`
}

// UnverifyCriterion is the administrative override that reopens a verified criterion
// @Summary Reopen a verified criterion (administrative override)
// @Tags Readiness
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param target body unverifyCriterionRequest true "Criterion to reopen"
// @Success 200 {object} readinessResponse "Updated readiness state"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Unknown student or criterion"
// @Failure 409 {object} utilities.ErrorResponse "Criterion is not verified"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /readiness/verify [delete]
func (tc *TrackerController) UnverifyCriterion(c *gin.Context) {
	var req unverifyCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	profile, err := tc.studentProfileFor(req.StudentID)
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	record, err := tc.loadOrCreateRecord(req.StudentID, profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load readiness record: %s", err.Error()),
		})
		return
	}

	cs := record.StatusFor(req.CriteriaID)
	if cs == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: fmt.Sprintf("Student has no status for criterion %q", req.CriteriaID),
		})
		return
	}

	if err := readiness.Unverify(cs, time.Now()); err != nil {
		tc.respondEngineError(c, err)
		return
	}

	// Losing a verified criterion also voids a previous job-ready certification.
	if err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cs).Error; err != nil {
			return err
		}
		if record.IsJobReady {
			record.IsJobReady = false
			return tx.Model(record).Update("is_job_ready", false).Error
		}
		return nil
	}); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save criterion status: %s", err.Error()),
		})
		return
	}

	tc.respondReadiness(c, record, profile.School)
}

type approveJobReadyRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	Notes     *string   `json:"notes"`
}

// ApproveJobReady certifies a student as job-ready
// @Summary Certify a student as job-ready
// @Description Requires every criterion of the school verified. Idempotent guard rejects double approval.
// @Tags Readiness
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param approval body approveJobReadyRequest true "Certification"
// @Success 200 {object} readinessResponse "Updated readiness state"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as POC"
// @Failure 404 {object} utilities.ErrorResponse "Unknown student"
// @Failure 409 {object} utilities.ErrorResponse "Not all criteria verified or already certified"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /readiness/job-ready [post]
func (tc *TrackerController) ApproveJobReady(c *gin.Context) {
	var req approveJobReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	profile, err := tc.studentProfileFor(req.StudentID)
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	catalog, err := tc.loadCatalog(profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load criterion catalog: %s", err.Error()),
		})
		return
	}

	record, err := tc.loadOrCreateRecord(req.StudentID, profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load readiness record: %s", err.Error()),
		})
		return
	}

	if err := readiness.ApproveJobReady(record, catalog, req.Notes); err != nil {
		tc.respondEngineError(c, err)
		return
	}

	if err := tc.DB.Save(record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save readiness record: %s", err.Error()),
		})
		return
	}

	tc.notifyStudent(profile, notification.EventJobReadyApproved,
		"You are certified job-ready",
		"A POC certified you as job-ready. You can now apply to jobs that require full readiness.")

	tc.respondReadiness(c, record, profile.School)
}

// GetReadiness returns the caller's readiness record and percentage.
// POC roles can inspect any student via the student_id query parameter.
// @Summary Get readiness checklist state
// @Tags Readiness
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_id query string false "Student to inspect (POC only)"
// @Success 200 {object} readinessResponse "Readiness state"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Inspecting another student without a POC role"
// @Failure 404 {object} utilities.ErrorResponse "Student profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /readiness [get]
func (tc *TrackerController) GetReadiness(c *gin.Context) {
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
				Error: "Only POC roles can inspect another student's readiness",
			})
			return
		}
		targetID = parsed
	}

	profile, err := tc.studentProfileFor(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Student profile not found"})
		return
	}

	record, err := tc.loadOrCreateRecord(targetID, profile.School)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load readiness record: %s", err.Error()),
		})
		return
	}

	tc.respondReadiness(c, record, profile.School)
}

func (tc *TrackerController) respondReadiness(c *gin.Context, record *model.StudentReadinessRecord, school string) {
	catalog, err := tc.loadCatalog(school)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load criterion catalog: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, readinessResponse{
		Record:              *record,
		ReadinessPercentage: readiness.RecordPercentage(record, catalog),
		TotalCriteria:       len(catalog),
		VerifiedCriteria:    readiness.VerifiedCount(record),
	})
}

func (tc *TrackerController) notifyStudent(profile *model.StudentProfile, eventType, subject, message string) {
	recipient := ""
	if profile.User.Email != nil {
		recipient = *profile.User.Email
	}
	notification.Dispatch(tc.Notifier, notification.Event{
		Type:      eventType,
		Recipient: recipient,
		Subject:   subject,
		Message:   message,
	})
}
