// Package catalog provides HTTP handlers for managing a school's readiness
// criterion catalog. Coordinators own these definitions.
package catalog

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// CatalogController handles criterion catalog endpoints
type CatalogController struct {
	DB *database.DBinstanceStruct
}

// NewCatalogController creates a new instance of CatalogController with the provided database connection.
func NewCatalogController(db *database.DBinstanceStruct) *CatalogController {
	return &CatalogController{
		DB: db,
	}
}

type createCriterionRequest struct {
	CriteriaID         string  `json:"criteria_id" binding:"required"`
	School             string  `json:"school" binding:"required"`
	Name               string  `json:"name" binding:"required"`
	Description        string  `json:"description"`
	InputType          string  `json:"input_type" binding:"required,oneof=answer link yes_no comment"`
	Category           string  `json:"category"`
	IsMandatory        *bool   `json:"is_mandatory"`
	POCCommentRequired bool    `json:"poc_comment_required"`
	POCCommentTemplate *string `json:"poc_comment_template"`
	POCRatingRequired  bool    `json:"poc_rating_required"`
	POCRatingScale     int     `json:"poc_rating_scale"`
}

// CreateCriterion adds a criterion definition to a school's catalog
// @Summary Create readiness criterion
// @Description Only coordinators can define criteria. criteria_id is immutable and unique per school.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param criterion body createCriterionRequest true "Criterion definition"
// @Success 201 {object} model.CriterionDefinition "Criterion created"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or duplicate criteria_id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as coordinator"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /criteria [post]
func (cc *CatalogController) CreateCriterion(c *gin.Context) {
	var req createCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	mandatory := true
	if req.IsMandatory != nil {
		mandatory = *req.IsMandatory
	}
	scale := req.POCRatingScale
	if scale < 1 {
		scale = 5
	}

	def := model.CriterionDefinition{
		CriteriaID:         req.CriteriaID,
		School:             req.School,
		Name:               req.Name,
		Description:        req.Description,
		InputType:          req.InputType,
		Category:           req.Category,
		IsMandatory:        mandatory,
		POCCommentRequired: req.POCCommentRequired,
		POCCommentTemplate: req.POCCommentTemplate,
		POCRatingRequired:  req.POCRatingRequired,
		POCRatingScale:     scale,
	}

	if err := cc.DB.Create(&def).Error; err != nil {
		var pqErr *pgconn.PgError
		// 23505 is a unique violation, mean criteria_id is already taken for this school
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Criterion %q already exists for school %q", req.CriteriaID, req.School),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create criterion: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, def)
}

// GetCriteria lists criterion definitions for a school
// @Summary List readiness criteria for a school
// @Tags Catalog
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param school query string true "School name"
// @Success 200 {array} model.CriterionDefinition "Criteria for the school"
// @Failure 400 {object} utilities.ErrorResponse "Missing school parameter"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /criteria [get]
func (cc *CatalogController) GetCriteria(c *gin.Context) {
	school := c.Query("school")
	if school == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "school query parameter is required",
		})
		return
	}

	var criteria []model.CriterionDefinition
	if err := cc.DB.Where("school = ?", school).Order("id ASC").Find(&criteria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve criteria: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, criteria)
}

type editCriterionRequest struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	IsMandatory        *bool   `json:"is_mandatory"`
	POCCommentRequired *bool   `json:"poc_comment_required"`
	POCCommentTemplate *string `json:"poc_comment_template"`
	POCRatingRequired  *bool   `json:"poc_rating_required"`
	POCRatingScale     *int    `json:"poc_rating_scale"`
}

// EditCriterion updates the editable parts of a criterion definition.
// criteria_id, school, and input_type stay immutable.
// @Summary Edit readiness criterion
// @Tags Catalog
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Criterion definition ID"
// @Param criterion body editCriterionRequest true "Fields to update"
// @Success 200 {object} model.CriterionDefinition "Updated criterion"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 404 {object} utilities.ErrorResponse "Criterion not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /criteria/{id} [patch]
func (cc *CatalogController) EditCriterion(c *gin.Context) {
	var def model.CriterionDefinition
	if err := cc.DB.First(&def, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Criterion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve criterion: %s", err.Error()),
		})
		return
	}

	var req editCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if req.Name != "" {
		def.Name = req.Name
	}
	if req.Description != "" {
		def.Description = req.Description
	}
	if req.Category != "" {
		def.Category = req.Category
	}
	if req.IsMandatory != nil {
		def.IsMandatory = *req.IsMandatory
	}
	if req.POCCommentRequired != nil {
		def.POCCommentRequired = *req.POCCommentRequired
	}
	if req.POCCommentTemplate != nil {
		def.POCCommentTemplate = req.POCCommentTemplate
	}
	if req.POCRatingRequired != nil {
		def.POCRatingRequired = *req.POCRatingRequired
	}
	if req.POCRatingScale != nil && *req.POCRatingScale >= 1 {
		def.POCRatingScale = *req.POCRatingScale
	}

	if err := cc.DB.Save(&def).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update criterion: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, def)
}

// DeleteCriterion removes a criterion definition and every student status row
// hanging off it (cascade).
// @Summary Delete readiness criterion
// @Tags Catalog
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Criterion definition ID"
// @Success 200 {object} utilities.MessageResponse "Criterion deleted"
// @Failure 404 {object} utilities.ErrorResponse "Criterion not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /criteria/{id} [delete]
func (cc *CatalogController) DeleteCriterion(c *gin.Context) {
	var def model.CriterionDefinition
	if err := cc.DB.First(&def, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Criterion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve criterion: %s", err.Error()),
		})
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		// criteria_id is only unique within a school, so the cascade must not
		// touch status rows belonging to another school's records
		records := tx.Model(&model.StudentReadinessRecord{}).Select("id").Where("school = ?", def.School)
		if err := tx.Where("criteria_id = ? AND record_id IN (?)", def.CriteriaID, records).
			Delete(&model.CriterionStatus{}).Error; err != nil {
			return err
		}
		return tx.Delete(&def).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete criterion: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Criterion deleted"})
}
