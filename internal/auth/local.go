package auth

import (
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB: db,
	}
}

type registerInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=student coordinator campus_poc"`
	School   string `json:"school"`
	Campus   string `json:"campus"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"access_token"`
}

// LocalRegisterHandler handles local registration by receiving username and password
// do nothing if username already exist in the database
// do nothing if password is shorter than 8 characters
// @Summary Handles local registration by receiving username, password and role
// @Description Username must not already exist and password must be longer or equal to 8 characters.
// @Description Students must provide their school; a student profile is created in draft state.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be 'student', 'coordinator', or 'campus_poc'"
// @Success 201 {object} authResponse "Account created"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, and role ('student', 'coordinator' or 'campus_poc') must be provided",
		})
		return
	}

	var existing model.User
	err := lh.DB.Where("username = ?", info.Username).First(&existing).Error

	switch {
	case err == nil:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	if info.Role == model.RoleStudent && info.School == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Students must provide their school",
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	user := model.User{
		Username: info.Username,
		Password: hashedPassword,
		Role:     info.Role,
	}

	// A student account and its profile land together or not at all.
	err = lh.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if info.Role != model.RoleStudent {
			return nil
		}
		profile := model.StudentProfile{
			UserID:         user.ID,
			School:         info.School,
			Campus:         info.Campus,
			ApprovalStatus: model.ProfileStatusDraft,
			ProfileVersion: 1,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		User:        user,
		AccessToken: accessToken,
	})
}

// LocalLoginHandler handles local login by receiving username and password
// @Summary Handles local login by receiving username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Login credentials"
// @Success 200 {object} authResponse "Logged in"
// @Failure 400 {object} utilities.ErrorResponse "Username or password not provided"
// @Failure 401 {object} utilities.ErrorResponse "Username or password is incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:        user,
		AccessToken: accessToken,
	})
}
