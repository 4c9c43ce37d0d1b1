package jobs

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/middleware"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/testutil"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newTestRouter() *gin.Engine {
	r := gin.Default()
	jc := NewJobController(testDB)
	authed := r.Group("", middleware.RequireAuth(testDB))
	authed.GET("/jobs", jc.ListJobs)
	authed.GET("/jobs/:id", jc.GetJob)
	authed.POST("/jobs", jc.CreateJob)
	authed.PUT("/jobs/:id", jc.EditJob)
	authed.DELETE("/jobs/:id", jc.DeleteJob)
	return r
}

func coordinatorToken(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestCoordinatorUser.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func TestCreateJob(t *testing.T) {
	r := newTestRouter()

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"title":       "Backend Intern",
		"company":     "CloudWorks",
		"location":    "Remote",
		"eligibility": gin.H{"min_cgpa": 6.0},
		"required_skills": []gin.H{
			{"skill_name": "go", "proficiency_level": 2},
			{"skill_name": "docker", "proficiency_level": 1, "required": false},
		},
		"custom_requirements": []gin.H{
			{"requirement": "Available for 6 months"},
		},
	}, coordinatorToken(t), r, "/jobs", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), resp["version"])
	assert.Equal(t, "no", resp["readiness_requirement"], "readiness not required by default")
	assert.Len(t, resp["required_skills"], 2)
}

func TestCreateJob_requiresTitleAndCompany(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"title": "No company",
	}, coordinatorToken(t), r, "/jobs", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	r := newTestRouter()

	rec, resp := testutil.MakeJSONRequest(nil, coordinatorToken(t), r,
		fmt.Sprintf("/jobs/%d", database.TestJob3.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Support Engineer", resp["title"])
	assert.Len(t, resp["custom_requirements"], 1)

	rec, _ = testutil.MakeJSONRequest(nil, coordinatorToken(t), r, "/jobs/99999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditJob_bumpsVersionAndReplacesSkills(t *testing.T) {
	r := newTestRouter()

	var job model.Job
	require.NoError(t, testDB.Where("title = ?", "Backend Intern").First(&job).Error)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"title": "Backend Intern (Go)",
		"required_skills": []gin.H{
			{"skill_name": "go", "proficiency_level": 3},
		},
	}, coordinatorToken(t), r, fmt.Sprintf("/jobs/%d", job.ID), http.MethodPut)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend Intern (Go)", resp["title"])
	assert.Equal(t, float64(2), resp["version"], "edits must invalidate cached matches")
	assert.Len(t, resp["required_skills"], 1, "skill list is replaced wholesale")

	var skillCount int64
	testDB.Model(&model.RequiredSkill{}).Where("job_id = ?", job.ID).Count(&skillCount)
	assert.Equal(t, int64(1), skillCount)
}

func TestListJobs_openFilter(t *testing.T) {
	r := newTestRouter()
	token := coordinatorToken(t)

	// Post a job whose deadline already passed.
	past := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)
	rec, _ := testutil.MakeJSONRequest(gin.H{
		"title":    "Expired Role",
		"company":  "OldCorp",
		"deadline": past,
	}, token, r, "/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/jobs", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Expired Role")

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/jobs?open=true", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Expired Role")
	assert.Contains(t, rec.Body.String(), "Junior Web Developer")
}

func TestDeleteJob(t *testing.T) {
	r := newTestRouter()

	var job model.Job
	require.NoError(t, testDB.Where("title = ?", "Expired Role").First(&job).Error)

	rec, _ := testutil.MakeJSONRequest(nil, coordinatorToken(t), r,
		fmt.Sprintf("/jobs/%d", job.ID), http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, coordinatorToken(t), r,
		fmt.Sprintf("/jobs/%d", job.ID), http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
