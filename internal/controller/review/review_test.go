package review

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/middleware"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/notification"
	"CampusReady-backend/internal/testutil"
	"context"
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
	rc := NewReviewController(testDB, notification.Noop{})
	authed := r.Group("", middleware.RequireAuth(testDB))
	authed.GET("/profile", rc.GetProfile)
	authed.PATCH("/profile", rc.EditProfile)
	authed.POST("/profile/submit", rc.SubmitProfile)
	authed.GET("/profile/pending", rc.ListPendingProfiles)
	authed.PATCH("/profile/decision", rc.DecideProfile)
	return r
}

func student2Token(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestStudentUser2.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func pocToken(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestPOCUser.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func TestSubmitProfile(t *testing.T) {
	r := newTestRouter()
	token := student2Token(t)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/profile/submit", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending_approval", resp["approval_status"])

	// Submitting a pending profile conflicts.
	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/profile/submit", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListPendingProfiles(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(nil, pocToken(t), r, "/profile/pending", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), database.TestStudentUser2.ID.String())
}

func TestDecideProfile_needsRevisionRequiresNotes(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"student_id": database.TestStudentUser2.ID,
		"decision":   "needs_revision",
	}, pocToken(t), r, "/profile/decision", http.MethodPatch)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideProfile_needsRevisionRoundTrip(t *testing.T) {
	r := newTestRouter()
	poc := pocToken(t)
	student := student2Token(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"student_id": database.TestStudentUser2.ID,
		"decision":   "needs_revision",
		"notes":      "Attendance figure is missing a semester",
	}, poc, r, "/profile/decision", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "needs_revision", resp["approval_status"])
	assert.Equal(t, "Attendance figure is missing a semester", resp["revision_notes"])

	// The student fixes the data; the version bump invalidates cached matches.
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"attendance": 78.5,
	}, student, r, "/profile", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), resp["profile_version"])

	// Resubmission clears the notes.
	rec, resp = testutil.MakeJSONRequest(nil, student, r, "/profile/submit", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp["revision_notes"])

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"student_id": database.TestStudentUser2.ID,
		"decision":   "approved",
	}, poc, r, "/profile/decision", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", resp["approval_status"])
}

func TestEditApprovedProfileNeedsReapproval(t *testing.T) {
	r := newTestRouter()

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"cgpa": 6.9,
	}, student2Token(t), r, "/profile", http.MethodPatch)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending_approval", resp["approval_status"], "edits to approved data need a fresh review")
	assert.Equal(t, float64(3), resp["profile_version"])
}

func TestDecideProfile_notPendingConflicts(t *testing.T) {
	r := newTestRouter()

	// Put student 2 back to approved for a clean end state.
	rec, _ := testutil.MakeJSONRequest(gin.H{
		"student_id": database.TestStudentUser2.ID,
		"decision":   "approved",
	}, pocToken(t), r, "/profile/decision", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{
		"student_id": database.TestStudentUser2.ID,
		"decision":   "approved",
	}, pocToken(t), r, "/profile/decision", http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetProfile_ownershipEnforced(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(nil, student2Token(t), r,
		"/profile?student_id="+database.TestStudentUser1.ID.String(), http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := testutil.MakeJSONRequest(nil, pocToken(t), r,
		"/profile?student_id="+database.TestStudentUser1.ID.String(), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, database.TestStudentUser1.ID.String(), resp["user_id"])

	var profile model.StudentProfile
	require.NoError(t, testDB.First(&profile, "user_id = ?", database.TestStudentUser1.ID).Error)
	assert.Equal(t, model.ProfileStatusApproved, profile.ApprovalStatus)
}
