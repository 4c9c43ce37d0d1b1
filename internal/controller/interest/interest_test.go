package interest

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/controller/application"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/middleware"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/notification"
	"CampusReady-backend/internal/testutil"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var testDB *database.DBinstanceStruct

// longReason clears the 50-character justification minimum
var longReason = "I am one react level short but have shipped two frontend projects and can close the gap in a month."

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
	ic := NewInterestController(testDB, notification.Noop{})
	ac := application.NewApplicationController(testDB)
	authed := r.Group("", middleware.RequireAuth(testDB))
	authed.POST("/interest", ic.SubmitInterest)
	authed.GET("/interest/pending", ic.ListPendingInterests)
	authed.PATCH("/interest/:id/decision", ic.DecideInterest)
	authed.POST("/applications", ac.Apply)
	return r
}

func student1Token(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestStudentUser1.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func pocToken(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestPOCUser.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func TestSubmitInterest_reasonTooShort(t *testing.T) {
	r := newTestRouter()

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"job_id": database.TestJob2.ID,
		"reason": "please",
	}, student1Token(t), r, "/interest", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "50 characters")
}

func TestSubmitInterest_success(t *testing.T) {
	r := newTestRouter()
	require.GreaterOrEqual(t, len(longReason), 50)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"job_id":           database.TestJob2.ID,
		"reason":           longReason,
		"improvement_plan": "React course, 3 weeks",
	}, student1Token(t), r, "/interest", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "pending", resp["status"])
}

func TestSubmitInterest_pendingBlocksResubmission(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"job_id": database.TestJob2.ID,
		"reason": longReason,
	}, student1Token(t), r, "/interest", http.MethodPost)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListPendingInterests(t *testing.T) {
	r := newTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/interest/pending", nil)
	req.Header.Set("Authorization", "Bearer "+pocToken(t))
	rec := performRequest(r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pending"))
}

func TestDecideInterest_rejectThenResubmit(t *testing.T) {
	r := newTestRouter()

	id := pendingRequestID(t)
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"decision":       "rejected",
		"decision_notes": "close the react gap first",
	}, pocToken(t), r, fmt.Sprintf("/interest/%d/decision", id), http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", resp["status"])

	// Deciding twice conflicts.
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"decision": "approved",
	}, pocToken(t), r, fmt.Sprintf("/interest/%d/decision", id), http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A new submission replaces the rejected request.
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"job_id": database.TestJob2.ID,
		"reason": longReason + " Finished the course since the last request.",
	}, student1Token(t), r, "/interest", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "pending", resp["status"])
	assert.Nil(t, resp["decision_notes"], "replacement clears the old decision")
}

func TestApprovedInterestUnlocksApplication(t *testing.T) {
	r := newTestRouter()

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"decision": "approved",
	}, pocToken(t), r, fmt.Sprintf("/interest/%d/decision", pendingRequestID(t)), http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)

	// Student 1 still lacks react@3, but the approval bypasses the match.
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"job_id": database.TestJob2.ID,
	}, student1Token(t), r, "/applications", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "interest", resp["mode"])
}

func TestSubmitInterest_concurrentFirstSubmissions(t *testing.T) {
	r := newTestRouter()
	token, err := auth.GetAccessToken(t, testDB, database.TestStudentUser2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	// Both requests pass the existence lookup before either insert lands;
	// the unique index settles the race and the loser gets a conflict, not a 500.
	start := make(chan struct{})
	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rec, _ := testutil.MakeJSONRequest(gin.H{
				"job_id": database.TestJob1.ID,
				"reason": longReason,
			}, token, r, "/interest", http.MethodPost)
			codes <- rec.Code
		}()
	}
	close(start)
	wg.Wait()
	close(codes)

	got := []int{}
	for code := range codes {
		got = append(got, code)
	}
	sort.Ints(got)
	assert.Equal(t, []int{http.StatusCreated, http.StatusConflict}, got)

	var count int64
	testDB.Model(&model.InterestRequest{}).
		Where("student_id = ? AND job_id = ?", database.TestStudentUser2.ID, database.TestJob1.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func pendingRequestID(t *testing.T) uint {
	t.Helper()
	var entry model.InterestRequest
	require.NoError(t, testDB.
		Where("student_id = ? AND job_id = ? AND status = ?",
			database.TestStudentUser1.ID, database.TestJob2.ID, model.InterestStatusPending).
		First(&entry).Error)
	return entry.ID
}

func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
