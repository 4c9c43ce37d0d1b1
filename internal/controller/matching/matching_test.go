package matching

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/matchcache"
	"CampusReady-backend/internal/middleware"
	"CampusReady-backend/internal/testutil"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
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

func newTestRouter(cache *matchcache.Cache) *gin.Engine {
	r := gin.Default()
	mc := NewMatchController(testDB, cache)
	authed := r.Group("", middleware.RequireAuth(testDB))
	authed.GET("/match/:job_id", mc.GetMatch)
	authed.GET("/eligibility/:job_id", mc.GetEligibility)
	return r
}

func student1Token(t *testing.T) string {
	token, err := auth.GetAccessToken(t, testDB, database.TestStudentUser1.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return token
}

func TestGetMatch_fullMatch(t *testing.T) {
	r := newTestRouter(nil)

	rec, resp := testutil.MakeJSONRequest(nil, student1Token(t), r,
		fmt.Sprintf("/match/%d", database.TestJob1.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(100), resp["overall_percentage"])
	assert.Equal(t, true, resp["can_apply"])
}

func TestGetMatch_unmetSkill(t *testing.T) {
	r := newTestRouter(nil)

	// Job 2 wants react@3; student 1 has javascript only.
	rec, resp := testutil.MakeJSONRequest(nil, student1Token(t), r,
		fmt.Sprintf("/match/%d", database.TestJob2.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["can_apply"])

	skills := resp["skills"].(map[string]interface{})
	assert.Equal(t, float64(0), skills["percentage"])

	eligibility := resp["eligibility"].(map[string]interface{})
	assert.Equal(t, float64(100), eligibility["percentage"], "CGPA 8.2 clears the 7.0 bar")

	// (0 + 100 + 1) / 2
	assert.Equal(t, float64(50), resp["overall_percentage"])
}

func TestGetMatch_unknownJob(t *testing.T) {
	r := newTestRouter(nil)

	rec, _ := testutil.MakeJSONRequest(nil, student1Token(t), r, "/match/99999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMatch_cacheServesSecondCall(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := matchcache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	r := newTestRouter(cache)
	token := student1Token(t)

	rec, first := testutil.MakeJSONRequest(nil, token, r,
		fmt.Sprintf("/match/%d", database.TestJob1.ID), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mr.Keys(), 1, "first call must populate the cache")

	rec, second := testutil.MakeJSONRequest(nil, token, r,
		fmt.Sprintf("/match/%d", database.TestJob1.ID), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, second)
}

func TestGetEligibility_apply(t *testing.T) {
	r := newTestRouter(nil)

	rec, resp := testutil.MakeJSONRequest(nil, student1Token(t), r,
		fmt.Sprintf("/eligibility/%d", database.TestJob1.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	decision := resp["decision"].(map[string]interface{})
	assert.Equal(t, "apply", decision["action"])
	assert.Equal(t, true, decision["meets_readiness"])
}

func TestGetEligibility_interestRequiredOnPartialMatch(t *testing.T) {
	r := newTestRouter(nil)

	rec, resp := testutil.MakeJSONRequest(nil, student1Token(t), r,
		fmt.Sprintf("/eligibility/%d", database.TestJob2.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	decision := resp["decision"].(map[string]interface{})
	assert.Equal(t, "interest_required", decision["action"])
}

func TestGetEligibility_readinessGate(t *testing.T) {
	r := newTestRouter(nil)

	// Job 3 demands 100% readiness; student 1 has verified nothing.
	rec, resp := testutil.MakeJSONRequest(nil, student1Token(t), r,
		fmt.Sprintf("/eligibility/%d", database.TestJob3.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), resp["readiness_percentage"])
	assert.Equal(t, "yes", resp["readiness_requirement"])

	decision := resp["decision"].(map[string]interface{})
	assert.Equal(t, "interest_required", decision["action"])
	assert.Equal(t, false, decision["meets_readiness"])
}

func TestGetEligibility_unapprovedProfileBlocked(t *testing.T) {
	r := newTestRouter(nil)
	token, err := auth.GetAccessToken(t, testDB, database.TestStudentUser2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	rec, resp := testutil.MakeJSONRequest(nil, token, r,
		fmt.Sprintf("/eligibility/%d", database.TestJob1.ID), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	decision := resp["decision"].(map[string]interface{})
	assert.Equal(t, "profile_approval_required", decision["action"])
}
