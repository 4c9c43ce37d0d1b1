package middleware

import (
	"CampusReady-backend/internal/auth"
	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/model"
	"CampusReady-backend/internal/testutil"
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var dbTeardown func(context.Context, ...testcontainers.TerminateOption) error
	dbTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if dbTeardown != nil {
		_ = dbTeardown(ctx)
	}
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireAuth(testDB), CheckRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	r := protectedRouter(model.RoleStudent)

	rec, _ := testutil.MakeJSONRequest(nil, "", r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	r := protectedRouter(model.RoleStudent)

	rec, _ := testutil.MakeJSONRequest(nil, "not-a-token", r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckRole_WrongRole(t *testing.T) {
	studentToken, err := auth.GetAccessToken(t, testDB, database.TestStudentUser1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := protectedRouter(model.RoleCampusPOC)

	rec, resp := testutil.MakeJSONRequest(nil, studentToken, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, resp["error"], "permission")
}

func TestCheckRole_ReviewerAllowed(t *testing.T) {
	pocToken, err := auth.GetAccessToken(t, testDB, database.TestPOCUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := protectedRouter(model.ReviewerRoles...)

	rec, _ := testutil.MakeJSONRequest(nil, pocToken, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}
