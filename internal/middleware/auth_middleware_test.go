package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/internal/service"
	"github.com/reviewhub/reviewhub/internal/testutil"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const authTestSecret = "auth-middleware-test-secret"

func setupAuthRouter(t *testing.T) (*gin.Engine, *testutil.TestDatabase, *repository.UserRepository) {
	testDB := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { testDB.Teardown(t) })

	userRepo := repository.NewUserRepository(testDB.DB)
	authService := service.NewAuthService(userRepo, &testutil.FakeMailer{}, authTestSecret, time.Hour, 24*time.Hour)

	router := gin.New()
	router.GET("/whoami", AuthMiddleware(authService), func(c *gin.Context) {
		user := CurrentUser(c)
		require.NotNil(t, user)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router, testDB, userRepo
}

func get(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, testDB, _ := setupAuthRouter(t)
	user := testutil.CreateTestUser(t, testDB.DB, "alice", models.RoleUser)

	w := get(router, testutil.AuthHeader(t, user, authTestSecret))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	router, _, _ := setupAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer garbage").Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router, testDB, _ := setupAuthRouter(t)
	user := testutil.CreateTestUser(t, testDB.DB, "alice", models.RoleUser)

	w := get(router, testutil.AuthHeader(t, user, "some-other-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	router, testDB, userRepo := setupAuthRouter(t)
	user := testutil.CreateTestUser(t, testDB.DB, "alice", models.RoleUser)
	header := testutil.AuthHeader(t, user, authTestSecret)

	user.IsActive = false
	require.NoError(t, userRepo.Save(user))

	w := get(router, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a token for a deactivated account is rejected")
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	router, testDB, _ := setupAuthRouter(t)
	user := testutil.CreateTestUser(t, testDB.DB, "alice", models.RoleUser)
	header := testutil.AuthHeader(t, user, authTestSecret)

	require.NoError(t, testDB.DB.Delete(user).Error)

	w := get(router, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
