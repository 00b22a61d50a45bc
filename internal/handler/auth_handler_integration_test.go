package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	mailer *testutil.FakeMailer
	router *gin.Engine
}

func (s *AuthHandlerIntegrationTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *AuthHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.mailer = &testutil.FakeMailer{}
	s.router = newTestRouter(s.testDB.DB, s.mailer)
}

// extractCode pulls the confirmation code out of the activation email body.
func (s *AuthHandlerIntegrationTestSuite) extractCode() string {
	mail := s.mailer.LastMail()
	s.Require().NotNil(mail, "expected an activation email")
	idx := strings.LastIndex(mail.Body, ": ")
	s.Require().Greater(idx, 0, "unexpected email body: %s", mail.Body)
	return mail.Body[idx+2:]
}

func (s *AuthHandlerIntegrationTestSuite) TestSignUpThenToken_EndToEnd() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
	}, "")

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp := decodeJSON(s.T(), w)
	s.Equal("alice", resp["username"])
	s.Equal("alice@example.com", resp["email"])

	code := s.extractCode()

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/token", gin.H{
		"username":          "alice",
		"confirmation_code": code,
	}, "")

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp = decodeJSON(s.T(), w)
	token, ok := resp["token"].(string)
	s.Require().True(ok)
	s.NotEmpty(token)

	// The minted token authenticates against protected endpoints
	w = doJSON(s.T(), s.router, http.MethodGet, "/api/v1/users/me", nil, "Bearer "+token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp = decodeJSON(s.T(), w)
	s.Equal("alice", resp["username"])
	s.Equal("user", resp["role"])
}

func (s *AuthHandlerIntegrationTestSuite) TestSignUp_ReservedUsername() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "me",
		"email":    "me@example.com",
	}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	resp := decodeJSON(s.T(), w)
	errs, ok := resp["errors"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	s.Contains(errs, "username")
}

func (s *AuthHandlerIntegrationTestSuite) TestSignUp_InvalidEmail() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "not-an-email",
	}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	resp := decodeJSON(s.T(), w)
	errs, ok := resp["errors"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	s.Contains(errs, "email")
}

func (s *AuthHandlerIntegrationTestSuite) TestSignUp_UsernameCollision() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "other@example.com",
	}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	resp := decodeJSON(s.T(), w)
	errs, ok := resp["errors"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	s.Contains(errs, "username")
}

func (s *AuthHandlerIntegrationTestSuite) TestToken_UnknownUsername() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/token", gin.H{
		"username":          "nobody",
		"confirmation_code": "some-code",
	}, "")

	s.Equal(http.StatusNotFound, w.Code, w.Body.String())
}

func (s *AuthHandlerIntegrationTestSuite) TestToken_WrongCode() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/token", gin.H{
		"username":          "alice",
		"confirmation_code": "wrong-code",
	}, "")

	s.Equal(http.StatusBadRequest, w.Code)
	resp := decodeJSON(s.T(), w)
	errs, ok := resp["errors"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	s.Contains(errs, "confirmation_code")
}

func (s *AuthHandlerIntegrationTestSuite) TestResend_InvalidatesOldCode() {
	w := doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	oldCode := s.extractCode()

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/resend", gin.H{
		"username": "alice",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	newCode := s.extractCode()
	s.NotEqual(oldCode, newCode)

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/token", gin.H{
		"username":          "alice",
		"confirmation_code": oldCode,
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(s.T(), s.router, http.MethodPost, "/api/v1/auth/token", gin.H{
		"username":          "alice",
		"confirmation_code": newCode,
	}, "")
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *AuthHandlerIntegrationTestSuite) TestProtectedEndpoint_RequiresToken() {
	w := doJSON(s.T(), s.router, http.MethodGet, "/api/v1/users/me", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = doJSON(s.T(), s.router, http.MethodGet, "/api/v1/users/me", nil, "Bearer garbage")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerIntegrationTestSuite) TestUsersMe_RoleIsReadOnly() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "plain", models.RoleUser)
	header := testutil.AuthHeader(s.T(), user, testJWTSecret)

	w := doJSON(s.T(), s.router, http.MethodPatch, "/api/v1/users/me", gin.H{
		"role": "admin",
		"bio":  "hello",
	}, header)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	resp := decodeJSON(s.T(), w)
	s.Equal("user", resp["role"], "a plain user cannot elevate their own role")
	s.Equal("hello", resp["bio"])
}

func TestAuthHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerIntegrationTestSuite))
}
