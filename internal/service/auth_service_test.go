package service

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/internal/testutil"
	"github.com/reviewhub/reviewhub/internal/utils"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type AuthServiceTestSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	userRepo *repository.UserRepository
	mailer   *testutil.FakeMailer
	service  *AuthService
}

func (s *AuthServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.userRepo = repository.NewUserRepository(s.testDB.DB)
}

func (s *AuthServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.mailer = &testutil.FakeMailer{}
	s.service = NewAuthService(s.userRepo, s.mailer, "test-secret", time.Hour, 24*time.Hour)
}

func (s *AuthServiceTestSuite) TestSignUp_NewUser() {
	user, err := s.service.SignUp("alice", "alice@example.com")

	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.Equal(models.RoleUser, user.Role)
	s.False(user.IsActive, "account stays inactive until the code is exchanged")
	s.Require().NotNil(user.ConfirmationCode)
	s.Require().NotNil(user.CodeExpiry)
	s.True(user.CodeExpiry.After(time.Now()))

	mail := s.mailer.LastMail()
	s.Require().NotNil(mail, "signup must send a confirmation email")
	s.Equal("alice@example.com", mail.To)
	s.Equal("Activation", mail.Subject)
	s.Contains(mail.Body, *user.ConfirmationCode)
}

func (s *AuthServiceTestSuite) TestSignUp_SamePairReissuesCode() {
	first, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)
	firstCode := *first.ConfirmationCode

	second, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID, "resubmitting the same pair must not create a new user")
	s.NotEqual(firstCode, *second.ConfirmationCode, "a fresh code replaces the old one")
	s.Len(s.mailer.Mail, 2)
}

func (s *AuthServiceTestSuite) TestSignUp_UsernameTakenByOtherEmail() {
	_, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	_, err = s.service.SignUp("alice", "other@example.com")
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *AuthServiceTestSuite) TestSignUp_EmailTakenByOtherUsername() {
	_, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	_, err = s.service.SignUp("bob", "alice@example.com")
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *AuthServiceTestSuite) TestSignUp_MailFailureKeepsCode() {
	s.mailer.Err = errors.New("smtp connection refused")

	_, err := s.service.SignUp("alice", "alice@example.com")
	s.ErrorIs(err, ErrMailDelivery)

	// The code was persisted before the send, so a resend can recover
	stored, err := s.userRepo.GetByUsername("alice")
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.NotNil(stored.ConfirmationCode)
}

func (s *AuthServiceTestSuite) TestExchangeToken_Success() {
	user, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	token, err := s.service.ExchangeToken("alice", *user.ConfirmationCode)
	s.Require().NoError(err)
	s.NotEmpty(token)

	claims, err := utils.ValidateToken(token, "test-secret")
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)
	s.Equal("alice", claims.Username)

	stored, err := s.userRepo.GetByUsername("alice")
	s.Require().NoError(err)
	s.True(stored.IsActive)
	s.Nil(stored.ConfirmationCode, "a consumed code must be cleared")
	s.Nil(stored.CodeExpiry)
}

func (s *AuthServiceTestSuite) TestExchangeToken_CodeIsSingleUse() {
	user, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)
	code := *user.ConfirmationCode

	_, err = s.service.ExchangeToken("alice", code)
	s.Require().NoError(err)

	_, err = s.service.ExchangeToken("alice", code)
	s.ErrorIs(err, ErrInvalidCode)
}

func (s *AuthServiceTestSuite) TestExchangeToken_WrongCodeLeavesStoredCodeUsable() {
	user, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	_, err = s.service.ExchangeToken("alice", "definitely-wrong")
	s.ErrorIs(err, ErrInvalidCode)

	// The real code still works after a failed guess
	token, err := s.service.ExchangeToken("alice", *user.ConfirmationCode)
	s.NoError(err)
	s.NotEmpty(token)
}

func (s *AuthServiceTestSuite) TestExchangeToken_ExpiredCode() {
	user, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)

	expired := time.Now().Add(-time.Minute)
	user.CodeExpiry = &expired
	s.Require().NoError(s.userRepo.Save(user))

	_, err = s.service.ExchangeToken("alice", *user.ConfirmationCode)
	s.ErrorIs(err, ErrInvalidCode)
}

func (s *AuthServiceTestSuite) TestExchangeToken_UnknownUsername() {
	_, err := s.service.ExchangeToken("nobody", "some-code")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *AuthServiceTestSuite) TestResendCode() {
	user, err := s.service.SignUp("alice", "alice@example.com")
	s.Require().NoError(err)
	oldCode := *user.ConfirmationCode

	resent, err := s.service.ResendCode("alice")
	s.Require().NoError(err)
	s.NotEqual(oldCode, *resent.ConfirmationCode)

	// The replaced code no longer exchanges
	_, err = s.service.ExchangeToken("alice", oldCode)
	s.ErrorIs(err, ErrInvalidCode)

	_, err = s.service.ExchangeToken("alice", *resent.ConfirmationCode)
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestResendCode_UnknownUsername() {
	_, err := s.service.ResendCode("nobody")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *AuthServiceTestSuite) TestAuthenticate() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "alice", models.RoleUser)
	token, err := utils.GenerateToken(user, "test-secret", time.Hour)
	s.Require().NoError(err)

	resolved, err := s.service.Authenticate(token)
	s.Require().NoError(err)
	s.Equal(user.ID, resolved.ID)
}

func (s *AuthServiceTestSuite) TestAuthenticate_InactiveUser() {
	user := testutil.CreateTestUser(s.T(), s.testDB.DB, "alice", models.RoleUser)
	token, err := utils.GenerateToken(user, "test-secret", time.Hour)
	s.Require().NoError(err)

	user.IsActive = false
	s.Require().NoError(s.userRepo.Save(user))

	_, err = s.service.Authenticate(token)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *AuthServiceTestSuite) TestAuthenticate_BadToken() {
	_, err := s.service.Authenticate("not.a.token")
	s.Error(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
