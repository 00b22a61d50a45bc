package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/reviewhub/reviewhub/internal/mailer"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/internal/utils"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidCode   = errors.New("invalid or expired confirmation code")
	ErrMailDelivery  = errors.New("failed to send confirmation email")
)

// AuthService implements the two-step capability exchange: signup issues a
// time-limited confirmation code by email, and a valid code is later traded
// for a signed session token, activating the account.
type AuthService struct {
	userRepo  *repository.UserRepository
	mailer    mailer.Mailer
	jwtSecret string
	jwtExpiry time.Duration
	codeTTL   time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, m mailer.Mailer, jwtSecret string, jwtExpiry, codeTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    m,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		codeTTL:   codeTTL,
	}
}

// SignUp registers a user in the code-pending state and emails the code.
// Submitting the exact (username, email) pair of an existing registration
// reissues a fresh code instead of failing; a collision where either half
// belongs to a different pair is rejected.
func (s *AuthService) SignUp(username, email string) (*models.User, error) {
	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	byUsername, err := s.userRepo.GetByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	byEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	if byUsername != nil && byUsername.Email != email {
		logger.Log.Warn("Username taken by another email",
			zap.String("username", username),
		)
		return nil, ErrUsernameTaken
	}
	if byEmail != nil && byEmail.Username != username {
		logger.Log.Warn("Email taken by another username",
			zap.String("email", email),
		)
		return nil, ErrEmailTaken
	}

	user := byUsername
	if user == nil {
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
			IsActive: false,
		}
		if err := s.userRepo.Create(user); err != nil {
			logger.Log.Error("Failed to create user",
				zap.String("username", username),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return user, s.issueCode(user)
}

// ResendCode regenerates the confirmation code for an existing user,
// invalidating any prior code.
func (s *AuthService) ResendCode(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Resend requested for unknown username",
			zap.String("username", username),
		)
		return nil, ErrUserNotFound
	}

	return user, s.issueCode(user)
}

// issueCode overwrites any unconsumed code, persists, then sends the email.
// A delivery failure is surfaced but does not undo the persisted code; the
// caller can retry via resend.
func (s *AuthService) issueCode(user *models.User) error {
	user.IssueCode(utils.GenerateConfirmationCode(), s.codeTTL)

	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to persist confirmation code",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}

	body := fmt.Sprintf("Hi %s!\nConfirmation code: %s", user.Username, *user.ConfirmationCode)
	if err := s.mailer.Send(user.Email, "Activation", body); err != nil {
		logger.Log.Warn("Activation email delivery failed",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return ErrMailDelivery
	}

	logger.Log.Info("Confirmation code issued",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Time("expiry", *user.CodeExpiry),
	)
	return nil
}

// ExchangeToken validates a submitted code, activates the account and mints
// a signed session token. A wrong or expired code leaves the stored code in
// place so a legitimate retry is possible; a consumed code is gone for good.
func (s *AuthService) ExchangeToken(username, code string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if user == nil {
		logger.Log.Warn("Token exchange for unknown username",
			zap.String("username", username),
		)
		return "", ErrUserNotFound
	}

	if !user.CodeMatches(code, time.Now()) {
		logger.Log.Warn("Token exchange with wrong or expired code",
			zap.Uint("user_id", user.ID),
		)
		return "", ErrInvalidCode
	}

	user.IsActive = true
	user.ClearCode()
	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to activate user",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logger.Log.Error("Failed to generate token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Info("User activated",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return token, nil
}

// Authenticate resolves a verified token's subject to a live user record.
// Tokens referencing deleted or inactive users are rejected.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := utils.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}

	return user, nil
}
