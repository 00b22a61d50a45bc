package service

import (
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"go.uber.org/zap"
)

// CreateUserParams is the admin write shape for user records.
type CreateUserParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      models.Role
}

// UpdateUserParams carries partial updates; nil fields stay untouched.
// Role is only applied when the caller has admin authority.
type UpdateUserParams struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

// UserService covers the admin user endpoints and the "me" profile.
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List() ([]*models.User, error) {
	return s.userRepo.List()
}

func (s *UserService) Get(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create registers a user directly, without the confirmation-code flow.
// Admin-created accounts are active immediately.
func (s *UserService) Create(params CreateUserParams) (*models.User, error) {
	if err := s.checkCollisions(0, &params.Username, &params.Email); err != nil {
		return nil, err
	}

	role := params.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:  params.Username,
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Bio:       params.Bio,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("username", params.Username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User created by admin",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Update applies a partial edit. allowRole gates the role field: for
// non-admin self-edits it is read-only and silently ignored.
func (s *UserService) Update(user *models.User, params UpdateUserParams, allowRole bool) (*models.User, error) {
	if err := s.checkCollisions(user.ID, params.Username, params.Email); err != nil {
		return nil, err
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Role != nil && allowRole {
		user.Role = *params.Role
	}

	if err := s.userRepo.Save(user); err != nil {
		logger.Log.Error("Failed to update user",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User updated", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *UserService) Delete(username string) error {
	user, err := s.Get(username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(user); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User deleted", zap.String("username", username))
	return nil
}

// checkCollisions rejects a username or email already registered to a
// different user record.
func (s *UserService) checkCollisions(selfID uint, username, email *string) error {
	if username != nil {
		existing, err := s.userRepo.GetByUsername(*username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrUsernameTaken
		}
	}
	if email != nil {
		existing, err := s.userRepo.GetByEmail(*email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrEmailTaken
		}
	}
	return nil
}
