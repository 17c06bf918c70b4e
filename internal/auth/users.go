package auth

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
	"immofds/server/internal/validation"
)

// UserService manages administrator accounts.
type UserService struct {
	repo   Repository
	logger *logrus.Logger
}

func NewUserService(repo Repository, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context, page models.PageRequest) (models.Page[models.User], error) {
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindUser(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in models.CreateUserInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		Active:       true,
	}
	if err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.checkEmailFree(ctx, user.Email, 0); err != nil {
			return err
		}
		return s.repo.CreateUser(ctx, user)
	}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User created")
	return user, nil
}

// Update replaces the profile of an account. Disabling an account or
// changing its password revokes its sessions.
func (s *UserService) Update(ctx context.Context, id int64, in models.UpdateUserInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.repo.FindUser(ctx, id)
		if err != nil {
			return err
		}

		email := normalizeEmail(in.Email)
		if err := s.checkEmailFree(ctx, email, id); err != nil {
			return err
		}

		revoke := user.Active && !in.Active
		user.Email = email
		user.FirstName = strings.TrimSpace(in.FirstName)
		user.LastName = strings.TrimSpace(in.LastName)
		user.Role = in.Role
		user.Active = in.Active
		if in.Password != "" {
			hash, err := HashPassword(in.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			revoke = true
		}

		if err := s.repo.SaveUser(ctx, user); err != nil {
			return err
		}
		if revoke {
			return s.repo.DeleteUserRefreshTokens(ctx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", id).Info("User updated")
	return user, nil
}

// Delete removes an account. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, requesterID int64) error {
	if id == requesterID {
		return apperr.InvalidOperation("you cannot delete your own account")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}

// EnsureBootstrapAdmin creates a SUPER_ADMIN account when no user exists yet.
// It returns true when an account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := s.Create(ctx, models.CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: "Super",
		LastName:  "Admin",
		Role:      models.RoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}
	s.logger.WithField("email", user.Email).Warn("Bootstrap super administrator created, change its password")
	return true, nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperr.Duplicate("user with email %s already exists", email)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
