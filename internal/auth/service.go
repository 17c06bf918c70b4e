// Package auth issues and verifies back-office sessions and manages the
// administrator accounts they belong to.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
	"immofds/server/internal/validation"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id int64) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
	DeleteUser(ctx context.Context, id int64) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) (bool, error)
	DeleteUserRefreshTokens(ctx context.Context, userID int64) error
	PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenResponse is returned by a successful login or refresh.
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *models.User `json:"user"`
}

type Service struct {
	repo       Repository
	tokens     *TokenIssuer
	refreshTTL time.Duration
	now        func() time.Time
	logger     *logrus.Logger
}

func NewService(repo Repository, tokens *TokenIssuer, refreshTTL time.Duration, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{repo: repo, tokens: tokens, refreshTTL: refreshTTL, now: tokens.now, logger: logger}
}

func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Login checks credentials and opens a new session, revoking any previous
// refresh tokens of the user.
func (s *Service) Login(ctx context.Context, in models.LoginInput) (*TokenResponse, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.InvalidToken("invalid email or password")
		}
		return nil, err
	}
	if !CheckPassword(in.Password, user.PasswordHash) {
		s.logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, apperr.InvalidToken("invalid email or password")
	}
	if !user.Active {
		return nil, apperr.InvalidToken("account is disabled")
	}

	var resp *TokenResponse
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteUserRefreshTokens(ctx, user.ID); err != nil {
			return err
		}
		var err error
		resp, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
	return resp, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed. An expired token is removed before the error is returned.
func (s *Service) Refresh(ctx context.Context, in models.RefreshInput) (*TokenResponse, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	rt, err := s.repo.FindRefreshToken(ctx, in.RefreshToken)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.InvalidToken("refresh token not found")
		}
		return nil, err
	}

	if rt.IsExpired(s.now()) {
		if _, err := s.repo.DeleteRefreshToken(ctx, rt.Token); err != nil {
			return nil, err
		}
		return nil, apperr.InvalidToken("refresh token expired")
	}

	var resp *TokenResponse
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		existed, err := s.repo.DeleteRefreshToken(ctx, rt.Token)
		if err != nil {
			return err
		}
		if !existed {
			return apperr.InvalidToken("refresh token not found")
		}
		user, err := s.repo.FindUser(ctx, rt.UserID)
		if err != nil {
			return err
		}
		if !user.Active {
			return apperr.InvalidToken("account is disabled")
		}
		resp, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, in models.RefreshInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	_, err := s.repo.DeleteRefreshToken(ctx, in.RefreshToken)
	return err
}

// PurgeExpired removes stale refresh tokens. It runs opportunistically at
// startup rather than on a timer.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeExpiredRefreshTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Info("Purged expired refresh tokens")
	}
	return n, nil
}

func (s *Service) issue(ctx context.Context, user *models.User) (*TokenResponse, error) {
	access, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	rt := &models.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: rt.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         user,
	}, nil
}
