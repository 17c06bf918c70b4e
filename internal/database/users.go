package database

import (
	"context"
	"fmt"
	"immofds/server/internal/models"
	"time"

	"gorm.io/gorm"
)

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"email":     "email",
	"lastName":  "last_name",
	"role":      "role",
}

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	err := d.conn(ctx).Create(user).Error
	return translate(err, fmt.Sprintf("user with email %s", user.Email))
}

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	err := d.conn(ctx).Save(user).Error
	return translate(err, fmt.Sprintf("user with email %s", user.Email))
}

func (d *Database) FindUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := d.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.conn(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("user %s", email))
	}
	return &user, nil
}

func (d *Database) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	var total int64
	if err := d.conn(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	users := []models.User{}
	q := orderBy(d.conn(ctx), userSortColumns, "created_at", page.SortBy, page.SortDir)
	if err := q.Limit(page.Size).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (d *Database) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := d.conn(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

func (d *Database) DeleteUser(ctx context.Context, id int64) error {
	res := d.conn(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("user %d", id))
	}
	return nil
}

func (d *Database) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	err := d.conn(ctx).Omit("User").Create(token).Error
	return translate(err, "refresh token")
}

func (d *Database) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := d.conn(ctx).Where("token = ?", token).First(&rt).Error
	if err != nil {
		return nil, translate(err, "refresh token")
	}
	return &rt, nil
}

// DeleteRefreshToken removes a token and reports whether it existed.
func (d *Database) DeleteRefreshToken(ctx context.Context, token string) (bool, error) {
	res := d.conn(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) DeleteUserRefreshTokens(ctx context.Context, userID int64) error {
	err := d.conn(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return nil
}

// PurgeExpiredRefreshTokens deletes every token that expired before now.
func (d *Database) PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res := d.conn(ctx).Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
