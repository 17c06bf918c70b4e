package models

import "time"

// User is a back-office account.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"not null" json:"firstName"`
	LastName     string    `gorm:"not null" json:"lastName"`
	Role         UserRole  `gorm:"size:20;not null" json:"role"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RefreshToken is an opaque, single-use session token.
type RefreshToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"size:64;not null;uniqueIndex"`
	UserID    int64     `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateUserInput is used by super administrators to add an account.
type CreateUserInput struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=72"`
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName" validate:"required,max=100"`
	Role      UserRole `json:"role" validate:"required,enum"`
}

// UpdateUserInput replaces the profile of an account. An empty Password
// keeps the current one.
type UpdateUserInput struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName" validate:"required,max=100"`
	Role      UserRole `json:"role" validate:"required,enum"`
	Active    bool     `json:"active"`
}
