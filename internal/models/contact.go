package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContactRequest is a lead submitted through one of the public forms.
type ContactRequest struct {
	ID                int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Type              ContactType         `gorm:"size:30;not null;index" json:"type"`
	Status            ContactStatus       `gorm:"size:20;not null;index" json:"status"`
	FirstName         string              `gorm:"not null" json:"firstName"`
	LastName          string              `gorm:"not null" json:"lastName"`
	Email             string              `gorm:"not null" json:"email"`
	Phone             string              `gorm:"size:30" json:"phone"`
	Message           string              `gorm:"type:text" json:"message"`
	PropertyReference string              `gorm:"size:20" json:"propertyReference,omitempty"`
	PropertyAddress   string              `json:"propertyAddress,omitempty"`
	PropertyType      *PropertyType       `gorm:"size:30" json:"propertyType,omitempty"`
	EstimatedPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"estimatedPrice"`
	Notes             []ContactNote       `gorm:"foreignKey:ContactRequestID;constraint:OnDelete:CASCADE" json:"notes"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// ContactNote is an internal remark left by an administrator on a lead.
type ContactNote struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ContactRequestID int64     `gorm:"not null;index" json:"-"`
	AuthorID         *int64    `gorm:"index" json:"authorId"`
	Author           *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
	AuthorName       string    `gorm:"-" json:"authorName,omitempty"`
	Content          string    `gorm:"type:text;not null" json:"content"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ContactFilter restricts a contact listing; nil fields mean no constraint.
type ContactFilter struct {
	Status *ContactStatus
	Type   *ContactType
}

// GeneralContactInput is the payload of the general contact form.
type GeneralContactInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=30"`
	Message   string `json:"message" validate:"required,max=5000"`
}

// SellYourHomeInput is the payload of the owner valuation form.
type SellYourHomeInput struct {
	FirstName       string           `json:"firstName" validate:"required,max=100"`
	LastName        string           `json:"lastName" validate:"required,max=100"`
	Email           string           `json:"email" validate:"required,email"`
	Phone           string           `json:"phone" validate:"max=30"`
	Message         string           `json:"message" validate:"max=5000"`
	PropertyAddress string           `json:"propertyAddress" validate:"required,max=255"`
	PropertyType    PropertyType     `json:"propertyType" validate:"required,enum"`
	EstimatedPrice  *decimal.Decimal `json:"estimatedPrice" validate:"omitempty,gt=0"`
}

// VisitRequestInput is the payload of the visit request form.
type VisitRequestInput struct {
	FirstName         string `json:"firstName" validate:"required,max=100"`
	LastName          string `json:"lastName" validate:"required,max=100"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"max=30"`
	Message           string `json:"message" validate:"max=5000"`
	PropertyReference string `json:"propertyReference" validate:"required,max=20"`
}
