package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a property offered for sale or rent. ID is internal only,
// callers address listings by Reference.
type Listing struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	Reference        string          `gorm:"size:20;not null;uniqueIndex" json:"reference"`
	Title            string          `gorm:"not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	PropertyType     PropertyType    `gorm:"size:30;not null;index" json:"propertyType"`
	TransactionType  TransactionType `gorm:"size:10;not null;index" json:"transactionType"`
	Status           ListingStatus   `gorm:"size:20;not null;index" json:"status"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Surface          *float64        `json:"surface"`
	Bedrooms         *int            `json:"bedrooms"`
	Bathrooms        *int            `json:"bathrooms"`
	Rooms            *int            `json:"rooms"`
	Floors           *int            `json:"floors"`
	ConstructionYear *int            `json:"constructionYear"`
	EnergyRating     *EnergyRating   `gorm:"size:20" json:"energyRating"`

	Garden    bool `gorm:"not null;default:false" json:"garden"`
	Garage    bool `gorm:"not null;default:false" json:"garage"`
	Terrace   bool `gorm:"not null;default:false" json:"terrace"`
	Basement  bool `gorm:"not null;default:false" json:"basement"`
	Elevator  bool `gorm:"not null;default:false" json:"elevator"`
	Furnished bool `gorm:"not null;default:false" json:"furnished"`

	Street     string   `gorm:"not null" json:"street"`
	Number     string   `gorm:"size:10" json:"number"`
	PostalCode string   `gorm:"size:10;not null" json:"postalCode"`
	City       string   `gorm:"not null;index" json:"city"`
	Province   Province `gorm:"size:30;not null;index" json:"province"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`

	Images []ListingImage `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// ListingImage is an image attached to a listing. Data holds the raw bytes
// and is only loaded when serving the image itself.
type ListingImage struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID    int64     `gorm:"not null;index" json:"-"`
	FileName     string    `gorm:"not null" json:"fileName"`
	ContentType  string    `gorm:"size:50;not null" json:"contentType"`
	Data         []byte    `gorm:"type:blob" json:"-"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	Primary      bool      `gorm:"column:is_primary;not null;default:false" json:"isPrimary"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// PrimaryImageID returns the primary image, falling back to the first image
// by display order. Images must already be sorted by display order.
func (l *Listing) PrimaryImageID() *int64 {
	for _, img := range l.Images {
		if img.Primary {
			id := img.ID
			return &id
		}
	}
	if len(l.Images) > 0 {
		id := l.Images[0].ID
		return &id
	}
	return nil
}

// ListingInput carries the caller-editable fields of a listing. Create and
// update both replace every field listed here.
type ListingInput struct {
	Title            string          `json:"title" validate:"required,max=255"`
	Description      string          `json:"description"`
	PropertyType     PropertyType    `json:"propertyType" validate:"required,enum"`
	TransactionType  TransactionType `json:"transactionType" validate:"required,enum"`
	Price            decimal.Decimal `json:"price" validate:"required,gt=0"`
	Surface          *float64        `json:"surface" validate:"omitempty,gte=0"`
	Bedrooms         *int            `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms        *int            `json:"bathrooms" validate:"omitempty,gte=0"`
	Rooms            *int            `json:"rooms" validate:"omitempty,gte=0"`
	Floors           *int            `json:"floors" validate:"omitempty,gte=0"`
	ConstructionYear *int            `json:"constructionYear" validate:"omitempty,gte=1800,lte=2100"`
	EnergyRating     *EnergyRating   `json:"energyRating" validate:"omitempty,enum"`

	Garden    bool `json:"garden"`
	Garage    bool `json:"garage"`
	Terrace   bool `json:"terrace"`
	Basement  bool `json:"basement"`
	Elevator  bool `json:"elevator"`
	Furnished bool `json:"furnished"`

	Street     string   `json:"street" validate:"required,max=255"`
	Number     string   `json:"number" validate:"max=10"`
	PostalCode string   `json:"postalCode" validate:"required,be_postal"`
	City       string   `json:"city" validate:"required,max=100"`
	Province   Province `json:"province" validate:"required,enum"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// ApplyTo overwrites the editable fields of l. Status, reference, images and
// timestamps are left untouched.
func (in *ListingInput) ApplyTo(l *Listing) {
	l.Title = in.Title
	l.Description = in.Description
	l.PropertyType = in.PropertyType
	l.TransactionType = in.TransactionType
	l.Price = in.Price
	l.Surface = in.Surface
	l.Bedrooms = in.Bedrooms
	l.Bathrooms = in.Bathrooms
	l.Rooms = in.Rooms
	l.Floors = in.Floors
	l.ConstructionYear = in.ConstructionYear
	l.EnergyRating = in.EnergyRating
	l.Garden = in.Garden
	l.Garage = in.Garage
	l.Terrace = in.Terrace
	l.Basement = in.Basement
	l.Elevator = in.Elevator
	l.Furnished = in.Furnished
	l.Street = in.Street
	l.Number = in.Number
	l.PostalCode = in.PostalCode
	l.City = in.City
	l.Province = in.Province
	l.Latitude = in.Latitude
	l.Longitude = in.Longitude
}
