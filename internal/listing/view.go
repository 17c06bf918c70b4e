package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"immofds/server/internal/models"
)

// Summary is the card representation used in search results.
type Summary struct {
	Reference            string                 `json:"reference"`
	Title                string                 `json:"title"`
	PropertyType         models.PropertyType    `json:"propertyType"`
	PropertyTypeLabel    string                 `json:"propertyTypeLabel"`
	TransactionType      models.TransactionType `json:"transactionType"`
	TransactionTypeLabel string                 `json:"transactionTypeLabel"`
	Status               models.ListingStatus   `json:"status"`
	StatusLabel          string                 `json:"statusLabel"`
	Price                decimal.Decimal        `json:"price"`
	Surface              *float64               `json:"surface"`
	Bedrooms             *int                   `json:"bedrooms"`
	Bathrooms            *int                   `json:"bathrooms"`
	City                 string                 `json:"city"`
	Province             models.Province        `json:"province"`
	ProvinceLabel        string                 `json:"provinceLabel"`
	EnergyRating         *models.EnergyRating   `json:"energyRating"`
	EnergyRatingLabel    string                 `json:"energyRatingLabel,omitempty"`
	PrimaryImageID       *int64                 `json:"primaryImageId"`
	Latitude             *float64               `json:"latitude"`
	Longitude            *float64               `json:"longitude"`
	CreatedAt            time.Time              `json:"createdAt"`
}

// Detail is the full representation of a single listing.
type Detail struct {
	Summary
	Description      string                `json:"description"`
	Rooms            *int                  `json:"rooms"`
	Floors           *int                  `json:"floors"`
	ConstructionYear *int                  `json:"constructionYear"`
	Garden           bool                  `json:"garden"`
	Garage           bool                  `json:"garage"`
	Terrace          bool                  `json:"terrace"`
	Basement         bool                  `json:"basement"`
	Elevator         bool                  `json:"elevator"`
	Furnished        bool                  `json:"furnished"`
	Street           string                `json:"street"`
	Number           string                `json:"number"`
	PostalCode       string                `json:"postalCode"`
	Images           []models.ListingImage `json:"images"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

func ToSummary(l models.Listing) Summary {
	s := Summary{
		Reference:            l.Reference,
		Title:                l.Title,
		PropertyType:         l.PropertyType,
		PropertyTypeLabel:    l.PropertyType.Label(),
		TransactionType:      l.TransactionType,
		TransactionTypeLabel: l.TransactionType.Label(),
		Status:               l.Status,
		StatusLabel:          l.Status.Label(),
		Price:                l.Price,
		Surface:              l.Surface,
		Bedrooms:             l.Bedrooms,
		Bathrooms:            l.Bathrooms,
		City:                 l.City,
		Province:             l.Province,
		ProvinceLabel:        l.Province.Label(),
		EnergyRating:         l.EnergyRating,
		PrimaryImageID:       l.PrimaryImageID(),
		Latitude:             l.Latitude,
		Longitude:            l.Longitude,
		CreatedAt:            l.CreatedAt,
	}
	if l.EnergyRating != nil {
		s.EnergyRatingLabel = l.EnergyRating.Label()
	}
	return s
}

func ToDetail(l models.Listing) Detail {
	images := l.Images
	if images == nil {
		images = []models.ListingImage{}
	}
	return Detail{
		Summary:          ToSummary(l),
		Description:      l.Description,
		Rooms:            l.Rooms,
		Floors:           l.Floors,
		ConstructionYear: l.ConstructionYear,
		Garden:           l.Garden,
		Garage:           l.Garage,
		Terrace:          l.Terrace,
		Basement:         l.Basement,
		Elevator:         l.Elevator,
		Furnished:        l.Furnished,
		Street:           l.Street,
		Number:           l.Number,
		PostalCode:       l.PostalCode,
		Images:           images,
		UpdatedAt:        l.UpdatedAt,
	}
}
