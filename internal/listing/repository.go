package listing

import (
	"context"

	"gorm.io/gorm"

	"immofds/server/internal/models"
)

// Repository is the persistence the listing services need. Transaction runs
// fn atomically; calls made with the context it hands to fn take part in the
// same transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	FindListingByReference(ctx context.Context, reference string) (*models.Listing, error)
	FindPublishedListing(ctx context.Context, reference string) (*models.Listing, error)
	MaxListingID(ctx context.Context) (int64, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	SaveListing(ctx context.Context, listing *models.Listing) error
	CompareAndSetListingStatus(ctx context.Context, id int64, from, to models.ListingStatus) (bool, error)
	SearchListings(ctx context.Context, page models.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Listing, int64, error)
	ListListings(ctx context.Context, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Listing, error)
	CountListingsByStatus(ctx context.Context) (map[models.ListingStatus]int64, error)

	ListImages(ctx context.Context, listingID int64) ([]models.ListingImage, error)
	FindImage(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error)
	FindImageData(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error)
	FindPublishedImageData(ctx context.Context, reference string, imageID int64) (*models.ListingImage, error)
	NextImageOrder(ctx context.Context, listingID int64) (int, error)
	CreateImage(ctx context.Context, img *models.ListingImage) error
	ClearPrimaryImages(ctx context.Context, listingID int64) error
	MarkImagePrimary(ctx context.Context, listingID, imageID int64) error
	SetImageOrder(ctx context.Context, listingID, imageID int64, order int) error
	DeleteImage(ctx context.Context, listingID, imageID int64) error
}
