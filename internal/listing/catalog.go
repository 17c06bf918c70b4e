package listing

import (
	"context"

	"immofds/server/internal/models"
	"immofds/server/internal/search"
)

// MaxMapFeatures caps the number of listings returned by a map query.
const MaxMapFeatures = 500

// PublicCatalog is the read path for anonymous visitors. It only ever sees
// published listings.
type PublicCatalog struct {
	repo Repository
}

func NewPublicCatalog(repo Repository) *PublicCatalog {
	return &PublicCatalog{repo: repo}
}

func (c *PublicCatalog) Search(ctx context.Context, criteria models.SearchCriteria, page models.PageRequest) (models.Page[Summary], error) {
	return searchPage(ctx, c.repo, search.Public(criteria), page)
}

// Get returns a published listing. Any other status reads as not found.
func (c *PublicCatalog) Get(ctx context.Context, reference string) (Detail, error) {
	l, err := c.repo.FindPublishedListing(ctx, reference)
	if err != nil {
		return Detail{}, err
	}
	return ToDetail(*l), nil
}

// Image returns an image of a published listing, bytes included.
func (c *PublicCatalog) Image(ctx context.Context, reference string, imageID int64) (*models.ListingImage, error) {
	return c.repo.FindPublishedImageData(ctx, reference, imageID)
}

// Locate returns published listings that have coordinates, for map display.
func (c *PublicCatalog) Locate(ctx context.Context, criteria models.SearchCriteria) ([]models.Listing, error) {
	f := search.Public(criteria).And(search.HasCoordinates())
	return c.repo.ListListings(ctx, MaxMapFeatures, f.Scopes()...)
}

// AdminCatalog is the back-office read path over every status.
type AdminCatalog struct {
	repo Repository
}

func NewAdminCatalog(repo Repository) *AdminCatalog {
	return &AdminCatalog{repo: repo}
}

func (c *AdminCatalog) Search(ctx context.Context, criteria models.SearchCriteria, page models.PageRequest) (models.Page[Summary], error) {
	return searchPage(ctx, c.repo, search.Admin(criteria), page)
}

func (c *AdminCatalog) Get(ctx context.Context, reference string) (Detail, error) {
	l, err := c.repo.FindListingByReference(ctx, reference)
	if err != nil {
		return Detail{}, err
	}
	return ToDetail(*l), nil
}

// Stats counts listings per status.
func (c *AdminCatalog) Stats(ctx context.Context) (map[models.ListingStatus]int64, error) {
	return c.repo.CountListingsByStatus(ctx)
}

func searchPage(ctx context.Context, repo Repository, f search.Filter, page models.PageRequest) (models.Page[Summary], error) {
	listings, total, err := repo.SearchListings(ctx, page, f.Scopes()...)
	if err != nil {
		return models.Page[Summary]{}, err
	}
	return models.MapPage(models.NewPage(listings, page, total), ToSummary), nil
}
