package database

import (
	"context"
	"fmt"
	"immofds/server/internal/models"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// imageMetaColumns excludes the blob so listing reads stay light.
var imageMetaColumns = []string{"id", "listing_id", "file_name", "content_type", "display_order", "is_primary", "created_at"}

var listingSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"price":     "price",
	"surface":   "surface",
	"bedrooms":  "bedrooms",
	"title":     "title",
	"reference": "reference",
}

func preloadImageMeta(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(tx *gorm.DB) *gorm.DB {
		return tx.Select(imageMetaColumns).Order("display_order ASC, id ASC")
	})
}

// orderBy applies a whitelisted sort with the id as tie breaker. Unknown
// columns fall back to fallback, unknown directions to descending.
func orderBy(db *gorm.DB, columns map[string]string, fallback string, sortBy, sortDir string) *gorm.DB {
	col, ok := columns[sortBy]
	if !ok {
		col = fallback
	}
	desc := !strings.EqualFold(sortDir, "asc")
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
}

func (d *Database) FindListingByReference(ctx context.Context, reference string) (*models.Listing, error) {
	var listing models.Listing
	err := preloadImageMeta(d.conn(ctx)).
		Where("reference = ?", reference).
		First(&listing).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("listing %s", reference))
	}
	return &listing, nil
}

// FindPublishedListing resolves a reference only when the listing is
// currently published; any other status reads as not found.
func (d *Database) FindPublishedListing(ctx context.Context, reference string) (*models.Listing, error) {
	var listing models.Listing
	err := preloadImageMeta(d.conn(ctx)).
		Where("reference = ? AND status = ?", reference, models.StatusPublished).
		First(&listing).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("listing %s", reference))
	}
	return &listing, nil
}

// MaxListingID returns the highest listing id, or 0 for an empty table.
func (d *Database) MaxListingID(ctx context.Context) (int64, error) {
	var maxID int64
	err := d.conn(ctx).Model(&models.Listing{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max listing id: %w", err)
	}
	return maxID, nil
}

func (d *Database) CreateListing(ctx context.Context, listing *models.Listing) error {
	err := d.conn(ctx).Omit(clause.Associations).Create(listing).Error
	return translate(err, fmt.Sprintf("listing %s", listing.Reference))
}

// SaveListing writes every column of an existing listing. Images are not
// touched.
func (d *Database) SaveListing(ctx context.Context, listing *models.Listing) error {
	err := d.conn(ctx).Omit(clause.Associations).Save(listing).Error
	return translate(err, fmt.Sprintf("listing %s", listing.Reference))
}

// CompareAndSetListingStatus moves a listing to `to` only if it is still in
// `from`. It reports whether a row was changed.
func (d *Database) CompareAndSetListingStatus(ctx context.Context, id int64, from, to models.ListingStatus) (bool, error) {
	res := d.conn(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, translate(res.Error, fmt.Sprintf("status of listing %d", id))
	}
	return res.RowsAffected == 1, nil
}

// SearchListings returns one page of listings matching every scope together
// with the total number of matches.
func (d *Database) SearchListings(ctx context.Context, page models.PageRequest, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Listing, int64, error) {
	var total int64
	if err := d.conn(ctx).Model(&models.Listing{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	listings := []models.Listing{}
	if total == 0 {
		return listings, 0, nil
	}

	q := preloadImageMeta(d.conn(ctx)).Scopes(scopes...)
	q = orderBy(q, listingSortColumns, "created_at", page.SortBy, page.SortDir)
	if err := q.Limit(page.Size).Offset(page.Offset()).Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, total, nil
}

// ListListings returns up to limit matching listings, newest first, without
// images.
func (d *Database) ListListings(ctx context.Context, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Listing, error) {
	listings := []models.Listing{}
	err := d.conn(ctx).Scopes(scopes...).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// CountListingsByStatus returns the number of listings in each status.
func (d *Database) CountListingsByStatus(ctx context.Context) (map[models.ListingStatus]int64, error) {
	var rows []struct {
		Status models.ListingStatus
		Count  int64
	}
	err := d.conn(ctx).Model(&models.Listing{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	counts := make(map[models.ListingStatus]int64, len(models.ListingStatuses))
	for _, s := range models.ListingStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
