package database

import (
	"context"
	"fmt"
	"immofds/server/internal/models"

	"gorm.io/gorm"
)

func (d *Database) ListImages(ctx context.Context, listingID int64) ([]models.ListingImage, error) {
	images := []models.ListingImage{}
	err := d.conn(ctx).
		Select(imageMetaColumns).
		Where("listing_id = ?", listingID).
		Order("display_order ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// FindImage returns the image metadata when it belongs to the listing.
func (d *Database) FindImage(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error) {
	var img models.ListingImage
	err := d.conn(ctx).
		Select(imageMetaColumns).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		First(&img).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("image %d", imageID))
	}
	return &img, nil
}

// FindImageData loads an image including its bytes.
func (d *Database) FindImageData(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error) {
	var img models.ListingImage
	err := d.conn(ctx).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		First(&img).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("image %d", imageID))
	}
	return &img, nil
}

// FindPublishedImageData loads an image only if its listing has the given
// reference and is published.
func (d *Database) FindPublishedImageData(ctx context.Context, reference string, imageID int64) (*models.ListingImage, error) {
	var img models.ListingImage
	err := d.conn(ctx).
		Select("listing_images.*").
		Joins("JOIN listings ON listings.id = listing_images.listing_id").
		Where("listing_images.id = ? AND listings.reference = ? AND listings.status = ?", imageID, reference, models.StatusPublished).
		First(&img).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("image %d", imageID))
	}
	return &img, nil
}

// NextImageOrder returns the display order that appends after the last
// image, 0 for a listing without images.
func (d *Database) NextImageOrder(ctx context.Context, listingID int64) (int, error) {
	var next int
	err := d.conn(ctx).Model(&models.ListingImage{}).
		Select("COALESCE(MAX(display_order), -1) + 1").
		Where("listing_id = ?", listingID).
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read image order: %w", err)
	}
	return next, nil
}

func (d *Database) CreateImage(ctx context.Context, img *models.ListingImage) error {
	err := d.conn(ctx).Create(img).Error
	return translate(err, "image")
}

func (d *Database) ClearPrimaryImages(ctx context.Context, listingID int64) error {
	err := d.conn(ctx).Model(&models.ListingImage{}).
		Where("listing_id = ? AND is_primary = ?", listingID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary image: %w", err)
	}
	return nil
}

func (d *Database) MarkImagePrimary(ctx context.Context, listingID, imageID int64) error {
	res := d.conn(ctx).Model(&models.ListingImage{}).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		Update("is_primary", true)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("image %d", imageID))
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("image %d", imageID))
	}
	return nil
}

func (d *Database) SetImageOrder(ctx context.Context, listingID, imageID int64, order int) error {
	res := d.conn(ctx).Model(&models.ListingImage{}).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		Update("display_order", order)
	if res.Error != nil {
		return fmt.Errorf("failed to reorder image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("image %d", imageID))
	}
	return nil
}

func (d *Database) DeleteImage(ctx context.Context, listingID, imageID int64) error {
	res := d.conn(ctx).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		Delete(&models.ListingImage{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("image %d", imageID))
	}
	return nil
}
