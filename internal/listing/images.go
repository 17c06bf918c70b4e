package listing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
	"immofds/server/internal/validation"
)

// Upload is an image received from an administrator.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageService manages the ordered images of a listing. At most one image
// per listing is primary.
type ImageService struct {
	repo     Repository
	maxBytes int64
	logger   *logrus.Logger
}

func NewImageService(repo Repository, maxBytes int64, logger *logrus.Logger) *ImageService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImageService{repo: repo, maxBytes: maxBytes, logger: logger}
}

func (s *ImageService) validate(u Upload) error {
	var fields []string
	if !validation.IsAllowedImageType(u.ContentType) {
		fields = append(fields, fmt.Sprintf("file type %q is not allowed, use JPEG, PNG or WebP", u.ContentType))
	}
	if len(u.Data) == 0 {
		fields = append(fields, "file is empty")
	}
	if s.maxBytes > 0 && int64(len(u.Data)) > s.maxBytes {
		fields = append(fields, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}

// Upload appends an image after the existing ones. When primary is set the
// previous primary image loses the flag in the same transaction.
func (s *ImageService) Upload(ctx context.Context, reference string, u Upload, primary bool) (*models.ListingImage, error) {
	if err := s.validate(u); err != nil {
		return nil, err
	}

	var img *models.ListingImage
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		order, err := s.repo.NextImageOrder(ctx, l.ID)
		if err != nil {
			return err
		}
		if primary {
			if err := s.repo.ClearPrimaryImages(ctx, l.ID); err != nil {
				return err
			}
		}
		img = &models.ListingImage{
			ListingID:    l.ID,
			FileName:     sanitizeFileName(u.FileName),
			ContentType:  strings.ToLower(u.ContentType),
			Data:         u.Data,
			DisplayOrder: order,
			Primary:      primary,
		}
		return s.repo.CreateImage(ctx, img)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"image_id":  img.ID,
		"bytes":     len(u.Data),
	}).Info("Image uploaded")
	img.Data = nil
	return img, nil
}

func (s *ImageService) List(ctx context.Context, reference string) ([]models.ListingImage, error) {
	l, err := s.repo.FindListingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, l.ID)
}

// Get returns an image of any listing with its bytes, for back-office
// previews.
func (s *ImageService) Get(ctx context.Context, reference string, imageID int64) (*models.ListingImage, error) {
	l, err := s.repo.FindListingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.repo.FindImageData(ctx, l.ID, imageID)
}

// Reorder assigns display orders following the position of each id in
// imageIDs. Every id must belong to the listing.
func (s *ImageService) Reorder(ctx context.Context, reference string, imageIDs []int64) ([]models.ListingImage, error) {
	if len(imageIDs) == 0 {
		return nil, apperr.Validation("imageIds must not be empty")
	}
	seen := make(map[int64]bool, len(imageIDs))
	for _, id := range imageIDs {
		if seen[id] {
			return nil, apperr.Validation(fmt.Sprintf("image %d is listed twice", id))
		}
		seen[id] = true
	}

	var images []models.ListingImage
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		for i, id := range imageIDs {
			if err := s.repo.SetImageOrder(ctx, l.ID, id, i); err != nil {
				return err
			}
		}
		images, err = s.repo.ListImages(ctx, l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// SetPrimary makes imageID the only primary image of the listing.
func (s *ImageService) SetPrimary(ctx context.Context, reference string, imageID int64) error {
	return s.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		if _, err := s.repo.FindImage(ctx, l.ID, imageID); err != nil {
			return err
		}
		if err := s.repo.ClearPrimaryImages(ctx, l.ID); err != nil {
			return err
		}
		return s.repo.MarkImagePrimary(ctx, l.ID, imageID)
	})
}

func (s *ImageService) Delete(ctx context.Context, reference string, imageID int64) error {
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		return s.repo.DeleteImage(ctx, l.ID, imageID)
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"reference": reference, "image_id": imageID}).Info("Image deleted")
	return nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}
