package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
)

func jpeg(name string) Upload {
	return Upload{FileName: name, ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}
}

func primaryCount(images []models.ListingImage) int {
	n := 0
	for _, img := range images {
		if img.Primary {
			n++
		}
	}
	return n
}

func TestImageUploadOrderAndPrimary(t *testing.T) {
	m, db := newTestManager(t)
	logger, _ := test.NewNullLogger()
	images := NewImageService(db, 1024, logger)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	a, err := images.Upload(ctx, l.Reference, jpeg("facade.jpg"), true)
	require.NoError(t, err)
	b, err := images.Upload(ctx, l.Reference, jpeg("salon.jpg"), false)
	require.NoError(t, err)
	c, err := images.Upload(ctx, l.Reference, jpeg("jardin.jpg"), true)
	require.NoError(t, err)

	assert.Equal(t, 0, a.DisplayOrder)
	assert.Equal(t, 1, b.DisplayOrder)
	assert.Equal(t, 2, c.DisplayOrder)
	assert.Nil(t, c.Data)

	list, err := images.List(ctx, l.Reference)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, primaryCount(list))
	assert.True(t, list[2].Primary)

	require.NoError(t, images.SetPrimary(ctx, l.Reference, b.ID))
	list, err = images.List(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, 1, primaryCount(list))
	assert.True(t, list[1].Primary)

	detail, err := NewAdminCatalog(db).Get(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.ID, *detail.PrimaryImageID)
}

func TestImageUploadValidation(t *testing.T) {
	m, db := newTestManager(t)
	images := NewImageService(db, 4, nil)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	tests := []struct {
		name   string
		upload Upload
	}{
		{"gif", Upload{FileName: "a.gif", ContentType: "image/gif", Data: []byte{1}}},
		{"empty", Upload{FileName: "a.png", ContentType: "image/png"}},
		{"too large", Upload{FileName: "a.png", ContentType: "image/png", Data: []byte{1, 2, 3, 4, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := images.Upload(ctx, l.Reference, tt.upload, false)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}

	_, err = images.Upload(ctx, "IMM-2026-00404", jpeg("x.jpg"), false)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestImageReorder(t *testing.T) {
	m, db := newTestManager(t)
	images := NewImageService(db, 0, nil)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	other, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	a, err := images.Upload(ctx, l.Reference, jpeg("a.jpg"), false)
	require.NoError(t, err)
	b, err := images.Upload(ctx, l.Reference, jpeg("b.jpg"), false)
	require.NoError(t, err)
	foreign, err := images.Upload(ctx, other.Reference, jpeg("c.jpg"), false)
	require.NoError(t, err)

	list, err := images.Reorder(ctx, l.Reference, []int64{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	_, err = images.Reorder(ctx, l.Reference, []int64{a.ID, foreign.ID})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, err = images.List(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.ID, list[0].ID, "failed reorder is rolled back")

	_, err = images.Reorder(ctx, l.Reference, []int64{a.ID, a.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPublicImageRequiresPublishedListing(t *testing.T) {
	m, db := newTestManager(t)
	images := NewImageService(db, 0, nil)
	public := NewPublicCatalog(db)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	img, err := images.Upload(ctx, l.Reference, jpeg("a.jpg"), true)
	require.NoError(t, err)

	_, err = public.Image(ctx, l.Reference, img.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.NoError(t, err)

	got, err := public.Image(ctx, l.Reference, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", got.ContentType)
	assert.NotEmpty(t, got.Data)
}

func TestImageDelete(t *testing.T) {
	m, db := newTestManager(t)
	images := NewImageService(db, 0, nil)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	img, err := images.Upload(ctx, l.Reference, jpeg("a.jpg"), false)
	require.NoError(t, err)

	require.NoError(t, images.Delete(ctx, l.Reference, img.ID))
	err = images.Delete(ctx, l.Reference, img.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "photo.jpg", sanitizeFileName("../../etc/photo.jpg"))
	assert.Equal(t, "photo.jpg", sanitizeFileName(`C:\Users\agent\photo.jpg`))
	assert.Equal(t, "a_b.jpg", sanitizeFileName(`a"b.jpg`))
	assert.Equal(t, "image", sanitizeFileName(""))
}
