package listing

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"immofds/server/internal/apperr"
	"immofds/server/internal/database"
	"immofds/server/internal/models"
)

var fixedClock = func() time.Time { return time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC) }

func setupTestDB(t *testing.T) *database.Database {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(db))
	return database.Wrap(db)
}

func newTestManager(t *testing.T) (*Manager, *database.Database) {
	db := setupTestDB(t)
	logger, _ := test.NewNullLogger()
	return NewManager(db, NewReferenceGenerator(db, fixedClock), logger), db
}

func sampleInput() models.ListingInput {
	bedrooms := 3
	surface := 145.5
	rating := models.EnergyB
	return models.ListingInput{
		Title:           "Maison de maître rénovée",
		Description:     "Belle maison avec jardin",
		PropertyType:    models.PropertyHouse,
		TransactionType: models.TransactionSale,
		Price:           decimal.RequireFromString("485000.00"),
		Surface:         &surface,
		Bedrooms:        &bedrooms,
		EnergyRating:    &rating,
		Garden:          true,
		Street:          "Rue Royale",
		Number:          "12",
		PostalCode:      "1000",
		City:            "Bruxelles",
		Province:        models.ProvinceBrussels,
	}
}

type mockMaxID struct {
	mock.Mock
}

func (m *mockMaxID) MaxListingID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestReferenceGeneratorFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^IMM-\d{4}-\d{5}$`)

	tests := []struct {
		maxID int64
		want  string
	}{
		{0, "IMM-2026-00001"},
		{41, "IMM-2026-00042"},
		{99998, "IMM-2026-99999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			repo := &mockMaxID{}
			repo.On("MaxListingID", mock.Anything).Return(tt.maxID, nil).Once()

			ref, err := NewReferenceGenerator(repo, fixedClock).Next(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
			assert.Regexp(t, pattern, ref)
			repo.AssertExpectations(t)
		})
	}
}

func TestReferenceGeneratorError(t *testing.T) {
	repo := &mockMaxID{}
	repo.On("MaxListingID", mock.Anything).Return(int64(0), errors.New("disk I/O error"))

	_, err := NewReferenceGenerator(repo, fixedClock).Next(context.Background())
	assert.ErrorContains(t, err, "disk I/O error")
}

func TestCreateForcesDraftAndReference(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, first.Status)
	assert.Equal(t, "IMM-2026-00001", first.Reference)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "IMM-2026-00002", second.Reference)
}

func TestCreateValidation(t *testing.T) {
	m, db := newTestManager(t)
	ctx := context.Background()

	in := sampleInput()
	in.Title = ""
	in.Price = decimal.NewFromInt(-1)

	_, err := m.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Len(t, apperr.FieldsOf(err), 2)

	maxID, err := db.MaxListingID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), maxID, "nothing persisted")
}

func TestListingLifecycleThroughViews(t *testing.T) {
	m, db := newTestManager(t)
	public := NewPublicCatalog(db)
	admin := NewAdminCatalog(db)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	_, err = public.Get(ctx, l.Reference)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "drafts are invisible to the public")

	detail, err := admin.Get(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, detail.Status)

	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.NoError(t, err)

	detail, err = public.Get(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, "Publié", detail.StatusLabel)
	assert.True(t, detail.Price.Equal(decimal.RequireFromString("485000")))

	page, err := public.Search(ctx, models.SearchCriteria{}, models.PageRequest{Size: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	sold, err := m.ChangeStatus(ctx, l.Reference, models.StatusSold)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, sold.Status)

	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidOperation))
	assert.Contains(t, err.Error(), "Vendu")
	assert.Contains(t, err.Error(), "Publié")

	got, err := m.FindByReference(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, got.Status, "rejected transition leaves status untouched")

	page, err = public.Search(ctx, models.SearchCriteria{}, models.PageRequest{Size: 12})
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements)
}

func TestChangeStatusUnknownReference(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.ChangeStatus(context.Background(), "IMM-2026-00404", models.StatusPublished)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateKeepsStatusAndReference(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.NoError(t, err)

	in := sampleInput()
	in.Title = "Maison de maître"
	in.Garden = false
	in.Bedrooms = nil
	updated, err := m.Update(ctx, l.Reference, in)
	require.NoError(t, err)

	assert.Equal(t, l.Reference, updated.Reference)
	assert.Equal(t, models.StatusPublished, updated.Status)
	assert.Equal(t, "Maison de maître", updated.Title)
	assert.False(t, updated.Garden)
	assert.Nil(t, updated.Bedrooms)
	assert.WithinDuration(t, l.CreatedAt, updated.CreatedAt, time.Second)
}

func TestSoftDeleteArchives(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	require.NoError(t, m.SoftDelete(ctx, l.Reference))
	require.NoError(t, m.SoftDelete(ctx, l.Reference))

	got, err := m.FindByReference(ctx, l.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)

	restored, err := m.ChangeStatus(ctx, l.Reference, models.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, restored.Status)
}

// racingRepo simulates another request changing the status between the read
// and the write.
type racingRepo struct {
	*database.Database
}

func (r racingRepo) CompareAndSetListingStatus(ctx context.Context, id int64, from, to models.ListingStatus) (bool, error) {
	return false, nil
}

func TestChangeStatusLostRace(t *testing.T) {
	db := setupTestDB(t)
	logger, hook := test.NewNullLogger()
	m := NewManager(racingRepo{db}, NewReferenceGenerator(db, fixedClock), logger)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)

	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidOperation))
	assert.Contains(t, err.Error(), "concurrently")

	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, "Listing status changed", e.Message)
	}
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ListingCreated() {
	m.Called()
}

func (m *mockObserver) StatusChanged(from, to models.ListingStatus) {
	m.Called(from, to)
}

func TestObserverSeesCommittedEvents(t *testing.T) {
	m, _ := newTestManager(t)
	obs := &mockObserver{}
	obs.On("ListingCreated").Once()
	obs.On("StatusChanged", models.StatusDraft, models.StatusPublished).Once()
	obs.On("StatusChanged", models.StatusPublished, models.StatusArchived).Once()
	m.WithObserver(obs)
	ctx := context.Background()

	l, err := m.Create(ctx, sampleInput())
	require.NoError(t, err)
	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusPublished)
	require.NoError(t, err)

	require.NoError(t, m.SoftDelete(ctx, l.Reference))
	require.NoError(t, m.SoftDelete(ctx, l.Reference))

	_, err = m.ChangeStatus(ctx, l.Reference, models.StatusSold)
	assert.True(t, errors.Is(err, apperr.ErrInvalidOperation))

	obs.AssertExpectations(t)
}
