package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"immofds/server/internal/apperr"
	"immofds/server/internal/database"
	"immofds/server/internal/models"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyContactRequest(ctx context.Context, req *models.ContactRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func setupTestDB(t *testing.T) *database.Database {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(db))
	return database.Wrap(db)
}

func generalInput() models.GeneralContactInput {
	return models.GeneralContactInput{
		FirstName: "Sophie",
		LastName:  "Lambert",
		Email:     "sophie.lambert@example.be",
		Phone:     "+32 470 12 34 56",
		Message:   "Je souhaite être recontactée.",
	}
}

func createUser(t *testing.T, db *database.Database, email string) *models.User {
	u := &models.User{Email: email, PasswordHash: "x", FirstName: "Agent", LastName: email, Role: models.RoleAdmin, Active: true}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func TestSubmitGeneralIsNewAndNotifies(t *testing.T) {
	db := setupTestDB(t)
	notifier := &mockNotifier{}
	notifier.On("NotifyContactRequest", mock.Anything, mock.MatchedBy(func(r *models.ContactRequest) bool {
		return r.Type == models.ContactGeneral
	})).Return(nil).Once()
	logger, _ := test.NewNullLogger()
	s := NewService(db, db, notifier, logger)

	req, err := s.SubmitGeneral(context.Background(), generalInput())
	require.NoError(t, err)

	assert.Equal(t, models.ContactNew, req.Status)
	assert.Equal(t, models.ContactGeneral, req.Type)
	assert.NotZero(t, req.ID)
	notifier.AssertExpectations(t)
}

func TestNotificationFailureDoesNotFailSubmission(t *testing.T) {
	db := setupTestDB(t)
	notifier := &mockNotifier{}
	notifier.On("NotifyContactRequest", mock.Anything, mock.Anything).Return(errors.New("telegram down"))
	logger, hook := test.NewNullLogger()
	s := NewService(db, db, notifier, logger)

	req, err := s.SubmitGeneral(context.Background(), generalInput())
	require.NoError(t, err)
	assert.NotZero(t, req.ID)
	assert.Equal(t, "Failed to send contact request notification", hook.LastEntry().Message)
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)
	ctx := context.Background()

	in := generalInput()
	in.Message = ""
	_, err := s.SubmitGeneral(ctx, in)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = s.SubmitSellYourHome(ctx, models.SellYourHomeInput{FirstName: "A", LastName: "B", Email: "a@b.be"})
	require.Error(t, err)
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "propertyAddress is required")
	assert.Contains(t, fields, "propertyType is required")

	_, err = s.SubmitVisitRequest(ctx, models.VisitRequestInput{FirstName: "A", LastName: "B", Email: "a@b.be"})
	assert.Contains(t, apperr.FieldsOf(err), "propertyReference is required")
}

func TestSubmitSellYourHome(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)

	estimate := decimal.RequireFromString("320000")
	req, err := s.SubmitSellYourHome(context.Background(), models.SellYourHomeInput{
		FirstName:       "Luc",
		LastName:        "Martin",
		Email:           "luc@example.be",
		PropertyAddress: "Chaussée de Louvain 10, 1300 Wavre",
		PropertyType:    models.PropertyHouse,
		EstimatedPrice:  &estimate,
	})
	require.NoError(t, err)

	got, err := s.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactSellYourHome, got.Type)
	require.True(t, got.EstimatedPrice.Valid)
	assert.True(t, got.EstimatedPrice.Decimal.Equal(estimate))
	assert.Equal(t, models.PropertyHouse, *got.PropertyType)
}

func TestSubmitVisitRequestNeedsPublishedListing(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)
	ctx := context.Background()

	listing := &models.Listing{
		Reference: "IMM-2026-00001", Title: "Loft", PropertyType: models.PropertyLoft,
		TransactionType: models.TransactionRent, Status: models.StatusDraft, Price: decimal.NewFromInt(1200),
		Street: "Quai au Foin", PostalCode: "1000", City: "Bruxelles", Province: models.ProvinceBrussels,
	}
	require.NoError(t, db.CreateListing(ctx, listing))

	in := models.VisitRequestInput{FirstName: "Eva", LastName: "Claes", Email: "eva@example.be", PropertyReference: listing.Reference}
	_, err := s.SubmitVisitRequest(ctx, in)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	changed, err := db.CompareAndSetListingStatus(ctx, listing.ID, models.StatusDraft, models.StatusPublished)
	require.NoError(t, err)
	require.True(t, changed)

	req, err := s.SubmitVisitRequest(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, listing.Reference, req.PropertyReference)
	assert.Equal(t, models.ContactNew, req.Status)
}

func TestListFiltersByStatusAndType(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)
	ctx := context.Background()

	first, err := s.SubmitGeneral(ctx, generalInput())
	require.NoError(t, err)
	_, err = s.SubmitGeneral(ctx, generalInput())
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, first.ID, models.ContactInProgress)
	require.NoError(t, err)

	inProgress := models.ContactInProgress
	page, err := s.List(ctx, models.ContactFilter{Status: &inProgress}, models.PageRequest{Size: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, first.ID, page.Content[0].ID)

	visit := models.ContactVisitRequest
	page, err = s.List(ctx, models.ContactFilter{Type: &visit}, models.PageRequest{Size: 20})
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements)

	page, err = s.List(ctx, models.ContactFilter{}, models.PageRequest{Size: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)
	ctx := context.Background()

	req, err := s.SubmitGeneral(ctx, generalInput())
	require.NoError(t, err)

	for _, st := range []models.ContactStatus{models.ContactClosed, models.ContactNew, models.ContactInProgress} {
		got, err := s.UpdateStatus(ctx, req.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}

	_, err = s.UpdateStatus(ctx, req.ID, "LOST")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = s.UpdateStatus(ctx, 999, models.ContactClosed)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestNotesAreEditableByAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db, db, nil, nil)
	ctx := context.Background()
	alice := createUser(t, db, "alice@immofds.be")
	bob := createUser(t, db, "bob@immofds.be")

	req, err := s.SubmitGeneral(ctx, generalInput())
	require.NoError(t, err)

	note, err := s.AddNote(ctx, req.ID, alice.ID, "Premier appel effectué")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, *note.AuthorID)

	_, err = s.UpdateNote(ctx, req.ID, note.ID, bob.ID, "Modifié par Bob")
	assert.True(t, errors.Is(err, apperr.ErrAccessDenied))

	updated, err := s.UpdateNote(ctx, req.ID, note.ID, alice.ID, "Rappel prévu mardi")
	require.NoError(t, err)
	assert.Equal(t, "Rappel prévu mardi", updated.Content)

	err = s.DeleteNote(ctx, req.ID, note.ID, bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrAccessDenied))

	_, err = s.AddNote(ctx, req.ID, alice.ID, "   ")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = s.AddNote(ctx, 999, alice.ID, "Hello")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	got, err := s.Get(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Rappel prévu mardi", got.Notes[0].Content)

	require.NoError(t, s.DeleteNote(ctx, req.ID, note.ID, alice.ID))
	require.NoError(t, s.Delete(ctx, req.ID))
	_, err = s.Get(ctx, req.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
