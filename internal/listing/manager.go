// Package listing owns the listing lifecycle: creation, edits, status
// transitions, images and the public and administrative read paths.
package listing

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
	"immofds/server/internal/validation"
)

// Observer is told about lifecycle events once they are committed.
type Observer interface {
	ListingCreated()
	StatusChanged(from, to models.ListingStatus)
}

// Manager applies every listing mutation inside a single transaction.
type Manager struct {
	repo     Repository
	refs     *ReferenceGenerator
	logger   *logrus.Logger
	observer Observer
}

func NewManager(repo Repository, refs *ReferenceGenerator, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{repo: repo, refs: refs, logger: logger}
}

// WithObserver registers o for lifecycle events.
func (m *Manager) WithObserver(o Observer) *Manager {
	m.observer = o
	return m
}

// Create stores a new draft listing under a freshly generated reference.
func (m *Manager) Create(ctx context.Context, in models.ListingInput) (*models.Listing, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var created *models.Listing
	err := m.repo.Transaction(ctx, func(ctx context.Context) error {
		ref, err := m.refs.Next(ctx)
		if err != nil {
			return err
		}
		l := &models.Listing{Reference: ref, Status: models.StatusDraft, Images: []models.ListingImage{}}
		in.ApplyTo(l)
		if err := m.repo.CreateListing(ctx, l); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"reference": created.Reference,
		"type":      created.PropertyType,
	}).Info("Listing created")
	if m.observer != nil {
		m.observer.ListingCreated()
	}
	return created, nil
}

// Update replaces the editable fields of a listing. Status, reference and
// images are kept.
func (m *Manager) Update(ctx context.Context, reference string, in models.ListingInput) (*models.Listing, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var updated *models.Listing
	err := m.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := m.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		in.ApplyTo(l)
		if err := m.repo.SaveListing(ctx, l); err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithField("reference", reference).Info("Listing updated")
	return updated, nil
}

// ChangeStatus moves a listing to target if the transition table allows it.
// The write only succeeds if nobody changed the status since it was read.
func (m *Manager) ChangeStatus(ctx context.Context, reference string, target models.ListingStatus) (*models.Listing, error) {
	if !target.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("status has an unsupported value %s", target))
	}

	var (
		result *models.Listing
		from   models.ListingStatus
	)
	err := m.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := m.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		from = l.Status
		if err := l.Status.TransitionTo(target); err != nil {
			return err
		}
		changed, err := m.repo.CompareAndSetListingStatus(ctx, l.ID, l.Status, target)
		if err != nil {
			return err
		}
		if !changed {
			return apperr.InvalidOperation("status of listing %s was changed concurrently, reload and retry", reference)
		}
		result, err = m.repo.FindListingByReference(ctx, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"reference": reference,
		"from":      from,
		"to":        target,
	}).Info("Listing status changed")
	if m.observer != nil {
		m.observer.StatusChanged(from, target)
	}
	return result, nil
}

// SoftDelete archives a listing. Archiving an archived listing is a no-op.
func (m *Manager) SoftDelete(ctx context.Context, reference string) error {
	var from models.ListingStatus
	err := m.repo.Transaction(ctx, func(ctx context.Context) error {
		l, err := m.repo.FindListingByReference(ctx, reference)
		if err != nil {
			return err
		}
		from = l.Status
		if l.Status == models.StatusArchived {
			return nil
		}
		if err := l.Status.TransitionTo(models.StatusArchived); err != nil {
			return err
		}
		changed, err := m.repo.CompareAndSetListingStatus(ctx, l.ID, l.Status, models.StatusArchived)
		if err != nil {
			return err
		}
		if !changed {
			return apperr.InvalidOperation("status of listing %s was changed concurrently, reload and retry", reference)
		}
		return nil
	})
	if err != nil || from == models.StatusArchived {
		return err
	}

	m.logger.WithField("reference", reference).Info("Listing archived")
	if m.observer != nil {
		m.observer.StatusChanged(from, models.StatusArchived)
	}
	return nil
}

func (m *Manager) FindByReference(ctx context.Context, reference string) (*models.Listing, error) {
	return m.repo.FindListingByReference(ctx, reference)
}
