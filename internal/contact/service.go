// Package contact handles the leads submitted through the public forms and
// the notes administrators keep on them.
package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"immofds/server/internal/apperr"
	"immofds/server/internal/models"
	"immofds/server/internal/validation"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateContactRequest(ctx context.Context, req *models.ContactRequest) error
	FindContactRequest(ctx context.Context, id int64) (*models.ContactRequest, error)
	ListContactRequests(ctx context.Context, filter models.ContactFilter, page models.PageRequest) ([]models.ContactRequest, int64, error)
	UpdateContactStatus(ctx context.Context, id int64, status models.ContactStatus) error
	DeleteContactRequest(ctx context.Context, id int64) error
	CreateContactNote(ctx context.Context, note *models.ContactNote) error
	FindContactNote(ctx context.Context, contactID, noteID int64) (*models.ContactNote, error)
	UpdateContactNote(ctx context.Context, note *models.ContactNote) error
	DeleteContactNote(ctx context.Context, contactID, noteID int64) error
	TouchContactRequest(ctx context.Context, id int64) error
}

// ListingLookup resolves the listing a visit request refers to.
type ListingLookup interface {
	FindPublishedListing(ctx context.Context, reference string) (*models.Listing, error)
}

// Notifier is told about new leads once they are stored.
type Notifier interface {
	NotifyContactRequest(ctx context.Context, req *models.ContactRequest) error
}

type Service struct {
	repo     Repository
	listings ListingLookup
	notifier Notifier
	logger   *logrus.Logger
}

func NewService(repo Repository, listings ListingLookup, notifier Notifier, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{repo: repo, listings: listings, notifier: notifier, logger: logger}
}

func (s *Service) SubmitGeneral(ctx context.Context, in models.GeneralContactInput) (*models.ContactRequest, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	return s.submit(ctx, &models.ContactRequest{
		Type:      models.ContactGeneral,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Message:   in.Message,
	})
}

func (s *Service) SubmitSellYourHome(ctx context.Context, in models.SellYourHomeInput) (*models.ContactRequest, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	ptype := in.PropertyType
	req := &models.ContactRequest{
		Type:            models.ContactSellYourHome,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		Message:         in.Message,
		PropertyAddress: strings.TrimSpace(in.PropertyAddress),
		PropertyType:    &ptype,
	}
	if in.EstimatedPrice != nil {
		req.EstimatedPrice = decimal.NewNullDecimal(*in.EstimatedPrice)
	}
	return s.submit(ctx, req)
}

// SubmitVisitRequest records a visit request for a published listing.
func (s *Service) SubmitVisitRequest(ctx context.Context, in models.VisitRequestInput) (*models.ContactRequest, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(in.PropertyReference)
	if _, err := s.listings.FindPublishedListing(ctx, ref); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Validation(fmt.Sprintf("propertyReference %s does not match a published listing", ref))
		}
		return nil, err
	}
	return s.submit(ctx, &models.ContactRequest{
		Type:              models.ContactVisitRequest,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		Message:           in.Message,
		PropertyReference: ref,
	})
}

// submit stores a lead as NEW and then notifies. A failed notification is
// logged and never fails the submission.
func (s *Service) submit(ctx context.Context, req *models.ContactRequest) (*models.ContactRequest, error) {
	req.Status = models.ContactNew
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateContactRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	req.Notes = []models.ContactNote{}

	s.logger.WithFields(logrus.Fields{
		"contact_id": req.ID,
		"type":       req.Type,
	}).Info("Contact request received")

	if s.notifier != nil {
		if err := s.notifier.NotifyContactRequest(ctx, req); err != nil {
			s.logger.WithError(err).WithField("contact_id", req.ID).Error("Failed to send contact request notification")
		}
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, filter models.ContactFilter, page models.PageRequest) (models.Page[models.ContactRequest], error) {
	requests, total, err := s.repo.ListContactRequests(ctx, filter, page)
	if err != nil {
		return models.Page[models.ContactRequest]{}, err
	}
	return models.NewPage(requests, page, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.ContactRequest, error) {
	return s.repo.FindContactRequest(ctx, id)
}

// UpdateStatus sets any status; leads have no transition rules.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status models.ContactStatus) (*models.ContactRequest, error) {
	if !status.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("status has an unsupported value %s", status))
	}
	var req *models.ContactRequest
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateContactStatus(ctx, id, status); err != nil {
			return err
		}
		var err error
		req, err = s.repo.FindContactRequest(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"contact_id": id, "status": status}).Info("Contact request status changed")
	return req, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteContactRequest(ctx, id)
	}); err != nil {
		return err
	}
	s.logger.WithField("contact_id", id).Info("Contact request deleted")
	return nil
}

func validateNote(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("content is required")
	}
	if len([]rune(content)) > 5000 {
		return "", apperr.Validation("content must be at most 5000 characters")
	}
	return content, nil
}

// AddNote attaches a note written by authorID.
func (s *Service) AddNote(ctx context.Context, contactID, authorID int64, content string) (*models.ContactNote, error) {
	content, err := validateNote(content)
	if err != nil {
		return nil, err
	}

	var note *models.ContactNote
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindContactRequest(ctx, contactID); err != nil {
			return err
		}
		note = &models.ContactNote{ContactRequestID: contactID, AuthorID: &authorID, Content: content}
		if err := s.repo.CreateContactNote(ctx, note); err != nil {
			return err
		}
		if err := s.repo.TouchContactRequest(ctx, contactID); err != nil {
			return err
		}
		note, err = s.repo.FindContactNote(ctx, contactID, note.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote rewrites a note. Only its author may do so.
func (s *Service) UpdateNote(ctx context.Context, contactID, noteID, requesterID int64, content string) (*models.ContactNote, error) {
	content, err := validateNote(content)
	if err != nil {
		return nil, err
	}

	var note *models.ContactNote
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.ownedNote(ctx, contactID, noteID, requesterID)
		if err != nil {
			return err
		}
		n.Content = content
		if err := s.repo.UpdateContactNote(ctx, n); err != nil {
			return err
		}
		note = n
		return s.repo.TouchContactRequest(ctx, contactID)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note. Only its author may do so.
func (s *Service) DeleteNote(ctx context.Context, contactID, noteID, requesterID int64) error {
	return s.repo.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.ownedNote(ctx, contactID, noteID, requesterID); err != nil {
			return err
		}
		if err := s.repo.DeleteContactNote(ctx, contactID, noteID); err != nil {
			return err
		}
		return s.repo.TouchContactRequest(ctx, contactID)
	})
}

func (s *Service) ownedNote(ctx context.Context, contactID, noteID, requesterID int64) (*models.ContactNote, error) {
	note, err := s.repo.FindContactNote(ctx, contactID, noteID)
	if err != nil {
		return nil, err
	}
	if note.AuthorID == nil || *note.AuthorID != requesterID {
		return nil, apperr.AccessDenied("only the author of a note can change it")
	}
	return note, nil
}
