package database

import (
	"context"
	"fmt"
	"immofds/server/internal/models"
	"time"

	"gorm.io/gorm"
)

var contactSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
	"type":      "type",
	"lastName":  "last_name",
}

func preloadNotes(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Notes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC, id ASC")
		}).
		Preload("Notes.Author")
}

func (d *Database) CreateContactRequest(ctx context.Context, req *models.ContactRequest) error {
	err := d.conn(ctx).Omit("Notes").Create(req).Error
	return translate(err, "contact request")
}

func (d *Database) FindContactRequest(ctx context.Context, id int64) (*models.ContactRequest, error) {
	var req models.ContactRequest
	err := preloadNotes(d.conn(ctx)).First(&req, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("contact request %d", id))
	}
	fillAuthorNames(req.Notes)
	return &req, nil
}

// ListContactRequests returns one page of contact requests, without notes,
// matching the optional status and type.
func (d *Database) ListContactRequests(ctx context.Context, filter models.ContactFilter, page models.PageRequest) ([]models.ContactRequest, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if filter.Type != nil {
			db = db.Where("type = ?", *filter.Type)
		}
		return db
	}

	var total int64
	if err := d.conn(ctx).Model(&models.ContactRequest{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contact requests: %w", err)
	}

	requests := []models.ContactRequest{}
	if total == 0 {
		return requests, 0, nil
	}

	q := orderBy(d.conn(ctx).Scopes(scope), contactSortColumns, "created_at", page.SortBy, page.SortDir)
	if err := q.Limit(page.Size).Offset(page.Offset()).Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contact requests: %w", err)
	}
	return requests, total, nil
}

func (d *Database) UpdateContactStatus(ctx context.Context, id int64, status models.ContactStatus) error {
	res := d.conn(ctx).Model(&models.ContactRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("contact request %d", id))
	}
	return nil
}

func (d *Database) DeleteContactRequest(ctx context.Context, id int64) error {
	res := d.conn(ctx).Delete(&models.ContactRequest{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("contact request %d", id))
	}
	return nil
}

func (d *Database) CreateContactNote(ctx context.Context, note *models.ContactNote) error {
	err := d.conn(ctx).Omit("Author").Create(note).Error
	return translate(err, "note")
}

// FindContactNote returns a note only if it is attached to the contact.
func (d *Database) FindContactNote(ctx context.Context, contactID, noteID int64) (*models.ContactNote, error) {
	var note models.ContactNote
	err := d.conn(ctx).Preload("Author").
		Where("id = ? AND contact_request_id = ?", noteID, contactID).
		First(&note).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("note %d", noteID))
	}
	if note.Author != nil {
		note.AuthorName = note.Author.FullName()
	}
	return &note, nil
}

func (d *Database) UpdateContactNote(ctx context.Context, note *models.ContactNote) error {
	err := d.conn(ctx).Model(note).
		Select("content", "updated_at").
		Updates(note).Error
	return translate(err, fmt.Sprintf("note %d", note.ID))
}

func (d *Database) DeleteContactNote(ctx context.Context, contactID, noteID int64) error {
	res := d.conn(ctx).
		Where("id = ? AND contact_request_id = ?", noteID, contactID).
		Delete(&models.ContactNote{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("note %d", noteID))
	}
	return nil
}

// TouchContactRequest bumps updated_at after a note change.
func (d *Database) TouchContactRequest(ctx context.Context, id int64) error {
	err := d.conn(ctx).Model(&models.ContactRequest{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to touch contact request: %w", err)
	}
	return nil
}

func fillAuthorNames(notes []models.ContactNote) {
	for i := range notes {
		if notes[i].Author != nil {
			notes[i].AuthorName = notes[i].Author.FullName()
		}
	}
}
