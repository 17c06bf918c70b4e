package listing

import (
	"context"
	"fmt"
	"time"
)

// ReferenceFormat renders the public identifier of a listing.
const ReferenceFormat = "IMM-%04d-%05d"

type maxIDReader interface {
	MaxListingID(ctx context.Context) (int64, error)
}

// ReferenceGenerator derives the next reference from the highest stored id
// and the current year. Two concurrent creations can compute the same value;
// the unique index on the reference column rejects the second one.
type ReferenceGenerator struct {
	repo maxIDReader
	now  func() time.Time
}

func NewReferenceGenerator(repo maxIDReader, now func() time.Time) *ReferenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReferenceGenerator{repo: repo, now: now}
}

func FormatReference(year int, seq int64) string {
	return fmt.Sprintf(ReferenceFormat, year, seq)
}

func (g *ReferenceGenerator) Next(ctx context.Context) (string, error) {
	maxID, err := g.repo.MaxListingID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}
	return FormatReference(g.now().Year(), maxID+1), nil
}
