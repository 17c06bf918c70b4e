package models

import "immofds/server/internal/apperr"

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	StatusDraft     ListingStatus = "DRAFT"
	StatusPublished ListingStatus = "PUBLISHED"
	StatusSold      ListingStatus = "SOLD"
	StatusRented    ListingStatus = "RENTED"
	StatusArchived  ListingStatus = "ARCHIVED"
)

var ListingStatuses = []ListingStatus{StatusDraft, StatusPublished, StatusSold, StatusRented, StatusArchived}

var listingStatusLabels = map[ListingStatus]string{
	StatusDraft:     "Brouillon",
	StatusPublished: "Publié",
	StatusSold:      "Vendu",
	StatusRented:    "Loué",
	StatusArchived:  "Archivé",
}

func (s ListingStatus) Label() string { return labelOr(listingStatusLabels, s) }
func (s ListingStatus) IsValid() bool { _, ok := listingStatusLabels[s]; return ok }

// CanTransitionTo reports whether target is reachable from s in one step.
func (s ListingStatus) CanTransitionTo(target ListingStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusPublished || target == StatusArchived
	case StatusPublished:
		return target == StatusSold || target == StatusRented || target == StatusArchived
	case StatusSold, StatusRented:
		return target == StatusArchived
	case StatusArchived:
		return target == StatusDraft
	default:
		return false
	}
}

// TransitionTo validates a move from s to target. The returned error is an
// apperr.KindInvalidOperation naming both states.
func (s ListingStatus) TransitionTo(target ListingStatus) error {
	if s.CanTransitionTo(target) {
		return nil
	}
	return apperr.InvalidOperation("invalid status transition: %s to %s", s.Label(), target.Label())
}
