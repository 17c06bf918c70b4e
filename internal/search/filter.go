package search

import (
	"gorm.io/gorm"

	"immofds/server/internal/models"
)

// Filter is a conjunction of predicates.
type Filter struct {
	predicates []Predicate
}

// New starts a filter from the given predicates, dropping nil ones.
func New(predicates ...Predicate) Filter {
	return Filter{}.And(predicates...)
}

// And returns a filter that also requires every non-nil predicate.
func (f Filter) And(predicates ...Predicate) Filter {
	out := make([]Predicate, len(f.predicates), len(f.predicates)+len(predicates))
	copy(out, f.predicates)
	for _, p := range predicates {
		if p != nil {
			out = append(out, p)
		}
	}
	return Filter{predicates: out}
}

// Scopes exposes the predicates in the form gorm's Scopes expects.
func (f Filter) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, len(f.predicates))
	for i, p := range f.predicates {
		scopes[i] = p
	}
	return scopes
}

func criteriaPredicates(c models.SearchCriteria) []Predicate {
	return []Predicate{
		PropertyType(c.PropertyType),
		TransactionType(c.TransactionType),
		Province(c.Province),
		City(c.City),
		MinPrice(c.MinPrice),
		MaxPrice(c.MaxPrice),
		MinSurface(c.MinSurface),
		MaxSurface(c.MaxSurface),
		MinBedrooms(c.MinBedrooms),
		EnergyRating(c.EnergyRating),
		WithinBounds(c.Bounds),
	}
}

func amenityPredicates(c models.SearchCriteria) []Predicate {
	return []Predicate{
		Garden(c.Garden),
		Garage(c.Garage),
		Terrace(c.Terrace),
		Basement(c.Basement),
		Elevator(c.Elevator),
		Furnished(c.Furnished),
	}
}

// Public always restricts to published listings; nothing in c can lift that.
func Public(c models.SearchCriteria) Filter {
	return New(StatusIs(models.StatusPublished)).
		And(criteriaPredicates(c)...).
		And(amenityPredicates(c)...)
}

// Admin applies the criteria over every status. Amenity flags are not part
// of the back-office search.
func Admin(c models.SearchCriteria) Filter {
	return New(criteriaPredicates(c)...)
}
