// Package search turns optional listing criteria into gorm scopes that are
// ANDed together. Absent criteria produce no predicate at all.
package search

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"immofds/server/internal/models"
)

// Predicate narrows a listing query. A nil Predicate means "no constraint".
type Predicate func(db *gorm.DB) *gorm.DB

func eq[T any](column string, v *T) Predicate {
	if v == nil {
		return nil
	}
	value := *v
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}

func gte[T any](column string, v *T) Predicate {
	if v == nil {
		return nil
	}
	value := *v
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ?", value)
	}
}

func lte[T any](column string, v *T) Predicate {
	if v == nil {
		return nil
	}
	value := *v
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" <= ?", value)
	}
}

// StatusIs is the fixed base predicate of the public view.
func StatusIs(status models.ListingStatus) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

func PropertyType(t *models.PropertyType) Predicate       { return eq("property_type", t) }
func TransactionType(t *models.TransactionType) Predicate { return eq("transaction_type", t) }
func Province(p *models.Province) Predicate               { return eq("province", p) }
func EnergyRating(r *models.EnergyRating) Predicate       { return eq("energy_rating", r) }

func MinPrice(v *decimal.Decimal) Predicate { return gte("price", v) }
func MaxPrice(v *decimal.Decimal) Predicate { return lte("price", v) }
func MinSurface(v *float64) Predicate       { return gte("surface", v) }
func MaxSurface(v *float64) Predicate       { return lte("surface", v) }
func MinBedrooms(v *int) Predicate          { return gte("bedrooms", v) }

func Garden(v *bool) Predicate    { return eq("garden", v) }
func Garage(v *bool) Predicate    { return eq("garage", v) }
func Terrace(v *bool) Predicate   { return eq("terrace", v) }
func Basement(v *bool) Predicate  { return eq("basement", v) }
func Elevator(v *bool) Predicate  { return eq("elevator", v) }
func Furnished(v *bool) Predicate { return eq("furnished", v) }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// City matches a case-insensitive substring of the city name. Blank input
// is treated as absent.
func City(v *string) Predicate {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(*v))) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(city) LIKE ? ESCAPE '\'`, pattern)
	}
}

// WithinBounds keeps listings whose coordinates fall inside b, edges
// included. Listings without coordinates never match.
func WithinBounds(b *orb.Bound) Predicate {
	if b == nil {
		return nil
	}
	bound := *b
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon())
	}
}

// HasCoordinates keeps listings that can be placed on a map.
func HasCoordinates() Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}
}
