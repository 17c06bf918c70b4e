// Package geometry renders listings for the map view.
package geometry

import (
	"fmt"
	"immofds/server/internal/models"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ListingFeatures turns listings into a GeoJSON point collection carrying its
// bbox. Listings without coordinates are skipped.
func ListingFeatures(listings []models.Listing) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range listings {
		l := &listings[i]
		if !l.HasCoordinates() {
			continue
		}

		feature := geojson.NewFeature(orb.Point{*l.Longitude, *l.Latitude})
		feature.ID = l.Reference
		feature.Properties = geojson.Properties{
			"reference":            l.Reference,
			"title":                l.Title,
			"price":                l.Price.InexactFloat64(),
			"propertyType":         string(l.PropertyType),
			"propertyTypeLabel":    l.PropertyType.Label(),
			"transactionType":      string(l.TransactionType),
			"transactionTypeLabel": l.TransactionType.Label(),
			"city":                 l.City,
		}
		if l.Surface != nil {
			feature.Properties["surface"] = *l.Surface
		}
		if l.Bedrooms != nil {
			feature.Properties["bedrooms"] = *l.Bedrooms
		}
		if id := l.PrimaryImageID(); id != nil {
			feature.Properties["primaryImageId"] = *id
		}
		fc.Append(feature)
	}
	if bound, ok := Extent(fc); ok {
		fc.BBox = geojson.NewBBox(bound)
	}
	return fc
}

// Extent returns the bounding box of a collection, or false when it is empty.
func Extent(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	if len(fc.Features) == 0 {
		return orb.Bound{}, false
	}
	bound := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	return bound, true
}

// ParseBounds parses "minLon,minLat,maxLon,maxLat". An empty string yields
// nil.
func ParseBounds(raw string) (*orb.Bound, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must have 4 comma separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox value %q is not a number", p)
		}
		v[i] = f
	}

	bound := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	if bound.Min.Lon() > bound.Max.Lon() || bound.Min.Lat() > bound.Max.Lat() {
		return nil, fmt.Errorf("bbox minimum must not exceed maximum")
	}
	if bound.Min.Lon() < -180 || bound.Max.Lon() > 180 || bound.Min.Lat() < -90 || bound.Max.Lat() > 90 {
		return nil, fmt.Errorf("bbox is outside valid coordinates")
	}
	return &bound, nil
}
