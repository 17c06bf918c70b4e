package api

import (
	"fmt"
	"immofds/server/internal/apperr"
	"immofds/server/internal/geometry"
	"immofds/server/internal/models"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// queryErrors collects every malformed query parameter so that the client
// gets them all at once.
type queryErrors []string

func (q *queryErrors) add(format string, args ...any) {
	*q = append(*q, fmt.Sprintf(format, args...))
}

func (q queryErrors) err() error {
	if len(q) == 0 {
		return nil
	}
	return apperr.Validation(q...)
}

type labelled interface {
	~string
	IsValid() bool
}

// normaliseEnum gives query and body enum values the same spelling.
func normaliseEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func enumParam[T labelled](c *gin.Context, name string, errs *queryErrors) *T {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v := T(normaliseEnum(raw))
	if !v.IsValid() {
		errs.add("%s has an unsupported value %s", name, raw)
		return nil
	}
	return &v
}

func boolParam(c *gin.Context, name string, errs *queryErrors) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		errs.add("%s must be true or false", name)
		return nil
	}
	return &b
}

func intParam(c *gin.Context, name string, errs *queryErrors) *int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.add("%s must be an integer", name)
		return nil
	}
	return &n
}

func floatParam(c *gin.Context, name string, errs *queryErrors) *float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs.add("%s must be a number", name)
		return nil
	}
	return &f
}

func decimalParam(c *gin.Context, name string, errs *queryErrors) *decimal.Decimal {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.add("%s must be a number", name)
		return nil
	}
	return &d
}

func parseCriteria(c *gin.Context) (models.SearchCriteria, error) {
	var errs queryErrors
	criteria := models.SearchCriteria{
		PropertyType:    enumParam[models.PropertyType](c, "propertyType", &errs),
		TransactionType: enumParam[models.TransactionType](c, "transactionType", &errs),
		Province:        enumParam[models.Province](c, "province", &errs),
		EnergyRating:    enumParam[models.EnergyRating](c, "energyRating", &errs),
		MinPrice:        decimalParam(c, "minPrice", &errs),
		MaxPrice:        decimalParam(c, "maxPrice", &errs),
		MinSurface:      floatParam(c, "minSurface", &errs),
		MaxSurface:      floatParam(c, "maxSurface", &errs),
		MinBedrooms:     intParam(c, "minBedrooms", &errs),
		Garden:          boolParam(c, "garden", &errs),
		Garage:          boolParam(c, "garage", &errs),
		Terrace:         boolParam(c, "terrace", &errs),
		Basement:        boolParam(c, "basement", &errs),
		Elevator:        boolParam(c, "elevator", &errs),
		Furnished:       boolParam(c, "furnished", &errs),
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		criteria.City = &city
	}

	bounds, err := geometry.ParseBounds(c.Query("bbox"))
	if err != nil {
		errs.add("%s", err.Error())
	}
	criteria.Bounds = bounds

	return criteria, errs.err()
}

// parsePage reads page, size, sortBy and sortDir. Sizes above maxSize are
// capped. Unknown sort fields are left for the store to replace with its
// default ordering.
func parsePage(c *gin.Context, defaultSize, maxSize int) (models.PageRequest, error) {
	var errs queryErrors
	req := models.PageRequest{
		Size:    defaultSize,
		SortBy:  strings.TrimSpace(c.Query("sortBy")),
		SortDir: strings.ToLower(strings.TrimSpace(c.DefaultQuery("sortDir", "desc"))),
	}

	if p := intParam(c, "page", &errs); p != nil {
		if *p < 0 {
			errs.add("page must be at least 0")
		} else {
			req.Page = *p
		}
	}
	if s := intParam(c, "size", &errs); s != nil {
		switch {
		case *s < 1:
			errs.add("size must be at least 1")
		case *s > maxSize:
			req.Size = maxSize
		default:
			req.Size = *s
		}
	}
	if req.SortDir != "asc" && req.SortDir != "desc" {
		errs.add("sortDir must be asc or desc")
	}
	return req, errs.err()
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}
