package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immofds/server/internal/models"
)

type failingNotifier struct{}

func (failingNotifier) NotifyContactRequest(context.Context, *models.ContactRequest) error {
	return errors.New("unreachable")
}

func scrape(t *testing.T, m *Manager) string {
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/properties/:reference", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, ref := range []string{"IMM-2026-00001", "IMM-2026-00002"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/"+ref, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `immofds_http_requests_total{method="GET",route="/properties/:reference",status="200"} 2`)
	assert.NotContains(t, out, "IMM-2026-00001")
}

func TestDomainCounters(t *testing.T) {
	m := NewManager()
	m.ListingCreated()
	m.StatusChanged(models.StatusDraft, models.StatusPublished)
	m.ContactReceived(models.ContactVisitRequest)
	err := m.CountNotifications(failingNotifier{}).NotifyContactRequest(context.Background(), &models.ContactRequest{})
	assert.Error(t, err)

	out := scrape(t, m)
	assert.Contains(t, out, "immofds_listings_created_total 1")
	assert.Contains(t, out, `immofds_listing_status_transitions_total{from="DRAFT",to="PUBLISHED"} 1`)
	assert.Contains(t, out, `immofds_contact_requests_total{type="VISIT_REQUEST"} 1`)
	assert.Contains(t, out, "immofds_notification_errors_total 1")
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ListingCreated()
		m.StatusChanged(models.StatusDraft, models.StatusArchived)
		m.ContactReceived(models.ContactGeneral)
	})
}
