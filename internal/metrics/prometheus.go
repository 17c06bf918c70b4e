package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"immofds/server/internal/models"
)

const namespace = "immofds"

// Manager holds the custom Prometheus metrics of the server. A nil *Manager
// is valid and records nothing.
type Manager struct {
	Registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	listingsCreated    prometheus.Counter
	statusTransitions  *prometheus.CounterVec
	contactRequests    *prometheus.CounterVec
	notificationErrors prometheus.Counter
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	m := &Manager{
		Registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_status_transitions_total",
			Help:      "Total number of listing status transitions.",
		}, []string{"from", "to"}),
		contactRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_requests_total",
			Help:      "Total number of contact requests received by type.",
		}, []string{"type"}),
		notificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_errors_total",
			Help:      "Total number of lead notifications that could not be delivered.",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.listingsCreated,
		m.statusTransitions,
		m.contactRequests,
		m.notificationErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records the count and latency of every request, labelled with
// the matched route template rather than the raw path.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Manager) ListingCreated() {
	if m == nil {
		return
	}
	m.listingsCreated.Inc()
}

func (m *Manager) StatusChanged(from, to models.ListingStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Manager) ContactReceived(t models.ContactType) {
	if m == nil {
		return
	}
	m.contactRequests.WithLabelValues(string(t)).Inc()
}

func (m *Manager) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationErrors.Inc()
}

// Notifier mirrors the lead notifier used by the contact service.
type Notifier interface {
	NotifyContactRequest(ctx context.Context, req *models.ContactRequest) error
}

type countingNotifier struct {
	next    Notifier
	metrics *Manager
}

// CountNotifications wraps n so that delivery failures are counted.
func (m *Manager) CountNotifications(n Notifier) Notifier {
	return &countingNotifier{next: n, metrics: m}
}

func (c *countingNotifier) NotifyContactRequest(ctx context.Context, req *models.ContactRequest) error {
	err := c.next.NotifyContactRequest(ctx, req)
	if err != nil {
		c.metrics.NotificationFailed()
	}
	return err
}
