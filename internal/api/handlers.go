package api

import (
	"context"
	"errors"
	"immofds/server/config"
	"immofds/server/internal/apperr"
	"immofds/server/internal/auth"
	"immofds/server/internal/contact"
	"immofds/server/internal/database"
	"immofds/server/internal/listing"
	"immofds/server/internal/metrics"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	db       *database.Database
	logger   *logrus.Logger
	cfg      *config.Config
	metrics  *metrics.Manager
	public   *listing.PublicCatalog
	admin    *listing.AdminCatalog
	listings *listing.Manager
	images   *listing.ImageService
	contacts *contact.Service
	auth     *auth.Service
	users    *auth.UserService
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewHandler wires the services on top of db. notifier may be nil.
func NewHandler(db *database.Database, cfg *config.Config, logger *logrus.Logger, notifier contact.Notifier, m *metrics.Manager) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, nil)
	manager := listing.NewManager(db, listing.NewReferenceGenerator(db, nil), logger)
	if m != nil {
		manager.WithObserver(m)
	}

	return &Handler{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		metrics:  m,
		public:   listing.NewPublicCatalog(db),
		admin:    listing.NewAdminCatalog(db),
		listings: manager,
		images:   listing.NewImageService(db, cfg.Listings.MaxImageBytes, logger),
		contacts: contact.NewService(db, db, notifier, logger),
		auth:     auth.NewService(db, tokens, cfg.Auth.RefreshTokenTTL, logger),
		users:    auth.NewUserService(db, logger),
	}
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindDuplicate:
		return http.StatusConflict
	case apperr.KindInvalidOperation, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInvalidToken:
		return http.StatusUnauthorized
	case apperr.KindAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope and aborts. Internal errors are
// logged and reported with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)

	resp := ErrorResponse{
		Status:    status,
		Message:   apperr.MessageOf(err),
		Errors:    []string{},
		Timestamp: time.Now().UTC(),
	}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		resp.Errors = fields
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		resp.Message = "An unexpected error occurred"
	} else if resp.Message == "" {
		resp.Message = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body, reporting malformed JSON as a
// validation error.
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, apperr.Validation("request body is not valid JSON: "+err.Error()))
		return false
	}
	return true
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequestLogger logs one line per request once it has been served.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request served")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request served")
		default:
			entry.Info("Request served")
		}
	}
}

// Recovery turns a panic into a 500 envelope.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		h.respondError(c, errors.New("panic while serving request"))
		h.logger.WithField("panic", recovered).Error("Recovered from panic")
	})
}
