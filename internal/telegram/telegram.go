package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"immofds/server/internal/models"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultAPIURL = "https://api.telegram.org"

type Config struct {
	Enabled  bool
	BotToken string
	ChatID   string
	APIURL   string
}

// Service posts lead notifications to a Telegram chat.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config Config
}

func NewService(cfg Config, logger *logrus.Logger) *Service {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: cfg,
	}
}

func (s *Service) Enabled() bool {
	return s.config.Enabled
}

// SendMessage sends an HTML formatted message to the configured chat.
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if !s.config.Enabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(s.config.APIURL, "/"), s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found")
		default:
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyContactRequest announces a new lead.
func (s *Service) NotifyContactRequest(ctx context.Context, req *models.ContactRequest) error {
	if !s.config.Enabled {
		return nil
	}
	if err := s.SendMessage(ctx, FormatContactRequest(req)); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"contact_id": req.ID,
		"type":       req.Type,
	}).Info("Contact request notification sent")
	return nil
}

// FormatContactRequest renders a lead as a Telegram HTML message.
func FormatContactRequest(req *models.ContactRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(req.Type.Label()))
	fmt.Fprintf(&b, "👤 %s %s\n", html.EscapeString(req.FirstName), html.EscapeString(req.LastName))
	fmt.Fprintf(&b, "✉️ %s\n", html.EscapeString(req.Email))
	if req.Phone != "" {
		fmt.Fprintf(&b, "📞 %s\n", html.EscapeString(req.Phone))
	}

	switch req.Type {
	case models.ContactVisitRequest:
		fmt.Fprintf(&b, "🏠 Bien: %s\n", html.EscapeString(req.PropertyReference))
	case models.ContactSellYourHome:
		fmt.Fprintf(&b, "📍 Adresse: %s\n", html.EscapeString(req.PropertyAddress))
		if req.PropertyType != nil {
			fmt.Fprintf(&b, "🏷 Type: %s\n", html.EscapeString(req.PropertyType.Label()))
		}
		if req.EstimatedPrice.Valid {
			fmt.Fprintf(&b, "💶 Estimation: €%s\n", req.EstimatedPrice.Decimal.StringFixedBank(0))
		}
	}

	if req.Message != "" {
		msg := req.Message
		if len([]rune(msg)) > 500 {
			msg = string([]rune(msg)[:500]) + "…"
		}
		fmt.Fprintf(&b, "\n%s", html.EscapeString(msg))
	}
	return b.String()
}
