package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port           string   `env:"PORT" envDefault:"8080"`
		GinMode        string   `env:"GIN_MODE" envDefault:"release"`
		LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"data/immofds.db"`
	}

	Auth struct {
		// Secret used to sign access tokens; required
		JWTSecret       string        `env:"JWT_SECRET"`
		AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
		RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

		// Created as SUPER_ADMIN on an empty users table
		BootstrapAdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
		BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	}

	Listings struct {
		MaxImageBytes  int64 `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
		PublicPageSize int   `env:"PUBLIC_PAGE_SIZE" envDefault:"12"`
		AdminPageSize  int   `env:"ADMIN_PAGE_SIZE" envDefault:"20"`
		MaxPageSize    int   `env:"MAX_PAGE_SIZE" envDefault:"100"`
	}

	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
		APIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	}
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Listings.PublicPageSize <= 0 || c.Listings.AdminPageSize <= 0 || c.Listings.MaxPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED is true")
	}
	return nil
}
