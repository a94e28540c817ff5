package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"23h"`

	// BaseURL prefixes links sent in verification emails.
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"no-reply@rolodex.local"`

	PublicDir        string        `env:"PUBLIC_DIR" envDefault:"public"`
	TempDir          string        `env:"TEMP_DIR" envDefault:"temp"`
	UploadStagingTTL time.Duration `env:"UPLOAD_STAGING_TTL" envDefault:"1h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	BcryptCost     int      `env:"BCRYPT_COST" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return parse(env.Options{})
}

// Parse builds a Config from an explicit environment map.
func Parse(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	if c.UploadStagingTTL <= 0 {
		return fmt.Errorf("UPLOAD_STAGING_TTL must be positive, got %s", c.UploadStagingTTL)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}

	return nil
}

// Origins returns the CORS allow-list: development defaults plus ALLOWED_ORIGINS.
func (c Config) Origins() []string {
	origins := make([]string, len(defaultOrigins), len(defaultOrigins)+len(c.AllowedOrigins))
	copy(origins, defaultOrigins)

	for _, origin := range c.AllowedOrigins {
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
