package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"dev"`
	ProdOrigins       string        `envconfig:"PROD_ORIGINS"`
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"`
	DBDSN             string        `envconfig:"DB_DSN" required:"true"`
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"15m"`
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"12"`
	LogFile           string        `envconfig:"LOG_FILE"`

	// Facility
	Timezone       string `envconfig:"FACILITY_TIMEZONE" default:"Europe/Rome"`
	FieldHalfAName string `envconfig:"FIELD_HALF_A_NAME" default:"Campo A"`
	FieldHalfBName string `envconfig:"FIELD_HALF_B_NAME" default:"Campo B"`
	SeedFile       string `envconfig:"SEED_FILE"`

	// Planner
	PinClickedHalf   bool `envconfig:"PLANNER_PIN_CLICKED_HALF" default:"false"`
	MaxLockerPadding int  `envconfig:"PLANNER_MAX_LOCKER_PADDING" default:"180"`
	MaxSeriesWeeks   int  `envconfig:"PLANNER_MAX_SERIES_WEEKS" default:"52"`

	// Optional infrastructure; empty disables it.
	RedisURL          string        `envconfig:"REDIS_URL"`
	OccupancyCacheTTL time.Duration `envconfig:"OCCUPANCY_CACHE_TTL" default:"5m"`
	AMQPURL           string        `envconfig:"AMQP_URL"`
	AMQPExchange      string        `envconfig:"AMQP_EXCHANGE" default:"planner.events"`
}

// IsProduction reports whether APP_ENV is "prod".
func (c *Config) IsProduction() bool {
	return c.AppEnv == PROD_STRING
}

// Location loads the facility time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FACILITY_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %d", cfg.BcryptCost)
	}
	if cfg.MaxLockerPadding < 0 {
		return nil, fmt.Errorf("invalid PLANNER_MAX_LOCKER_PADDING: %d", cfg.MaxLockerPadding)
	}
	if cfg.MaxSeriesWeeks < 1 {
		return nil, fmt.Errorf("invalid PLANNER_MAX_SERIES_WEEKS: %d", cfg.MaxSeriesWeeks)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}
