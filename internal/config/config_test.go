package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://planner@localhost/planner")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "Europe/Rome", cfg.Timezone)
	assert.Equal(t, "Campo A", cfg.FieldHalfAName)
	assert.Equal(t, "Campo B", cfg.FieldHalfBName)
	assert.False(t, cfg.PinClickedHalf)
	assert.Equal(t, 180, cfg.MaxLockerPadding)
	assert.Equal(t, 52, cfg.MaxSeriesWeeks)
	assert.Equal(t, 5*time.Minute, cfg.OccupancyCacheTTL)
	assert.Equal(t, "planner.events", cfg.AMQPExchange)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PLANNER_PIN_CLICKED_HALF", "true")
	t.Setenv("PLANNER_MAX_SERIES_WEEKS", "20")
	t.Setenv("OCCUPANCY_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.PinClickedHalf)
	assert.Equal(t, 20, cfg.MaxSeriesWeeks)
	assert.Equal(t, 30*time.Second, cfg.OccupancyCacheTTL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{"DB_DSN": "", "JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"DB_DSN": "x", "JWT_SECRET": ""}},
		{"bad ttl", map[string]string{"JWT_ACCESS_TOKEN_TTL": "soon"}},
		{"bad cost", map[string]string{"BCRYPT_COST": "99"}},
		{"bad timezone", map[string]string{"FACILITY_TIMEZONE": "Mars/Olympus"}},
		{"zero series", map[string]string{"PLANNER_MAX_SERIES_WEEKS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
