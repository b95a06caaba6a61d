package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/stoom")
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, CartBackendSQL, cfg.CartBackend)
	assert.Equal(t, "games", cfg.ESIndex)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestValidate(t *testing.T) {
	base := Config{
		DBDriver:         DriverSQLite,
		JWTAccessSecret:  "a",
		JWTRefreshSecret: "r",
		CartBackend:      CartBackendSQL,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "sqlite needs no url", mutate: func(c *Config) {}},
		{name: "mongo without uri", mutate: func(c *Config) { c.CartBackend = CartBackendMongo }, wantErr: "MONGO_URI"},
		{name: "unknown backend", mutate: func(c *Config) { c.CartBackend = "files" }, wantErr: "CART_BACKEND"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "shared jwt secret", mutate: func(c *Config) { c.JWTRefreshSecret = c.JWTAccessSecret }, wantErr: "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV("a, b,"))
}
