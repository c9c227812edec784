package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INTERNAL_TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/umzug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, CounterStore, cfg.CounterBackend)
	assert.Equal(t, 14*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 14, cfg.InvoicePaymentDays)
	assert.Equal(t, "Umzugsbüro", cfg.Company.Name)
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("INTERNAL_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/umzug")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERNAL_TOKEN")
}

func TestLoad_SQLiteNeedsNoDatabaseURL(t *testing.T) {
	t.Setenv("INTERNAL_TOKEN", "secret")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
}

func TestLoad_UnknownCounterBackend(t *testing.T) {
	t.Setenv("INTERNAL_TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/umzug")
	t.Setenv("COUNTER_BACKEND", "etcd")

	_, err := Load()
	require.Error(t, err)
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}
