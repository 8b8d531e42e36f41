package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APPLICATIONS_API_URL", "")
	t.Setenv("PRIORITY_HIGH_THRESHOLD", "")
	t.Setenv("PRIORITY_MEDIUM_THRESHOLD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Scoring.HighPriorityThreshold)
	assert.Equal(t, 60.0, cfg.Scoring.MediumPriorityThreshold)
	assert.Equal(t, 50.0, cfg.Scoring.MinRecommendationScore)
	assert.Equal(t, 3, cfg.Scoring.RecommendationLimit)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "@every 1m", cfg.Session.SweepSchedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APPLICATIONS_API_URL", "https://api.example.com")
	t.Setenv("PRIORITY_HIGH_THRESHOLD", "90")
	t.Setenv("PRIORITY_MEDIUM_THRESHOLD", "70")
	t.Setenv("APPLICATIONS_API_TIMEOUT", "5s")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("PG_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.ApplicationsAPI.BaseURL)
	assert.Equal(t, 90.0, cfg.Scoring.HighPriorityThreshold)
	assert.Equal(t, 70.0, cfg.Scoring.MediumPriorityThreshold)
	assert.Equal(t, 5*time.Second, cfg.ApplicationsAPI.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5432, cfg.PostgreSQL.Port, "invalid integers fall back to the default")
}

func TestLoad_RejectsInvertedThresholds(t *testing.T) {
	t.Setenv("PRIORITY_HIGH_THRESHOLD", "50")
	t.Setenv("PRIORITY_MEDIUM_THRESHOLD", "60")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "tink", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=tink sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetPostgreSQLDSN())
}
