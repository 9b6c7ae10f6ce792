package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.False(t, cfg.AllowMockFallback)
	assert.False(t, cfg.AuthBypass)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENROLL_ADDR", ":9090")
	t.Setenv("SERVICE_CALL_TIMEOUT_MS", "250")
	t.Setenv("ALLOW_MOCK_SERVICES", "true")
	t.Setenv("STUDENT_SERVICE_URL", "http://students.internal")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.CallTimeout)
	assert.True(t, cfg.AllowMockFallback)
	assert.Equal(t, "http://students.internal", cfg.StudentServiceURL)
}

func TestFromEnvBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("SERVICE_CALL_TIMEOUT_MS", "not-a-number")
	assert.Equal(t, 5*time.Second, FromEnv().CallTimeout)

	t.Setenv("SERVICE_CALL_TIMEOUT_MS", "-10")
	assert.Equal(t, 5*time.Second, FromEnv().CallTimeout)
}

func TestValidateRejectsBypassInProduction(t *testing.T) {
	cfg := Config{Env: "production", MongoURI: "mongodb://db", AuthBypass: true}
	require.Error(t, cfg.Validate())

	cfg = Config{Env: "production", MongoURI: "mongodb://db", AllowMockFallback: true}
	require.Error(t, cfg.Validate())

	cfg = Config{Env: "production", MongoURI: "mongodb://db"}
	require.NoError(t, cfg.Validate())

	cfg = Config{Env: "development", MongoURI: "mongodb://db", AuthBypass: true, AllowMockFallback: true}
	require.NoError(t, cfg.Validate())
}
