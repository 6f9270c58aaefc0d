package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()

	assert.Equal(t, "9999", cfg.AppPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AuthDisabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("CONFIG_TEST_KEY", "set")
	assert.Equal(t, "set", getEnv("CONFIG_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("CONFIG_TEST_MISSING_KEY", "fallback"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitList("*"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
	assert.Nil(t, splitList(""))
}
