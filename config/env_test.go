package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("ALPINE_TEST_VAR", "hello")
	defer os.Unsetenv("ALPINE_TEST_VAR")

	assert.Equal(t, "hello", SubstituteEnvVars("${ALPINE_TEST_VAR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${ALPINE_TEST_VAR_UNSET:fallback}"))
	assert.Equal(t, "plain", SubstituteEnvVars("plain"))
}

func TestSubstituteEnvVarsInConfig(t *testing.T) {
	os.Setenv("ALPINE_TEST_ADDR", "10.0.0.1:9000")
	defer os.Unsetenv("ALPINE_TEST_ADDR")

	cfg := &Config{
		Transport: TransportConfig{ListenAddress: "${ALPINE_TEST_ADDR}"},
	}
	SubstituteEnvVarsInConfig(cfg)
	assert.Equal(t, "10.0.0.1:9000", cfg.Transport.ListenAddress)
}

func TestGetEnvironmentDefault(t *testing.T) {
	os.Unsetenv("ALPINE_ENV")
	os.Unsetenv("ENVIRONMENT")
	assert.Equal(t, "development", GetEnvironment())
}

func TestIsProduction(t *testing.T) {
	os.Setenv("ALPINE_ENV", "production")
	defer os.Unsetenv("ALPINE_ENV")
	assert.True(t, IsProduction())
}
