package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.DefaultEnabled)
	assert.True(t, cfg.DynamicKey())
	assert.Equal(t, "/set-request", cfg.ControlPath)
	assert.Equal(t, "System is temporarily unavailable", cfg.RejectMessage)
	assert.Contains(t, cfg.WhitelistPaths, "/actuator/**")
}

func TestConfig_DynamicKey(t *testing.T) {
	assert.True(t, Config{SecretKey: "dynamic"}.DynamicKey())
	assert.True(t, Config{SecretKey: ""}.DynamicKey())
	assert.False(t, Config{SecretKey: "mysecret"}.DynamicKey())
	assert.False(t, Config{SecretKey: "Dynamic"}.DynamicKey())
}

func TestConfig_NormalizeAlwaysWhitelistsControlPath(t *testing.T) {
	cfg := Config{
		ControlPath:    "admin/gate/",
		WhitelistPaths: []string{"/health", "/health", ""},
	}.Normalize()

	assert.Equal(t, "/admin/gate", cfg.ControlPath)
	assert.Equal(t, []string{"/admin/gate/**", "/health"}, cfg.WhitelistPaths)
	assert.Equal(t, DefaultRejectMessage, cfg.RejectMessage)
}

func TestConfig_NormalizeKeepsExistingControlPattern(t *testing.T) {
	cfg := DefaultConfig().Normalize()

	count := 0
	for _, p := range cfg.WhitelistPaths {
		if p == "/set-request/**" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestResults_Err(t *testing.T) {
	assert.NoError(t, AdmissionResult{Allowed: true}.Err())
	assert.ErrorIs(t, AdmissionResult{Allowed: false}.Err(), ErrServiceUnavailable)
	assert.NoError(t, ControlResult{Authorized: true}.Err())
	assert.ErrorIs(t, ControlResult{}.Err(), ErrUnauthorized)
}

func TestConfig_NormalizeFollowsControlPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ControlPath = "/ops/gate"
	cfg = cfg.Normalize()

	assert.Equal(t, "/ops/gate/**", cfg.WhitelistPaths[0])
	assert.NotContains(t, cfg.WhitelistPaths, "/set-request/**")
	assert.Contains(t, cfg.WhitelistPaths, "/actuator/**")
}

func TestConfig_NormalizeTrimsSecretKey(t *testing.T) {
	cfg := Config{SecretKey: "  mysecret \n"}.Normalize()
	assert.Equal(t, "mysecret", cfg.SecretKey)
	assert.False(t, cfg.DynamicKey())

	assert.Equal(t, "dynamic", Config{SecretKey: " dynamic "}.Normalize().SecretKey)
}
