package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func getValidKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{
		Enabled:         true,
		IntervalSeconds: 300,
		Path:            "/auth/me",
	}
}

func TestValidKeepaliveConfig(t *testing.T) {
	config := getValidKeepaliveConfig()

	err := config.Validate()

	assert.NoError(t, err)
	assert.Equal(t, 5*time.Minute, config.Interval())
}

func TestInvalidKeepaliveInterval(t *testing.T) {
	config := getValidKeepaliveConfig()
	config.IntervalSeconds = -60

	err := config.Validate()

	assert.ErrorContains(t, err, "keepalive interval seconds (-60) needs to be greater than 0")
}

func TestDisabledKeepaliveIsNotValidated(t *testing.T) {
	config := KeepaliveConfig{Enabled: false}

	err := config.Validate()

	assert.NoError(t, err)
}
