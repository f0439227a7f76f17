package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("HIKELINK_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("HIKELINK_JWT_SECRET", "secret")
	t.Setenv("HIKELINK_ASSISTANT_MAX_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "mistral-tiny", cfg.AssistantModel)
	require.Equal(t, 3, cfg.AssistantMaxAttempts)
	require.Equal(t, time.Second, cfg.TrackerTick)
	require.Equal(t, 15*time.Minute, cfg.ResetCodeTTL)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("HIKELINK_JWT_SECRET", "secret")
	t.Setenv("HIKELINK_TRACKER_TICK", "soon")

	_, err := Load()
	require.Error(t, err)
}
