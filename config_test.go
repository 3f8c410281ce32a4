package revmodel_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/revmodel"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := revmodel.LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, revmodel.DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("REVMODEL_FREEZE_INSTANCE", "true")
	t.Setenv("REVMODEL_ASSIGN_ERRORS", "raise")
	t.Setenv("REVMODEL_LOG_LEVEL", "debug")

	cfg, err := revmodel.LoadConfigFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.FreezeInstance)
	assert.Equal(t, revmodel.SinkRaise, cfg.AssignErrors)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfigFromEnv_BadMode(t *testing.T) {
	t.Setenv("REVMODEL_ASSIGN_ERRORS", "shout")

	cfg, err := revmodel.LoadConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revmodel config")
	assert.Equal(t, revmodel.DefaultConfig(), cfg)
}

func TestSetConfig_AppliesToDefaultLifecycle(t *testing.T) {
	t.Cleanup(revmodel.ResetConfig)

	revmodel.SetConfig(revmodel.Config{FreezeInstance: true, AssignErrors: revmodel.SinkRaise, LogLevel: slog.LevelWarn})
	assert.True(t, revmodel.DefaultLifecycle().Config().FreezeInstance)

	pinned := revmodel.NewLifecycle(revmodel.WithConfig(revmodel.DefaultConfig()))
	assert.False(t, pinned.Config().FreezeInstance)

	revmodel.ResetConfig()
	assert.False(t, revmodel.DefaultLifecycle().Config().FreezeInstance)
}

func TestSinkMode_Text(t *testing.T) {
	var m revmodel.SinkMode
	require.NoError(t, m.UnmarshalText([]byte(" Raise ")))
	assert.Equal(t, revmodel.SinkRaise, m)
	assert.Equal(t, "raise", m.String())
	require.NoError(t, m.UnmarshalText(nil))
	assert.Equal(t, "log", m.String())
	assert.Error(t, m.UnmarshalText([]byte("loud")))
}
