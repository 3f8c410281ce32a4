package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envTestConfig struct {
	Depth  int  `env:"REVMODEL_TEST_DEPTH" envDefault:"123"`
	Frozen bool `env:"REVMODEL_TEST_FROZEN"`
}

func TestParseDefaults(t *testing.T) {
	var cfg envTestConfig

	require.NoError(t, Parse(&cfg))
	assert.Equal(t, 123, cfg.Depth)
	assert.False(t, cfg.Frozen)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("REVMODEL_TEST_DEPTH", "7")
	t.Setenv("REVMODEL_TEST_FROZEN", "true")

	var cfg envTestConfig
	require.NoError(t, Parse(&cfg))
	assert.Equal(t, 7, cfg.Depth)
	assert.True(t, cfg.Frozen)
}

func TestParseError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("REVMODEL_TEST_DEPTH", "not-an-int")

	err := Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
