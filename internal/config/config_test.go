package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	var cfg Config
	args := []string{"tenderengine"}
	require.NoError(t, LoadConfig(&cfg, &args))

	require.Equal(t, 60, cfg.Engine.QualityThreshold)
	require.Equal(t, 5, cfg.Engine.MilestoneSlices)
	require.Equal(t, 1024, cfg.Journal.Capacity)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "0.0.0.0:8080", cfg.Web.Address)
}

func TestLoadConfigZeroThresholdIsAValue(t *testing.T) {
	t.Setenv("ENGINE_QUALITY_THRESHOLD", "0")

	var cfg Config
	args := []string{"tenderengine"}
	require.NoError(t, LoadConfig(&cfg, &args))
	require.Equal(t, 0, cfg.Engine.QualityThreshold, "explicit zero must not fall back to the default")
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ENGINE_MILESTONE_SLICES", "3")

	var cfg Config
	args := []string{"tenderengine", "-milestone-slices", "7"}
	require.NoError(t, LoadConfig(&cfg, &args))
	require.Equal(t, 7, cfg.Engine.MilestoneSlices)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("JOURNAL_CAPACITY", "8")

	var cfg Config
	args := []string{"tenderengine"}
	err := LoadConfig(&cfg, &args)
	require.ErrorIs(t, err, ErrConfigValidation)
}
