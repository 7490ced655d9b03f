package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/roadbisect/pkg/partitioner"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.MinCellSize)
	assert.Equal(t, 16, cfg.MaxLevels)
	assert.Equal(t, 0.75, cfg.BalanceRatio)
	assert.Equal(t, []float64{0.25, 0.1, 0.4}, cfg.SourceSinkFractions)
	assert.Equal(t, 29, cfg.SeparatorRetryBudget)
	assert.Equal(t, "edge", cfg.SeparatorMode)
	assert.True(t, cfg.UsePrincipalAxis)
	assert.False(t, cfg.VerifySeparators)

	opts := cfg.PartitionerOptions()
	assert.Equal(t, partitioner.DefaultDirections(), opts.Directions)
	assert.Equal(t, partitioner.EDGE_SEPARATOR, opts.SeparatorMode)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
min_cell_size: 128
balance_ratio: 0.6
separator_mode: vertex
direction_candidates:
  - [1, 0]
  - [0, 2]
source_sink_fractions: [0.2]
`)
	t.Setenv("BISECT_MAX_LEVELS", "8")
	t.Setenv("BISECT_VERIFY_SEPARATORS", "true")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.MinCellSize)
	assert.Equal(t, 8, cfg.MaxLevels)
	assert.Equal(t, 0.6, cfg.BalanceRatio)
	assert.True(t, cfg.VerifySeparators)
	assert.Equal(t, []float64{0.2}, cfg.SourceSinkFractions)

	opts := cfg.PartitionerOptions()
	assert.Equal(t, partitioner.VERTEX_SEPARATOR, opts.SeparatorMode)
	assert.Equal(t, []partitioner.Direction{{X: 1, Y: 0}, {X: 0, Y: 1}}, opts.Directions)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "balance ratio too small", content: "balance_ratio: 0.4\n"},
		{name: "balance ratio one", content: "balance_ratio: 1\n"},
		{name: "unknown separator mode", content: "separator_mode: nodes\n"},
		{name: "direction with three components", content: "direction_candidates:\n  - [1, 0, 1]\n"},
		{name: "fraction above half", content: "source_sink_fractions: [0.7]\n"},
		{name: "zero min cell size", content: "min_cell_size: 0\n"},
		{name: "too many levels", content: "max_levels: 300\n"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(viper.New(), writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrBadParamInput), "got %v", err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
