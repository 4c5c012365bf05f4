package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/infrastructure/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.InDelta(t, 0.35, cfg.Scoring.AutoFloor, 1e-9)
	assert.Equal(t, 10*time.Minute, cfg.Scoring.PriorityCacheTTL)
	assert.Equal(t, 0.40, cfg.Scoring.Match.Gate.Auto.Floor)
	assert.Greater(t, cfg.Scoring.Match.Gate.Auto.Floor, cfg.Scoring.Match.Gate.Manual.Floor,
		"automatic selection is stricter than manual")

	assert.Equal(t, 5, cfg.Generator.BaseSlotCap)
	assert.Equal(t, 3, cfg.Generator.MemberMaxAssignments)
	assert.Equal(t, 2, cfg.Generator.LeaderMaxAssignments)
	assert.Contains(t, cfg.Generator.ProjectSlotModifiers, "pirate_economy")

	require.NoError(t, config.ValidateConfig(cfg))
}

func TestLoadConfig(t *testing.T) {
	t.Run("yaml file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
database:
  type: sqlite
  path: ":memory:"
logging:
  level: debug
generator:
  base_slot_cap: 6
  default_preferred_assignees: 4
`), 0o644))

		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Type)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 6, cfg.Generator.BaseSlotCap)
		assert.Equal(t, 4, cfg.Generator.DefaultPreferredAssignees)
		// Untouched fields still come from defaults.
		assert.Equal(t, 3, cfg.Generator.MemberMaxAssignments)
	})

	t.Run("rejects an invalid level", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

		_, err := config.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Level")
	})

	t.Run("DATABASE_URL wins without the prefix", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://warroom:secret@db:5432/warroom")
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "postgres://warroom:secret@db:5432/warroom", cfg.Database.URL)
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("gate ceiling must exceed floor", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Scoring.Match.Gate.Auto.Ceiling = cfg.Scoring.Match.Gate.Auto.Floor
		err := config.ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ceiling must exceed floor")
	})

	t.Run("priority score bounds must be ordered", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Scoring.Priority.MinScore = cfg.Scoring.Priority.MaxScore
		err := config.ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_score must exceed min_score")
	})
}
