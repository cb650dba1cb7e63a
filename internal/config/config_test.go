package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiralogic/elemental/internal/config"
	"github.com/spiralogic/elemental/internal/engine"
	"github.com/spiralogic/elemental/pkg/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ELEMENTAL_TUNING_FILE",
		"ELEMENTAL_MAX_SESSIONS",
		"ELEMENTAL_SESSION_TTL",
		"ELEMENTAL_SQLITE_PATH",
		"ELEMENTAL_POSTGRES_DSN",
		"ELEMENTAL_LOG_DECISIONS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.85, cfg.Engine.DecayFactor)
	assert.Equal(t, 2.0, cfg.Engine.DominanceFloor)
	assert.Equal(t, 3, cfg.Engine.LoopWindow)
	assert.Equal(t, 1024, cfg.Session.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, cfg.Engine.HistorySize, cfg.Session.HistorySize)
	assert.Empty(t, cfg.Analytics.SQLitePath)
	assert.Empty(t, cfg.Analytics.PostgresDSN)
	assert.False(t, cfg.Analytics.LogDecisions)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELEMENTAL_MAX_SESSIONS", "64")
	t.Setenv("ELEMENTAL_SESSION_TTL", "5m")
	t.Setenv("ELEMENTAL_SQLITE_PATH", "/tmp/decisions.db")
	t.Setenv("ELEMENTAL_LOG_DECISIONS", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Session.MaxSessions)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/tmp/decisions.db", cfg.Analytics.SQLitePath)
	assert.True(t, cfg.Analytics.LogDecisions)
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELEMENTAL_MAX_SESSIONS", "not-a-number")
	t.Setenv("ELEMENTAL_SESSION_TTL", "soon")
	t.Setenv("ELEMENTAL_LOG_DECISIONS", "sometimes")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Session.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Analytics.LogDecisions)
}

func writeTuningFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesTuningFile(t *testing.T) {
	clearEnv(t)
	path := writeTuningFile(t, `
engine:
  decay_factor: 0.7
  dominance_floor: 2.5
lexicon:
  keywords:
    earth:
      - deadline
`)
	t.Setenv("ELEMENTAL_TUNING_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Engine.DecayFactor)
	assert.Equal(t, 2.5, cfg.Engine.DominanceFloor)
	// Unset fields keep their defaults.
	assert.Equal(t, 1.5, cfg.Engine.DominanceMargin)
	assert.Equal(t, []string{"deadline"}, cfg.Lexicon.Keywords[types.Earth])
}

func TestLoadRejectsInvalidTuning(t *testing.T) {
	clearEnv(t)
	path := writeTuningFile(t, "engine:\n  decay_factor: 1.5\n")
	t.Setenv("ELEMENTAL_TUNING_FILE", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DecayFactor")
}

func TestLoadMissingTuningFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ELEMENTAL_TUNING_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadTuningFileBadYAML(t *testing.T) {
	path := writeTuningFile(t, "engine: [not a map")

	_, err := config.LoadTuningFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestEngineTuningApplyPartial(t *testing.T) {
	decay := 0.5
	window := 4
	tuning := config.EngineTuning{DecayFactor: &decay, LoopWindow: &window}

	base := engine.DefaultConfig()
	got := tuning.Apply(base)

	assert.Equal(t, 0.5, got.DecayFactor)
	assert.Equal(t, 4, got.LoopWindow)
	assert.Equal(t, base.DominanceFloor, got.DominanceFloor)
	assert.Equal(t, base.HistorySize, got.HistorySize)
}

func TestWatcherReloadsOnRewrite(t *testing.T) {
	path := writeTuningFile(t, "engine:\n  decay_factor: 0.8\n")

	reloaded := make(chan *config.TuningFile, 4)
	w := config.NewWatcher(path, func(tf *config.TuningFile) {
		reloaded <- tf
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  decay_factor: 0.6\n"), 0o644))

	select {
	case tf := <-reloaded:
		require.NotNil(t, tf.Engine.DecayFactor)
		assert.Equal(t, 0.6, *tf.Engine.DecayFactor)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire within 3s")
	}
}

func TestWatcherKeepsRunningOnBadFile(t *testing.T) {
	path := writeTuningFile(t, "engine:\n  decay_factor: 0.8\n")

	reloaded := make(chan *config.TuningFile, 4)
	w := config.NewWatcher(path, func(tf *config.TuningFile) {
		reloaded <- tf
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// A broken write is ignored; the following good write still lands.
	require.NoError(t, os.WriteFile(path, []byte("engine: [broken"), 0o644))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  loop_window: 5\n"), 0o644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case tf := <-reloaded:
			if tf.Engine.LoopWindow != nil && *tf.Engine.LoopWindow == 5 {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not recover from the malformed write")
		}
	}
}
