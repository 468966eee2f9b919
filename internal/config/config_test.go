package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "content/scenes.csv", cfg.ScenesURL)
	assert.Equal(t, "content/items.csv", cfg.ItemsURL)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "intro", cfg.StartScene)
	assert.Equal(t, []string{"loadsocial", "loadarcane", "loadphysical"}, cfg.RevealItems)
	assert.Equal(t, 30*time.Millisecond, cfg.TypingDelay)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("CHOSA_STORE", "sqlite")
	t.Setenv("CHOSA_REVEAL_ITEMS", "lens, spyglass")
	t.Setenv("CHOSA_TYPING_DELAY", "5ms")
	t.Setenv("CHOSA_START_SCENE", "prologue")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, []string{"lens", "spyglass"}, cfg.RevealItems)
	assert.Equal(t, 5*time.Millisecond, cfg.TypingDelay)
	assert.Equal(t, "prologue", cfg.StartScene)
}

func TestParseRejects(t *testing.T) {
	tests := map[string][2]string{
		"unknown store": {"CHOSA_STORE", "redis"},
		"zero delay":    {"CHOSA_TYPING_DELAY", "0s"},
		"bad delay":     {"CHOSA_TYPING_DELAY", "fast"},
		"blank start":   {"CHOSA_START_SCENE", "  "},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
