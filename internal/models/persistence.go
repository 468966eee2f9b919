package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatianab/chosa/internal/storage"
	"gopkg.in/yaml.v3"
)

// Key names one independently persisted part of the player state.
type Key string

const (
	KeyInventory    Key = "inventory"
	KeyFlags        Key = "flags"
	KeyStats        Key = "stats"
	KeyCurrentScene Key = "current_scene"
)

// AllKeys lists every persisted key.
var AllKeys = []Key{KeyInventory, KeyFlags, KeyStats, KeyCurrentScene}

// StateRepository reads and writes PlayerState fields against a key-value
// store, one yaml document per key.
type StateRepository struct {
	kv    storage.KV
	start string
}

func NewStateRepository(kv storage.KV, start string) *StateRepository {
	return &StateRepository{kv: kv, start: start}
}

// Load restores the saved state. Missing keys keep their defaults.
func (r *StateRepository) Load(ctx context.Context) (PlayerState, error) {
	state := NewPlayerState(r.start)

	if err := r.get(ctx, KeyInventory, &state.Inventory); err != nil {
		return PlayerState{}, err
	}
	if err := r.get(ctx, KeyFlags, &state.Flags); err != nil {
		return PlayerState{}, err
	}
	if err := r.get(ctx, KeyStats, &state.Stats); err != nil {
		return PlayerState{}, err
	}

	scene, err := r.kv.Get(ctx, string(KeyCurrentScene))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return PlayerState{}, fmt.Errorf("load %s: %w", KeyCurrentScene, err)
	default:
		if id := strings.TrimSpace(string(scene)); id != "" {
			state.CurrentScene = id
		}
	}

	if state.Inventory == nil {
		state.Inventory = []string{}
	}
	if state.Flags == nil {
		state.Flags = map[string]bool{}
	}
	return state, nil
}

func (r *StateRepository) get(ctx context.Context, key Key, out any) error {
	data, err := r.kv.Get(ctx, string(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes the given keys of state, or every key when none are named.
func (r *StateRepository) Save(ctx context.Context, state PlayerState, keys ...Key) error {
	if len(keys) == 0 {
		keys = AllKeys
	}
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case KeyInventory:
			data, err = yaml.Marshal(state.Inventory)
		case KeyFlags:
			data, err = yaml.Marshal(state.Flags)
		case KeyStats:
			data, err = yaml.Marshal(state.Stats)
		case KeyCurrentScene:
			data = []byte(state.CurrentScene)
		default:
			return fmt.Errorf("unknown state key %q", key)
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := r.kv.Set(ctx, string(key), data); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Clear removes every saved value.
func (r *StateRepository) Clear(ctx context.Context) error {
	if err := r.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear saved state: %w", err)
	}
	return nil
}
