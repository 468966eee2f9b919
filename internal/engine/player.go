package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatianab/chosa/internal/models"
)

// ErrItemIndex is returned by DropItem for a position outside the inventory.
var ErrItemIndex = errors.New("no item at that position")

// Persister loads and saves player state. Save writes only the named keys,
// or every key when none are named.
type Persister interface {
	Load(ctx context.Context) (models.PlayerState, error)
	Save(ctx context.Context, state models.PlayerState, keys ...models.Key) error
	Clear(ctx context.Context) error
}

// Player is the player state store. Every mutator writes the fields it
// changed through to the persister before returning.
type Player struct {
	state models.PlayerState
	store Persister
	start string
}

// NewPlayer restores saved state, falling back to defaults for anything
// never saved.
func NewPlayer(ctx context.Context, store Persister, start string) (*Player, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load player state: %w", err)
	}
	return &Player{state: state, store: store, start: start}, nil
}

// State returns a copy of the current state.
func (p *Player) State() models.PlayerState {
	return p.state.Clone()
}

func (p *Player) Inventory() []string {
	return p.State().Inventory
}

func (p *Player) HasItem(id string) bool {
	return p.state.HasItem(id)
}

func (p *Player) HasFlag(name string) bool {
	return p.state.HasFlag(name)
}

func (p *Player) Stats() models.Stats {
	return p.state.Stats
}

func (p *Player) CurrentScene() string {
	return p.state.CurrentScene
}

// AddItem appends id unless it is already carried or the inventory is full.
// It reports whether the inventory changed.
func (p *Player) AddItem(ctx context.Context, id string) (bool, error) {
	if id == "" || p.state.HasItem(id) || len(p.state.Inventory) >= models.InventoryLimit {
		return false, nil
	}
	p.state.Inventory = append(p.state.Inventory, id)
	return true, p.persist(ctx, models.KeyInventory)
}

// DropItem removes the item at index.
func (p *Player) DropItem(ctx context.Context, index int) (string, error) {
	if index < 0 || index >= len(p.state.Inventory) {
		return "", fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	item := p.state.Inventory[index]
	p.state.Inventory = append(p.state.Inventory[:index:index], p.state.Inventory[index+1:]...)
	return item, p.persist(ctx, models.KeyInventory)
}

// SetFlag marks name as true. Setting a flag twice is a no-op.
func (p *Player) SetFlag(ctx context.Context, name string) error {
	if name == "" || p.state.Flags[name] {
		return nil
	}
	p.state.Flags[name] = true
	return p.persist(ctx, models.KeyFlags)
}

// AdjustStat adds delta to the named stat.
func (p *Player) AdjustStat(ctx context.Context, name models.Stat, delta int) error {
	if !p.state.Stats.Add(name, delta) {
		return fmt.Errorf("unknown stat %q", name)
	}
	return p.persist(ctx, models.KeyStats)
}

// SetScene records the current scene.
func (p *Player) SetScene(ctx context.Context, id string) error {
	p.state.CurrentScene = id
	return p.persist(ctx, models.KeyCurrentScene)
}

// Save writes every field.
func (p *Player) Save(ctx context.Context) error {
	return p.persist(ctx)
}

// Reset clears everything saved and then restores defaults. If the clear
// fails the in-memory state is left as it was.
func (p *Player) Reset(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return err
	}
	p.state = models.NewPlayerState(p.start)
	return nil
}

func (p *Player) persist(ctx context.Context, keys ...models.Key) error {
	if err := p.store.Save(ctx, p.state, keys...); err != nil {
		return fmt.Errorf("persist player state: %w", err)
	}
	return nil
}
