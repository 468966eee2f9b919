// Package engine evaluates the scene graph against the player's state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/tatianab/chosa/internal/models"
	"go.uber.org/zap"
)

var (
	ErrInventoryFull  = errors.New("inventory full")
	ErrBusy           = errors.New("another choice is still being applied")
	ErrNoSuchChoice   = errors.New("no such choice")
	ErrNoResetPending = errors.New("no reset was requested")
)

// Player-facing messages.
const (
	MsgInventoryFull = "Your inventory is full! Drop an item before picking up another."
	MsgSaved         = "Game saved!"
	MsgConfirmReset  = "Restart from the beginning? All progress will be lost."
)

// Panel names a toggleable part of the display.
type Panel int

const (
	PanelInventory Panel = iota
	PanelMenu
	PanelStats
)

func (p Panel) String() string {
	switch p {
	case PanelInventory:
		return "inventory"
	case PanelMenu:
		return "menu"
	case PanelStats:
		return "stats"
	}
	return "panel(" + strconv.Itoa(int(p)) + ")"
}

// Options configures an Engine.
type Options struct {
	StartScene  string
	RevealItems []string
}

// View is what the presentation layer renders for one scene.
type View struct {
	SceneID string
	Lines   []string
	Choices []VisibleChoice
	// NotFound is set when SceneID does not resolve; Lines then holds the
	// message to show instead of the story.
	NotFound bool
}

// StatLine is one row of the stats panel.
type StatLine struct {
	Name  models.Stat
	Value string
}

// ItemLine is one row of the inventory panel.
type ItemLine struct {
	Index       int
	ID          string
	Description string
}

// Engine drives a single playthrough. Activations are serialized: a second
// Activate while one is in flight fails with ErrBusy.
type Engine struct {
	graph  *Graph
	items  models.ItemCatalog
	player *Player
	reveal map[string]bool
	start  string
	logger *zap.Logger

	mu           sync.Mutex
	resetPending bool
	hidden       map[Panel]bool
	message      string
}

func New(graph *Graph, items models.ItemCatalog, player *Player, opts Options, logger *zap.Logger) *Engine {
	if opts.StartScene == "" {
		opts.StartScene = models.DefaultStartScene
	}
	if items == nil {
		items = models.ItemCatalog{}
	}
	reveal := make(map[string]bool, len(opts.RevealItems))
	for _, id := range opts.RevealItems {
		reveal[models.NormalizeID(id)] = true
	}

	for _, d := range graph.DanglingTargets() {
		logger.Warn("Choice leads to a missing scene",
			zap.String("scene", d.Scene),
			zap.String("choice", d.Choice),
			zap.String("target", d.Target))
	}

	return &Engine{
		graph:  graph,
		items:  items,
		player: player,
		reveal: reveal,
		start:  opts.StartScene,
		logger: logger,
		hidden: map[Panel]bool{},
	}
}

// Player exposes the underlying state store.
func (e *Engine) Player() *Player {
	return e.player
}

// Message is the current notice for the player, if any.
func (e *Engine) Message() string {
	return e.message
}

// Resume shows the scene the player was last in.
func (e *Engine) Resume(ctx context.Context) (View, error) {
	return e.Enter(ctx, e.player.CurrentScene())
}

// Enter moves the player to id. An unknown id leaves the current scene
// unchanged and returns the not-found view together with ErrSceneNotFound.
func (e *Engine) Enter(ctx context.Context, id string) (View, error) {
	scene, err := e.graph.Scene(id)
	if err != nil {
		e.logger.Error("Scene not found", zap.String("scene", id))
		return View{
			SceneID:  id,
			Lines:    []string{fmt.Sprintf("Scene %q not found.", id)},
			NotFound: true,
		}, err
	}

	e.message = ""
	if err := e.player.SetScene(ctx, scene.ID); err != nil {
		return View{}, err
	}
	return e.view(scene), nil
}

// Current re-evaluates the current scene without moving.
func (e *Engine) Current() (View, error) {
	id := e.player.CurrentScene()
	scene, err := e.graph.Scene(id)
	if err != nil {
		return View{SceneID: id, Lines: []string{fmt.Sprintf("Scene %q not found.", id)}, NotFound: true}, err
	}
	return e.view(scene), nil
}

func (e *Engine) view(scene *models.Scene) View {
	state := e.player.State()
	return View{
		SceneID: scene.ID,
		Lines:   scene.Lines(),
		Choices: EvaluateChoices(scene, &state),
	}
}

// Activate applies the n-th visible choice of the current scene (0-based)
// and moves to its target. Effects apply in order: capacity check, item
// grant, flag, stat deltas, stats save, scene transition.
func (e *Engine) Activate(ctx context.Context, n int) (View, error) {
	if !e.mu.TryLock() {
		return View{}, ErrBusy
	}
	defer e.mu.Unlock()

	scene, err := e.graph.Scene(e.player.CurrentScene())
	if err != nil {
		return View{}, err
	}
	state := e.player.State()
	visible := EvaluateChoices(scene, &state)
	if n < 0 || n >= len(visible) {
		return View{}, fmt.Errorf("%w: %d", ErrNoSuchChoice, n)
	}
	c := visible[n].Choice

	if blocksOnCapacity(c, &state) {
		e.message = MsgInventoryFull
		e.logger.Info("Inventory full", zap.String("item", c.GrantItem))
		return View{}, ErrInventoryFull
	}
	e.message = ""

	if c.GrantItem != "" {
		if _, err := e.player.AddItem(ctx, c.GrantItem); err != nil {
			return View{}, err
		}
	}
	if err := e.player.SetFlag(ctx, c.SetFlag); err != nil {
		return View{}, err
	}
	for _, stat := range models.AllStats {
		if d := c.Modify.Get(stat); d != nil {
			e.player.state.Stats.Add(stat, *d)
		}
	}
	if err := e.player.persist(ctx, models.KeyStats); err != nil {
		return View{}, err
	}

	e.logger.Debug("Choice taken",
		zap.String("scene", scene.ID),
		zap.String("choice", c.Text),
		zap.String("next", c.Next))
	return e.Enter(ctx, c.Next)
}

// DropItem removes the inventory item at index.
func (e *Engine) DropItem(ctx context.Context, index int) error {
	item, err := e.player.DropItem(ctx, index)
	if err != nil {
		return err
	}
	e.logger.Debug("Item dropped", zap.String("item", item))
	return nil
}

// Save writes the whole state.
func (e *Engine) Save(ctx context.Context) error {
	if err := e.player.Save(ctx); err != nil {
		return err
	}
	e.message = MsgSaved
	return nil
}

// RequestReset asks for confirmation before a reset.
func (e *Engine) RequestReset() {
	e.resetPending = true
}

// ResetPending reports whether a reset is awaiting confirmation.
func (e *Engine) ResetPending() bool {
	return e.resetPending
}

// CancelReset dismisses a pending reset.
func (e *Engine) CancelReset() {
	e.resetPending = false
}

// ConfirmReset restores defaults, clears saved state and shows the start
// scene.
func (e *Engine) ConfirmReset(ctx context.Context) (View, error) {
	if !e.resetPending {
		return View{}, ErrNoResetPending
	}
	e.resetPending = false
	if err := e.player.Reset(ctx); err != nil {
		return View{}, err
	}
	e.message = ""
	e.logger.Info("Game reset")
	return e.Enter(ctx, e.start)
}

// TogglePanel flips a panel and returns whether it is now visible.
func (e *Engine) TogglePanel(p Panel) bool {
	e.hidden[p] = !e.hidden[p]
	return !e.hidden[p]
}

// PanelVisible reports whether p is shown. Panels start visible.
func (e *Engine) PanelVisible(p Panel) bool {
	return !e.hidden[p]
}

// StatsRevealed reports whether the player carries any reveal item.
func (e *Engine) StatsRevealed() bool {
	for _, item := range e.player.state.Inventory {
		if e.reveal[models.NormalizeID(item)] {
			return true
		}
	}
	return false
}

// StatsDisplay returns the stats panel rows. Values are masked as "?"
// unless a reveal item is carried.
func (e *Engine) StatsDisplay() []StatLine {
	revealed := e.StatsRevealed()
	stats := e.player.Stats()
	lines := make([]StatLine, 0, len(models.AllStats))
	for _, s := range models.AllStats {
		v := "?"
		if revealed {
			v = strconv.Itoa(stats.Get(s))
		}
		lines = append(lines, StatLine{Name: s, Value: v})
	}
	return lines
}

// InventoryDisplay returns the inventory rows with their descriptions.
func (e *Engine) InventoryDisplay() []ItemLine {
	inv := e.player.Inventory()
	lines := make([]ItemLine, 0, len(inv))
	for i, item := range inv {
		lines = append(lines, ItemLine{Index: i, ID: item, Description: e.items.Describe(item)})
	}
	return lines
}
