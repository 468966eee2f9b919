package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/chosa/internal/models"
	"github.com/tatianab/chosa/internal/storage"
	"go.uber.org/zap"
)

func testScenes() map[string]*models.Scene {
	return map[string]*models.Scene{
		"intro": {ID: "intro", Text: "You wake.\nThe room is cold.", Choices: []models.Choice{
			{Text: "Take the primer", Next: "Library", GrantItem: "LoadArcane"},
			{Text: "Meditate", Next: "library", SetFlag: "calm", Modify: modify(models.Arcane, 2)},
			{Text: "Follow the draft", Next: "nowhere"},
			{Text: "Enter the vault", Next: "vault", RequiresFlag: "metWizard"},
		}},
		"library": {ID: "library", Text: "Shelves.", Choices: []models.Choice{
			{Text: "Back", Next: "intro"},
			{Text: "Read", Next: "intro", RequiresFlag: "calm", Hover: "dusty", HoverRequires: "LoadArcane"},
		}},
		"vault": {ID: "vault", Text: "Gold."},
	}
}

type fixture struct {
	engine *Engine
	repo   *models.StateRepository
	kv     *storage.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	repo := models.NewStateRepository(kv, "intro")
	p, err := NewPlayer(ctx, repo, "intro")
	require.NoError(t, err)
	e := New(NewGraph(testScenes()), models.ItemCatalog{"loadarcane": "An arcane primer."}, p, Options{
		StartScene:  "intro",
		RevealItems: []string{"loadsocial", "loadarcane", "loadphysical"},
	}, zap.NewNop())
	return fixture{engine: e, repo: repo, kv: kv}
}

func choiceTexts(v View) []string {
	var out []string
	for _, c := range v.Choices {
		out = append(out, c.Choice.Text)
	}
	return out
}

func TestResumeShowsStartScene(t *testing.T) {
	f := newFixture(t)

	v, err := f.engine.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "intro", v.SceneID)
	assert.Equal(t, []string{"You wake.", "The room is cold."}, v.Lines)
	assert.Equal(t, []string{"Take the primer", "Meditate", "Follow the draft"}, choiceTexts(v))
}

func TestActivateModifiesArcane(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Resume(ctx)
	require.NoError(t, err)

	v, err := f.engine.Activate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "library", v.SceneID)
	assert.Equal(t, []string{"Back", "Read"}, choiceTexts(v))
	assert.Equal(t, "", v.Choices[1].Hover)

	assert.Equal(t, 3, f.engine.Player().Stats().Arcane)
	saved, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Stats.Arcane)
	assert.Equal(t, "library", saved.CurrentScene)
	assert.True(t, saved.Flags["calm"])
}

func TestActivateGrantsItemAndRevealsStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Resume(ctx)
	require.NoError(t, err)

	for _, line := range f.engine.StatsDisplay() {
		assert.Equal(t, "?", line.Value)
	}
	assert.False(t, f.engine.StatsRevealed())

	_, err = f.engine.Activate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"LoadArcane"}, f.engine.Player().Inventory())
	assert.True(t, f.engine.StatsRevealed())
	assert.Equal(t, []StatLine{
		{Name: models.Physical, Value: "1"},
		{Name: models.Social, Value: "1"},
		{Name: models.Arcane, Value: "1"},
	}, f.engine.StatsDisplay())
	assert.Equal(t, []ItemLine{{Index: 0, ID: "LoadArcane", Description: "An arcane primer."}}, f.engine.InventoryDisplay())
}

func TestRevealDoesNotAffectGates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.engine.Player().AdjustStat(ctx, models.Arcane, 5))

	masked, err := f.engine.Current()
	require.NoError(t, err)
	_, err = f.engine.Player().AddItem(ctx, "loadphysical")
	require.NoError(t, err)
	revealed, err := f.engine.Current()
	require.NoError(t, err)

	assert.Equal(t, choiceTexts(masked), choiceTexts(revealed))
}

func TestActivateInventoryFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_, err := f.engine.Player().AddItem(ctx, id)
		require.NoError(t, err)
	}
	_, err := f.engine.Resume(ctx)
	require.NoError(t, err)

	_, err = f.engine.Activate(ctx, 0)
	assert.ErrorIs(t, err, ErrInventoryFull)
	assert.Equal(t, MsgInventoryFull, f.engine.Message())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, f.engine.Player().Inventory())
	assert.Equal(t, "intro", f.engine.Player().CurrentScene())

	saved, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "intro", saved.CurrentScene)

	// A choice without an item still works and clears the message.
	v, err := f.engine.Activate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "library", v.SceneID)
	assert.Equal(t, "", f.engine.Message())
}

func TestActivateFullInventoryAlreadyHoldingItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d", "LoadArcane"} {
		_, err := f.engine.Player().AddItem(ctx, id)
		require.NoError(t, err)
	}

	v, err := f.engine.Activate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "library", v.SceneID)
	assert.Len(t, f.engine.Player().Inventory(), 5)
}

func TestActivateMissingTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Resume(ctx)
	require.NoError(t, err)

	v, err := f.engine.Activate(ctx, 2)
	assert.ErrorIs(t, err, ErrSceneNotFound)
	assert.True(t, v.NotFound)
	assert.Equal(t, []string{`Scene "nowhere" not found.`}, v.Lines)
	assert.Equal(t, "intro", f.engine.Player().CurrentScene())
}

func TestActivateUnknownChoice(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Activate(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoSuchChoice, "gated choices are not addressable")
}

func TestActivateWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.engine.mu.Lock()
	defer f.engine.mu.Unlock()

	_, err := f.engine.Activate(context.Background(), 0)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestResumeMissingSavedScene(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.engine.Player().SetScene(ctx, "Gone"))

	v, err := f.engine.Resume(ctx)
	assert.ErrorIs(t, err, ErrSceneNotFound)
	assert.True(t, v.NotFound)
}

func TestSceneLookupIgnoresCase(t *testing.T) {
	f := newFixture(t)
	v, err := f.engine.Enter(context.Background(), "LIBRARY")
	require.NoError(t, err)
	assert.Equal(t, "library", v.SceneID)
}

func TestResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Activate(ctx, 0)
	require.NoError(t, err)

	_, err = f.engine.ConfirmReset(ctx)
	assert.ErrorIs(t, err, ErrNoResetPending)

	f.engine.RequestReset()
	assert.True(t, f.engine.ResetPending())
	f.engine.CancelReset()
	assert.False(t, f.engine.ResetPending())
	assert.Equal(t, []string{"LoadArcane"}, f.engine.Player().Inventory())

	f.engine.RequestReset()
	v, err := f.engine.ConfirmReset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "intro", v.SceneID)
	assert.Equal(t, models.NewPlayerState("intro"), f.engine.Player().State())
	assert.Equal(t, []string{"current_scene"}, f.kv.Keys())
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.engine.Save(ctx))
	assert.Equal(t, MsgSaved, f.engine.Message())
	assert.ElementsMatch(t, []string{"inventory", "flags", "stats", "current_scene"}, f.kv.Keys())
}

func TestTogglePanel(t *testing.T) {
	f := newFixture(t)
	for _, p := range []Panel{PanelInventory, PanelMenu, PanelStats} {
		assert.True(t, f.engine.PanelVisible(p), p.String())
		assert.False(t, f.engine.TogglePanel(p))
		assert.False(t, f.engine.PanelVisible(p))
		assert.True(t, f.engine.TogglePanel(p))
	}
}

func TestDanglingTargets(t *testing.T) {
	g := NewGraph(testScenes())
	assert.Equal(t, []DanglingTarget{{Scene: "intro", Choice: "Follow the draft", Target: "nowhere"}}, g.DanglingTargets())
	assert.Equal(t, 3, g.Len())
}
