package engine

import "github.com/tatianab/chosa/internal/models"

// VisibleChoice is a choice that passed every gate, paired with the hover
// text the player is allowed to see.
type VisibleChoice struct {
	// Index is the position of the choice in its scene.
	Index  int
	Choice models.Choice
	Hover  string
}

// EvaluateChoices returns the choices of scene whose gates all hold against
// state, in scene order.
func EvaluateChoices(scene *models.Scene, state *models.PlayerState) []VisibleChoice {
	if scene == nil {
		return nil
	}
	var visible []VisibleChoice
	for i, c := range scene.Choices {
		if !Eligible(c, state) {
			continue
		}
		vc := VisibleChoice{Index: i, Choice: c}
		if c.Hover != "" && (c.HoverRequires == "" || state.HasItem(c.HoverRequires)) {
			vc.Hover = c.Hover
		}
		visible = append(visible, vc)
	}
	return visible
}

// Eligible reports whether every declared gate of c passes.
func Eligible(c models.Choice, state *models.PlayerState) bool {
	if c.RequiresItem != "" && !state.HasItem(c.RequiresItem) {
		return false
	}
	if c.RequiresFlag != "" && !state.HasFlag(c.RequiresFlag) {
		return false
	}
	for _, stat := range models.AllStats {
		threshold := c.Requires.Get(stat)
		if threshold != nil && float64(state.Stats.Get(stat)) < *threshold {
			return false
		}
	}
	return true
}

// blocksOnCapacity reports whether taking c would need a sixth inventory
// slot.
func blocksOnCapacity(c models.Choice, state *models.PlayerState) bool {
	return c.GrantItem != "" &&
		len(state.Inventory) >= models.InventoryLimit &&
		!state.HasItem(c.GrantItem)
}
