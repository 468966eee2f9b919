package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tatianab/chosa/internal/models"
)

// ErrSceneNotFound is returned when a scene id does not resolve.
var ErrSceneNotFound = errors.New("scene not found")

// Graph maps folded scene ids to scenes. It is built once per content load
// and never mutated.
type Graph struct {
	scenes map[string]*models.Scene
}

func NewGraph(scenes map[string]*models.Scene) *Graph {
	g := &Graph{scenes: make(map[string]*models.Scene, len(scenes))}
	for id, s := range scenes {
		g.scenes[models.NormalizeID(id)] = s
	}
	return g
}

// Scene looks up id ignoring case.
func (g *Graph) Scene(id string) (*models.Scene, error) {
	s, ok := g.scenes[models.NormalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, id)
	}
	return s, nil
}

// Len returns the number of scenes.
func (g *Graph) Len() int {
	return len(g.scenes)
}

// IDs returns every scene id in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.scenes))
	for id := range g.scenes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// DanglingTarget is a choice whose next id names no scene.
type DanglingTarget struct {
	Scene  string
	Choice string
	Target string
}

// DanglingTargets lists choices that would lead to the not-found view.
func (g *Graph) DanglingTargets() []DanglingTarget {
	var out []DanglingTarget
	for _, id := range g.IDs() {
		for _, c := range g.scenes[id].Choices {
			if _, ok := g.scenes[models.NormalizeID(c.Next)]; !ok {
				out = append(out, DanglingTarget{Scene: id, Choice: c.Text, Target: c.Next})
			}
		}
	}
	return out
}
