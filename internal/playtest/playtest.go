// Package playtest plays a story automatically, one eligible choice per turn,
// to exercise content without a human at the keyboard.
package playtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/tatianab/chosa/internal/engine"
	"github.com/tatianab/chosa/internal/narrative"
	"go.uber.org/zap"
)

// Turn is what a chooser sees before picking.
type Turn struct {
	SceneID   string
	Lines     []string
	Choices   []string
	Inventory []string
	History   []string
}

// Chooser picks one of turn.Choices by 0-based index.
type Chooser interface {
	Choose(ctx context.Context, turn Turn) (int, error)
}

// RandomChooser picks uniformly with a fixed seed so runs are repeatable.
type RandomChooser struct {
	rng *rand.Rand
}

func NewRandomChooser(seed uint64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomChooser) Choose(_ context.Context, turn Turn) (int, error) {
	if len(turn.Choices) == 0 {
		return 0, fmt.Errorf("no choices to pick from")
	}
	return r.rng.IntN(len(turn.Choices)), nil
}

// End says why a run stopped.
type End string

const (
	EndMaxTurns  End = "turn limit reached"
	EndNoChoices End = "scene has no available choices"
	EndNotFound  End = "scene not found"
)

// Step records one turn.
type Step struct {
	Turn    int
	Scene   string
	Choice  string
	Message string
}

// Report is the outcome of a run.
type Report struct {
	RunID string
	Steps []Step
	End   End
	Final string
}

// Runner drives an engine with a chooser.
type Runner struct {
	engine  *engine.Engine
	chooser Chooser
	logger  *zap.Logger
}

func NewRunner(eng *engine.Engine, chooser Chooser, logger *zap.Logger) *Runner {
	return &Runner{engine: eng, chooser: chooser, logger: logger}
}

// Run plays at most maxTurns choices starting from the saved scene.
func (r *Runner) Run(ctx context.Context, maxTurns int) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := r.logger.With(zap.String("run_id", report.RunID))

	view, err := r.engine.Resume(ctx)
	var history []string
	for turn := 1; ; turn++ {
		if errors.Is(err, engine.ErrSceneNotFound) {
			report.End = EndNotFound
			report.Final = view.SceneID
			return report, nil
		}
		if err != nil {
			return report, err
		}
		report.Final = view.SceneID
		if len(view.Choices) == 0 {
			report.End = EndNoChoices
			return report, nil
		}
		if turn > maxTurns {
			report.End = EndMaxTurns
			return report, nil
		}

		t := Turn{
			SceneID:   view.SceneID,
			Lines:     plainLines(view.Lines),
			Inventory: r.engine.Player().Inventory(),
			History:   history,
		}
		for _, c := range view.Choices {
			t.Choices = append(t.Choices, c.Choice.Text)
		}

		n, chooseErr := r.chooser.Choose(ctx, t)
		if chooseErr != nil {
			return report, fmt.Errorf("turn %d: choose: %w", turn, chooseErr)
		}
		if n < 0 || n >= len(view.Choices) {
			return report, fmt.Errorf("turn %d: chooser picked %d of %d choices", turn, n+1, len(view.Choices))
		}

		step := Step{Turn: turn, Scene: view.SceneID, Choice: t.Choices[n]}
		history = append(history, t.Choices[n])

		next, actErr := r.engine.Activate(ctx, n)
		if errors.Is(actErr, engine.ErrInventoryFull) {
			// Drop the oldest item and replay the scene.
			step.Message = r.engine.Message()
			report.Steps = append(report.Steps, step)
			log.Info("Inventory full, dropping oldest item", zap.Int("turn", turn))
			if dropErr := r.engine.DropItem(ctx, 0); dropErr != nil {
				return report, dropErr
			}
			view, err = r.engine.Current()
			continue
		}
		report.Steps = append(report.Steps, step)
		log.Debug("Turn played", zap.Int("turn", turn), zap.String("scene", step.Scene), zap.String("choice", step.Choice))
		view, err = next, actErr
	}
}

func plainLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, narrative.Parse(l).Text())
	}
	return out
}

// Print writes a human-readable transcript.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "--- Playtest %s ---\n", r.RunID)
	for _, s := range r.Steps {
		fmt.Fprintf(w, "Turn %d [%s] -> %s\n", s.Turn, s.Scene, s.Choice)
		if s.Message != "" {
			fmt.Fprintf(w, "  %s\n", s.Message)
		}
	}
	fmt.Fprintf(w, "Ended at %q: %s\n", r.Final, r.End)
	fmt.Fprintln(w, strings.Repeat("-", 20))
}
