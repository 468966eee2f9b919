package narrative

import "iter"

// EventKind tells a renderer what changed.
type EventKind int

const (
	// AmbienceChanged switches the global lighting before a line is typed.
	AmbienceChanged EventKind = iota
	// LineStarted opens a new, empty line.
	LineStarted
	// Revealed grows the visible part of the current line by one rune.
	Revealed
	// LineEnded closes the current line.
	LineEnded
)

// Event is one step of the typing presentation.
type Event struct {
	Kind     EventKind
	Line     int
	Visible  []Segment
	Ambience Ambience
}

// Typewriter yields the events that type out lines one rune at a time. The
// sequence is lazy: nothing is parsed until the consumer pulls.
func Typewriter(lines []string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for i, raw := range lines {
			line := Parse(raw)
			for _, a := range line.Ambience {
				if !yield(Event{Kind: AmbienceChanged, Line: i, Ambience: a}) {
					return
				}
			}
			if !yield(Event{Kind: LineStarted, Line: i}) {
				return
			}
			for n := 1; n <= line.Len(); n++ {
				if !yield(Event{Kind: Revealed, Line: i, Visible: line.Prefix(n)}) {
					return
				}
			}
			if !yield(Event{Kind: LineEnded, Line: i, Visible: line.Segments}) {
				return
			}
		}
	}
}
