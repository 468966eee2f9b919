// Package narrative turns scene text into styled segments and the sequence
// of events that types it out.
package narrative

import (
	"regexp"
	"strings"
)

// Style is the look of a run of text. Styles nest, so a run can carry more
// than one.
type Style uint8

// Plain is text outside every styled block.
const Plain Style = 0

const (
	Glow Style = 1 << iota
	Void
	Corrode
)

// Has reports whether s includes other.
func (s Style) Has(other Style) bool {
	return s&other != 0
}

// Ambience is the global lighting switched by [day] and [night] tags.
type Ambience int

const (
	Night Ambience = iota
	Day
)

// Segment is a run of text sharing one set of styles.
type Segment struct {
	Text  string
	Style Style
}

// Line is one parsed line of scene text.
type Line struct {
	Segments []Segment
	// Ambience lists the lighting switches found in the line, in the order
	// they take effect.
	Ambience []Ambience
}

var (
	dayTag   = regexp.MustCompile(`(?is)\[day\](.*?)\[/day\]`)
	nightTag = regexp.MustCompile(`(?is)\[night\](.*?)\[/night\]`)
)

// styleTags are applied in this order, each as its own pass over the text
// left by the previous one.
var styleTags = []struct {
	style Style
	re    *regexp.Regexp
}{
	{Glow, regexp.MustCompile(`(?is)\[glow\](.*?)\[/glow\]`)},
	{Void, regexp.MustCompile(`(?is)\[void\](.*?)\[/void\]`)},
	{Corrode, regexp.MustCompile(`(?is)\[corrode\](.*?)\[/corrode\]`)},
}

// Parse strips [day] and [night] blocks (recording the switch) and then
// applies [glow], [void] and [corrode] blocks one tag at a time, so blocks
// may nest. A block whose closing tag never appears stays as literal text.
// An empty styled block renders as a single space.
func Parse(raw string) Line {
	var line Line
	for range dayTag.FindAllStringIndex(raw, -1) {
		line.Ambience = append(line.Ambience, Day)
	}
	raw = dayTag.ReplaceAllString(raw, "")
	for range nightTag.FindAllStringIndex(raw, -1) {
		line.Ambience = append(line.Ambience, Night)
	}
	raw = nightTag.ReplaceAllString(raw, "")

	// styles holds the style of every byte of text.
	text, styles := raw, make([]Style, len(raw))
	for _, tag := range styleTags {
		text, styles = applyTag(text, styles, tag.style, tag.re)
	}
	line.Segments = segments(text, styles)
	return line
}

func applyTag(text string, styles []Style, style Style, re *regexp.Regexp) (string, []Style) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, styles
	}
	var b strings.Builder
	out := make([]Style, 0, len(styles))
	pos := 0
	for _, m := range matches {
		b.WriteString(text[pos:m[0]])
		out = append(out, styles[pos:m[0]]...)
		if m[4] == m[5] {
			b.WriteByte(' ')
			out = append(out, styles[m[0]]|style)
		}
		b.WriteString(text[m[4]:m[5]])
		for _, s := range styles[m[4]:m[5]] {
			out = append(out, s|style)
		}
		pos = m[1]
	}
	b.WriteString(text[pos:])
	out = append(out, styles[pos:]...)
	return b.String(), out
}

// segments groups consecutive bytes of the same style. Tags are ASCII, so
// a style change never falls inside a multi-byte rune.
func segments(text string, styles []Style) []Segment {
	var out []Segment
	start := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || styles[i] != styles[start] {
			out = append(out, Segment{Text: text[start:i], Style: styles[start]})
			start = i
		}
	}
	return out
}

// Text returns the line without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Len is the number of runes in the line.
func (l Line) Len() int {
	n := 0
	for _, s := range l.Segments {
		n += len([]rune(s.Text))
	}
	return n
}

// Prefix returns the segments covering the first n runes.
func (l Line) Prefix(n int) []Segment {
	var out []Segment
	for _, s := range l.Segments {
		if n <= 0 {
			break
		}
		r := []rune(s.Text)
		if len(r) > n {
			r = r[:n]
		}
		out = append(out, Segment{Text: string(r), Style: s.Style})
		n -= len(r)
	}
	return out
}
