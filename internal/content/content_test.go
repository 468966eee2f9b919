package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scenesCSV = `id,text,choice text,next id,item,requires item,flag,requires flag,hover,requires hover,modify physical,modify social,modify arcane,requires physical,requires social,requires arcane
Intro,"You wake in a cold room.
A door stands open.",Walk through the door,hall,,,,,,,,,,,,
intro,This text is ignored.,Pick up the lantern,intro,lantern,,,,A brass lantern,lantern,,,,,,
intro,,Orphan row without text,hall,,,,,,,,,,,,
,No id here,Nowhere,hall,,,,,,,,,,,,
hall,A long hall.,Study the runes,library,,,readRunes,,,,,,2,,,
hall,,,,,,,,,,,,,,,
hall,A long hall again.,Force the gate,gate,,,,,,,1,,,3,,
hall,A long hall again.,Charm the guard,gate,,,,,,,,oops,,,,
hall,A long hall again.,Speak the word,vault,,,,metWizard,,,,,,,,2.5
`

const itemsCSV = `Item ID,Description
Lantern, A brass lantern.
rope,
,Orphan description
LoadArcane,An arcane primer.
`

func TestReadRows(t *testing.T) {
	rows, err := ReadRows([]byte("\xef\xbb\xbfID, Text \nintro,hello\n\nhall\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "intro", rows[0].Get("id"))
	assert.Equal(t, "hello", rows[0].Get("text"))
	assert.Equal(t, "hall", rows[1].Get("id"))
	assert.Equal(t, "", rows[1].Get("text"), "missing trailing column is absent")
	assert.Equal(t, 4, rows[1].Line)
}

func TestReadRowsKeepsBareQuotes(t *testing.T) {
	data := "id,text,choice text,next id\n" +
		"intro,He said \"hello\" to you.,Go,hall\n" +
		"hall,A \"long\" hall.,,\n"
	rows, err := ReadRows([]byte(data), colID, colText)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `He said "hello" to you.`, rows[0].Get(colText))
	assert.Equal(t, "hall", rows[0].Get(colNextID))
	assert.Equal(t, `A "long" hall.`, rows[1].Get(colText))
}

func TestReadRowsMissingColumn(t *testing.T) {
	_, err := ReadRows([]byte("name,body\nintro,hello\n"), colID, colText)
	assert.ErrorIs(t, err, ErrParse)

	rows, err := ReadRows([]byte("name,body\nintro,hello\n"))
	require.NoError(t, err, "no columns required")
	assert.Len(t, rows, 1)
}

func TestParseItems(t *testing.T) {
	rows, err := ReadRows([]byte(itemsCSV))
	require.NoError(t, err)

	catalog, skipped := ParseItems("items.csv", rows)
	assert.Equal(t, "A brass lantern.", catalog.Describe("LANTERN"))
	assert.Equal(t, "An arcane primer.", catalog.Describe("loadarcane"))
	assert.Len(t, catalog, 2)
	assert.Len(t, skipped, 2)
}

func TestParseScenes(t *testing.T) {
	rows, err := ReadRows([]byte(scenesCSV))
	require.NoError(t, err)

	scenes, skipped := ParseScenes("scenes.csv", rows)
	require.Len(t, scenes, 2)

	intro := scenes["intro"]
	require.NotNil(t, intro)
	assert.Equal(t, "You wake in a cold room.\nA door stands open.", intro.Text, "first text wins")
	require.Len(t, intro.Choices, 2)
	assert.Equal(t, "hall", intro.Choices[0].Next)
	assert.Equal(t, "lantern", intro.Choices[1].GrantItem)
	assert.Equal(t, "A brass lantern", intro.Choices[1].Hover)
	assert.Equal(t, "lantern", intro.Choices[1].HoverRequires)
	assert.True(t, intro.Choices[0].Modify.Empty())
	assert.True(t, intro.Choices[0].Requires.Empty())

	hall := scenes["hall"]
	require.NotNil(t, hall)
	assert.Equal(t, "A long hall.", hall.Text)
	require.Len(t, hall.Choices, 3)

	runes := hall.Choices[0]
	assert.Equal(t, "readRunes", runes.SetFlag)
	require.NotNil(t, runes.Modify.Arcane)
	assert.Equal(t, 2, *runes.Modify.Arcane)

	gate := hall.Choices[1]
	require.NotNil(t, gate.Modify.Physical)
	assert.Equal(t, 1, *gate.Modify.Physical)
	require.NotNil(t, gate.Requires.Physical)
	assert.Equal(t, 3.0, *gate.Requires.Physical)

	word := hall.Choices[2]
	assert.Equal(t, "metWizard", word.RequiresFlag)
	require.NotNil(t, word.Requires.Arcane)
	assert.Equal(t, 2.5, *word.Requires.Arcane)

	// Rows without text, without id, and with a non-numeric delta.
	require.Len(t, skipped, 4)
	assert.Contains(t, skipped[3].Reason, "modify social")
	assert.Equal(t, "scenes.csv", skipped[3].Source)
}

type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	data, ok := f[location]
	if !ok {
		return nil, errors.Join(ErrFetch, errors.New("404"))
	}
	return []byte(data), nil
}

func TestLoaderLoad(t *testing.T) {
	l := NewLoader(fakeFetcher{"items": itemsCSV, "scenes": scenesCSV}, "items", "scenes", zap.NewNop())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	assert.Len(t, c.Scenes, 2)
	assert.Len(t, c.Skipped, 6)
}

func TestLoaderMalformedItemsIsNotFatal(t *testing.T) {
	l := NewLoader(fakeFetcher{"items": "a,b\nx,y\n", "scenes": scenesCSV}, "items", "scenes", zap.NewNop())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Len(t, c.Scenes, 2)
}

func TestLoaderFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fakeFetcher
		want    error
		message string
	}{
		{"missing items", fakeFetcher{"scenes": scenesCSV}, ErrFetch, "Failed to load story or item data."},
		{"missing scenes", fakeFetcher{"items": itemsCSV}, ErrFetch, "Failed to load story or item data."},
		{"malformed scenes", fakeFetcher{"items": itemsCSV, "scenes": "scene,body\nintro,hi\n"}, ErrParse, "Error parsing CSV data."},
		{"stray quote in scenes", fakeFetcher{"items": itemsCSV, "scenes": "id,text\nintro,a \"b\" c\n"}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.fetcher, "items", "scenes", zap.NewNop()).Load(context.Background())
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, FailureMessage(err))
		})
	}
}

func TestSourceFetcherHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scenes.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(scenesCSV))
	}))
	defer srv.Close()

	f := &SourceFetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), srv.URL+"/scenes.csv")
	require.NoError(t, err)
	assert.Equal(t, scenesCSV, string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/items.csv")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestSourceFetcherFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte(itemsCSV), 0644))

	f := NewSourceFetcher(0)
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, itemsCSV, string(data))

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, ErrFetch)
}

func TestBundledStory(t *testing.T) {
	dir := filepath.Join("..", "..", "content")
	l := NewLoader(NewSourceFetcher(0), filepath.Join(dir, "items.csv"), filepath.Join(dir, "scenes.csv"), zap.NewNop())
	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Skipped)
	require.Contains(t, c.Scenes, "intro")

	for id, scene := range c.Scenes {
		for _, choice := range scene.Choices {
			assert.Contains(t, c.Scenes, choice.Next, "choice %q of %s", choice.Text, id)
			if choice.GrantItem != "" {
				assert.NotEmpty(t, c.Items.Describe(choice.GrantItem), "item %s", choice.GrantItem)
			}
		}
	}
}
