package content

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tatianab/chosa/internal/models"
)

// ErrParse marks a source that is not readable as CSV at all.
var ErrParse = errors.New("malformed csv")

// Column names of the items source.
const (
	colItemID          = "item id"
	colItemDescription = "description"
)

// Column names of the scenes source.
const (
	colID            = "id"
	colText          = "text"
	colChoiceText    = "choice text"
	colNextID        = "next id"
	colItem          = "item"
	colRequiresItem  = "requires item"
	colFlag          = "flag"
	colRequiresFlag  = "requires flag"
	colHover         = "hover"
	colRequiresHover = "requires hover"
)

func modifyColumn(s models.Stat) string   { return "modify " + string(s) }
func requiresColumn(s models.Stat) string { return "requires " + string(s) }

// Row is one data record keyed by lower-cased header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the named column, or "" when the column is absent.
func (r Row) Get(col string) string {
	return r.Fields[col]
}

// RowError describes a record that was skipped.
type RowError struct {
	Source string
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.Source, e.Line, e.Reason)
}

// ReadRows reads a headed CSV document. Blank lines are skipped, short
// records leave their trailing columns absent and a quote inside an unquoted
// field is kept as text. A header lacking any of the required columns is an
// ErrParse.
func ReadRows(data []byte, required ...string) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, fmt.Errorf("%w: header has no %q column", ErrParse, col)
		}
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		line, _ := r.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, v := range record {
			if i < len(header) && header[i] != "" {
				fields[header[i]] = v
			}
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	return rows, nil
}

// ParseItems builds the item catalog. Rows without an id or description are
// reported and skipped.
func ParseItems(source string, rows []Row) (models.ItemCatalog, []RowError) {
	catalog := models.ItemCatalog{}
	var skipped []RowError
	for _, row := range rows {
		id := strings.TrimSpace(row.Get(colItemID))
		desc := strings.TrimSpace(row.Get(colItemDescription))
		if id == "" || desc == "" {
			skipped = append(skipped, RowError{Source: source, Line: row.Line, Reason: "item missing id or description"})
			continue
		}
		catalog[models.NormalizeID(id)] = desc
	}
	return catalog, skipped
}

// ParseScenes groups rows by scene id. The first row seen for an id supplies
// the scene text; every row with choice text adds a choice in row order.
func ParseScenes(source string, rows []Row) (map[string]*models.Scene, []RowError) {
	scenes := map[string]*models.Scene{}
	var skipped []RowError
	for _, row := range rows {
		id := models.NormalizeID(row.Get(colID))
		text := row.Get(colText)
		if id == "" || text == "" {
			skipped = append(skipped, RowError{Source: source, Line: row.Line, Reason: "scene row missing id or text"})
			continue
		}

		scene, ok := scenes[id]
		if !ok {
			scene = &models.Scene{ID: id, Text: text}
			scenes[id] = scene
		}

		if row.Get(colChoiceText) == "" {
			continue
		}
		choice, err := parseChoice(row)
		if err != nil {
			skipped = append(skipped, RowError{Source: source, Line: row.Line, Reason: err.Error()})
			continue
		}
		scene.Choices = append(scene.Choices, choice)
	}
	return scenes, skipped
}

func parseChoice(row Row) (models.Choice, error) {
	c := models.Choice{
		Text:          row.Get(colChoiceText),
		Next:          strings.TrimSpace(row.Get(colNextID)),
		GrantItem:     row.Get(colItem),
		RequiresItem:  row.Get(colRequiresItem),
		SetFlag:       row.Get(colFlag),
		RequiresFlag:  row.Get(colRequiresFlag),
		Hover:         row.Get(colHover),
		HoverRequires: row.Get(colRequiresHover),
	}

	for _, stat := range models.AllStats {
		if raw := strings.TrimSpace(row.Get(modifyColumn(stat))); raw != "" {
			delta, err := strconv.Atoi(raw)
			if err != nil {
				return models.Choice{}, fmt.Errorf("%s: %q is not an integer", modifyColumn(stat), raw)
			}
			c.Modify.Set(stat, delta)
		}
		if raw := strings.TrimSpace(row.Get(requiresColumn(stat))); raw != "" {
			threshold, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return models.Choice{}, fmt.Errorf("%s: %q is not a number", requiresColumn(stat), raw)
			}
			c.Requires.Set(stat, threshold)
		}
	}
	return c, nil
}
