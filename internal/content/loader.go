// Package content loads the item catalog and scene table from CSV sources.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tatianab/chosa/internal/models"
	"go.uber.org/zap"
)

// ErrFetch marks a source that could not be retrieved.
var ErrFetch = errors.New("fetch content")

// Fetcher retrieves the raw bytes of a content source.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// SourceFetcher reads http(s) URLs over the network and anything else from
// the local filesystem.
type SourceFetcher struct {
	Client *http.Client
}

// NewSourceFetcher returns a fetcher whose HTTP requests time out after
// timeout.
func NewSourceFetcher(timeout time.Duration) *SourceFetcher {
	return &SourceFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *SourceFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	return data, nil
}

// Content is the result of a load.
type Content struct {
	Items   models.ItemCatalog
	Scenes  map[string]*models.Scene
	Skipped []RowError
}

// Loader fetches items first and scenes second.
type Loader struct {
	fetcher   Fetcher
	itemsURL  string
	scenesURL string
	logger    *zap.Logger
}

func NewLoader(fetcher Fetcher, itemsURL, scenesURL string, logger *zap.Logger) *Loader {
	return &Loader{
		fetcher:   fetcher,
		itemsURL:  itemsURL,
		scenesURL: scenesURL,
		logger:    logger,
	}
}

// Load returns an error wrapping ErrFetch when either source cannot be
// retrieved, or ErrParse when the scenes source is not scene CSV. A malformed items
// source is logged and play continues without descriptions.
func (l *Loader) Load(ctx context.Context) (*Content, error) {
	c := &Content{Items: models.ItemCatalog{}}

	itemData, err := l.fetcher.Fetch(ctx, l.itemsURL)
	if err != nil {
		l.logger.Error("Failed to load items", zap.String("source", l.itemsURL), zap.Error(err))
		return nil, err
	}
	if rows, err := ReadRows(itemData, colItemID, colItemDescription); err != nil {
		l.logger.Warn("Items CSV error", zap.String("source", l.itemsURL), zap.Error(err))
	} else {
		var skipped []RowError
		c.Items, skipped = ParseItems(l.itemsURL, rows)
		l.logSkipped(skipped)
		c.Skipped = append(c.Skipped, skipped...)
		l.logger.Info("Items CSV loaded.", zap.Int("items", len(c.Items)))
	}

	sceneData, err := l.fetcher.Fetch(ctx, l.scenesURL)
	if err != nil {
		l.logger.Error("Failed to load scenes", zap.String("source", l.scenesURL), zap.Error(err))
		return nil, err
	}
	rows, err := ReadRows(sceneData, colID, colText)
	if err != nil {
		l.logger.Error("Scenes CSV error", zap.String("source", l.scenesURL), zap.Error(err))
		return nil, err
	}
	var skipped []RowError
	c.Scenes, skipped = ParseScenes(l.scenesURL, rows)
	l.logSkipped(skipped)
	c.Skipped = append(c.Skipped, skipped...)
	l.logger.Info("Scenes CSV loaded.", zap.Int("scenes", len(c.Scenes)))

	return c, nil
}

func (l *Loader) logSkipped(skipped []RowError) {
	for _, s := range skipped {
		l.logger.Warn("Skipping content row",
			zap.String("source", s.Source),
			zap.Int("line", s.Line),
			zap.String("reason", s.Reason))
	}
}

// FailureMessage is the text shown in place of the story when Load fails.
func FailureMessage(err error) string {
	if errors.Is(err, ErrParse) {
		return "Error parsing CSV data."
	}
	return "Failed to load story or item data."
}
