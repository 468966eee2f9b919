package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/tatianab/chosa/internal/config"
	"github.com/tatianab/chosa/internal/content"
	"github.com/tatianab/chosa/internal/engine"
	"github.com/tatianab/chosa/internal/logger"
	"github.com/tatianab/chosa/internal/models"
	"github.com/tatianab/chosa/internal/playtest"
	"github.com/tatianab/chosa/internal/storage"
)

func main() {
	maxTurns := flag.Int("turns", 25, "maximum number of choices to make")
	useLLM := flag.Bool("llm", false, "let Gemini choose (needs GEMINI_API_KEY)")
	seed := flag.Uint64("seed", 1, "seed for the random player")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	loader := content.NewLoader(content.NewSourceFetcher(cfg.FetchTimeout), cfg.ItemsURL, cfg.ScenesURL, zl)
	c, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("%s (%v)", content.FailureMessage(err), err)
	}

	// Playtests never touch the real save.
	repo := models.NewStateRepository(storage.NewMemoryStore(), cfg.StartScene)
	player, err := engine.NewPlayer(ctx, repo, cfg.StartScene)
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}
	eng := engine.New(engine.NewGraph(c.Scenes), c.Items, player, engine.Options{
		StartScene:  cfg.StartScene,
		RevealItems: cfg.RevealItems,
	}, zl)

	var chooser playtest.Chooser = playtest.NewRandomChooser(*seed)
	if *useLLM {
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is not set")
		}
		g, err := playtest.NewGeminiChooser(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini player: %v", err)
		}
		defer g.Close()
		chooser = g
	}

	report, err := playtest.NewRunner(eng, chooser, zl).Run(ctx, *maxTurns)
	if report != nil {
		report.Print(os.Stdout)
	}
	if err != nil {
		log.Fatalf("Playtest stopped: %v", err)
	}
}
