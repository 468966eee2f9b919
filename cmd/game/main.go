package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tatianab/chosa/internal/config"
	"github.com/tatianab/chosa/internal/content"
	"github.com/tatianab/chosa/internal/engine"
	"github.com/tatianab/chosa/internal/logger"
	"github.com/tatianab/chosa/internal/models"
	"github.com/tatianab/chosa/internal/storage"
	"github.com/tatianab/chosa/internal/tui"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	kv, err := storage.Open(cfg.Store, cfg.SaveDir, cfg.SQLitePath)
	if err != nil {
		fmt.Printf("Error opening save store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	boot := func(ctx context.Context) (*engine.Engine, error) {
		loader := content.NewLoader(content.NewSourceFetcher(cfg.FetchTimeout), cfg.ItemsURL, cfg.ScenesURL, log)
		c, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		player, err := engine.NewPlayer(ctx, models.NewStateRepository(kv, cfg.StartScene), cfg.StartScene)
		if err != nil {
			return nil, err
		}
		log.Info("Story ready", zap.Int("scenes", len(c.Scenes)), zap.String("scene", player.CurrentScene()))
		return engine.New(engine.NewGraph(c.Scenes), c.Items, player, engine.Options{
			StartScene:  cfg.StartScene,
			RevealItems: cfg.RevealItems,
		}, log), nil
	}

	if err := tui.Run(boot, tui.Options{TypingDelay: cfg.TypingDelay}); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
