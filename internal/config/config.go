package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ScenesURL    string        `env:"CHOSA_SCENES_URL" envDefault:"content/scenes.csv"`
	ItemsURL     string        `env:"CHOSA_ITEMS_URL" envDefault:"content/items.csv"`
	FetchTimeout time.Duration `env:"CHOSA_FETCH_TIMEOUT" envDefault:"15s"`

	Store      string `env:"CHOSA_STORE" envDefault:"file"` // file, sqlite or memory
	SaveDir    string `env:"CHOSA_SAVE_DIR" envDefault:".saves"`
	SQLitePath string `env:"CHOSA_SQLITE_PATH" envDefault:".saves/chosa.db"`

	StartScene  string        `env:"CHOSA_START_SCENE" envDefault:"intro"`
	RevealItems []string      `env:"CHOSA_REVEAL_ITEMS" envDefault:"loadsocial,loadarcane,loadphysical" envSeparator:","`
	TypingDelay time.Duration `env:"CHOSA_TYPING_DELAY" envDefault:"30ms"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"chosa.log"`

	// Only the playtest LLM player needs a key.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	switch c.Store {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("CHOSA_STORE must be file, sqlite or memory, got %q", c.Store)
	}
	if strings.TrimSpace(c.StartScene) == "" {
		return fmt.Errorf("CHOSA_START_SCENE must not be empty")
	}
	if c.TypingDelay <= 0 {
		return fmt.Errorf("CHOSA_TYPING_DELAY must be positive, got %s", c.TypingDelay)
	}
	for i, item := range c.RevealItems {
		c.RevealItems[i] = strings.TrimSpace(item)
	}
	return nil
}
