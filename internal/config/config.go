// Package config loads the optional vidscribe.toml configuration file.
// Every value has a code default; command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is tried when no --config flag is given.
const DefaultPath = "vidscribe.toml"

// Ollama contains connection settings for the local model server.
type Ollama struct {
	BaseURL     string `toml:"base_url"`
	Port        int    `toml:"port"`
	VisionModel string `toml:"vision_model"`
	EmbedModel  string `toml:"embed_model"`
	Prompt      string `toml:"prompt"`
}

// Pipeline contains stage tunables.
type Pipeline struct {
	Interval       float64 `toml:"interval"`
	SceneThreshold float64 `toml:"scene_threshold"`
	GroupThreshold float64 `toml:"group_threshold"`
	Workers        int     `toml:"workers"`
}

// Postgres contains connection settings for the optional timeline index.
type Postgres struct {
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DBName       string `toml:"dbname"`
	EmbeddingDim int    `toml:"embedding_dim"`
}

type Config struct {
	Ollama   Ollama   `toml:"ollama"`
	Pipeline Pipeline `toml:"pipeline"`
	Postgres Postgres `toml:"postgres"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Ollama: Ollama{
			BaseURL:     "http://localhost",
			Port:        11434,
			VisionModel: "llama3.2-vision:11b",
			EmbedModel:  "nomic-embed-text",
			Prompt:      "Describe this image in no more than 150 characters.",
		},
		Pipeline: Pipeline{
			Interval:       1.0,
			SceneThreshold: 0.4,
			GroupThreshold: 0.8,
			Workers:        4,
		},
		Postgres: Postgres{
			Host:         "localhost",
			Port:         "5432",
			User:         "vidscribe",
			Password:     "vidscribe",
			DBName:       "vidscribe",
			EmbeddingDim: 768,
		},
	}
}

// Load reads path over the defaults. An empty path tries DefaultPath; a
// missing file is not an error, the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Pipeline.Interval <= 0 {
		return fmt.Errorf("pipeline.interval must be positive")
	}
	if c.Pipeline.SceneThreshold < 0 || c.Pipeline.SceneThreshold > 1 {
		return fmt.Errorf("pipeline.scene_threshold must be between 0.0 and 1.0")
	}
	if c.Pipeline.GroupThreshold < 0 || c.Pipeline.GroupThreshold > 1 {
		return fmt.Errorf("pipeline.group_threshold must be between 0.0 and 1.0")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive")
	}
	return nil
}
