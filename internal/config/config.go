package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultChunkLimit is 100MB, the split size used when neither the
// config file nor the command line says otherwise.
const DefaultChunkLimit = 104857600

// Config holds the defaults applied when CLI flags are left unset.
type Config struct {
	// ChunkLimit is the maximum plaintext bytes per chunk.
	ChunkLimit uint64 `yaml:"chunk_limit"`
	// Compress gzips every chunk when set.
	Compress bool `yaml:"compress"`
	// OutputRoot is where chunk subdirectories are created.
	OutputRoot string `yaml:"output_root"`
	// WatchDebounceMs is the quiet period in milliseconds a watched
	// file must go without writes before it is split.
	WatchDebounceMs int `yaml:"watch_debounce_ms"`
}

// Default returns the built-in configuration, used when no config
// file is present.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		ChunkLimit:      DefaultChunkLimit,
		Compress:        false,
		OutputRoot:      ".",
		WatchDebounceMs: 500,
	}
}

// Load reads the config at path. If the file does not exist the
// defaults are written back to it and returned, so a first run leaves
// an editable config behind.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}

		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ChunkLimit == 0 {
		return nil, fmt.Errorf("config chunk_limit must be positive")
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = "."
	}

	return cfg, nil
}
