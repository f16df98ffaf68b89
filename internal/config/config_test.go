package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "filesplit.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ChunkLimit != DefaultChunkLimit {
		t.Errorf("chunk limit = %d, want %d", cfg.ChunkLimit, DefaultChunkLimit)
	}
	if cfg.OutputRoot != "." {
		t.Errorf("output root = %s, want .", cfg.OutputRoot)
	}

	// The defaults must have been written back.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	// A second load reads the written file and agrees.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if *again != *cfg {
		t.Errorf("reloaded config %+v != written %+v", again, cfg)
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filesplit.yaml")
	content := "chunk_limit: 2048\ncompress: true\noutput_root: /tmp/out\nwatch_debounce_ms: 250\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ChunkLimit != 2048 || !cfg.Compress || cfg.OutputRoot != "/tmp/out" || cfg.WatchDebounceMs != 250 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filesplit.yaml")
	if err := os.WriteFile(path, []byte("compress: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Compress {
		t.Error("compress not read")
	}
	if cfg.ChunkLimit != DefaultChunkLimit {
		t.Errorf("chunk limit = %d, want default %d", cfg.ChunkLimit, DefaultChunkLimit)
	}
}

func TestLoadRejectsZeroChunkLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filesplit.yaml")
	if err := os.WriteFile(path, []byte("chunk_limit: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for zero chunk_limit")
	}
}
