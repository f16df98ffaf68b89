package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleManifest() *Manifest {
	sum := "aa11"
	return &Manifest{
		OriginalName: "report.txt",
		OriginalSize: 1500,
		ChunkLimit:   1024,
		ChunksSubDir: "report.txt_parts",
		Chunks: []ChunkRecord{
			{Filename: "report.txt-001", Size: 1024, Checksum: &sum},
			{Filename: "report.txt-002", Size: 476, Checksum: nil},
		},
		OriginalChecksum: "bb22",
		Compressed:       true,
	}
}

// The JSON keys are an interop contract with previously produced
// manifests; renaming any of them is a breaking change.
func TestWireFormatKeys(t *testing.T) {
	data, err := json.Marshal(sampleManifest())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		"original_filename", "original_file_size", "chunk_limit",
		"chunks_sub_dir", "chunks", "original_checksum", "is_compressed",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing manifest key %q", key)
		}
	}

	chunks := raw["chunks"].([]any)
	first := chunks[0].(map[string]any)
	for _, key := range []string{"chunk_filename", "chunk_size", "chunk_checksum"} {
		if _, ok := first[key]; !ok {
			t.Errorf("missing chunk key %q", key)
		}
	}

	// A skipped checksum must serialize as JSON null, not be omitted.
	second := chunks[1].(map[string]any)
	if v, ok := second["chunk_checksum"]; !ok || v != nil {
		t.Errorf("nil checksum serialized as %v, want null", v)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := sampleManifest()
	path := filepath.Join(t.TempDir(), "report.txt.json")

	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// The temp file from the atomic write must be gone.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after Save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(m, loaded) {
		t.Errorf("round trip mismatch:\n saved  %+v\n loaded %+v", m, loaded)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestChunkName(t *testing.T) {
	cases := []struct {
		seq  int
		want string
	}{
		{1, "f-001"},
		{42, "f-042"},
		{999, "f-999"},
		// Past 999 the counter keeps going, the name just widens.
		{1000, "f-1000"},
		{12345, "f-12345"},
	}
	for _, c := range cases {
		if got := ChunkName("f", c.seq); got != c.want {
			t.Errorf("ChunkName(f, %d) = %s, want %s", c.seq, got, c.want)
		}
	}
}

func TestNamingHelpers(t *testing.T) {
	if got := SubDirName("report.txt"); got != "report.txt_parts" {
		t.Errorf("SubDirName = %s", got)
	}
	if got := FileName("report.txt"); got != "report.txt.json" {
		t.Errorf("FileName = %s", got)
	}
	m := sampleManifest()
	want := filepath.Join("root", "report.txt_parts", "report.txt.json")
	if got := m.Path("root"); got != want {
		t.Errorf("Path = %s, want %s", got, want)
	}
}
