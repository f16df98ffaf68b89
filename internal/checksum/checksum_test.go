package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

// SHA-256 of the empty input, pinned so the empty-file chunk path has
// a known digest.
const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestBufferEmpty(t *testing.T) {
	if got := Buffer(nil); got != emptyDigest {
		t.Errorf("Buffer(nil) = %s, want %s", got, emptyDigest)
	}
	if got := Buffer([]byte{}); got != emptyDigest {
		t.Errorf("Buffer(empty) = %s, want %s", got, emptyDigest)
	}
}

func TestBufferDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	first := Buffer(data)
	second := Buffer(data)
	if first != second {
		t.Errorf("digests differ for identical input: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}
}

func TestFileMatchesBuffer(t *testing.T) {
	data := make([]byte, 100000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := File(path)
	if err != nil {
		t.Fatalf("File() error: %v", err)
	}
	if fromBuffer := Buffer(data); fromFile != fromBuffer {
		t.Errorf("File digest %s != Buffer digest %s", fromFile, fromBuffer)
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}
