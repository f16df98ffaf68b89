package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ChunkRecord describes one stored chunk of a split file.
type ChunkRecord struct {
	// Filename of the chunk on disk, e.g. "report.txt-001".
	Filename string `json:"chunk_filename"`
	// Size of the chunk as stored on disk. When the manifest's
	// Compressed flag is set this is the compressed size.
	Size uint64 `json:"chunk_size"`
	// Checksum of the chunk's uncompressed content, never of the
	// on-disk bytes. Nil means checksumming was skipped.
	Checksum *string `json:"chunk_checksum"`
}

// Manifest is the sole contract between a split and a later restore.
// The JSON field names are a wire format shared with previously
// produced manifests and must not change.
type Manifest struct {
	OriginalName     string        `json:"original_filename"`
	OriginalSize     uint64        `json:"original_file_size"`
	ChunkLimit       uint64        `json:"chunk_limit"`
	ChunksSubDir     string        `json:"chunks_sub_dir"`
	Chunks           []ChunkRecord `json:"chunks"`
	OriginalChecksum string        `json:"original_checksum"`
	Compressed       bool          `json:"is_compressed"`
}

// SubDirName returns the chunk subdirectory name for an original
// filename, e.g. "report.txt" -> "report.txt_parts".
func SubDirName(originalName string) string {
	return originalName + "_parts"
}

// FileName returns the manifest filename for an original filename.
func FileName(originalName string) string {
	return originalName + ".json"
}

// ChunkName returns the chunk filename for a 1-based sequence number.
// Numbers are zero-padded to three digits; past 999 the name simply
// grows wider, the counter itself never wraps.
func ChunkName(originalName string, seq int) string {
	return fmt.Sprintf("%s-%03d", originalName, seq)
}

// Save writes the manifest as indented JSON. It writes to a temp file
// and renames it into place so readers never observe a partial
// manifest.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Path returns the on-disk location of the manifest for a split rooted
// at root, i.e. <root>/<subdir>/<original>.json.
func (m *Manifest) Path(root string) string {
	return filepath.Join(root, m.ChunksSubDir, FileName(m.OriginalName))
}
