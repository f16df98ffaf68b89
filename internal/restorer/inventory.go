package restorer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"filesplit/internal/manifest"
)

// FindManifests walks root and loads every manifest it finds. A
// manifest is recognized as <name>_parts/<name>.json; other JSON files
// are ignored. Unparseable manifests are logged and skipped.
func FindManifests(root string) ([]*manifest.Manifest, error) {
	var manifests []*manifest.Manifest

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}

		originalName := strings.TrimSuffix(info.Name(), ".json")
		if filepath.Base(filepath.Dir(path)) != manifest.SubDirName(originalName) {
			return nil
		}

		m, err := manifest.Load(path)
		if err != nil {
			log.Printf("Skipping unreadable manifest %s: %v", path, err)
			return nil
		}
		manifests = append(manifests, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for manifests: %w", root, err)
	}

	return manifests, nil
}

// List prints an inventory of every split found under root.
func List(root string) error {
	manifests, err := FindManifests(root)
	if err != nil {
		return err
	}

	fmt.Printf("Splits under %s:\n", root)
	fmt.Println("================")

	for _, m := range manifests {
		mode := "stored"
		if m.Compressed {
			mode = "gzip"
		}
		fmt.Printf("%-8s %12d bytes  %4d chunks  %s\n",
			mode, m.OriginalSize, len(m.Chunks), m.OriginalName)
	}

	fmt.Printf("\nSummary: %d split files\n", len(manifests))
	return nil
}

// Verify checks every manifest under root: each referenced chunk file
// must exist and its on-disk size must match the recorded chunk size.
// Every problem is logged; an error is returned if any were found.
func Verify(root string) error {
	manifests, err := FindManifests(root)
	if err != nil {
		return err
	}

	problems := 0
	chunksChecked := 0
	for _, m := range manifests {
		chunksDir := filepath.Join(root, m.ChunksSubDir)
		for _, record := range m.Chunks {
			chunksChecked++
			chunkPath := filepath.Join(chunksDir, record.Filename)
			info, err := os.Stat(chunkPath)
			if os.IsNotExist(err) {
				log.Printf("Missing chunk file: %s", chunkPath)
				problems++
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to stat chunk file %s: %w", chunkPath, err)
			}
			if uint64(info.Size()) != record.Size {
				log.Printf("Chunk size mismatch for %s: recorded %d, on disk %d",
					chunkPath, record.Size, info.Size())
				problems++
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("verification found %d problems across %d chunks", problems, chunksChecked)
	}

	log.Printf("Verification completed: %d manifests, %d chunks checked", len(manifests), chunksChecked)
	return nil
}
