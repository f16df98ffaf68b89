package restorer

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"filesplit/internal/checksum"
	"filesplit/internal/manifest"
	"filesplit/internal/utils"
)

var (
	// ErrChunkDirNotFound is returned when the manifest's chunk
	// subdirectory does not exist under the given root.
	ErrChunkDirNotFound = errors.New("chunk directory not found")
	// ErrSizeMismatch is returned when the restored file's size does
	// not match the manifest's original size.
	ErrSizeMismatch = errors.New("restored file size mismatch")
	// ErrChecksumMismatch is returned for checksum mismatches, but
	// only when Options.Strict is set. The default policy logs a
	// warning and keeps going.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Options carries the optional notification hooks and the integrity
// policy for a restore.
type Options struct {
	// Progress is invoked after each chunk is appended with the bytes
	// written so far and the original file size.
	Progress func(done, total uint64)
	// Message is invoked with human-readable status text at operation
	// start and finish.
	Message func(text string)
	// Strict upgrades checksum mismatches from logged warnings to hard
	// errors. Size mismatches are hard errors regardless.
	Strict bool
}

func (o Options) progress(done, total uint64) {
	if o.Progress != nil {
		o.Progress(done, total)
	}
}

func (o Options) message(text string) {
	if o.Message != nil {
		o.Message(text)
	}
}

// Restore reconstructs the original file described by m into
// outputDir, reading chunks from <chunksRoot>/<m.ChunksSubDir>.
// Chunks are concatenated in manifest order, decompressed when the
// manifest says so, and verified at chunk and whole-file level.
//
// Checksum mismatches are logged and tolerated unless opts.Strict is
// set; a missing chunk directory, an unreadable chunk, or a final size
// mismatch abort the restore.
func Restore(m *manifest.Manifest, chunksRoot, outputDir string, opts Options) error {
	if err := utils.EnsureDirectoryExists(outputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, m.OriginalName)
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()
	writer := bufio.NewWriter(outputFile)

	opts.message(fmt.Sprintf("Restoring '%s'", m.OriginalName))

	chunksDir := filepath.Join(chunksRoot, m.ChunksSubDir)
	if _, err := os.Stat(chunksDir); os.IsNotExist(err) {
		return fmt.Errorf("%w for '%s': %s", ErrChunkDirNotFound, m.OriginalName, chunksDir)
	}

	var totalWritten uint64
	for _, record := range m.Chunks {
		data, err := readChunk(filepath.Join(chunksDir, record.Filename), m.Compressed)
		if err != nil {
			return err
		}

		if record.Checksum != nil {
			actual := checksum.Buffer(data)
			if actual != *record.Checksum {
				if opts.Strict {
					return fmt.Errorf("%w for chunk '%s': expected %s, actual %s",
						ErrChecksumMismatch, record.Filename, *record.Checksum, actual)
				}
				log.Printf("Warning: checksum mismatch for chunk '%s': expected %s, actual %s",
					record.Filename, *record.Checksum, actual)
			}
		}

		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("failed to write restored data: %w", err)
		}
		totalWritten += uint64(len(data))
		opts.progress(totalWritten, m.OriginalSize)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	if err := outputFile.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	opts.message(fmt.Sprintf("'%s' restoration complete", m.OriginalName))

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("failed to stat restored file: %w", err)
	}
	if uint64(info.Size()) != m.OriginalSize {
		return fmt.Errorf("%w: expected %d, actual %d", ErrSizeMismatch, m.OriginalSize, info.Size())
	}

	actual, err := checksum.File(outputPath)
	if err != nil {
		return err
	}
	if actual != m.OriginalChecksum {
		if opts.Strict {
			return fmt.Errorf("%w for restored file '%s': expected %s, actual %s",
				ErrChecksumMismatch, m.OriginalName, m.OriginalChecksum, actual)
		}
		log.Printf("Warning: checksum mismatch for restored file '%s': expected %s, actual %s",
			m.OriginalName, m.OriginalChecksum, actual)
	}

	return nil
}

// readChunk reads one chunk file fully into memory, decompressing it
// when the manifest was written with compression enabled.
func readChunk(path string, compressed bool) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file: %w", err)
	}
	defer file.Close()

	if !compressed {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk file %s: %w", path, err)
		}
		return data, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream in %s: %w", path, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress chunk file %s: %w", path, err)
	}
	return data, nil
}
