package splitter

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filesplit/internal/checksum"
	"filesplit/internal/manifest"
	"filesplit/internal/utils"
)

var (
	// ErrInvalidChunkLimit is returned when the chunk limit is zero.
	ErrInvalidChunkLimit = errors.New("chunk limit must be a positive byte count")
	// ErrSizeMismatch is returned when the bytes read during the split
	// loop do not add up to the source file's size.
	ErrSizeMismatch = errors.New("file size mismatch during splitting")
)

// Options carries the optional notification hooks for a split. Both
// hooks may be nil; their absence never changes the outcome. Hooks are
// called synchronously and must be cheap.
type Options struct {
	// Progress is invoked after each chunk is fully written with the
	// plaintext bytes processed so far and the original file size.
	Progress func(done, total uint64)
	// Message is invoked with human-readable status text at operation
	// start and finish.
	Message func(text string)
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

// Split carves the file at filePath into chunks of at most chunkLimit
// plaintext bytes, stored under <outputRoot>/<basename>_parts, and
// writes the manifest describing the split as the final step. When
// compress is set each chunk is gzip-framed on disk; the manifest's
// checksums always cover the uncompressed bytes.
//
// A failed split may leave orphan chunk files behind and guarantees no
// valid manifest was written.
func Split(filePath string, chunkLimit uint64, outputRoot string, compress bool, opts Options) error {
	if chunkLimit == 0 {
		return ErrInvalidChunkLimit
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", filePath)
	}
	originalSize := uint64(info.Size())
	originalName := filepath.Base(filePath)

	subDirName := manifest.SubDirName(originalName)
	chunksDir := filepath.Join(outputRoot, subDirName)
	if err := utils.EnsureDirectoryExists(chunksDir); err != nil {
		return fmt.Errorf("failed to create chunk directory: %w", err)
	}

	originalChecksum, err := checksum.File(filePath)
	if err != nil {
		return err
	}

	opts.message(fmt.Sprintf("Splitting '%s'", originalName))

	var (
		chunks         []manifest.ChunkRecord
		totalProcessed uint64
		seq            int
	)

	buffer := make([]byte, chunkLimit)
	for {
		seq++
		bytesRead, err := io.ReadFull(file, buffer)
		if err == io.ErrUnexpectedEOF {
			err = nil
		}
		if err == io.EOF {
			if len(chunks) > 0 {
				// End of input landed exactly on a chunk boundary.
				break
			}
			// Zero-length source: emit a single empty chunk so a
			// restore always has at least one chunk file to read.
			record, werr := writeChunk(chunksDir, originalName, seq, nil, compress)
			if werr != nil {
				return werr
			}
			chunks = append(chunks, record)
			opts.progress(0, originalSize)
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read chunk %d: %w", seq, err)
		}

		record, err := writeChunk(chunksDir, originalName, seq, buffer[:bytesRead], compress)
		if err != nil {
			return err
		}
		chunks = append(chunks, record)
		totalProcessed += uint64(bytesRead)
		opts.progress(totalProcessed, originalSize)

		if uint64(bytesRead) < chunkLimit {
			// Final partial chunk.
			break
		}
	}

	opts.message(fmt.Sprintf("'%s' splitting complete", originalName))

	if totalProcessed != originalSize {
		return fmt.Errorf("%w: expected %d, actual %d", ErrSizeMismatch, originalSize, totalProcessed)
	}

	m := &manifest.Manifest{
		OriginalName:     originalName,
		OriginalSize:     originalSize,
		ChunkLimit:       chunkLimit,
		ChunksSubDir:     subDirName,
		Chunks:           chunks,
		OriginalChecksum: originalChecksum,
		Compressed:       compress,
	}

	manifestPath := filepath.Join(chunksDir, manifest.FileName(originalName))
	if err := m.Save(manifestPath); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	opts.message(fmt.Sprintf("Split info for '%s' saved to: %s", originalName, manifestPath))

	return nil
}

// writeChunk writes one chunk's plaintext to disk, gzip-framed when
// compress is set, and returns its record. The recorded checksum
// covers the plaintext; the recorded size is the on-disk byte count.
func writeChunk(chunksDir, originalName string, seq int, data []byte, compress bool) (manifest.ChunkRecord, error) {
	name := manifest.ChunkName(originalName, seq)
	path := filepath.Join(chunksDir, name)
	sum := checksum.Buffer(data)

	out, err := os.Create(path)
	if err != nil {
		return manifest.ChunkRecord{}, fmt.Errorf("failed to create chunk file %s: %w", path, err)
	}

	if compress {
		gz := gzip.NewWriter(out)
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			out.Close()
			return manifest.ChunkRecord{}, fmt.Errorf("failed to compress chunk %s: %w", name, err)
		}
		if err := gz.Close(); err != nil {
			out.Close()
			return manifest.ChunkRecord{}, fmt.Errorf("failed to finish compressing chunk %s: %w", name, err)
		}
	} else {
		if _, err := out.Write(data); err != nil {
			out.Close()
			return manifest.ChunkRecord{}, fmt.Errorf("failed to write chunk file %s: %w", path, err)
		}
	}

	if err := out.Close(); err != nil {
		return manifest.ChunkRecord{}, fmt.Errorf("failed to close chunk file %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return manifest.ChunkRecord{}, fmt.Errorf("failed to stat chunk file %s: %w", path, err)
	}

	return manifest.ChunkRecord{
		Filename: name,
		Size:     uint64(info.Size()),
		Checksum: &sum,
	}, nil
}
