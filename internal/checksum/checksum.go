package checksum

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// File computes the SHA-256 digest of a file's contents, streaming
// through it so arbitrarily large files never need to fit in memory.
// The digest is returned as a lowercase hex string.
func File(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// Buffer computes the SHA-256 digest of a byte slice as a lowercase
// hex string.
func Buffer(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:])
}
