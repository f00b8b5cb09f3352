package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores API responses on disk so repeated CLI runs do not refetch
// slow-changing data such as restaurant settings.
type FileCache struct {
	dir string
}

// NewFileCache creates a new file cache in the given directory.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Get retrieves a cached value if it exists and hasn't expired.
func (fc *FileCache) Get(key string, ttl time.Duration, dest any) bool {
	path := fc.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > ttl {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores a value in the cache.
func (fc *FileCache) Set(key string, value any) error {
	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	// Write then rename so concurrent readers never see a partial file.
	tmp, err := os.CreateTemp(fc.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fc.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Delete removes a single entry. A missing entry is not an error.
func (fc *FileCache) Delete(key string) error {
	if err := os.Remove(fc.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all cached data.
func (fc *FileCache) Clear() error {
	entries, err := os.ReadDir(fc.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if err := os.Remove(filepath.Join(fc.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// path hashes the key so URLs and other free-form keys map to safe file names.
func (fc *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(fc.dir, hex.EncodeToString(sum[:8])+".json")
}
