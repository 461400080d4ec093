package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileBackend keeps one JSON file per key in a directory.
type FileBackend struct {
	dir string
}

// NewFileBackend uses dir, typically DefaultDir().
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// DefaultDir returns IDM_CACHE_DIR, or "$XDG_CACHE_HOME/idm-cli" or the
// platform equivalent.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("IDM_CACHE_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "idm-cli"), nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Load reads the file for key. Expiry is checked by the Store.
func (b *FileBackend) Load(_ context.Context, key string) ([]byte, bool) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Save writes the entry via a temp file and rename.
func (b *FileBackend) Save(_ context.Context, key string, data []byte, _ time.Duration) error {
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return err
	}
	target := b.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}

// Delete removes the file for key; a missing file is not an error.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all cache files from the directory.
// For safety, it only removes files matching this tool's filename scheme.
func (b *FileBackend) Clear(_ context.Context) (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(b.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func isCacheFilename(name string) bool {
	// Expected: "<resource>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	resource, hash, ok := strings.Cut(base, "_")
	if !ok || resource == "" {
		return false
	}
	return len(hash) == 12 && isHex(hash)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
