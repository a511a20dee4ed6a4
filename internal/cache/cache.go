package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"codan/internal/diag"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Digest identifies one cached run.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Key combines everything a run depends on: the encoded unit, the
// effective configuration and the tool version.
func Key(unitHash [sha256.Size]byte, configFingerprint, toolVersion string) Digest {
	h := sha256.New()
	h.Write(unitHash[:])
	h.Write([]byte{0})
	h.Write([]byte(configFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(toolVersion))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Entry is the cached outcome of a completed run. Runs that were canceled
// or had checker failures are not cached.
type Entry struct {
	Schema     uint16
	Path       string
	Problems   []diag.Problem
	Suppressed int
	Stored     time.Time
}

// Cache stores run results on disk by Digest.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open uses dir, creating it when needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// OpenDefault opens the cache at the standard per-user location.
func OpenDefault(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать тысячи файлов в одном месте
	return filepath.Join(c.dir, "runs", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry.
func (c *Cache) Put(key Digest, entry *Entry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = schemaVersion
	if entry.Stored.IsZero() {
		entry.Stored = time.Now().UTC()
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads an entry. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *Cache) Get(key Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	runs := filepath.Join(c.dir, "runs")
	old := runs + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(runs, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
