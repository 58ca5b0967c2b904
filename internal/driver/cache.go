package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"viewc/internal/diag"
	"viewc/internal/ir"
	"viewc/internal/project"
	"viewc/internal/source"
)

// Bump when CachedUnit changes shape.
const cacheSchemaVersion uint16 = 1

// Cache stores compiled units on disk, keyed by file content and registry
// digest. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is the on-disk form of a Unit. Spans are stored with the
// file id they had when written; Restore remaps them.
type CachedUnit struct {
	Schema      uint16
	Path        string
	FileID      source.FileID
	Diagnostics []diag.Diagnostic
	Outputs     []*ir.Node
}

// OpenCache opens the cache under dir, or under $XDG_CACHE_HOME/viewc
// when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("open cache: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "viewc")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the cache key of a file compiled against a registry under a
// diagnostics cap. The cap is part of the key since it also stops the
// parser early.
func Key(file *source.File, registryDigest [32]byte, maxDiagnostics int) project.Digest {
	limit := sha256.Sum256([]byte("max-diagnostics=" + strconv.Itoa(max(maxDiagnostics, 0))))
	return project.Combine(project.Digest(file.Hash), project.Digest(registryDigest), project.Digest(limit))
}

func (c *Cache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put writes u atomically: a temp file renamed into place.
func (c *Cache) Put(key project.Digest, u *CachedUnit) (err error) {
	if c == nil {
		return nil
	}
	u.Schema = cacheSchemaVersion
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(u); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache put: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return os.Rename(f.Name(), p)
}

// Get reads the unit stored under key. A missing entry or one written by
// another schema is a miss, not an error.
func (c *Cache) Get(key project.Digest) (*CachedUnit, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	defer f.Close()
	var u CachedUnit
	if err := msgpack.NewDecoder(f).Decode(&u); err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if u.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &u, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// Restore returns the cached diagnostics with their spans moved to id.
func (u *CachedUnit) Restore(id source.FileID) []diag.Diagnostic {
	remap := func(sp source.Span) source.Span {
		if sp.File == u.FileID {
			sp.File = id
		}
		return sp
	}
	out := make([]diag.Diagnostic, len(u.Diagnostics))
	for i, d := range u.Diagnostics {
		d.Primary = remap(d.Primary)
		notes := make([]diag.Note, len(d.Notes))
		for j, n := range d.Notes {
			n.Span = remap(n.Span)
			notes[j] = n
		}
		d.Notes = notes
		fixes := make([]diag.Fix, len(d.Fixes))
		for j, f := range d.Fixes {
			edits := make([]diag.TextEdit, len(f.Edits))
			for k, e := range f.Edits {
				e.Span = remap(e.Span)
				edits[k] = e
			}
			f.Edits = edits
			fixes[j] = f
		}
		d.Fixes = fixes
		out[i] = d
	}
	return out
}
