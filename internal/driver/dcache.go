package driver

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

	"borrowck/internal/borrow"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest keys a cached verdict.
type Digest [32]byte

// DiskCache хранит вердикты проверки по хешу содержимого и набору правил.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached verdict for one script.
type DiskPayload struct {
	Schema      uint16
	Path        string
	ContentHash Digest
	Events      int
	Violation   *CachedViolation
}

// CachedViolation is borrow.Violation without the event, which is recovered
// from the parsed script by index.
type CachedViolation struct {
	Kind        uint8
	Index       int
	Binding     string
	Other       string
	Scope       string
	Message     string
	Related     int
	RelatedNote string
}

// OpenDiskCache initializes a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache uses dir as the cache root.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

// CacheKey mixes the content hash with the rule set: the same script may be
// legal under base rules and illegal under strict ones.
func CacheKey(content Digest, rules borrow.Options) Digest {
	h := sha256.New()
	h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	var flags byte
	if rules.FreezeBorrowed {
		flags |= 1
	}
	if rules.RejectDangling {
		flags |= 2
	}
	h.Write([]byte{flags})
	h.Write(content[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "verdicts", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после удачного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (hit bool, err error) {
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
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
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
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func payloadFor(path string, content Digest, events int, v *borrow.Violation) *DiskPayload {
	p := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		ContentHash: content,
		Events:      events,
	}
	if v != nil {
		p.Violation = &CachedViolation{
			Kind:        uint8(v.Kind),
			Index:       v.Index,
			Binding:     v.Binding,
			Other:       v.Other,
			Scope:       v.Scope,
			Message:     v.Message,
			Related:     v.Related,
			RelatedNote: v.RelatedNote,
		}
	}
	return p
}

// violation rebuilds the verdict against the freshly parsed events. ok is
// false when the payload does not fit them.
func (p *DiskPayload) violation(events []borrow.Event) (v *borrow.Violation, ok bool) {
	if p.Events != len(events) {
		return nil, false
	}
	cv := p.Violation
	if cv == nil {
		return nil, true
	}
	if cv.Index < 0 || cv.Index >= len(events) {
		return nil, false
	}
	return &borrow.Violation{
		Kind:        borrow.ViolationKind(cv.Kind),
		Index:       cv.Index,
		Event:       events[cv.Index],
		Binding:     cv.Binding,
		Other:       cv.Other,
		Scope:       cv.Scope,
		Message:     cv.Message,
		Related:     cv.Related,
		RelatedNote: cv.RelatedNote,
	}, true
}
