// Package cache stores small API responses (the password policy) between
// CLI invocations.
//
// Entries are JSON, scoped per resource, server URL and route prefix. The
// default backend writes files under the user cache directory; a shared
// redis backend can be selected instead. Default TTL is 10 minutes. Disable
// with IDM_NO_CACHE=1.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"
)

const DefaultTTL = 10 * time.Minute

// Backend persists raw entries. Implementations swallow their own I/O
// errors where the Store treats them as misses.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry this tool wrote and returns how many.
	Clear(ctx context.Context) (int, error)
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// Store reads and writes a single cache key (resource+server+scope).
type Store struct {
	backend Backend
	key     string
	ttl     time.Duration
}

// NewStore creates a Store with the default TTL.
// resource names what is cached (e.g. "password-policy"), baseURL is the IDM
// server and scope distinguishes entries on the same server (e.g. the
// password-reset prefix).
func NewStore(backend Backend, resource, baseURL, scope string) *Store {
	return NewStoreWithTTL(backend, resource, baseURL, scope, DefaultTTL)
}

// NewStoreWithTTL creates a Store with a custom TTL.
func NewStoreWithTTL(backend Backend, resource, baseURL, scope string, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		key:     Key(resource, baseURL, scope),
		ttl:     ttl,
	}
}

// Key builds the backend key "<resource>_<12 hex chars>".
func Key(resource, baseURL, scope string) string {
	hash := sha1.Sum([]byte(strings.TrimRight(baseURL, "/") + "|" + scope))
	return sanitizeKey(resource) + "_" + hex.EncodeToString(hash[:6])
}

// Get loads the cached value into dst. Returns false on miss (absent,
// expired, corrupt, or disabled).
func (s *Store) Get(ctx context.Context, dst any) bool {
	if disabled() || s.backend == nil {
		return false
	}
	data, ok := s.backend.Load(ctx, s.key)
	if !ok {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > s.ttl {
		return false
	}
	return json.Unmarshal(e.Value, dst) == nil
}

// Put writes value to the cache. Failures are reported but callers usually
// ignore them: a cache that cannot be written is just a miss next time.
func (s *Store) Put(ctx context.Context, value any) error {
	if disabled() || s.backend == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{CachedAt: time.Now(), Value: raw})
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, s.key, data, s.ttl)
}

// Clear removes this entry.
func (s *Store) Clear(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Delete(ctx, s.key)
}

func disabled() bool {
	v := strings.TrimSpace(os.Getenv("IDM_NO_CACHE"))
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	r := strings.NewReplacer("/", "-", "\\", "-", "_", "-", ":", "-")
	return r.Replace(key)
}
