package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	cookieBucket     = "cookies"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB.
// Values are an 8-byte big-endian unix expiry followed by the JSON cookie list.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cookieBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load returns the unexpired cookies stored for host.
func (b *boltStore) Load(host string) ([]*http.Cookie, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var cookies []*http.Cookie
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}

		key := hostKey(host)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(now) {
			return bucket.Delete(key)
		}

		var stored []*http.Cookie
		if err := json.Unmarshal(value[expiryValueBytes:], &stored); err != nil {
			return bucket.Delete(key)
		}
		cookies = liveCookies(stored, now)
		return nil
	})
	return cookies, err
}

// Save replaces the cookies stored for host and refreshes its expiry.
// An empty list removes the entry.
func (b *boltStore) Save(host string, cookies []*http.Cookie) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	cookies = liveCookies(cookies, now)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}
		key := hostKey(host)
		if len(cookies) == 0 {
			return bucket.Delete(key)
		}

		payload, err := json.Marshal(cookies)
		if err != nil {
			return fmt.Errorf("encode cookies: %w", err)
		}
		buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.ttl).Unix()))
		return bucket.Put(key, append(buf, payload...))
	})
}

// maybeCleanupExpired removes expired host entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func hostKey(host string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(host)))
}

// liveCookies drops cookies that are expired or marked for deletion.
func liveCookies(cookies []*http.Cookie, now time.Time) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.MaxAge < 0 {
			continue
		}
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}
