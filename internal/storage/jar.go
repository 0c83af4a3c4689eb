package storage

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Logger defines the logging surface storage relies on.
type Logger interface {
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) WarnObj(string, string, interface{}) {}

// Jar is an http.CookieJar kept in memory and written through to a Store.
// Each host is seeded from the Store the first time it is seen.
type Jar struct {
	mem   *cookiejar.Jar
	store Store
	log   Logger
	now   func() time.Time

	mu     sync.Mutex
	seeded map[string]bool
}

// NewJar builds a jar over store. A nil store keeps cookies in memory only.
func NewJar(store Store, log Logger) (*Jar, error) {
	mem, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if store == nil {
		store = noopStore{}
	}
	if log == nil {
		log = noopLogger{}
	}
	return &Jar{
		mem:    mem,
		store:  store,
		log:    log,
		now:    time.Now,
		seeded: make(map[string]bool),
	}, nil
}

// SetCookies records cookies received from u and persists them for u's host.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u == nil || len(cookies) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seedLocked(u)
	j.mem.SetCookies(u, cookies)

	host := u.Hostname()
	existing, err := j.store.Load(host)
	if err != nil {
		j.warn("cookie store load failed", host, err)
	}
	merged := mergeCookies(existing, j.persistable(u, cookies))
	if err := j.store.Save(host, merged); err != nil {
		j.warn("cookie store save failed", host, err)
	}
}

// Cookies returns the cookies to send to u.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	if u == nil {
		return nil
	}
	j.mu.Lock()
	j.seedLocked(u)
	j.mu.Unlock()
	return j.mem.Cookies(u)
}

func (j *Jar) seedLocked(u *url.URL) {
	host := strings.ToLower(u.Hostname())
	if j.seeded[host] {
		return
	}
	j.seeded[host] = true

	stored, err := j.store.Load(host)
	if err != nil {
		j.warn("cookie store load failed", host, err)
		return
	}
	if len(stored) > 0 {
		j.mem.SetCookies(u, stored)
	}
}

// persistable pins relative attributes so cookies mean the same thing when reloaded.
func (j *Jar) persistable(u *url.URL, cookies []*http.Cookie) []*http.Cookie {
	now := j.now()
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		cp := *c
		if cp.MaxAge > 0 {
			cp.Expires = now.Add(time.Duration(cp.MaxAge) * time.Second)
			cp.MaxAge = 0
		}
		if cp.Path == "" {
			cp.Path = defaultPath(u.Path)
		}
		out = append(out, &cp)
	}
	return out
}

func (j *Jar) warn(msg, host string, err error) {
	j.log.WarnObj(msg, "cookie_store_error", map[string]any{
		"host":  host,
		"error": err.Error(),
	})
}

// mergeCookies overlays incoming on existing by (name, domain, path).
// Deletions (MaxAge < 0) remove the matching entry.
func mergeCookies(existing, incoming []*http.Cookie) []*http.Cookie {
	key := func(c *http.Cookie) string { return c.Name + "\x00" + c.Domain + "\x00" + c.Path }

	idx := make(map[string]int, len(existing))
	out := make([]*http.Cookie, 0, len(existing)+len(incoming))
	for _, c := range existing {
		if c == nil {
			continue
		}
		idx[key(c)] = len(out)
		out = append(out, c)
	}
	for _, c := range incoming {
		if i, ok := idx[key(c)]; ok {
			out[i] = c
			continue
		}
		idx[key(c)] = len(out)
		out = append(out, c)
	}

	kept := out[:0]
	for _, c := range out {
		if c.MaxAge < 0 {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// defaultPath mirrors the RFC 6265 default-path algorithm.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
