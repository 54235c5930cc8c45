package transport

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
)

// CookiePersister saves the API host's cookies between runs.
// credstore.Cached implements it.
type CookiePersister interface {
	LoadCookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
	ClearCookies(ctx context.Context) error
}

// PersistentJar is an http.CookieJar that writes the base host's cookies
// through a CookiePersister so the refresh cookie survives restarts.
type PersistentJar struct {
	base      *url.URL
	persister CookiePersister
	logger    logger.Logger

	// persistMu orders snapshots and saves, so the last change is the one persisted.
	persistMu sync.Mutex
	mu        sync.RWMutex
	jar       *cookiejar.Jar
	cookies   map[string]*http.Cookie
}

// NewPersistentJar creates a jar for baseURL and restores saved cookies.
func NewPersistentJar(ctx context.Context, baseURL string, p CookiePersister, l logger.Logger) (*PersistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}

	j := &PersistentJar{
		base:      base,
		persister: p,
		logger:    logger.OrNop(l),
		jar:       jar,
		cookies:   make(map[string]*http.Cookie),
	}
	if p == nil {
		return j, nil
	}

	saved, err := p.LoadCookies(ctx)
	if err != nil {
		j.logger.Warn("failed to restore cookies", "error", err)
		return j, nil
	}
	for _, c := range saved {
		j.cookies[cookieKey(c)] = c
	}
	if len(saved) > 0 {
		jar.SetCookies(base, saved)
		j.logger.Debug("restored cookies", "count", len(saved))
	}
	return j, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.persistMu.Lock()
	defer j.persistMu.Unlock()

	j.mu.Lock()
	j.jar.SetCookies(u, cookies)
	if !strings.EqualFold(u.Hostname(), j.base.Hostname()) || j.persister == nil {
		j.mu.Unlock()
		return
	}

	now := time.Now()
	for _, c := range cookies {
		c := *c
		if c.Path == "" {
			c.Path = defaultCookiePath(u.Path)
		}
		key := cookieKey(&c)
		switch {
		case c.MaxAge < 0, !c.Expires.IsZero() && c.Expires.Before(now):
			delete(j.cookies, key)
			continue
		case c.MaxAge > 0:
			c.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
			c.MaxAge = 0
		}
		j.cookies[key] = &c
	}
	snapshot := j.snapshot()
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.persister.SaveCookies(ctx, snapshot); err != nil {
		j.logger.Warn("failed to persist cookies", "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

// Clear drops every cookie, in memory and persisted.
func (j *PersistentJar) Clear(ctx context.Context) error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	j.persistMu.Lock()
	defer j.persistMu.Unlock()

	j.mu.Lock()
	j.jar = jar
	j.cookies = make(map[string]*http.Cookie)
	j.mu.Unlock()

	if j.persister == nil {
		return nil
	}
	return j.persister.ClearCookies(ctx)
}

// snapshot must be called with mu held.
func (j *PersistentJar) snapshot() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		return cookieKey(out[a]) < cookieKey(out[b])
	})
	return out
}

func cookieKey(c *http.Cookie) string {
	return c.Name + "|" + c.Path
}

// defaultCookiePath implements the default-path rule of RFC 6265 section 5.1.4.
func defaultCookiePath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
