// Package gate is the single checkpoint every outbound research request
// passes through: per-domain token buckets plus a TTL cache of robots.txt
// verdicts. One Gate instance is shared by all adapters across requests and
// is safe for concurrent use.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a domain bucket cannot refill within the
// bounded wait. Callers treat it as retryable, not fatal.
var ErrRateLimited = errors.New("rate limited by politeness gate")

// Limit describes one domain bucket.
type Limit struct {
	PerSecond float64
	Burst     int
}

// Options configure a Gate. Zero values fall back to conservative defaults.
type Options struct {
	Default   Limit
	PerDomain map[string]Limit

	// MaxWait bounds how long Acquire blocks for a token before giving up
	// with ErrRateLimited.
	MaxWait time.Duration

	// RobotsTTL bounds how long a cached robots.txt verdict is trusted.
	RobotsTTL time.Duration

	RespectRobots bool
	UserAgent     string

	// Disallow lists hosts that are never contacted regardless of robots.
	Disallow []string

	HTTPClient *http.Client
}

type robotsEntry struct {
	group   *robotstxt.Group
	fetched time.Time
}

// Gate owns the shared politeness state. Buckets are the only state shared
// across concurrent requests, so token accounting must not lose updates.
type Gate struct {
	opts     Options
	disallow map[string]struct{}

	mu      sync.Mutex
	buckets map[string]*rate.Limiter

	robotsMu sync.Mutex
	robots   map[string]robotsEntry

	now func() time.Time
}

// New builds a Gate from options.
func New(opts Options) *Gate {
	if opts.Default.PerSecond <= 0 {
		opts.Default.PerSecond = 1
	}
	if opts.Default.Burst <= 0 {
		opts.Default.Burst = 2
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 300 * time.Millisecond
	}
	if opts.RobotsTTL <= 0 {
		opts.RobotsTTL = time.Hour
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "talor-research"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	g := &Gate{
		opts:     opts,
		disallow: make(map[string]struct{}, len(opts.Disallow)),
		buckets:  make(map[string]*rate.Limiter),
		robots:   make(map[string]robotsEntry),
		now:      time.Now,
	}
	for _, host := range opts.Disallow {
		if h := NormalizeHost(host); h != "" {
			g.disallow[h] = struct{}{}
		}
	}
	return g
}

// Acquire blocks until the domain bucket yields a token, up to MaxWait.
// It fails with ErrRateLimited rather than waiting indefinitely; context
// cancellation surfaces as the context's error.
func (g *Gate) Acquire(ctx context.Context, domain string) error {
	host := NormalizeHost(domain)
	if host == "" {
		return fmt.Errorf("acquire: empty domain")
	}
	lim := g.limiter(host)

	waitCtx, cancel := context.WithTimeout(ctx, g.opts.MaxWait)
	defer cancel()
	if err := lim.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", ErrRateLimited, host)
	}
	return nil
}

// Allowed evaluates the robots directive for rawURL, caching per domain.
// A missing or unreachable robots.txt fails open. Hosts on the configured
// disallow list are always refused.
func (g *Gate) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false, fmt.Errorf("allowed: unparseable url %q", rawURL)
	}
	host := NormalizeHost(u.Host)
	if _, blocked := g.disallow[host]; blocked {
		return false, nil
	}
	if !g.opts.RespectRobots {
		return true, nil
	}

	group, err := g.robotsGroup(ctx, u)
	if err != nil {
		return false, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), nil
}

func (g *Gate) limiter(host string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lim, ok := g.buckets[host]; ok {
		return lim
	}
	l := g.opts.Default
	if override, ok := g.opts.PerDomain[host]; ok {
		l = override
	}
	lim := rate.NewLimiter(rate.Limit(l.PerSecond), l.Burst)
	g.buckets[host] = lim
	return lim
}

func (g *Gate) robotsGroup(ctx context.Context, u *url.URL) (*robotstxt.Group, error) {
	host := NormalizeHost(u.Host)

	g.robotsMu.Lock()
	entry, ok := g.robots[host]
	if ok && g.now().Sub(entry.fetched) < g.opts.RobotsTTL {
		g.robotsMu.Unlock()
		return entry.group, nil
	}
	g.robotsMu.Unlock()

	// Fetching the directive is itself a gated request against the domain.
	if err := g.Acquire(ctx, host); err != nil {
		return nil, err
	}

	group := g.fetchRobots(ctx, u)
	g.robotsMu.Lock()
	g.robots[host] = robotsEntry{group: group, fetched: g.now()}
	g.robotsMu.Unlock()
	return group, nil
}

func (g *Gate) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return allowAllGroup(g.opts.UserAgent)
	}
	req.Header.Set("User-Agent", g.opts.UserAgent)
	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return allowAllGroup(g.opts.UserAgent)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return allowAllGroup(g.opts.UserAgent)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return allowAllGroup(g.opts.UserAgent)
	}
	return data.FindGroup(g.opts.UserAgent)
}

func allowAllGroup(agent string) *robotstxt.Group {
	data, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	return data.FindGroup(agent)
}

// NormalizeHost reduces a host or URL-ish string to a bare lowercase host.
func NormalizeHost(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if u, err := url.Parse(value); err == nil && u.Host != "" {
			value = u.Host
		}
	}
	if i := strings.IndexByte(value, '/'); i >= 0 {
		value = value[:i]
	}
	if h, _, found := strings.Cut(value, ":"); found {
		value = h
	}
	return strings.TrimPrefix(value, "www.")
}
