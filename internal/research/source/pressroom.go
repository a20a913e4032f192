package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
)

const (
	defaultPressHost = "prnewswire.com"

	// pressPageLimit caps full-page fetches so one invocation stays at a
	// search request plus at most two article fetches.
	pressPageLimit = 2

	pressBodyLimit = 1 << 20
	pressTextCap   = 1200
)

// pressroom discovers the company's recent press releases through a
// site-filtered search, then fetches the top hits and extracts readable text.
type pressroom struct {
	base
	endpoint  string
	apiKey    string
	pressHost string
}

func newPressroom(id string, cfg config.AdapterConfig, deps Deps) research.Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultWebSearchEndpoint
	}
	host := cfg.Extra["press_host"]
	if host == "" {
		host = defaultPressHost
	}
	return &pressroom{
		base:      base{id: id, priority: cfg.Priority, gate: deps.Gate, http: deps.HTTP, logger: deps.Logger},
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		pressHost: host,
	}
}

func (a *pressroom) Fetch(ctx context.Context, rc research.RequestContext) research.AdapterOutcome {
	items, err := a.fetch(ctx, rc)
	return a.outcome(items, err)
}

func (a *pressroom) fetch(ctx context.Context, rc research.RequestContext) ([]research.RawItem, error) {
	q := fmt.Sprintf("site:%s %q", a.pressHost, rc.CompanyName)
	searchURL := fmt.Sprintf("%s?q=%s&count=%d", a.endpoint, escapeQuery(q), pressPageLimit*2)
	if err := a.approve(ctx, searchURL); err != nil {
		return nil, err
	}

	var resp struct {
		Web struct {
			Results []struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"results"`
		} `json:"web"`
	}
	headers := map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": a.apiKey,
	}
	if err := a.http.DoJSON(ctx, "GET", searchURL, headers, nil, &resp); err != nil {
		return nil, err
	}

	var items []research.RawItem
	for _, r := range resp.Web.Results {
		if len(items) >= pressPageLimit {
			break
		}
		if r.URL == "" {
			continue
		}
		item, err := a.extract(ctx, r.URL)
		if err != nil {
			// A single unreadable page does not fail the adapter.
			a.logger.Printf("[SOURCE] %s: skip %s: %v", a.id, r.URL, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *pressroom) extract(ctx context.Context, pageURL string) (research.RawItem, error) {
	if err := a.approve(ctx, pageURL); err != nil {
		return research.RawItem{}, err
	}
	body, err := a.http.GetBody(ctx, pageURL, pressBodyLimit)
	if err != nil {
		return research.RawItem{}, err
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return research.RawItem{}, err
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return research.RawItem{}, fmt.Errorf("readability: %w", err)
	}

	text := collapseText(article.TextContent)
	if len(text) > pressTextCap {
		text = text[:pressTextCap]
	}
	fields := map[string]string{
		"headline": strings.TrimSpace(article.Title),
		"outlet":   strings.TrimSpace(article.SiteName),
	}
	if article.PublishedTime != nil {
		fields["published_at"] = article.PublishedTime.UTC().Format(time.RFC3339)
	}
	return research.RawItem{
		SourceID:  a.id,
		URL:       pageURL,
		Title:     strings.TrimSpace(article.Title),
		RawText:   text,
		FetchedAt: time.Now().UTC(),
		Fields:    fields,
	}, nil
}

func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
