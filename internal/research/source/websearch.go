package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
	"github.com/heirclark17/talor/internal/urlnorm"
)

const defaultWebSearchEndpoint = "https://api.search.brave.com/res/v1/web/search"

// webSearch issues up to two bounded queries against a web-search API,
// collecting strategy and initiative snippets about the company.
type webSearch struct {
	base
	endpoint string
	apiKey   string
	max      int
}

func newWebSearch(id string, cfg config.AdapterConfig, deps Deps) research.Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultWebSearchEndpoint
	}
	return &webSearch{
		base:     base{id: id, priority: cfg.Priority, gate: deps.Gate, http: deps.HTTP, logger: deps.Logger},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		max:      cfg.MaxResults,
	}
}

func (a *webSearch) Fetch(ctx context.Context, rc research.RequestContext) research.AdapterOutcome {
	items, err := a.fetch(ctx, rc)
	return a.outcome(items, err)
}

func (a *webSearch) fetch(ctx context.Context, rc research.RequestContext) ([]research.RawItem, error) {
	queries := []string{rc.CompanyName + " strategy initiatives"}
	if extra := strings.TrimSpace(strings.Join([]string{rc.Industry, rc.RoleCategory}, " ")); extra != "" {
		queries = append(queries, rc.CompanyName+" "+extra)
	}

	seen := make(map[string]bool)
	var items []research.RawItem
	for _, q := range queries {
		batch, err := a.search(ctx, q)
		if err != nil {
			// A later query may still succeed; only fail when nothing landed.
			if len(items) == 0 {
				return nil, err
			}
			a.logger.Printf("[SOURCE] %s: query %q dropped: %v", a.id, q, err)
			continue
		}
		for _, it := range batch {
			key := it.URL
			if canonical, err := urlnorm.Canonical(it.URL); err == nil {
				key = canonical
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, it)
		}
	}
	return items, nil
}

func (a *webSearch) search(ctx context.Context, q string) ([]research.RawItem, error) {
	url := fmt.Sprintf("%s?q=%s&count=%d", a.endpoint, escapeQuery(q), maxResults(a.max, 10))
	if err := a.approve(ctx, url); err != nil {
		return nil, err
	}

	var resp struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				Age         string `json:"age"`
			} `json:"results"`
		} `json:"web"`
	}
	headers := map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": a.apiKey,
	}
	if err := a.http.DoJSON(ctx, "GET", url, headers, nil, &resp); err != nil {
		return nil, err
	}

	var items []research.RawItem
	for _, r := range resp.Web.Results {
		if r.URL == "" {
			continue
		}
		items = append(items, research.RawItem{
			SourceID:  a.id,
			URL:       r.URL,
			Title:     strings.TrimSpace(r.Title),
			RawText:   strings.TrimSpace(r.Description),
			FetchedAt: time.Now().UTC(),
			Fields: map[string]string{
				"snippet":      strings.TrimSpace(r.Description),
				"published_at": r.Age,
			},
		})
	}
	return items, nil
}
