package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
)

const defaultNewswireEndpoint = "https://newsapi.org/v2/everything"

// newswire searches a news-article API for recent coverage of the company.
type newswire struct {
	base
	endpoint string
	apiKey   string
	max      int
}

func newNewswire(id string, cfg config.AdapterConfig, deps Deps) research.Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultNewswireEndpoint
	}
	return &newswire{
		base:     base{id: id, priority: cfg.Priority, gate: deps.Gate, http: deps.HTTP, logger: deps.Logger},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		max:      cfg.MaxResults,
	}
}

func (a *newswire) Fetch(ctx context.Context, rc research.RequestContext) research.AdapterOutcome {
	items, err := a.fetch(ctx, rc)
	return a.outcome(items, err)
}

func (a *newswire) fetch(ctx context.Context, rc research.RequestContext) ([]research.RawItem, error) {
	q := rc.CompanyName
	url := fmt.Sprintf("%s?q=%s&language=en&sortBy=publishedAt&pageSize=%d",
		a.endpoint, escapeQuery(q), maxResults(a.max, 20))
	if rc.RecencyDays > 0 && !rc.AsOf.IsZero() {
		since := rc.AsOf.AddDate(0, 0, -rc.RecencyDays)
		url += "&from=" + since.UTC().Format(time.RFC3339)
	}

	if err := a.approve(ctx, url); err != nil {
		return nil, err
	}

	var resp struct {
		Articles []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Description string `json:"description"`
			Content     string `json:"content"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	headers := map[string]string{"X-Api-Key": a.apiKey}
	if err := a.http.DoJSON(ctx, "GET", url, headers, nil, &resp); err != nil {
		return nil, err
	}

	var items []research.RawItem
	for _, art := range resp.Articles {
		if art.URL == "" {
			continue
		}
		text := strings.TrimSpace(art.Description)
		if text == "" {
			text = strings.TrimSpace(art.Content)
		}
		items = append(items, research.RawItem{
			SourceID:  a.id,
			URL:       art.URL,
			Title:     strings.TrimSpace(art.Title),
			RawText:   text,
			FetchedAt: time.Now().UTC(),
			Fields: map[string]string{
				"headline":     strings.TrimSpace(art.Title),
				"published_at": art.PublishedAt,
				"outlet":       strings.TrimSpace(art.Source.Name),
			},
		})
	}
	return items, nil
}
