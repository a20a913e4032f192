package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
)

// qForum queries a discussion-forum mirror API for interview questions
// reported by candidates at the target company.
type qForum struct {
	base
	endpoint string
	apiKey   string
	max      int
}

func newQForum(id string, cfg config.AdapterConfig, deps Deps) research.Adapter {
	return &qForum{
		base:     base{id: id, priority: cfg.Priority, gate: deps.Gate, http: deps.HTTP, logger: deps.Logger},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		max:      cfg.MaxResults,
	}
}

func (a *qForum) Fetch(ctx context.Context, rc research.RequestContext) research.AdapterOutcome {
	items, err := a.fetch(ctx, rc)
	return a.outcome(items, err)
}

func (a *qForum) fetch(ctx context.Context, rc research.RequestContext) ([]research.RawItem, error) {
	if a.endpoint == "" {
		return nil, fmt.Errorf("qforum endpoint not configured")
	}
	url := fmt.Sprintf("%s?company=%s&limit=%d", a.endpoint, escapeQuery(rc.CompanyName), maxResults(a.max, 15))
	if rc.JobTitle != "" {
		url += "&role=" + escapeQuery(rc.JobTitle)
	}

	if err := a.approve(ctx, url); err != nil {
		return nil, err
	}

	var resp struct {
		Posts []struct {
			ID       string `json:"id"`
			Question string `json:"question"`
			URL      string `json:"url"`
			AskedAt  string `json:"asked_at"`
			Role     string `json:"role"`
			Upvotes  int    `json:"upvotes"`
		} `json:"posts"`
	}
	headers := map[string]string{}
	if a.apiKey != "" {
		headers["Authorization"] = "Bearer " + a.apiKey
	}
	if err := a.http.DoJSON(ctx, "GET", url, headers, nil, &resp); err != nil {
		return nil, err
	}

	var items []research.RawItem
	for _, p := range resp.Posts {
		q := strings.TrimSpace(p.Question)
		if q == "" || p.URL == "" {
			continue
		}
		items = append(items, research.RawItem{
			SourceID:  a.id,
			URL:       p.URL,
			Title:     q,
			RawText:   q,
			FetchedAt: time.Now().UTC(),
			Fields: map[string]string{
				"question_text": q,
				"published_at":  p.AskedAt,
				"role":          strings.TrimSpace(p.Role),
				"upvotes":       fmt.Sprintf("%d", p.Upvotes),
			},
		})
	}
	return items, nil
}
