package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/heirclark17/talor/internal/research"
	"github.com/heirclark17/talor/internal/store"
	"github.com/heirclark17/talor/provider"
)

// Researcher runs one aggregation request. Satisfied by *research.Engine.
type Researcher interface {
	Research(ctx context.Context, rc research.RequestContext) (research.Result, error)
}

// ResearchHandler serves the research endpoints and stored-report CRUD.
// Generator is optional; without it the endpoints return ranked items only.
type ResearchHandler struct {
	Engine    Researcher
	Store     *store.Store
	Cache     *ResultCache
	Generator provider.Generator
	Logger    *log.Logger
}

func (h *ResearchHandler) Register(g *echo.Group, secret []byte) {
	g.Use(AuthMiddleware(secret))
	g.POST("/strategy", func(c echo.Context) error { return h.run(c, store.ReportKindStrategy) })
	g.POST("/news", func(c echo.Context) error { return h.run(c, store.ReportKindNews) })
	g.POST("/questions", func(c echo.Context) error { return h.run(c, store.ReportKindQuestions) })
	g.GET("/reports", h.listReports)
	g.GET("/reports/:id", h.getReport)
	g.DELETE("/reports/:id", h.deleteReport)
}

func (h *ResearchHandler) run(c echo.Context, kind string) error {
	var req ResearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rc := research.RequestContext{
		CompanyName:  req.Company,
		Industry:     req.Industry,
		JobTitle:     req.JobTitle,
		RoleCategory: req.RoleCategory,
		RecencyDays:  req.RecencyDays,
		MaxItems:     req.MaxItems,
	}.WithDefaults()

	ctx := c.Request().Context()
	userID, _ := c.Get("user_id").(string)

	key := ""
	if h.Cache != nil {
		key = h.Cache.Key(kind, rc)
		if resp, ok := h.Cache.Get(ctx, key); ok {
			resp.Cached = true
			return c.JSON(http.StatusOK, resp)
		}
	}

	result, err := h.Engine.Research(ctx, rc)
	if err != nil {
		if research.IsInvalidContext(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, research.ErrNoResults) {
			return c.JSON(http.StatusNotFound, ResearchResponse{
				Items:            []ItemResponse{},
				SourcesSucceeded: result.SourcesSucceeded,
				SourcesFailed:    result.SourcesFailed,
				StatusCounts:     statusCounts(result),
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := ResearchResponse{
		Items:            itemResponses(result.Items),
		SourcesSucceeded: result.SourcesSucceeded,
		SourcesFailed:    result.SourcesFailed,
		StatusCounts:     statusCounts(result),
	}
	if doc, ok := h.synthesize(ctx, kind, req, result.Items); ok {
		resp.Document = doc
	}

	if h.Store != nil && userID != "" {
		payload, err := json.Marshal(resp)
		if err == nil {
			rec, err := h.Store.SaveReport(ctx, store.ReportRecord{
				UserID:   userID,
				Kind:     kind,
				Company:  req.Company,
				JobTitle: req.JobTitle,
				Payload:  payload,
			})
			if err != nil {
				h.logf("save report: %v", err)
			} else {
				resp.ReportID = rec.ID
			}
		}
	}
	if h.Cache != nil {
		h.Cache.Set(ctx, key, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// synthesize calls the generator for the kinds that produce prose. News
// requests return ranked items only.
func (h *ResearchHandler) synthesize(ctx context.Context, kind string, req ResearchRequest, items []research.ScoredItem) (*DocumentResponse, bool) {
	if h.Generator == nil || len(items) == 0 {
		return nil, false
	}
	var (
		doc provider.Document
		err error
	)
	switch kind {
	case store.ReportKindStrategy:
		doc, err = h.Generator.SynthesizeStrategy(ctx, req.Company, items)
	case store.ReportKindQuestions:
		jd := req.JobDescription
		if jd == "" {
			jd = req.JobTitle + " at " + req.Company
		}
		doc, err = h.Generator.SynthesizePrep(ctx, jd, items)
	default:
		return nil, false
	}
	if err != nil {
		h.logf("synthesize %s: %v", kind, err)
		return nil, false
	}
	out := &DocumentResponse{Title: doc.Title, Summary: doc.Summary}
	for _, s := range doc.Sections {
		out.Sections = append(out.Sections, SectionResponse{Heading: s.Heading, Content: s.Content})
	}
	return out, true
}

func (h *ResearchHandler) listReports(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	recs, err := h.Store.ListReports(c.Request().Context(), userID, c.QueryParam("kind"), 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]ReportSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, reportSummary(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ResearchHandler) getReport(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	rec, ok, err := h.Store.GetReport(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	detail := ReportDetail{ReportSummary: reportSummary(rec)}
	if err := json.Unmarshal(rec.Payload, &detail.Payload); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "corrupt report payload")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *ResearchHandler) deleteReport(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	ok, err := h.Store.SoftDeleteReport(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ResearchHandler) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

func reportSummary(r store.ReportRecord) ReportSummary {
	return ReportSummary{ID: r.ID, Kind: r.Kind, Company: r.Company, JobTitle: r.JobTitle, CreatedAt: r.CreatedAt}
}

func statusCounts(res research.Result) map[string]int {
	out := make(map[string]int, len(res.StatusCounts))
	for k, v := range res.StatusCounts {
		out[string(k)] = v
	}
	return out
}

func itemResponses(items []research.ScoredItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		resp := ItemResponse{
			Kind:        string(it.Canonical.Kind),
			Body:        it.Canonical.Body,
			SourceName:  it.Canonical.SourceName,
			SourceURL:   it.Canonical.SourceURL,
			PublishedAt: it.Canonical.PublishedAt,
			Relevance:   it.Relevance,
			Breakdown:   it.Breakdown,
		}
		for _, cit := range it.Citations {
			resp.Citations = append(resp.Citations, CitationResponse{SourceName: cit.SourceName, SourceURL: cit.SourceURL})
		}
		out = append(out, resp)
	}
	return out
}
