package server

import "time"

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ResearchRequest is the shared payload for the research endpoints. Company
// is required; the rest narrows scoring or, for question prep, feeds the
// generated document.
type ResearchRequest struct {
	Company        string `json:"company"`
	Industry       string `json:"industry,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	RoleCategory   string `json:"role_category,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	RecencyDays    int    `json:"recency_days,omitempty"`
	MaxItems       int    `json:"max_items,omitempty"`
}

// CitationResponse is one supporting source for a finding.
type CitationResponse struct {
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
}

// ItemResponse is one ranked finding with its citations and score breakdown.
type ItemResponse struct {
	Kind        string             `json:"kind"`
	Body        string             `json:"body"`
	SourceName  string             `json:"source_name"`
	SourceURL   string             `json:"source_url"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
	Relevance   float64            `json:"relevance"`
	Breakdown   map[string]float64 `json:"breakdown,omitempty"`
	Citations   []CitationResponse `json:"citations"`
}

// SectionResponse is one heading of a generated document.
type SectionResponse struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// DocumentResponse is a generated prose document.
type DocumentResponse struct {
	Title    string            `json:"title"`
	Summary  string            `json:"summary,omitempty"`
	Sections []SectionResponse `json:"sections"`
}

// ResearchResponse is the research endpoint result: ranked items, aggregate
// source counts and, when synthesis ran, the generated document.
type ResearchResponse struct {
	ReportID         string            `json:"report_id,omitempty"`
	Items            []ItemResponse    `json:"items"`
	Document         *DocumentResponse `json:"document,omitempty"`
	SourcesSucceeded int               `json:"sources_succeeded"`
	SourcesFailed    int               `json:"sources_failed"`
	StatusCounts     map[string]int    `json:"status_counts"`
	Cached           bool              `json:"cached,omitempty"`
}

// ReportSummary is a stored report without its payload.
type ReportSummary struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Company   string    `json:"company"`
	JobTitle  string    `json:"job_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportDetail is a stored report with its payload.
type ReportDetail struct {
	ReportSummary
	Payload ResearchResponse `json:"payload"`
}
