// Package provider wraps the LLM text-generation service that turns
// aggregated research facts into prose. The engine's responsibility ends at
// handing it well-formed, deduplicated, cited facts.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/heirclark17/talor/config"
	"github.com/heirclark17/talor/internal/research"
	openai_provider "github.com/heirclark17/talor/provider/openai"
)

// Document is structured prose produced from scored research items.
type Document struct {
	Title    string
	Summary  string
	Sections []Section
}

// Section is one heading-plus-body block of a generated document.
type Section struct {
	Heading string
	Content string
}

// Generator synthesizes prose from cited research facts.
type Generator interface {
	// SynthesizePrep produces an interview-preparation document for a job
	// description, grounded in the supplied items.
	SynthesizePrep(ctx context.Context, jobDescription string, items []research.ScoredItem) (Document, error)

	// SynthesizeStrategy produces a company-strategy brief from the items.
	SynthesizeStrategy(ctx context.Context, companyName string, items []research.ScoredItem) (Document, error)
}

// NewGenerator builds the configured Generator implementation.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm.api_key not configured")
	}
	client := openai_provider.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature, cfg.MaxTokens, cfg.Timeout)
	return &generator{client: client}, nil
}

type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type generator struct {
	client completer
}

func (g *generator) SynthesizePrep(ctx context.Context, jobDescription string, items []research.ScoredItem) (Document, error) {
	if len(items) == 0 {
		return Document{}, errors.New("no research items to synthesize from")
	}
	system := "You are an interview-preparation assistant. Use only the cited facts provided. " +
		"Answer in markdown with '## ' section headings and keep every claim attributable to a citation."
	user := fmt.Sprintf("Job description:\n%s\n\nCited research facts:\n%s\n\nWrite an interview preparation document covering likely questions, company talking points and recent developments.",
		jobDescription, FactsBlock(items))
	content, err := g.client.Complete(ctx, system, user)
	if err != nil {
		return Document{}, fmt.Errorf("generator: %w", err)
	}
	return parseDocument("Interview Preparation", content), nil
}

func (g *generator) SynthesizeStrategy(ctx context.Context, companyName string, items []research.ScoredItem) (Document, error) {
	if len(items) == 0 {
		return Document{}, errors.New("no research items to synthesize from")
	}
	system := "You are a company research analyst. Use only the cited facts provided. " +
		"Answer in markdown with '## ' section headings."
	user := fmt.Sprintf("Company: %s\n\nCited research facts:\n%s\n\nWrite a strategy brief covering direction, recent moves and open risks.",
		companyName, FactsBlock(items))
	content, err := g.client.Complete(ctx, system, user)
	if err != nil {
		return Document{}, fmt.Errorf("generator: %w", err)
	}
	return parseDocument(companyName+" Strategy Brief", content), nil
}

// FactsBlock renders scored items as a numbered, cited fact list the model
// can quote from.
func FactsBlock(items []research.ScoredItem) string {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", i+1, it.Canonical.SourceName, it.Canonical.Body, it.Canonical.SourceURL)
		for _, cit := range it.Citations[1:] {
			fmt.Fprintf(&b, "   also reported by %s (%s)\n", cit.SourceName, cit.SourceURL)
		}
	}
	return b.String()
}

// parseDocument splits markdown output on '## ' headings. Text before the
// first heading becomes the summary.
func parseDocument(title, content string) Document {
	doc := Document{Title: title}
	var current *Section
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			doc.Sections = append(doc.Sections, Section{Heading: strings.TrimSpace(strings.TrimPrefix(line, "## "))})
			current = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		if current == nil {
			doc.Summary = strings.TrimSpace(doc.Summary + "\n" + line)
			continue
		}
		current.Content = strings.TrimSpace(current.Content + "\n" + line)
	}
	return doc
}
