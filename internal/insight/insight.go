// Package insight reformats a raw book review into a structured summary
// using an external text-generation API.
package insight

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// Formatter turns a scraped review into a reader-facing insight.
type Formatter interface {
	Reformat(ctx context.Context, book *domain.Book, reviewText string) (*domain.Insight, error)
}

// Config selects and authenticates the provider.
type Config struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model,omitempty"`
}

// Configured reports whether the config is usable without further input.
func (c Config) Configured() bool {
	return c.Provider != "" && c.APIKey != ""
}

// New creates a Formatter from the given config.
func New(cfg Config) (Formatter, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("ai not configured")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return &claudeProvider{apiKey: cfg.APIKey, model: model, client: client}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openaiProvider{apiKey: cfg.APIKey, model: model, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

const reformatPrompt = `You are summarizing what a reader thought of the book "%s" by %s. Given their review below, extract up to 3 highlights (what they praised), up to 2 considerations (what they cautioned about), and one overall perspective sentence.

Format your response EXACTLY like this, one item per line:
HIGHLIGHT: <point>
CONSIDER: <point>
OVERALL: <one sentence>

Review:
%s`

func buildPrompt(book *domain.Book, reviewText string) string {
	return fmt.Sprintf(reformatPrompt, book.Title, book.Author, reviewText)
}

func parseInsight(text string) *domain.Insight {
	out := &domain.Insight{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "HIGHLIGHT:"):
			if len(out.Highlights) < 3 {
				if p := strings.TrimSpace(strings.TrimPrefix(line, "HIGHLIGHT:")); p != "" {
					out.Highlights = append(out.Highlights, p)
				}
			}
		case strings.HasPrefix(line, "CONSIDER:"):
			if len(out.Considerations) < 2 {
				if p := strings.TrimSpace(strings.TrimPrefix(line, "CONSIDER:")); p != "" {
					out.Considerations = append(out.Considerations, p)
				}
			}
		case strings.HasPrefix(line, "OVERALL:"):
			if out.Perspective == "" {
				out.Perspective = strings.TrimSpace(strings.TrimPrefix(line, "OVERALL:"))
			}
		}
	}
	return out
}
