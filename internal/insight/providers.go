package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// endpoints are variables so provider tests can point them at a fixture server.
var (
	claudeEndpoint = "https://api.anthropic.com/v1/messages"
	openaiEndpoint = "https://api.openai.com/v1/chat/completions"
)

// --- Claude provider ---

type claudeProvider struct {
	apiKey string
	model  string
	client *http.Client
}

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeProvider) Reformat(ctx context.Context, book *domain.Book, reviewText string) (*domain.Insight, error) {
	body, _ := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: 512,
		Messages:  []chatMessage{{Role: "user", Content: buildPrompt(book, reviewText)}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", claudeEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: claude: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: claude %d: %s", domain.ErrUpstream, resp.StatusCode, string(b))
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: claude: %v", domain.ErrUpstream, err)
	}
	if len(cr.Content) == 0 {
		return nil, fmt.Errorf("%w: empty claude response", domain.ErrUpstream)
	}
	return parseInsight(cr.Content[0].Text), nil
}

// --- OpenAI provider ---

type openaiProvider struct {
	apiKey string
	model  string
	client *http.Client
}

type openaiRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiProvider) Reformat(ctx context.Context, book *domain.Book, reviewText string) (*domain.Insight, error) {
	body, _ := json.Marshal(openaiRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: buildPrompt(book, reviewText)}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", openaiEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: openai %d: %s", domain.ErrUpstream, resp.StatusCode, string(b))
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrUpstream, err)
	}
	if len(or.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty openai response", domain.ErrUpstream)
	}
	return parseInsight(or.Choices[0].Message.Content), nil
}
