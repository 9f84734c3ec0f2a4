package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"SpendScout/internal/config"
	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

const maxSelected = 3

const rankPrompt = `You are an AI expert in consumer savings.
You will analyze user spending behavior and scraped supermarket products to select the BEST value deals.

USER SPENDING SUMMARY:
%s

PRODUCT LIST (JSON):
%s

TASK:
1. Identify the top 3 BEST DEALS based on:
   - Categories where user expenses INCREASED this month.
   - Price vs alternatives.
   - General consumer savings value.

2. Output ONLY valid JSON using the structure:

{
  "selected": [
    {"store": "...", "title": "...", "price": "...", "justification": "..."}
  ],
  "analysis": "...",
  "confidence": 0.0
}

If you cannot identify 3 deals, return as many as possible (minimum 1 if available). If none, return empty selected.`

// OpenAIRanker implements ports.DealRanker over OpenAI-compatible
// chat-completions APIs. One request per pipeline invocation.
type OpenAIRanker struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ ports.DealRanker = (*OpenAIRanker)(nil)

// NewOpenAIRanker builds a ranker from configuration.
func NewOpenAIRanker(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIRanker {
	return &OpenAIRanker{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

type chatReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type rankReply struct {
	Selected   []domain.RankedDeal `json:"selected"`
	Analysis   string              `json:"analysis"`
	Confidence float64             `json:"confidence"`
}

// Rank sends the spending summary and priced products to the model and parses
// its selection. Transport and status failures map to ErrRankerUnavailable;
// a reply with no parseable JSON object maps to ErrMalformedReply. At most
// three deals are returned even if the model selects more.
func (r *OpenAIRanker) Rank(ctx context.Context, summary map[string]any, products []domain.PricedProduct) ([]domain.RankedDeal, error) {
	if r.apiKey == "" || r.endpoint == "" || r.model == "" {
		return nil, fmt.Errorf("%w: ranker misconfigured", domain.ErrRankerUnavailable)
	}

	prompt, err := buildRankPrompt(summary, products)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRankerUnavailable, err)
	}

	body, err := json.Marshal(map[string]any{
		"model":       r.model,
		"temperature": r.temperature,
		"max_tokens":  r.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrRankerUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", domain.ErrRankerUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRankerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrRankerUnavailable, resp.Status, strings.TrimSpace(string(detail)))
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", domain.ErrRankerUnavailable, err)
	}
	if len(reply.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", domain.ErrMalformedReply)
	}

	return parseSelection(reply.Choices[0].Message.Content, r.logger)
}

func buildRankPrompt(summary map[string]any, products []domain.PricedProduct) (string, error) {
	type item struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		Store     string `json:"store"`
		BestPrice string `json:"best_price"`
		StoreLink string `json:"store_link,omitempty"`
	}

	if summary == nil {
		summary = map[string]any{}
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	payload := make([]item, 0, len(products))
	for _, p := range products {
		entry := item{
			Title:     p.Title,
			Category:  p.Category,
			Store:     p.BestStore,
			StoreLink: p.StoreLink,
		}
		if p.BestPrice != nil {
			entry.BestPrice = p.BestPrice.String()
		}
		payload = append(payload, entry)
	}
	productsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal products: %w", err)
	}

	return fmt.Sprintf(rankPrompt, summaryJSON, productsJSON), nil
}

// parseSelection locates the span from the first '{' to the last '}' of the
// reply text and decodes it. Model chatter around the object is tolerated;
// a reply without such a span is malformed, not an exception.
func parseSelection(content string, logger *slog.Logger) ([]domain.RankedDeal, error) {
	span := jsonSpan(content)
	if span == "" {
		if logger != nil {
			logger.Error("no JSON object in ranker reply")
		}
		return nil, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedReply)
	}

	var parsed rankReply
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		if logger != nil {
			logger.Error("undecodable ranker reply", "error", err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	selected := parsed.Selected
	if len(selected) > maxSelected {
		selected = selected[:maxSelected]
	}
	return selected, nil
}

func jsonSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
