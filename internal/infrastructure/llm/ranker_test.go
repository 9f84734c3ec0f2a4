package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"SpendScout/internal/config"
	"SpendScout/internal/domain"
)

func TestJSONSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"chatter around", "Sure! Here you go:\n```json\n{\"a\":1}\n```\nEnjoy.", `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no object", "sorry, nothing found", ""},
		{"reversed braces", "} no {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jsonSpan(tt.in); got != tt.want {
				t.Fatalf("jsonSpan(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func rankerAgainst(serverURL string) *OpenAIRanker {
	return NewOpenAIRanker(config.OpenAIConfig{
		Endpoint:    serverURL,
		Model:       "gpt-4o-mini",
		APIKey:      "test-key",
		Temperature: 0.2,
		MaxTokens:   800,
	}, nil)
}

func chatResponse(content string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return raw
}

func someProducts() []domain.PricedProduct {
	price := decimal.NewFromFloat(1.5)
	return []domain.PricedProduct{
		{
			Candidate: domain.Candidate{Title: "Oat Drink 1L", Category: "groceries"},
			BestStore: "Tesco",
			BestPrice: &price,
			StoreLink: "/out/tesco",
		},
	}
}

func TestRankParsesSelection(t *testing.T) {
	t.Parallel()

	content := `Here is my analysis.
{"selected":[{"store":"Tesco","title":"Oat Drink 1L","price":"1.50","justification":"cheapest per litre"}],"analysis":"ok","confidence":0.9}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write(chatResponse(content))
	}))
	defer server.Close()

	deals, err := rankerAgainst(server.URL).Rank(context.Background(), map[string]any{"total": "120"}, someProducts())
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("expected 1 deal, got %d", len(deals))
	}
	if deals[0].Store != "Tesco" || deals[0].Price.String() != "1.5" {
		t.Fatalf("unexpected deal: %+v", deals[0])
	}
	if deals[0].Justification != "cheapest per litre" {
		t.Fatalf("unexpected justification: %q", deals[0].Justification)
	}
}

func TestRankCapsAtThree(t *testing.T) {
	t.Parallel()

	content := `{"selected":[
	  {"store":"A","title":"1","price":1.0,"justification":"x"},
	  {"store":"B","title":"2","price":2.0,"justification":"x"},
	  {"store":"C","title":"3","price":3.0,"justification":"x"},
	  {"store":"D","title":"4","price":4.0,"justification":"x"},
	  {"store":"E","title":"5","price":5.0,"justification":"x"}
	],"analysis":"","confidence":0.5}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatResponse(content))
	}))
	defer server.Close()

	deals, err := rankerAgainst(server.URL).Rank(context.Background(), nil, someProducts())
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(deals) != 3 {
		t.Fatalf("expected cap at 3 deals, got %d", len(deals))
	}
}

func TestRankMalformedReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatResponse("I could not find any deals today."))
	}))
	defer server.Close()

	_, err := rankerAgainst(server.URL).Rank(context.Background(), nil, someProducts())
	if !errors.Is(err, domain.ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}

func TestRankServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := rankerAgainst(server.URL).Rank(context.Background(), nil, someProducts())
	if !errors.Is(err, domain.ErrRankerUnavailable) {
		t.Fatalf("expected ErrRankerUnavailable, got %v", err)
	}
}

func TestRankMisconfigured(t *testing.T) {
	t.Parallel()

	ranker := NewOpenAIRanker(config.OpenAIConfig{}, nil)

	_, err := ranker.Rank(context.Background(), nil, someProducts())
	if !errors.Is(err, domain.ErrRankerUnavailable) {
		t.Fatalf("expected ErrRankerUnavailable, got %v", err)
	}
}
