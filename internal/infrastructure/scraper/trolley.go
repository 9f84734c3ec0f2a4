package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

const (
	searchPath   = "/search/?from=search&q="
	noTitle      = "No title"
	unknownStore = "Unknown"
)

var priceExpr = regexp.MustCompile(`[0-9]+\.?[0-9]*`)

// TrolleySource scrapes the trolley.co.uk search and comparison pages.
// Candidates are drawn per category: fetch the search page, extract up to
// listingLimit product blocks, then keep a uniform random subset of at most
// sampleSize of them.
type TrolleySource struct {
	fetcher      ports.Fetcher
	baseURL      string
	listingLimit int
	sampleSize   int
	rng          *rand.Rand
	logger       *slog.Logger
}

var _ ports.ProductSource = (*TrolleySource)(nil)

// NewTrolleySource builds a source over the given fetcher. A nil rng falls
// back to a time-seeded one; tests inject a fixed seed for reproducibility.
func NewTrolleySource(fetcher ports.Fetcher, baseURL string, rng *rand.Rand, logger *slog.Logger) *TrolleySource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TrolleySource{
		fetcher:      fetcher,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		listingLimit: 10,
		sampleSize:   5,
		rng:          rng,
		logger:       logger,
	}
}

// SetLimits overrides the per-category listing and sample bounds.
// Non-positive values keep the current bound.
func (s *TrolleySource) SetLimits(listing, sample int) {
	if listing > 0 {
		s.listingLimit = listing
	}
	if sample > 0 {
		s.sampleSize = sample
	}
}

// Sample processes categories one at a time. A category whose fetch fails or
// whose page carries no product blocks contributes zero candidates; the rest
// keep going. Output never exceeds sampleSize per category.
func (s *TrolleySource) Sample(ctx context.Context, categories []string) []domain.Candidate {
	var out []domain.Candidate

	for _, category := range categories {
		url := s.baseURL + searchPath + strings.ReplaceAll(category, " ", "+")

		body, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.warn("search fetch failed", "category", category, "error", err)
			continue
		}

		extracted, err := extractListing(body, category)
		if err != nil {
			s.warn("search parse failed", "category", category, "error", err)
			continue
		}
		if len(extracted) == 0 {
			s.warn("no products found", "category", category)
			continue
		}

		if len(extracted) > s.listingLimit {
			extracted = extracted[:s.listingLimit]
		}

		out = append(out, s.pick(extracted)...)
	}

	return out
}

// Offers fetches the candidate's comparison page and extracts store offers.
// Candidates without a detail reference resolve to no offers.
func (s *TrolleySource) Offers(ctx context.Context, c domain.Candidate) ([]domain.Offer, error) {
	if c.DetailRef == "" {
		return nil, nil
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL+c.DetailRef)
	if err != nil {
		return nil, err
	}

	return extractOffers(body)
}

// pick draws at most sampleSize candidates uniformly without replacement.
func (s *TrolleySource) pick(candidates []domain.Candidate) []domain.Candidate {
	n := s.sampleSize
	if len(candidates) < n {
		n = len(candidates)
	}

	selected := make([]domain.Candidate, 0, n)
	for _, i := range s.rng.Perm(len(candidates))[:n] {
		selected = append(selected, candidates[i])
	}
	return selected
}

// extractListing pulls product blocks from a search-results page. Items
// without a title fall back to a sentinel; items without a link are kept with
// an empty detail reference and marked unresolvable downstream.
func extractListing(markup []byte, category string) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var out []domain.Candidate
	doc.Find("div.product-item").Each(func(_ int, item *goquery.Selection) {
		info := item.Find("div._info").First()
		if info.Length() == 0 {
			return
		}

		title := strings.TrimSpace(info.Find("div._desc").First().Text())
		if title == "" {
			title = noTitle
		}

		href, _ := item.Find("a").First().Attr("href")

		out = append(out, domain.Candidate{
			Title:     title,
			DetailRef: href,
			Category:  category,
		})
	})

	return out, nil
}

// extractOffers pulls store offers from a product comparison page. Entries
// with no parseable price are skipped entirely, not defaulted.
func extractOffers(markup []byte) ([]domain.Offer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse detail: %w", err)
	}

	table := doc.Find("div.comparison-table").First()
	if table.Length() == 0 {
		return nil, domain.ErrNoComparisonTable
	}

	var offers []domain.Offer
	table.Find("div._item").Each(func(_ int, entry *goquery.Selection) {
		store := unknownStore
		if t, ok := entry.Find("svg").First().Attr("title"); ok && t != "" {
			store = t
		}

		priceBox := entry.Find("div._price").First()
		if priceBox.Length() == 0 {
			return
		}
		raw := priceExpr.FindString(priceBox.Text())
		if raw == "" {
			return
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return
		}

		var link string
		entry.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(a.Text()), "visit") {
				link, _ = a.Attr("href")
				return false
			}
			return true
		})

		offers = append(offers, domain.Offer{Store: store, Price: price, Link: link})
	})

	return offers, nil
}

func (s *TrolleySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
