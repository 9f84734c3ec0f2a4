package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

const (
	rankedTarget   = 3
	unpricedTarget = 5
)

// categoryQueries maps user-facing expense labels to search query keys.
// Labels outside this map never reach the pipeline.
var categoryQueries = map[string]string{
	"Groceries":       "groceries",
	"Health & Beauty": "health+beauty",
	"Cleaning":        "cleaning",
	"Online Shopping": "online+shopping",
	"Others":          "other",
}

// QueriesForLabels converts expense category labels to pipeline query keys,
// dropping unrecognized ones. An empty result falls back to groceries.
func QueriesForLabels(labels []string) []string {
	var queries []string
	for _, label := range labels {
		if q, ok := categoryQueries[label]; ok {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		queries = []string{"groceries"}
	}
	return queries
}

// DiscountServiceDeps wires all driven adapters into the discount pipeline.
type DiscountServiceDeps struct {
	Source   ports.ProductSource
	Ranker   ports.DealRanker
	Cache    ports.ResultCache
	CacheTTL time.Duration
	Rand     *rand.Rand
	Logger   *slog.Logger
}

// DiscountService orchestrates the discount-discovery pipeline: sample
// candidates per category, resolve each one's cheapest store offer, ask the
// ranker for justified picks, and degrade to templated fallback messages
// whenever a stage comes up short. No stage raises; every failure path ends
// in a bounded (possibly empty) message list.
type DiscountService struct {
	source   ports.ProductSource
	ranker   ports.DealRanker
	cache    ports.ResultCache
	cacheTTL time.Duration
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewDiscountService constructs the orchestration component. A nil Rand is
// seeded from the clock; tests inject a fixed seed.
func NewDiscountService(deps DiscountServiceDeps) *DiscountService {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DiscountService{
		source:   deps.Source,
		ranker:   deps.Ranker,
		cache:    deps.Cache,
		cacheTTL: ttl,
		rng:      rng,
		logger:   deps.Logger,
	}
}

// GetTopDiscounts runs the pipeline for the given category query keys and
// user context, memoizing the result when a cache is wired. The returned
// list holds at most 3 messages, except when no candidate resolved a price,
// where the fallback target is 5.
func (s *DiscountService) GetTopDiscounts(ctx context.Context, categories []string, userContext map[string]any) []domain.DealMessage {
	key := cacheKey(categories, userContext)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached
		}
	}

	result := s.run(ctx, categories, userContext)

	if s.cache != nil {
		s.cache.Set(ctx, key, result, s.cacheTTL)
	}
	return result
}

func (s *DiscountService) run(ctx context.Context, categories []string, userContext map[string]any) []domain.DealMessage {
	candidates := s.source.Sample(ctx, categories)
	if len(candidates) == 0 {
		s.warn("no products scraped", "categories", len(categories))
		return []domain.DealMessage{}
	}

	priced := s.price(ctx, candidates)

	valid := make([]domain.PricedProduct, 0, len(priced))
	for _, p := range priced {
		if p.Priced() {
			valid = append(valid, p)
		}
	}

	if len(valid) == 0 {
		return s.ComposeFallback(priced, unpricedTarget)
	}

	deals, err := s.rank(ctx, userContext, valid)
	if err != nil {
		s.warn("ranker failed, composing fallback", "error", err)
		return s.ComposeFallback(valid, rankedTarget)
	}
	if len(deals) == 0 {
		return s.ComposeFallback(valid, rankedTarget)
	}

	messages := make([]domain.DealMessage, 0, rankedTarget)
	for _, deal := range deals {
		messages = append(messages, formatDeal(deal, valid))
	}

	// Top up short selections one slot at a time; an empty draw ends it.
	for len(messages) < rankedTarget {
		extra := s.ComposeFallback(valid, 1)
		if len(extra) == 0 {
			break
		}
		messages = append(messages, extra...)
	}

	if len(messages) > rankedTarget {
		messages = messages[:rankedTarget]
	}
	return messages
}

// price resolves each candidate's cheapest offer. Candidates whose detail
// fetch or parse fails are carried forward with absent price fields.
func (s *DiscountService) price(ctx context.Context, candidates []domain.Candidate) []domain.PricedProduct {
	priced := make([]domain.PricedProduct, 0, len(candidates))
	for _, c := range candidates {
		p := domain.PricedProduct{Candidate: c}

		if c.DetailRef != "" {
			offers, err := s.source.Offers(ctx, c)
			if err != nil {
				s.warn("offer resolution failed", "title", c.Title, "error", err)
			} else if best := SelectBestOffer(offers); best != nil {
				price := best.Price
				p.BestStore = best.Store
				p.BestPrice = &price
				p.StoreLink = best.Link
			}
		}

		priced = append(priced, p)
	}
	return priced
}

func (s *DiscountService) rank(ctx context.Context, userContext map[string]any, products []domain.PricedProduct) ([]domain.RankedDeal, error) {
	if s.ranker == nil {
		return nil, domain.ErrRankerUnavailable
	}
	return s.ranker.Rank(ctx, userContext, products)
}

// SelectBestOffer reduces offers to the single cheapest one. Ties go to the
// first minimum in input order; empty input yields nil.
func SelectBestOffer(offers []domain.Offer) *domain.Offer {
	if len(offers) == 0 {
		return nil
	}

	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price.LessThan(best.Price) {
			best = o
		}
	}
	return &best
}

// formatDeal renders a ranked deal as presentational markup, resolving the
// outbound link from the priced product the deal refers to.
func formatDeal(deal domain.RankedDeal, products []domain.PricedProduct) domain.DealMessage {
	link := "#"
	for _, p := range products {
		if p.Title == deal.Title {
			if p.StoreLink != "" {
				link = p.StoreLink
			}
			break
		}
	}

	text := fmt.Sprintf(
		"<a href='%s' target='_blank' style='color: inherit; text-decoration: none;'>%s — £%s (%s)</a>",
		link, deal.Title, deal.Price.String(), deal.Justification,
	)
	return domain.DealMessage{Text: text}
}

// cacheKey derives a stable key from the exact invocation input.
func cacheKey(categories []string, userContext map[string]any) string {
	h := fnv.New64a()
	for _, c := range categories {
		_, _ = h.Write([]byte(c))
		_, _ = h.Write([]byte{0})
	}
	if raw, err := json.Marshal(userContext); err == nil {
		_, _ = h.Write(raw)
	}
	return "discounts:" + strconv.FormatUint(h.Sum64(), 16)
}

func (s *DiscountService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
