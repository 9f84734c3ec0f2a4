package usecase

import (
	"strings"

	"SpendScout/internal/domain"
)

// fallbackTemplates is the fixed pool of natural-language deal messages used
// when the ranker is unavailable or comes up short. Template choice is purely
// presentational; rotation through the pool avoids immediate repetition for
// draws up to the pool size.
var fallbackTemplates = []string{
	"According to your recent spending patterns, you might benefit from reducing your expenses in the {category} category. I found an offer at {store}: the product '{title}' is available for £{price}. You can check it here: {link}.",
	"Based on how you've been spending lately, you seem to be investing quite a bit in {category}. A good deal I found for you is at {store}: '{title}' for only £{price}. Here is the direct link: {link}.",
	"Your recent purchases suggest you frequently buy items related to {category}. To help you save, I located an offer at {store}: '{title}' priced at £{price}. You can access it here: {link}.",
}

// ComposeFallback draws min(want, len(products)) products uniformly without
// replacement and renders each through a rotating template. An empty product
// set yields an empty, valid result.
func (s *DiscountService) ComposeFallback(products []domain.PricedProduct, want int) []domain.DealMessage {
	if want <= 0 || len(products) == 0 {
		return []domain.DealMessage{}
	}

	n := want
	if len(products) < n {
		n = len(products)
	}

	messages := make([]domain.DealMessage, 0, n)
	for i, idx := range s.rng.Perm(len(products))[:n] {
		tpl := fallbackTemplates[i%len(fallbackTemplates)]
		messages = append(messages, domain.DealMessage{Text: fillTemplate(tpl, products[idx])})
	}
	return messages
}

func fillTemplate(tpl string, p domain.PricedProduct) string {
	category := p.Category
	if category == "" {
		category = "this category"
	}
	store := p.BestStore
	if store == "" {
		store = "Unknown Store"
	}
	title := p.Title
	if title == "" {
		title = "Unknown Product"
	}
	price := "?"
	if p.BestPrice != nil {
		price = p.BestPrice.String()
	}
	link := p.StoreLink
	if link == "" {
		link = "#"
	}

	return strings.NewReplacer(
		"{category}", category,
		"{store}", store,
		"{title}", title,
		"{price}", price,
		"{link}", link,
	).Replace(tpl)
}
