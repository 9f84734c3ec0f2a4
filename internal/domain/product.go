package domain

import "github.com/shopspring/decimal"

// Candidate is a scraped product reference before pricing is resolved.
// DetailRef is the relative path to the store-comparison page; it stays empty
// when the listing block carried no link, marking the candidate unresolvable.
type Candidate struct {
	Title     string
	DetailRef string
	Category  string
}

// Offer is a single store's price quote for a candidate.
type Offer struct {
	Store string
	Price decimal.Decimal
	Link  string
}

// PricedProduct is a candidate enriched with its cheapest resolvable offer.
// All three Best* fields stay absent when no offer could be parsed.
type PricedProduct struct {
	Candidate
	BestStore string
	BestPrice *decimal.Decimal
	StoreLink string
}

// Priced reports whether the product carries a resolved store and price.
func (p PricedProduct) Priced() bool {
	return p.BestStore != "" && p.BestPrice != nil
}

// RankedDeal is a model-selected deal with its justification. The price may
// arrive quoted or bare in the model reply; decimal handles both.
type RankedDeal struct {
	Store         string          `json:"store"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	Justification string          `json:"justification"`
}

// DealMessage is the final user-facing text unit produced by the discount
// pipeline. Text may embed inline presentational markup; rendering it safely
// is the caller's concern.
type DealMessage struct {
	Text string `json:"text"`
}
