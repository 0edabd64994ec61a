package pricing

import (
	"github.com/shopspring/decimal"
)

// Offer is the lowest observed price from one seller in one language, plus
// a locator (the offer page URL) for reference. Found=false means the
// seller had no matching listing in that language.
type Offer struct {
	Price   decimal.Decimal `json:"price"`
	Locator string          `json:"locator,omitempty"`
	Found   bool            `json:"found"`
}

// SellerQuote is a seller's best Offer for one card across all queried
// languages.
type SellerQuote = Offer

// PriceTable maps seller id to its best quote for a single card. It always
// carries an entry for every configured seller, not-found ones included,
// and is never mutated after construction.
type PriceTable map[string]SellerQuote

// BestOffer is the chosen offer for a card after the preferred-seller
// override. Found=false is the "N/A" result: no seller had a price.
type BestOffer struct {
	Price   decimal.Decimal `json:"price"`
	Seller  string          `json:"seller,omitempty"`
	Locator string          `json:"locator,omitempty"`
	Found   bool            `json:"found"`
}

type Classification int

const (
	ClassNotFound Classification = iota
	ClassDecklist
	ClassExpansion
)

func (c Classification) String() string {
	switch c {
	case ClassDecklist:
		return "decklist"
	case ClassExpansion:
		return "expansion"
	default:
		return "not_found"
	}
}

// Record is the fully resolved per-card result handed to the report.
type Record struct {
	Index  int
	Name   string
	Class  Classification
	Reason string
	Best   BestOffer
	Table  PriceTable
}

// Totals accumulates per-bucket counts and summed best prices for a run.
type Totals struct {
	DecklistCount  int
	ExpansionCount int
	NotFoundCount  int
	DecklistSum    decimal.Decimal
	ExpansionSum   decimal.Decimal
}

func (t *Totals) Add(r Record) {
	switch r.Class {
	case ClassDecklist:
		t.DecklistCount++
		t.DecklistSum = t.DecklistSum.Add(r.Best.Price)
	case ClassExpansion:
		t.ExpansionCount++
		t.ExpansionSum = t.ExpansionSum.Add(r.Best.Price)
	default:
		t.NotFoundCount++
	}
}

// Grand is the summed best price over every priced bucket.
func (t Totals) Grand() decimal.Decimal {
	return t.DecklistSum.Add(t.ExpansionSum)
}
