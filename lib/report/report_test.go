package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cardpricer/lib/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func foundQuote(price string) pricing.SellerQuote {
	return pricing.SellerQuote{
		Price:   decimal.RequireFromString(price),
		Locator: "https://example.com/offer",
		Found:   true,
	}
}

func sampleReport(t *testing.T) *Report {
	t.Helper()

	records := []pricing.Record{
		{
			Index: 1,
			Name:  "Lightning Bolt",
			Class: pricing.ClassDecklist,
			Best: pricing.BestOffer{
				Price:  decimal.RequireFromString("1.20"),
				Seller: "Mazvigosl",
				Found:  true,
			},
			Table: pricing.PriceTable{
				"Mazvigosl": foundQuote("1.20"),
				"Itaca":     foundQuote("1.35"),
			},
		},
		{
			Index: 2,
			Name:  "Counterspell",
			Class: pricing.ClassDecklist,
			Best: pricing.BestOffer{
				Price:  decimal.RequireFromString("0.80"),
				Seller: "Itaca",
				Found:  true,
			},
			Table: pricing.PriceTable{
				"Mazvigosl": {},
				"Itaca":     foundQuote("0.80"),
			},
		},
		{
			Index: 3,
			Name:  "Force of Will",
			Class: pricing.ClassExpansion,
			Best: pricing.BestOffer{
				Price:  decimal.RequireFromString("8.50"),
				Seller: "Mazvigosl",
				Found:  true,
			},
			Table: pricing.PriceTable{
				"Mazvigosl": foundQuote("8.50"),
				"Itaca":     {},
			},
		},
		{
			Index:  4,
			Name:   "Black Lotus",
			Class:  pricing.ClassNotFound,
			Reason: pricing.ReasonNoResults,
			Table: pricing.PriceTable{
				"Mazvigosl": {},
				"Itaca":     {},
			},
		},
	}

	var totals pricing.Totals
	for _, record := range records {
		totals.Add(record)
	}

	return New(
		[]string{"en", "es"},
		[]string{"Mazvigosl", "Itaca"},
		[]string{"4 Lightning Bolt", "1x Counterspell", "Force of Will (2XM) 332", "Black Lotus"},
		records, totals, 3*time.Second,
		decimal.RequireFromString("2.0"),
		decimal.RequireFromString("10.0"),
	)
}

func TestRenderText(t *testing.T) {
	r := sampleReport(t)

	var out strings.Builder
	r.RenderText(&out)
	text := out.String()

	require.Contains(t, text, "Card Search Results (EN+ES)")
	require.Contains(t, text, "Total cards searched: 4")
	require.Contains(t, text, "Cards not found: 1")
	require.Contains(t, text, "Total price: 10.50 €")
	require.Contains(t, text, "Decklist total value: 2.00 €")
	require.Contains(t, text, "Expansion total value: 8.50 €")
	require.Contains(t, text, "Lightning Bolt")
	require.Contains(t, text, "Black Lotus")
	require.Contains(t, text, pricing.ReasonNoResults)
}

func TestBucketSortsBySellerThenName(t *testing.T) {
	r := sampleReport(t)

	decklist := r.bucket(pricing.ClassDecklist)
	require.Len(t, decklist, 2)
	require.Equal(t, "Itaca", decklist[0].Best.Seller)
	require.Equal(t, "Mazvigosl", decklist[1].Best.Seller)

	// presentation sorting must not reorder the underlying records
	require.Equal(t, 1, r.Records[0].Index)
	require.Equal(t, "Lightning Bolt", r.Records[0].Name)
}

func TestSellerBreakdown(t *testing.T) {
	r := sampleReport(t)

	breakdown := sellerBreakdown(r.Records)
	require.Len(t, breakdown, 2)
	require.Equal(t, "Itaca", breakdown[0].Seller)
	require.Equal(t, 1, breakdown[0].Count)
	require.Equal(t, "0.80", breakdown[0].Sum.StringFixed(2))
	require.Equal(t, "Mazvigosl", breakdown[1].Seller)
	require.Equal(t, 2, breakdown[1].Count)
	require.Equal(t, "9.70", breakdown[1].Sum.StringFixed(2))
}

func TestHTML(t *testing.T) {
	r := sampleReport(t)

	page, err := r.HTML()
	require.NoError(t, err)
	// html/template escapes "+" in text nodes, so the label renders as EN&#43;ES
	require.Contains(t, page, "<title>Card Search Results (EN&#43;ES)</title>")
	require.Contains(t, page, "Force of Will")
	require.Contains(t, page, "Black Lotus")
}

func TestHTMLSellerMatrix(t *testing.T) {
	r := sampleReport(t)

	page, err := r.HTML()
	require.NoError(t, err)

	// one column per configured seller, in configuration order
	require.Contains(t, page, "<th>Mazvigosl</th><th>Itaca</th>")
	// winning cell highlighted, losing cell plain, absent seller a dash
	require.Contains(t, page, `<td class="price-cell lowest-price">1.20 €</td>`)
	require.Contains(t, page, `<td class="price-cell">1.35 €</td>`)
	require.Contains(t, page, `<td class="price-cell lowest-price">0.80 €</td>`)
	require.Contains(t, page, `<td class="price-cell not-found">-</td>`)
}

func TestHTMLAppendixKeepsRawInput(t *testing.T) {
	r := sampleReport(t)

	page, err := r.HTML()
	require.NoError(t, err)

	// the appendix reproduces the list as the user wrote it
	require.Contains(t, page, "<li>4 Lightning Bolt</li>")
	require.Contains(t, page, "<li>Force of Will (2XM) 332</li>")
}

func TestWriteHTMLAppendsExtension(t *testing.T) {
	r := sampleReport(t)

	path := filepath.Join(t.TempDir(), "results")
	require.NoError(t, r.WriteHTML(path))

	require.FileExists(t, path+".html")
}

func TestEmailRequiresConfig(t *testing.T) {
	r := sampleReport(t)

	err := r.Email(EmailConfig{})
	require.Error(t, err)
}
