package cardmarket

import (
	"strings"

	"cardpricer/lib/htmlutil"
	"cardpricer/lib/pricing"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/shopspring/decimal"
)

// priceSelector matches the bold price span cardmarket renders in each
// offer row of the singles table.
const priceSelector = "span.color-primary.small.text-end.text-nowrap.fw-bold"

// lowestOffer scans the offers table for rows whose product name resembles
// the requested card and returns the cheapest price among them. The page is
// requested with sortBy=price_asc but the reduction does not rely on that.
func lowestOffer(doc *goquery.Document, name, locator string, threshold float64) pricing.Offer {
	var best pricing.Offer

	consider := func(text string) {
		price, ok := parsePrice(text)
		if !ok {
			return
		}
		if !best.Found || price.LessThan(best.Price) {
			best = pricing.Offer{Price: price, Locator: locator, Found: true}
		}
	}

	rows := doc.Find("div.table-body div.row")
	if rows.Length() == 0 {
		return best
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		if !rowMatchesName(row, name, threshold) {
			return
		}
		row.Find(priceSelector).Each(func(_ int, span *goquery.Selection) {
			consider(span.Text())
		})
	})
	return best
}

// rowMatchesName guards against the name filter matching a different card
// (split cards, art series, "(V.2)" variants). Rows without any product
// link are structural and skipped outright.
func rowMatchesName(row *goquery.Selection, name string, threshold float64) bool {
	link := row.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		return strings.Contains(href, "/Products/Singles/") || strings.Contains(href, "/Cards/")
	}).First()
	if link.Length() == 0 {
		// seller offer pages render the price column inside the same row as
		// the product link; a row without one carries no offer either
		return row.Find(priceSelector).Length() > 0 && threshold <= 0
	}
	if threshold <= 0 {
		return true
	}

	listed := htmlutil.NormalizeSpace(htmlutil.GetText(link.Nodes[0]))
	return nameSimilarity(name, listed) >= threshold
}

func nameSimilarity(want, got string) float64 {
	want = strings.ToLower(strings.TrimSpace(want))
	got = strings.ToLower(strings.TrimSpace(got))
	if want == got {
		return 1
	}
	// variant suffixes like "Brainstorm (V.1)" should not count against
	// the listing
	if i := strings.Index(got, " ("); i > 0 {
		got = got[:i]
	}
	return matchr.JaroWinkler(want, got, false)
}

// parsePrice turns cardmarket price text like "1,50 €" into a decimal.
func parsePrice(text string) (decimal.Decimal, bool) {
	text = htmlutil.NormalizeSpace(text)
	text = strings.ReplaceAll(text, "€", "")
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(text)
	if err != nil || price.Sign() <= 0 {
		return decimal.Decimal{}, false
	}
	return price, true
}
