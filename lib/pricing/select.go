package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const ReasonNoResults = "no results from any seller"

// SelectBestOffer picks the lowest priced seller from the table, then
// applies the preferred-seller override: when the preferred seller has a
// price within tolerance of the global minimum, its offer wins even though
// it is not the cheapest. Returns a not-found BestOffer when no seller
// priced the card.
func SelectBestOffer(table PriceTable, preferredSeller string, tolerance decimal.Decimal) BestOffer {
	var best BestOffer
	for seller, quote := range table {
		if !quote.Found {
			continue
		}
		if !best.Found || quote.Price.LessThan(best.Price) {
			best = BestOffer{
				Price:   quote.Price,
				Seller:  seller,
				Locator: quote.Locator,
				Found:   true,
			}
		}
	}
	if !best.Found {
		return best
	}

	preferred, ok := table[preferredSeller]
	if ok && preferred.Found && preferredSeller != best.Seller &&
		preferred.Price.LessThanOrEqual(best.Price.Add(tolerance)) {
		return BestOffer{
			Price:   preferred.Price,
			Seller:  preferredSeller,
			Locator: preferred.Locator,
			Found:   true,
		}
	}
	return best
}

// Classify buckets a best offer by the configured thresholds. A price above
// the high threshold is reported as not found on purpose: the tool only
// cares about offers worth buying, so an overpriced card counts the same as
// a missing one. The returned reason is only set for the not-found bucket.
func Classify(best BestOffer, lowThreshold, highThreshold decimal.Decimal) (Classification, string) {
	if !best.Found {
		return ClassNotFound, ReasonNoResults
	}
	if best.Price.GreaterThan(highThreshold) {
		return ClassNotFound, fmt.Sprintf(
			"price %s € above %s € threshold",
			best.Price.StringFixed(2), highThreshold.StringFixed(2),
		)
	}
	if best.Price.LessThanOrEqual(lowThreshold) {
		return ClassDecklist, ""
	}
	return ClassExpansion, ""
}
