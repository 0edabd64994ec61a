package pricing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Runner drives a whole batch: one card at a time, each card's fan-out
// fully completing (cache write included) before the next starts. There is
// deliberately no cross-item concurrency; the cache's read-then-write per
// key is not atomic.
type Runner struct {
	Resolver           *Resolver
	Languages          []string
	Sellers            []string
	PreferredSeller    string
	PreferredTolerance decimal.Decimal
	LowThreshold       decimal.Decimal
	HighThreshold      decimal.Decimal
}

// Run resolves and classifies every card in order. Per-card problems never
// abort the batch; every input name yields exactly one Record. Duplicate
// names are resolved independently (the second occurrence hits the cache).
// Cancellation stops the loop early with the records produced so far.
func (r *Runner) Run(ctx context.Context, names []string) ([]Record, Totals) {
	records := make([]Record, 0, len(names))
	var totals Totals

	for i, name := range names {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "run canceled", "processed", len(records), "total", len(names))
			break
		}
		slog.InfoContext(ctx, "processing card", "index", i+1, "total", len(names), "name", name)

		table := r.Resolver.Resolve(ctx, name, r.Languages, r.Sellers)
		best := SelectBestOffer(table, r.PreferredSeller, r.PreferredTolerance)
		class, reason := Classify(best, r.LowThreshold, r.HighThreshold)

		if best.Found && best.Seller == r.PreferredSeller && r.PreferredSeller != "" {
			slog.DebugContext(ctx, "best offer", "seller", best.Seller, "price", best.Price.StringFixed(2), "preferred", true)
		} else if best.Found {
			slog.DebugContext(ctx, "best offer", "seller", best.Seller, "price", best.Price.StringFixed(2))
		} else {
			slog.InfoContext(ctx, "card not priced", "name", name, "reason", reason)
		}

		record := Record{
			Index:  i + 1,
			Name:   name,
			Class:  class,
			Reason: reason,
			Best:   best,
			Table:  table,
		}
		records = append(records, record)
		totals.Add(record)
	}

	return records, totals
}
