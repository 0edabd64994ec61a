package pricing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("pricing")

// OfferSource answers a single (seller, language, card) lookup. A failed or
// timed out call is the caller's to degrade; it never aborts a resolution.
type OfferSource interface {
	Query(ctx context.Context, seller, language, name string) (Offer, error)
}

// Cache memoizes fully resolved price tables. pricestore.Store implements
// it; tests substitute a map.
type Cache interface {
	Get(key string) (PriceTable, bool)
	Put(key string, table PriceTable)
}

// Resolver fans a card lookup out over the seller×language cross-product
// with bounded concurrency and reduces the answers to one quote per seller.
type Resolver struct {
	Source  OfferSource
	Cache   Cache
	Workers int
	// QueryTimeout bounds each individual source call, not the fan-out.
	QueryTimeout time.Duration
}

// Resolve returns the per-seller best offers for one card. A cache hit
// returns immediately without touching the source; a miss queries every
// (seller, language) pair, memoizes the result and returns it. The returned
// table always has an entry for every seller.
func (r *Resolver) Resolve(ctx context.Context, name string, languages, sellers []string) PriceTable {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("card", name))

	key := CacheKey(name, languages, sellers)
	if table, ok := r.Cache.Get(key); ok {
		slog.DebugContext(ctx, "using cached result", "card", name)
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return table
	}

	var mu sync.Mutex
	perSeller := make(map[string][]Offer, len(sellers))

	g := new(errgroup.Group)
	g.SetLimit(r.Workers)
	for _, seller := range sellers {
		for _, language := range languages {
			seller, language := seller, language
			g.Go(func() error {
				offer := r.query(ctx, seller, language, name)
				mu.Lock()
				perSeller[seller] = append(perSeller[seller], offer)
				mu.Unlock()
				return nil
			})
		}
	}
	g.Wait()

	table := make(PriceTable, len(sellers))
	for _, seller := range sellers {
		table[seller] = bestQuote(perSeller[seller])
	}

	// A canceled fan-out degrades every pending query to not-found; that is
	// fine for this run's report but must not be memoized.
	if ctx.Err() == nil {
		r.Cache.Put(key, table)
	}
	return table
}

func (r *Resolver) query(ctx context.Context, seller, language, name string) Offer {
	qctx := ctx
	if r.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, r.QueryTimeout)
		defer cancel()
	}

	offer, err := r.Source.Query(qctx, seller, language, name)
	if err != nil {
		slog.WarnContext(ctx, "query failed, treating as not found",
			"seller", seller, "language", language, "card", name, "err", err)
		return Offer{}
	}
	if offer.Found {
		slog.InfoContext(ctx, "offer found",
			"seller", seller, "language", language, "price", offer.Price.StringFixed(2))
	} else {
		slog.DebugContext(ctx, "no offer",
			"seller", seller, "language", language)
	}
	return offer
}

// bestQuote reduces one seller's per-language offers to the cheapest. The
// reduction is commutative: ties keep whichever offer completed first.
func bestQuote(offers []Offer) SellerQuote {
	var best SellerQuote
	for _, offer := range offers {
		if !offer.Found {
			continue
		}
		if !best.Found || offer.Price.LessThan(best.Price) {
			best = offer
		}
	}
	return best
}
