package cardmarket

import (
	"context"
	"fmt"
	"log/slog"

	"cardpricer/lib/pricing"
)

// SessionPool shares a fixed set of browsing sessions between fan-out
// workers. A worker borrows a session for the duration of one query and
// always hands it back, error or not, so a hung lookup can time out without
// leaking the session.
type SessionPool struct {
	clients chan *Client
	size    int
}

func NewSessionPool(size int, opts ClientOptions) (*SessionPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("session pool size must be positive, got %d", size)
	}

	slog.Info("initializing scraper sessions", "count", size)
	clients := make(chan *Client, size)
	for i := 0; i < size; i++ {
		client, err := NewClient(opts)
		if err != nil {
			return nil, fmt.Errorf("create session %d: %w", i, err)
		}
		clients <- client
	}
	return &SessionPool{clients: clients, size: size}, nil
}

func (p *SessionPool) Size() int {
	return p.size
}

func (p *SessionPool) acquire(ctx context.Context) (*Client, error) {
	select {
	case client := <-p.clients:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) release(client *Client) {
	p.clients <- client
}

// Query implements pricing.OfferSource over a borrowed session.
func (p *SessionPool) Query(ctx context.Context, seller, language, name string) (pricing.Offer, error) {
	client, err := p.acquire(ctx)
	if err != nil {
		return pricing.Offer{}, err
	}
	defer p.release(client)

	return client.Query(ctx, seller, language, name)
}
