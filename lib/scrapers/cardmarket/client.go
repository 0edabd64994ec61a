// Package cardmarket queries cardmarket.com seller storefronts for the
// cheapest listing of a named card. It fills the OfferSource role of the
// pricing package: one Query per (seller, language) pair, network and parse
// failures reported as errors for the resolver to degrade.
package cardmarket

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"time"

	"cardpricer/lib/pricing"
	"cardpricer/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/cardmarket")

// languageIDs maps language codes to cardmarket's idLanguage filter values.
var languageIDs = map[string]string{
	"en": "1",
	"fr": "2",
	"de": "3",
	"es": "4",
	"it": "5",
}

func KnownLanguage(code string) bool {
	_, ok := languageIDs[code]
	return ok
}

// AllLanguages lists every supported language code in a stable order.
func AllLanguages() []string {
	codes := make([]string, 0, len(languageIDs))
	for code := range languageIDs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// BaseUrl defaults to https://www.cardmarket.com
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// JitterMin/JitterMax bound the random delay before each request;
	// zero max disables jitter entirely.
	JitterMin time.Duration
	JitterMax time.Duration
	// NameMatchThreshold is the minimum Jaro-Winkler similarity between the
	// requested card name and a listing row for the row to count; zero
	// accepts everything on the page.
	NameMatchThreshold float64
}

// Client is one browsing session: its own cookie jar, shared by nobody.
// Concurrent use goes through SessionPool.
type Client struct {
	http *resty.Client
	opts ClientOptions
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://www.cardmarket.com"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/cardmarket/http")

	return &Client{http: client, opts: opts}, nil
}

// Query fetches a seller's singles offers filtered by card name and
// language and returns the cheapest matching listing. A page without
// matching offers is a not-found Offer, not an error.
func (c *Client) Query(ctx context.Context, seller, language, name string) (pricing.Offer, error) {
	ctx, span := tracer.Start(ctx, "Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("seller", seller),
		attribute.String("language", language),
		attribute.String("card", name),
	)

	id, ok := languageIDs[language]
	if !ok {
		err := fmt.Errorf("unknown language %q", language)
		span.SetStatus(codes.Error, err.Error())
		return pricing.Offer{}, err
	}

	if err := c.jitter(ctx); err != nil {
		return pricing.Offer{}, err
	}

	endpoint := fmt.Sprintf("/%s/Magic/Users/%s/Offers/Singles", language, url.PathEscape(seller))
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":       name,
			"idLanguage": id,
			"sortBy":     "price_asc",
		}).
		Get(endpoint)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		return pricing.Offer{}, err
	}
	if res.StatusCode() == http.StatusNotFound {
		return pricing.Offer{}, nil
	}
	if res.IsError() {
		err := fmt.Errorf("seller %s: unexpected status %d", seller, res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return pricing.Offer{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return pricing.Offer{}, err
	}

	return lowestOffer(doc, name, res.Request.URL, c.opts.NameMatchThreshold), nil
}

// jitter sleeps a random interval before the request so a pool of sessions
// doesn't hammer the site in lockstep.
func (c *Client) jitter(ctx context.Context) error {
	if c.opts.JitterMax <= 0 {
		return nil
	}
	min := int(c.opts.JitterMin.Milliseconds())
	max := int(c.opts.JitterMax.Milliseconds())
	if max <= min {
		max = min + 1
	}
	ms, err := random.IntRange(min, max)
	if err != nil {
		return nil
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
