package olx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"olx-profit-bot/config"
	"olx-profit-bot/models"
	"olx-profit-bot/utils"
)

const (
	searchPath = "/api/v1/offers/"

	// priceSelector identifies the price block on a listing's own page,
	// used when the offers API omitted the structured price.
	priceSelector = `div[data-testid="ad-price-container"] h3`
)

// Client talks to the OLX offers API and listing pages.
type Client struct {
	cfg    *config.Config
	logger *utils.Logger
	http   *resty.Client
	retry  *utils.RetryConfig
}

// New creates a ready-to-use OLX Client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	httpc := resty.New().
		SetTimeout(time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		cfg:    cfg,
		logger: logger,
		http:   httpc,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Search issues one offers request for the query and returns normalized
// listings sorted ascending by price, unknown prices first. Transport
// failures and non-2xx responses degrade to an empty result — the caller
// decides how to present "no results".
func (c *Client) Search(ctx context.Context, query string, limit int) []models.Listing {
	searchURL := fmt.Sprintf("%s%s?offset=0&limit=%d&query=%s",
		strings.TrimRight(c.cfg.OLXBaseURL, "/"), searchPath, limit, url.QueryEscape(query))

	var body []byte
	err := c.retry.Do("olx search", func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			Get(searchURL)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("http status %d", resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		c.logger.Warn("[olx] search %q returned no results: %v", query, err)
		return nil
	}

	// The listing array lives under one of two top-level keys.
	var payload struct {
		Data   []map[string]any `json:"data"`
		Offers []map[string]any `json:"offers"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("[olx] search payload parse: %v", err)
		return nil
	}
	offers := payload.Data
	if len(offers) == 0 {
		offers = payload.Offers
	}

	results := make([]models.Listing, 0, len(offers))
	for _, offer := range offers {
		results = append(results, normalizeOffer(offer, c.cfg.OLXBaseURL))
	}

	// Zero-valued (unknown-price) listings sort first.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PriceValue < results[j].PriceValue
	})

	c.logger.Info("[olx] search %q: %d offers", query, len(results))
	return results
}

// EnrichPrices fills in missing prices by scraping each listing's own
// page through the worker pool. A failed fetch leaves the listing
// unchanged; each goroutine writes only its own slice index, so no lock
// is held across the network calls.
func (c *Client) EnrichPrices(ctx context.Context, listings []models.Listing) {
	pool := utils.NewWorkerPool(c.cfg.MaxConcurrency, c.cfg.RateLimitMs)
	seen := utils.NewURLSet()

	for i := range listings {
		if listings[i].Price != "" || listings[i].URL == "" {
			continue
		}
		// Upstream occasionally repeats an ad; fetch each page once.
		if !seen.Add(listings[i].URL) {
			continue
		}

		i := i
		pool.Submit(func() {
			price, ok := c.fetchPriceFromHTML(ctx, listings[i].URL)
			if !ok {
				return
			}
			listings[i].Price = price
			listings[i].PriceValue = parsePriceValue(price)
		})
	}
	pool.Wait()
}

func (c *Client) fetchPriceFromHTML(ctx context.Context, pageURL string) (string, bool) {
	resp, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		c.logger.Debug("[olx] price fetch %s: %v", pageURL, err)
		return "", false
	}
	if resp.IsError() {
		c.logger.Debug("[olx] price fetch %s: http status %d", pageURL, resp.StatusCode())
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", false
	}

	text := strings.TrimSpace(doc.Find(priceSelector).First().Text())
	if text == "" {
		return "", false
	}
	return normalizePriceText(text), true
}
