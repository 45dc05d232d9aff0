package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/audit-ai/cro-backend/internal/review"
	"github.com/audit-ai/cro-backend/internal/shop"
)

// Client handles communication with the remote insight engine. Every call
// carries the merchant's shop domain; calls with no identity are refused
// before any network I/O.
type Client struct {
	baseURL       string
	defaultClient *http.Client
	crawlClient   *http.Client // crawl renders the page upstream (90s)
	limiter       *rate.Limiter
}

// NewClient creates a new engine client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		defaultClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		crawlClient: &http.Client{
			Timeout: CrawlTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

func (c *Client) post(ctx context.Context, cli *http.Client, operation, path string, domain shop.Domain, payload any, out any) error {
	if domain == "" {
		return shop.ErrIdentityMissing
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shop.HeaderShopDomain, domain.String())

	start := time.Now()
	resp, err := cli.Do(req)
	duration := time.Since(start)
	if err != nil {
		recordCall(duration, err)
		return fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		engineErr := &Error{Operation: operation, Status: resp.StatusCode, Body: string(detail)}
		recordCall(duration, engineErr)
		return engineErr
	}
	recordCall(duration, nil)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// Crawl fetches page content and metadata for a URL.
func (c *Client) Crawl(ctx context.Context, domain shop.Domain, url string) (*PageData, error) {
	var page PageData
	err := c.post(ctx, c.crawlClient, "crawl", "/crawl", domain, crawlRequest{URL: url, Shop: domain.String()}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Suggest requests CRO suggestions for the given page HTML and goal. The raw
// engine items are normalized into canonical suggestions here.
func (c *Client) Suggest(ctx context.Context, domain shop.Domain, html, goal string) (string, []review.Suggestion, error) {
	var raw suggestResponse
	err := c.post(ctx, c.defaultClient, "suggest", "/suggest", domain, suggestRequest{HTML: html, Goal: goal, Shop: domain.String()}, &raw)
	if err != nil {
		return "", nil, err
	}
	rationale, suggestions := normalizeSuggestions(raw)
	return rationale, suggestions, nil
}

// Variants requests a regenerated alternative for one suggestion, seeded
// with its currently displayed text.
func (c *Client) Variants(ctx context.Context, domain shop.Domain, suggestionID, originalText string) (*Variant, error) {
	var v Variant
	err := c.post(ctx, c.defaultClient, "variants", "/variants", domain,
		variantRequest{SuggestionID: suggestionID, OriginalText: originalText, Shop: domain.String()}, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Plan requests a strategy plan for a business goal.
func (c *Client) Plan(ctx context.Context, domain shop.Domain, goal string) (*PlanResult, error) {
	var raw planResponse
	err := c.post(ctx, c.defaultClient, "plan", "/agent/plan", domain, planRequest{Goal: goal, Shop: domain.String()}, &raw)
	if err != nil {
		return nil, err
	}
	if raw.Error != "" && !raw.Success && raw.Plan == "" && raw.Reasoning == "" && raw.Rationale == "" {
		return nil, &Error{Operation: "plan", Status: http.StatusBadGateway, Body: raw.Error}
	}
	return normalizePlan(raw), nil
}
