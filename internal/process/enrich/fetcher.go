// Package enrich fetches linked news articles for top trend items and
// distills them into short context strings for the narrative prompt.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxRedirects        = 5
	maxBodyBytes        = 5 * 1024 * 1024
	globalBurst         = 5

	// Per-domain limits stay fixed so a batch of items from one outlet
	// cannot hammer that outlet regardless of the global rate.
	perDomainRPS   = 1
	perDomainBurst = 2

	fetcherUserAgent = "TrendPulse/1.0 (Trends Aggregator)"
)

var errTooManyRedirects = errors.New("too many redirects")

// WebFetcher downloads article pages with a global and a per-domain rate
// limit.
type WebFetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
}

func NewWebFetcher(rps float64, timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &WebFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}

				return nil
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), globalBurst),
		domainLimiters: make(map[string]*rate.Limiter),
	}
}

// Fetch downloads rawURL, honoring both limiters, and returns at most
// maxBodyBytes of the response body.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	if err := f.domainLimiter(hostOf(rawURL)).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", fetcherUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func (f *WebFetcher) domainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double check
	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(perDomainRPS, perDomainBurst)
	f.domainLimiters[domain] = limiter

	return limiter
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Host)
}
