package market

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lofarb/fund-monitor/internal/models"
)

// MaxBodyBytes is the hard ceiling on a listing response body. Anything
// larger is rejected outright rather than truncated, so a misbehaving
// upstream can never feed us a partial row set.
const MaxBodyBytes = 1 << 20 // 1 MiB

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

// FetchError is returned for any failed listing fetch: transport error,
// non-200 status, or an oversized body.
type FetchError struct {
	Category   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Category, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type endpoint struct {
	path    string
	referer string
	lofOnly bool
}

// Listing endpoints per fund category. The QDII listings carry the
// only_lof flag so the upstream filters out non-exchange-traded funds.
var endpoints = map[string]endpoint{
	models.CategoryStockLOF:      {path: "/data/lof/stock_lof_list/", referer: "/data/lof/"},
	models.CategoryIndexLOF:      {path: "/data/lof/index_lof_list/", referer: "/data/lof/"},
	models.CategoryQDIIHK:        {path: "/data/qdii/qdii_list/A", referer: "/data/qdii/", lofOnly: true},
	models.CategoryQDIIUS:        {path: "/data/qdii/qdii_list/E", referer: "/data/qdii/", lofOnly: true},
	models.CategoryQDIICommodity: {path: "/data/qdii/qdii_list/C", referer: "/data/qdii/", lofOnly: true},
}

// Client fetches raw fund listing payloads from the upstream data source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a market data client for the given base URL.
// Connect timeout is 10s, the whole request is bounded at 30s.
func NewClient(baseURL string) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Fetch retrieves the raw listing payload for one fund category. The
// returned bytes are the complete response body, guaranteed to be at
// most MaxBodyBytes; every failure mode comes back as a *FetchError.
func (c *Client) Fetch(ctx context.Context, category string) ([]byte, error) {
	ep, ok := endpoints[category]
	if !ok {
		return nil, &FetchError{Category: category, Err: fmt.Errorf("unknown category")}
	}

	// Cache-busting timestamp, same scheme the upstream web UI uses.
	params := url.Values{}
	params.Set("___jsl", fmt.Sprintf("LST___t=%d", time.Now().UnixMilli()))
	if ep.lofOnly {
		params.Set("only_lof", "y")
	}

	reqURL := c.baseURL + ep.path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL+ep.referer)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Category: category, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}
	if len(body) > MaxBodyBytes {
		return nil, &FetchError{Category: category, Err: fmt.Errorf("response exceeds %d bytes", MaxBodyBytes)}
	}

	return body, nil
}
