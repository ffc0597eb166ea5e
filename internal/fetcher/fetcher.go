// Package fetcher performs the timed HTTP GETs against the marketplace
// and hands back parsed HTML documents.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UserAgent is the identifying client string the origin site requires.
const UserAgent = "Mozilla/5.0 (compatible; RentwatchCrawler/1.0)"

// DefaultTimeout bounds a single page request.
const DefaultTimeout = 15 * time.Second

const maxBodyBytes = 10 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError is returned for any transport, timeout, or status failure
// while fetching a page. It is fatal to the page being fetched.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads marketplace pages as goquery documents.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: DefaultTimeout,
	}
}

// SetTimeout overrides the default per-request timeout.
func (f *Fetcher) SetTimeout(d time.Duration) {
	f.timeout = d
}

// FetchDocument downloads and parses an HTML page from the given URL.
// Any failure is wrapped in a *FetchError.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("http get: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}
