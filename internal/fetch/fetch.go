// Package fetch downloads job postings and reduces them to the plain text
// the AI operations embed in their prompts.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/flower-resume/internal/logging"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 20 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; FlowerResume/1.0)"

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 4 << 20

// DefaultCacheTTL is how long an extracted posting is reused.
const DefaultCacheTTL = 6 * time.Hour

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("no readable job description found")

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	CacheTTL     time.Duration
	Headers      map[string]string
	// AllowPrivateNetworks lets the fetcher reach loopback and private
	// addresses. Only for tests and trusted single-tenant setups.
	AllowPrivateNetworks bool
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
		CacheTTL:     DefaultCacheTTL,
	}
}

// Fetcher retrieves job postings, optionally through a Cache.
type Fetcher struct {
	client *http.Client
	opts   *Options
	cache  Cache
	logger *zap.Logger
}

// New creates a Fetcher. cache and logger may be nil.
func New(opts *Options, cache Cache, logger *zap.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger = logging.OrNop(logger)
	return &Fetcher{
		client: newHTTPClient(opts),
		opts:   opts,
		cache:  cache,
		logger: logger,
	}
}

// Page retrieves the HTML at urlStr. On a non-200 status the partial
// Result is returned together with an *Error.
func (f *Fetcher) Page(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Host == "" || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if errors.Is(err, ErrForbiddenAddress) {
		f.logger.Warn("refused fetch of non-public address", zap.String("url", urlStr), zap.Error(err))
		return nil, &Error{URL: urlStr, Message: "URL does not point to a public address", Cause: ErrForbiddenAddress}
	}
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	return result, nil
}

// JobDescription fetches a posting and returns its main text, using the
// selectors of the job board detected from the URL.
func (f *Fetcher) JobDescription(ctx context.Context, urlStr string) (string, error) {
	key := cacheKey(urlStr)
	if f.cache != nil {
		if text, ok, err := f.cache.Get(ctx, key); err != nil {
			f.logger.Warn("job description cache read failed", zap.String("url", urlStr), zap.Error(err))
		} else if ok {
			f.logger.Debug("job description cache hit", zap.String("url", urlStr))
			return text, nil
		}
	}

	start := time.Now()
	page, err := f.Page(ctx, urlStr)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(urlStr)
	text, err := ExtractMainText(page.HTML, platform.ContentSelectors(), platform.NoiseSelectors()...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "empty page", Cause: ErrNoContent}
	}

	f.logger.Info("fetched job description",
		zap.String("url", urlStr),
		zap.String("platform", string(platform.Name)),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	if f.cache != nil {
		if err := f.cache.Set(ctx, key, text, f.opts.CacheTTL); err != nil {
			f.logger.Warn("job description cache write failed", zap.String("url", urlStr), zap.Error(err))
		}
	}
	return text, nil
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, svg, iframe, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	// Block elements are separated by newlines so bullets survive as lines.
	mainContent.Find("p, li, h1, h2, h3, h4, br, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(mainContent.Text()), nil
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line, collapses runs of spaces and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
