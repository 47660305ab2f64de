// Package collect fetches resources over HTTP and decodes their bodies to
// UTF-8 text.
package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/wenzapen/tagcrawl/proxy"
)

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DefaultHeaders are sent with every request unless the request overrides them.
func DefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      {DefaultUserAgent},
		"Accept":          {"text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8"},
		"Accept-Language": {"en-US,en;q=0.9"},
	}
}

type Response struct {
	URL    string
	Status int
	Body   []byte
	Text   string
}

type Fetcher interface {
	Fetch(ctx context.Context, method, url string, header http.Header) (*Response, error)
}

// FetchError is returned for transport failures and non-2xx responses.
type FetchError struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BrowserFetch issues requests with browser-like default headers.
type BrowserFetch struct {
	Timeout time.Duration
	Proxy   proxy.Func
	Header  http.Header
	Logger  *zap.Logger

	client *http.Client
}

func (b *BrowserFetch) httpClient() *http.Client {
	if b.client != nil {
		return b.client
	}
	cli := &http.Client{Timeout: b.Timeout}
	if b.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.Proxy
		cli.Transport = transport
	}
	b.client = cli
	return cli
}

func (b *BrowserFetch) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *BrowserFetch) Fetch(ctx context.Context, method, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &FetchError{Method: method, URL: url, Err: err}
	}
	defaults := b.Header
	if defaults == nil {
		defaults = DefaultHeaders()
	}
	for k, v := range defaults {
		req.Header[k] = append([]string(nil), v...)
	}
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	resp, err := b.httpClient().Do(req)
	if err != nil {
		return nil, &FetchError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Method: method, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Method: method, URL: url, Status: resp.StatusCode, Err: err}
	}
	text, err := Decode(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{Method: method, URL: url, Status: resp.StatusCode, Err: err}
	}
	b.logger().Debug("fetched",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("size", humanize.Bytes(uint64(len(body)))))

	return &Response{URL: url, Status: resp.StatusCode, Body: body, Text: text}, nil
}

// Decode converts body to UTF-8 using the declared content type or, failing
// that, the encoding sniffed from the first bytes.
func Decode(body []byte, contentType string) (string, error) {
	e := DetermineEncoding(body, contentType)
	out, _, err := transform.Bytes(e.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(out), nil
}

func DetermineEncoding(body []byte, contentType string) encoding.Encoding {
	peek := body
	if len(peek) > 1024 {
		peek = peek[:1024]
	}
	if len(peek) == 0 {
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(peek, contentType)
	return e
}
