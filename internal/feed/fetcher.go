package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-eracal/internal/config"
)

// ErrResponseTooLarge is returned once a vCard body grows past the limit.
var ErrResponseTooLarge = errors.New(config.ErrFetchTooLarge)

// VCardFetcher retrieves a vCard collection.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// StatusError reports a vCard server answer other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", config.ErrFetchStatus, e.Status)
}

// HTTPFetcher downloads vCards over HTTP(S) with optional Basic Auth.
type HTTPFetcher struct {
	Client *http.Client
	// MaxBytes caps the body. Zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher bounded by config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: config.HTTPTimeout}}
}

// Fetch opens targetURL. Non-200 answers fail with a *StatusError and a body
// longer than the limit fails with ErrResponseTooLarge rather than being cut.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	req, err := newVCardRequest(ctx, targetURL, user, pass)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(req.URL)),
	)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, resp.ContentLength)
	}

	log.Info(config.MsgFetchStart, slog.Int64(config.LogKeySizeBytes, resp.ContentLength))
	return &cappedBody{r: io.LimitReader(resp.Body, limit+1), c: resp.Body, limit: limit}, nil
}

// newVCardRequest builds the GET for targetURL, accepting only http and https.
func newVCardRequest(ctx context.Context, targetURL, user, pass string) (*http.Request, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeAcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	return req, nil
}

// redactURL drops the query string and user info, which often carry tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// cappedBody reads at most limit bytes and fails on the byte after that.
type cappedBody struct {
	r     io.Reader
	c     io.Closer
	read  int64
	limit int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	if over := b.read - b.limit; over > 0 {
		return n - int(over), ErrResponseTooLarge
	}
	return n, err
}

func (b *cappedBody) Close() error { return b.c.Close() }
