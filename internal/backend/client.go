// Package backend talks to the media index API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/metrics"
	"github.com/claes/mediaweb/internal/model"
)

// DefaultAPIPrefix is where the API is mounted on the backend.
const DefaultAPIPrefix = "/api/v1"

const maxBodySize = 8 << 20

// Config holds client configuration.
type Config struct {
	BaseURL   string
	APIPrefix string
	Timeout   time.Duration
	Logger    *zap.Logger
	// HTTPClient overrides the default transport, mostly for tests.
	HTTPClient *http.Client
}

// Client fetches index entries and server status.
type Client struct {
	baseURL    string
	apiURL     string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = DefaultAPIPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		baseURL:    base,
		apiURL:     base + "/" + strings.Trim(cfg.APIPrefix, "/"),
		httpClient: hc,
		log:        cfg.Logger,
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// URL resolves a backend-relative url, such as a cdn file url.
func (c *Client) URL(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}

// Index fetches the entry at path, which must be escaped and start with
// '/'. Entries describing a missing or forbidden node are returned without
// error even though the backend answers them with 404 or 403; every other
// failure is a *TransportError.
func (c *Client) Index(ctx context.Context, path string) (*model.EntryInfo, error) {
	start := time.Now()
	entry, err := c.index(ctx, path)
	kind := Classify(entry, err)
	metrics.RecordIndexFetch(kind.String(), time.Since(start))

	fields := []zap.Field{
		zap.String("path", path),
		zap.Stringer("kind", kind),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.log.Warn("index fetch failed", append(fields, zap.Error(err))...)
	} else {
		c.log.Debug("index fetched", fields...)
	}
	return entry, err
}

func (c *Client) index(ctx context.Context, path string) (*model.EntryInfo, error) {
	var env model.Result[model.EntryInfo]
	rep, err := c.get(ctx, c.apiURL+"/index/files"+path, &env)
	if err != nil {
		return nil, err
	}
	if rep.decodeErr == nil && env.Ok != nil {
		return env.Ok, nil
	}
	return nil, newTransportError(rep, env.Err)
}

// Status fetches the backend status.
func (c *Client) Status(ctx context.Context) (*model.Status, error) {
	var env model.Result[model.Status]
	rep, err := c.get(ctx, c.apiURL+"/status", &env)
	if err != nil {
		c.log.Warn("status fetch failed", zap.Error(err))
		return nil, err
	}
	if rep.decodeErr == nil && env.Ok != nil {
		return env.Ok, nil
	}
	terr := newTransportError(rep, env.Err)
	c.log.Warn("status fetch failed", zap.Error(terr))
	return nil, terr
}

// reply is what is left of a response once its body has been decoded.
type reply struct {
	status     int
	statusText string
	decodeErr  error
}

// get performs the request and decodes the body into v whatever the
// status code. An error is returned only when no response was received.
func (c *Client) get(ctx context.Context, url string, v any) (reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return reply{}, &TransportError{StatusText: unknownStatusText, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reply{}, &TransportError{StatusText: unknownStatusText, Err: err}
	}
	defer resp.Body.Close()

	rep := reply{status: resp.StatusCode, statusText: statusText(resp)}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		rep.decodeErr = fmt.Errorf("read body: %w", err)
		return rep, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		rep.decodeErr = fmt.Errorf("decode body: %w", err)
	}
	return rep, nil
}

const (
	unknownStatusText   = "Unknown Error"
	malformedStatusText = "Malformed Response"
)

// TransportError is a failure that produced no usable entry.
type TransportError struct {
	StatusCode int // 0 when no response was received
	StatusText string
	// Message is the envelope's Err, if the body carried one.
	Message   string
	Malformed bool
	Err       error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "%d ", e.StatusCode)
	}
	b.WriteString(e.StatusText)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(rep reply, envErr *string) *TransportError {
	te := &TransportError{
		StatusCode: rep.status,
		StatusText: rep.statusText,
		Err:        rep.decodeErr,
	}
	if envErr != nil {
		te.Message = *envErr
	}
	if rep.status >= 200 && rep.status < 300 {
		te.StatusText = malformedStatusText
		te.Malformed = true
	}
	return te
}

func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return unknownStatusText
}

// Kind classifies the outcome of an index fetch.
type Kind int

const (
	KindEntry Kind = iota
	StructuredNotFound
	StructuredForbidden
	TransportFailure
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case StructuredNotFound:
		return "not_found"
	case StructuredForbidden:
		return "forbidden"
	case TransportFailure:
		return "transport"
	case MalformedResponse:
		return "malformed"
	default:
		return "entry"
	}
}

// Classify returns the kind of an Index result.
func Classify(entry *model.EntryInfo, err error) Kind {
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.Malformed {
			return MalformedResponse
		}
		return TransportFailure
	}
	if entry == nil {
		return MalformedResponse
	}
	if e, ok := entry.Detail.(*model.EntryError); ok {
		switch e.Error {
		case model.NotFound:
			return StructuredNotFound
		case model.Forbidden:
			return StructuredForbidden
		}
	}
	return KindEntry
}
