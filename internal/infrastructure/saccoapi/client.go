// Package saccoapi is the single configured client for the remote SACCO REST API.
//
// It attaches the upstream bearer token, normalises failures into *APIError or
// *TransportError, and never retries or caches.
package saccoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/saccodesk/backoffice/internal/api/metrics"
	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 10 << 20
)

// Config captures the settings for reaching the SACCO API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	AuthScheme string
	// HTTPClient overrides the default client; its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks JSON over HTTPS to the SACCO API.
type Client struct {
	baseURL string
	scheme  string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.SaccoAPI = (*Client)(nil)

// New validates cfg and builds a Client.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("sacco api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("sacco api base url: %q is not an absolute http(s) url", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	scheme := strings.TrimSpace(cfg.AuthScheme)
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		scheme:  scheme,
		http:    hc,
		log:     log,
	}, nil
}

// SignInWithPassword posts the first factor. It has no session side effects.
func (c *Client) SignInWithPassword(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, domain.PathSignIn, nil, "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateOtp posts the original credentials plus the one-time code.
func (c *Client) ValidateOtp(ctx context.Context, challenge domain.OTPChallenge) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, domain.PathValidateOtp, nil, "", challenge, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, token string) (*domain.Envelope, error) {
	var out domain.Envelope
	if err := c.doJSON(ctx, http.MethodGet, path, query, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Post(ctx context.Context, path, token string, body any) (*domain.Envelope, error) {
	var out domain.Envelope
	if err := c.doJSON(ctx, http.MethodPost, path, nil, token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostMultipart relays an upload such as member onboarding documents.
func (c *Client) PostMultipart(ctx context.Context, path, token string, form *ports.MultipartForm) (*domain.Envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range form.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("build multipart field %s: %w", f.Name, err)
		}
	}
	for _, f := range form.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("build multipart file %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("write multipart file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var out domain.Envelope
	if err := c.do(ctx, http.MethodPost, path, nil, token, &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var rd io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, token, rd, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", c.scheme+" "+token)
	}

	route := routeLabel(path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(route, "transport_error").Observe(time.Since(start).Seconds())
		c.log.Warn().Err(err).Str("method", method).Str("route", route).Msg("sacco api unreachable")
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(route, "transport_error").Observe(time.Since(start).Seconds())
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw)
		metrics.UpstreamRequestDuration.WithLabelValues(route, "api_error").Observe(time.Since(start).Seconds())
		c.log.Info().
			Str("method", method).
			Str("route", route).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("sacco api error")
		return apiErr
	}

	metrics.UpstreamRequestDuration.WithLabelValues(route, "ok").Observe(time.Since(start).Seconds())
	c.log.Debug().
		Str("method", method).
		Str("route", route).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("sacco api call")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "unreadable response from SACCO API"}
	}
	return nil
}

// routeLabel collapses id-like path segments so metric cardinality stays bounded.
func routeLabel(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}
