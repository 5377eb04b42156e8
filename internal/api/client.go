// Package api is the HTTP client for the legal-assistant backend. It turns
// each endpoint into a typed call and normalizes every failure into *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation names, used in errors and log fields.
const (
	OpChat     = "chat"
	OpDraft    = "draft"
	OpUpload   = "upload"
	OpIngest   = "ingest"
	OpSettings = "settings"
)

const (
	// HeaderRequestID is attached to every outbound request.
	HeaderRequestID = "X-Request-ID"

	// DefaultTimeout applies when no HTTPClient is supplied.
	DefaultTimeout = 60 * time.Second

	maxBodyBytes = 8 << 20
)

// HTTPClient is the subset of *http.Client the Client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one backend instance rooted at baseURL.
type Client struct {
	baseURL   string
	http      HTTPClient
	log       *zap.Logger
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger for request lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.requestID = gen
		}
	}
}

// New returns a Client for baseURL, which must be an absolute http(s) URL.
// A path prefix is kept, so "http://host/api" sends chats to "/api/chat".
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: expected http(s)://host[:port]", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		log:       zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

type chatRequest struct {
	Message string `json:"message"`
}

type draftRequest struct {
	Instruction string `json:"instruction"`
}

// Chat asks a question and returns the answer text.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := c.postJSON(ctx, OpChat, "/chat", chatRequest{Message: message})
	if err != nil {
		return "", err
	}
	var out struct {
		Answer *string `json:"answer"`
	}
	if err := decode(OpChat, body, &out); err != nil {
		return "", err
	}
	if out.Answer == nil || strings.TrimSpace(*out.Answer) == "" {
		return "", &Error{Op: OpChat, Kind: KindMalformed, Detail: `response has no "answer"`}
	}
	return *out.Answer, nil
}

// Draft asks for a document draft and returns its text.
func (c *Client) Draft(ctx context.Context, instruction string) (string, error) {
	body, err := c.postJSON(ctx, OpDraft, "/draft", draftRequest{Instruction: instruction})
	if err != nil {
		return "", err
	}
	var out struct {
		Draft *string `json:"draft"`
	}
	if err := decode(OpDraft, body, &out); err != nil {
		return "", err
	}
	if out.Draft == nil || strings.TrimSpace(*out.Draft) == "" {
		return "", &Error{Op: OpDraft, Kind: KindMalformed, Detail: `response has no "draft"`}
	}
	return *out.Draft, nil
}

// UploadResult is the server's confirmation of an indexed upload.
type UploadResult struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// Upload sends r as the multipart field "file" named after name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("upload: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload: read %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload: finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	body, err := c.roundTrip(OpUpload, req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Status string `json:"status"`
		File   string `json:"file"`
		Chunks *int   `json:"chunks"`
	}
	if err := decode(OpUpload, body, &out); err != nil {
		return nil, err
	}
	if out.Status != "ok" {
		return nil, &Error{Op: OpUpload, Kind: KindServer, Status: http.StatusOK, Detail: extractDetail(body)}
	}
	if out.Chunks == nil {
		return nil, &Error{Op: OpUpload, Kind: KindMalformed, Detail: `response has no "chunks"`}
	}
	res := &UploadResult{File: out.File, Chunks: *out.Chunks}
	if res.File == "" {
		res.File = filepath.Base(name)
	}
	return res, nil
}

// IngestResult reports how many chunks the default document produced.
type IngestResult struct {
	Chunks int `json:"chunks"`
}

// Ingest re-indexes the server-side default document.
func (c *Client) Ingest(ctx context.Context) (*IngestResult, error) {
	body, err := c.postJSON(ctx, OpIngest, "/ingest", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Status *string `json:"status"`
		Chunks *int    `json:"chunks"`
	}
	if err := decode(OpIngest, body, &out); err != nil {
		return nil, err
	}
	if out.Status != nil && *out.Status != "ok" {
		return nil, &Error{Op: OpIngest, Kind: KindServer, Status: http.StatusOK, Detail: extractDetail(body)}
	}
	if out.Chunks == nil {
		return nil, &Error{Op: OpIngest, Kind: KindMalformed, Detail: `response has no "chunks"`}
	}
	return &IngestResult{Chunks: *out.Chunks}, nil
}

// Settings fetches the server configuration as a free-form map.
func (c *Client) Settings(ctx context.Context) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/settings", nil)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	body, err := c.roundTrip(OpSettings, req)
	if err != nil {
		return nil, err
	}
	var out any
	if err := decode(OpSettings, body, &out); err != nil {
		return nil, err
	}
	cfg, ok := out.(map[string]any)
	if !ok {
		return nil, &Error{Op: OpSettings, Kind: KindMalformed, Detail: "expected a JSON object"}
	}
	return cfg, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderRequestID, c.requestID())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTrip(op, req)
}

// roundTrip sends req and returns the body of a 2xx response.
func (c *Client) roundTrip(op string, req *http.Request) ([]byte, error) {
	start := time.Now()
	log := c.log.With(
		zap.String("op", op),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("reading response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}

	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Detail only carries text the server wrote for the user. Status text
		// and raw bodies go to the log.
		detail := extractDetail(body)
		log.Warn("server reported failure",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail),
			zap.String("summary", failureSummary(resp.StatusCode, body)),
		)
		return nil, &Error{Op: op, Kind: KindServer, Status: resp.StatusCode, Detail: detail}
	}
	return body, nil
}

// decode unmarshals a 2xx body. Syntax errors count as transport failures
// because the body was not the JSON the endpoint promises; type mismatches on
// a field count as malformed.
func decode(op string, body []byte, out any) error {
	err := json.Unmarshal(body, out)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &Error{Op: op, Kind: KindMalformed, Detail: fmt.Sprintf("field %q has the wrong type", typeErr.Field), Err: err}
	}
	return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("decode response: %w", err)}
}
