package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient sends a request. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// testClient replaces the transport in tests.
var testClient HTTPClient

// maxLoggedBody caps how much of a body goes into one log entry.
const maxLoggedBody = 1024

// redactedHeaders never have their values logged. Keys are lower case.
var redactedHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"authentication":      true,
	"www-authenticate":    true,
	"cookie":              true,
	"set-cookie":          true,
	"session-id":          true,
	"x-session-id":        true,
	"api-key":             true,
	"apikey":              true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"x-access-token":      true,
	"x-refresh-token":     true,
	"x-csrf-token":        true,
	"x-forwarded-for":     true,
	"x-real-ip":           true,
}

// loggingClient records every exchange at debug level. Multipart bodies carry
// uploaded documents and are never logged.
type loggingClient struct {
	next HTTPClient
}

func (c loggingClient) Do(req *http.Request) (*http.Response, error) {
	log := Logger().With(zap.String("method", req.Method), zap.String("url", req.URL.String()))
	debugOn := log.Core().Enabled(zap.DebugLevel)

	if debugOn {
		fields := []zap.Field{zap.String("headers", formatHeaders(req.Header))}
		switch {
		case isMultipart(req.Header.Get("Content-Type")):
			fields = append(fields, zap.String("body", "<multipart - not logged>"))
		case req.Body != nil && req.Body != http.NoBody:
			var preview string
			req.Body, preview = peekBody(req.Body)
			fields = append(fields, zap.String("body", preview))
		}
		log.Debug("http request", fields...)
	}

	start := time.Now()
	resp, err := c.next.Do(req)
	if err != nil {
		log.Debug("http request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}
	if debugOn {
		var preview string
		resp.Body, preview = peekBody(resp.Body)
		log.Debug("http response",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("headers", formatHeaders(resp.Header)),
			zap.String("body", preview),
		)
	}
	return resp, nil
}

// peekBody drains body and returns a reader over the same bytes together with
// a preview fit for a log line.
func peekBody(body io.ReadCloser) (io.ReadCloser, string) {
	if body == nil {
		return nil, "<nil>"
	}
	data, err := io.ReadAll(body)
	body.Close()
	restored := io.NopCloser(bytes.NewReader(data))
	switch {
	case err != nil:
		return restored, fmt.Sprintf("<error reading: %v>", err)
	case len(data) == 0:
		return restored, "<empty>"
	case len(data) > maxLoggedBody:
		return restored, string(data[:maxLoggedBody]) + "... (truncated)"
	}
	return restored, string(data)
}

// formatHeaders renders headers sorted by name as "Name: value" pairs joined
// by "; ", with sensitive values replaced.
func formatHeaders(hdr http.Header) string {
	names := make([]string, 0, len(hdr))
	for name := range hdr {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []string
	for _, name := range names {
		for _, v := range hdr.Values(name) {
			if redactedHeaders[strings.ToLower(name)] {
				v = "[REDACTED]"
			}
			pairs = append(pairs, name+": "+v)
		}
	}
	return strings.Join(pairs, "; ")
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/")
}

// GetHTTPClientWithTimeout returns the logging client used for backend calls.
// The timeout covers the whole exchange including the response body; zero
// means none.
func GetHTTPClientWithTimeout(timeout time.Duration) HTTPClient {
	if testClient != nil {
		return loggingClient{next: testClient}
	}
	return loggingClient{next: &http.Client{Timeout: timeout}}
}

// SetHTTPClientForTest swaps the transport under the logging client. Nil
// restores the real one.
func SetHTTPClientForTest(client HTTPClient) {
	testClient = client
}
