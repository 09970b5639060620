// Package httpx holds the request plumbing shared by provider clients:
// status handling, provider error decoding, multipart bodies and result
// downloads.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"genstudio/internal/domain"
	"genstudio/internal/infra"
)

const defaultTimeout = 60 * time.Second

// Error is a non-2xx provider response.
type Error struct {
	Provider string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return domain.ErrProviderFailure
}

// Caller issues single-attempt HTTP requests on behalf of a provider client.
type Caller struct {
	HTTP   *http.Client
	Logger *infra.Logger
}

// NewCaller fills in a default client and a discard logger.
func NewCaller(httpClient *http.Client, logger *infra.Logger, timeout time.Duration) Caller {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return Caller{HTTP: httpClient, Logger: logger}
}

// Do sends one request and returns the body of a 2xx response.
func (c Caller) Do(ctx context.Context, provider, method, endpoint string, header http.Header, body io.Reader) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: http request: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read response: %w", provider, err)
	}
	c.Logger.Debug().
		Str("provider", provider).
		Str("method", method).
		Str("url", redact(endpoint)).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("httpx: provider call")
	if resp.StatusCode >= 300 {
		return nil, resp.Header, &Error{Provider: provider, Status: resp.StatusCode, Message: Message(raw)}
	}
	return raw, resp.Header, nil
}

// JSON posts in as a JSON body (when non-nil) and decodes the response
// into out (when non-nil).
func (c Caller) JSON(ctx context.Context, provider, method, endpoint string, header http.Header, in, out any) error {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", provider, err)
		}
		body = bytes.NewReader(payload)
		h.Set("Content-Type", "application/json")
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "application/json")
	}
	raw, _, err := c.Do(ctx, provider, method, endpoint, h, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

// Download fetches a hosted result and returns its bytes and content type.
func (c Caller) Download(ctx context.Context, provider, resultURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(resultURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", fmt.Errorf("%s: invalid result url: %q", provider, resultURL)
	}
	data, header, err := c.Do(ctx, provider, http.MethodGet, parsed.String(), nil, nil)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%s: empty download from %s", provider, redact(resultURL))
	}
	contentType := header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Message extracts a human-readable message from a provider error body,
// falling back to the trimmed body text.
func Message(raw []byte) string {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		for _, key := range []string{"description", "message", "detail", "error", "errors", "name"} {
			if msg := messageFrom(probe[key]); msg != "" {
				return msg
			}
		}
	}
	text := Truncate(strings.TrimSpace(string(raw)), 512)
	if text == "" {
		return "empty response"
	}
	return text
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, key := range []string{"message", "description", "detail"} {
			if msg := messageFrom(nested[key]); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func redact(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
