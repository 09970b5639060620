package image

import (
	"context"
	"net/http"
	"strings"
	"time"

	"genstudio/internal/infra"
	"genstudio/internal/poll"
	"genstudio/internal/providers/httpx"
)

// Request is the provider-neutral input handed to every strategy. It is
// read-only: strategies that re-encode Image work on a copy.
type Request struct {
	Message        string
	Image          []byte
	APIKey         string
	UseCredits     bool
	AspectRatio    string
	NegativePrompt string
}

// HasImage reports whether a reference image was supplied.
func (r Request) HasImage() bool {
	return len(r.Image) > 0
}

// Strategy turns a Request into raw image bytes for one provider.
// Implementations keep no state between calls and are safe for concurrent use.
type Strategy func(ctx context.Context, req Request) ([]byte, error)

// Endpoints holds provider base URLs.
type Endpoints struct {
	OpenAI    string
	Fireworks string
	Stability string
	Ideogram  string
	Replicate string
}

// DefaultEndpoints returns the public production base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		OpenAI:    "https://api.openai.com/v1",
		Fireworks: "https://api.fireworks.ai/inference/v1",
		Stability: "https://api.stability.ai",
		Ideogram:  "https://api.ideogram.ai",
		Replicate: "https://api.replicate.com/v1",
	}
}

// Options configures a Client.
type Options struct {
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	Endpoints      Endpoints
	// Poll bounds the async workflows (Kontext, Replicate).
	Poll poll.Options
}

// Client owns the shared HTTP plumbing behind every image strategy.
type Client struct {
	call      httpx.Caller
	endpoints Endpoints
	poll      poll.Options
}

// NewClient fills unset endpoints with the production defaults.
func NewClient(opts Options) *Client {
	defaults := DefaultEndpoints()
	ep := opts.Endpoints
	ep.OpenAI = orDefault(ep.OpenAI, defaults.OpenAI)
	ep.Fireworks = orDefault(ep.Fireworks, defaults.Fireworks)
	ep.Stability = orDefault(ep.Stability, defaults.Stability)
	ep.Ideogram = orDefault(ep.Ideogram, defaults.Ideogram)
	ep.Replicate = orDefault(ep.Replicate, defaults.Replicate)

	call := httpx.NewCaller(opts.HTTPClient, opts.Logger, opts.RequestTimeout)
	pollOpts := opts.Poll
	if pollOpts.Logger == nil {
		pollOpts.Logger = call.Logger
	}
	return &Client{call: call, endpoints: ep, poll: pollOpts}
}

func orDefault(v, fallback string) string {
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if v == "" {
		return fallback
	}
	return v
}

func bearer(key string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + key}}
}
