package video

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"genstudio/internal/domain"
	"genstudio/internal/infra"
	"genstudio/internal/models"
	"genstudio/internal/poll"
	"genstudio/internal/providers/httpx"
)

var (
	ErrDIDTimeout    = errors.New("D-ID video generation timed out")
	ErrRunwayTimeout = errors.New("RunwayML video generation timed out")
	ErrRunwayStart   = errors.New("Failed to start RunwayML generation")
)

// Observer receives the locally observed job state after every transition.
// It must not block.
type Observer func(update Update)

// Update describes one observed transition.
type Update struct {
	State    domain.JobState
	RemoteID string
	Attempt  int
	Detail   string
}

// Request is the input to a video generation.
type Request struct {
	ImageURL      string
	Prompt        string
	Voice         string
	AnimationType string
	APIKey        string
	Observer      Observer
}

func (r Request) observe(u Update) {
	if r.Observer != nil {
		r.Observer(u)
	}
}

// Generator produces a hosted video URL for a request.
type Generator interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
}

// Options configures a Client.
type Options struct {
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	DIDBaseURL     string
	RunwayBaseURL  string
	Poll           poll.Options
}

// Client talks to the D-ID and RunwayML APIs.
type Client struct {
	call   httpx.Caller
	did    string
	runway string
	poll   poll.Options
}

func NewClient(opts Options) *Client {
	call := httpx.NewCaller(opts.HTTPClient, opts.Logger, opts.RequestTimeout)
	p := opts.Poll
	if p.Logger == nil {
		p.Logger = call.Logger
	}
	return &Client{
		call:   call,
		did:    baseURL(opts.DIDBaseURL, "https://api.d-id.com"),
		runway: baseURL(opts.RunwayBaseURL, "https://api.dev.runwayml.com"),
		poll:   p,
	}
}

// Generate dispatches to the provider behind model.
func (c *Client) Generate(ctx context.Context, model string, req Request) (string, error) {
	switch model {
	case models.ModelDID:
		return c.GenerateDID(ctx, req)
	case models.ModelRunwayML:
		return c.GenerateRunway(ctx, req)
	}
	return "", fmt.Errorf("%w: %q is not a video model", domain.ErrUnsupportedModel, model)
}

func (c *Client) pollOptions(req Request, provider, remoteID string) poll.Options {
	opts := c.poll
	opts.OnAttempt = func(attempt int) {
		c.call.Logger.Debug().Str("provider", provider).Str("id", remoteID).Int("attempt", attempt).Msg("video: polling job")
		req.observe(Update{State: domain.JobStatePolling, RemoteID: remoteID, Attempt: attempt})
	}
	return opts
}

func baseURL(v, fallback string) string {
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if v == "" {
		return fallback
	}
	return v
}

var _ Generator = (*Client)(nil)
