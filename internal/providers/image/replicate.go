package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"genstudio/internal/imaging"
	"genstudio/internal/poll"
)

const replicateModel = "black-forest-labs/flux-schnell"

type replicateInput struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspect_ratio"`
	OutputFormat string `json:"output_format"`
	NumOutputs   int    `json:"num_outputs"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
}

func (p prediction) pending() bool {
	return p.Status == "starting" || p.Status == "processing"
}

// outputURL accepts both a list of URLs and a single URL.
func (p prediction) outputURL() string {
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return strings.TrimSpace(single)
	}
	return ""
}

// replicate creates a prediction, polls it until it leaves the
// starting/processing states, downloads the WebP output and returns it as
// JPEG. A failed status poll is retried on the next attempt.
func (c *Client) replicate(ctx context.Context, req Request) ([]byte, error) {
	ratio := req.AspectRatio
	if ratio == "" {
		ratio = "1:1"
	}
	payload := map[string]replicateInput{"input": {
		Prompt:       req.Message,
		AspectRatio:  ratio,
		OutputFormat: "webp",
		NumOutputs:   1,
	}}
	var created prediction
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.endpoints.Replicate, replicateModel)
	if err := c.call.JSON(ctx, "replicate", http.MethodPost, endpoint, bearer(req.APIKey), payload, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, errors.New("replicate: prediction has no id")
	}

	final := created
	if created.pending() {
		var lastErr error
		res := poll.UntilSafe(ctx, func(ctx context.Context) (prediction, error) {
			var p prediction
			err := c.call.JSON(ctx, "replicate", http.MethodGet, c.endpoints.Replicate+"/predictions/"+created.ID, bearer(req.APIKey), nil, &p)
			if err != nil {
				lastErr = err
			}
			return p, err
		}, func(p prediction) bool { return !p.pending() }, c.poll)
		if !res.Success {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("replicate: %w", err)
			}
			if lastErr != nil {
				return nil, fmt.Errorf("replicate: %w: %s (last error: %v)", poll.ErrTimeout, res.Error, lastErr)
			}
			return nil, fmt.Errorf("replicate: %w: %s", poll.ErrTimeout, res.Error)
		}
		final = res.Data
	}
	if final.Status != "succeeded" {
		msg := strings.Trim(string(final.Error), `"`)
		if msg == "" || msg == "null" {
			msg = "no error detail"
		}
		return nil, fmt.Errorf("replicate: prediction %s %s: %s", final.ID, final.Status, msg)
	}
	outputURL := final.outputURL()
	if outputURL == "" {
		return nil, errors.New("replicate: prediction has no output")
	}
	webp, _, err := c.call.Download(ctx, "replicate", outputURL)
	if err != nil {
		return nil, err
	}
	jpg, err := imaging.ToJPEG(webp)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	c.call.Logger.Debug().Str("prediction", final.ID).Int("bytes", len(jpg)).Msg("replicate: transcoded output")
	return jpg, nil
}
