package image

import (
	"context"
	"fmt"
	"net/http"
)

// Fireworks model path segments sharing one request shape.
const (
	fireworksSDXL = "stable-diffusion-xl-1024-v1-0"
	playgroundV2  = "playground-v2-1024px-aesthetic"
	playgroundV25 = "playground-v2-5-1024px-aesthetic"
)

type fireworksTextRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	CfgScale       float64 `json:"cfg_scale"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Steps          int     `json:"steps"`
	Samples        int     `json:"samples"`
	Seed           int     `json:"seed"`
	SafetyCheck    bool    `json:"safety_check"`
}

// fireworks returns the strategy for one Fireworks-hosted diffusion model.
// The provider answers with image bytes directly.
func (c *Client) fireworks(model string) Strategy {
	return func(ctx context.Context, req Request) ([]byte, error) {
		base := fmt.Sprintf("%s/image_generation/accounts/fireworks/models/%s", c.endpoints.Fireworks, model)
		h := bearer(req.APIKey)
		h.Set("Accept", "image/jpeg")

		if req.HasImage() {
			body, contentType, err := newForm().
				Field("prompt", req.Message).
				Field("negative_prompt", req.NegativePrompt).
				Field("init_image_mode", "IMAGE_STRENGTH").
				Field("image_strength", "0.5").
				Field("cfg_scale", "7").
				Field("steps", "30").
				Field("samples", "1").
				Field("seed", "0").
				Field("safety_check", "false").
				File("init_image", "init", req.Image).
				Encode()
			if err != nil {
				return nil, err
			}
			h.Set("Content-Type", contentType)
			data, _, err := c.call.Do(ctx, "fireworks", http.MethodPost, base+"/image_to_image", h, body)
			if err != nil {
				return nil, err
			}
			c.call.Logger.Debug().Str("model", model).Bool("image_to_image", true).Int("bytes", len(data)).Msg("fireworks: generated image")
			return data, nil
		}

		payload := fireworksTextRequest{
			Prompt:         req.Message,
			NegativePrompt: req.NegativePrompt,
			CfgScale:       7,
			Height:         1024,
			Width:          1024,
			Steps:          30,
			Samples:        1,
		}
		body, err := jsonBody("fireworks", payload)
		if err != nil {
			return nil, err
		}
		h.Set("Content-Type", "application/json")
		data, _, err := c.call.Do(ctx, "fireworks", http.MethodPost, base, h, body)
		if err != nil {
			return nil, err
		}
		c.call.Logger.Debug().Str("model", model).Bool("image_to_image", false).Int("bytes", len(data)).Msg("fireworks: generated image")
		return data, nil
	}
}
