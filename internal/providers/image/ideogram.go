package image

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ideogramAspectRatios = map[string]string{
	"1:1":   "1x1",
	"16:9":  "16x9",
	"9:16":  "9x16",
	"4:3":   "4x3",
	"3:4":   "3x4",
	"3:2":   "3x2",
	"2:3":   "2x3",
	"16:10": "16x10",
	"10:16": "10x16",
	"3:1":   "3x1",
	"1:3":   "1x3",
}

// ideogramAspectRatio maps "16:9"-style ratios onto the provider's enum.
// Unknown ratios fall back to square.
func ideogramAspectRatio(ratio string) string {
	if v, ok := ideogramAspectRatios[strings.TrimSpace(ratio)]; ok {
		return v
	}
	return "1x1"
}

type ideogramResponse struct {
	Data []struct {
		URL         string `json:"url"`
		IsImageSafe *bool  `json:"is_image_safe"`
	} `json:"data"`
}

func (c *Client) ideogram(ctx context.Context, req Request) ([]byte, error) {
	endpoint := c.endpoints.Ideogram + "/v1/ideogram-v3/generate"
	form := newForm().
		Field("prompt", req.Message).
		Field("aspect_ratio", ideogramAspectRatio(req.AspectRatio)).
		Field("negative_prompt", req.NegativePrompt).
		Field("rendering_speed", "TURBO")
	if req.HasImage() {
		endpoint = c.endpoints.Ideogram + "/v1/ideogram-v3/remix"
		form.Field("image_weight", "50").File("image", "image", req.Image)
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Api-Key", req.APIKey)
	h.Set("Content-Type", contentType)
	raw, _, err := c.call.Do(ctx, "ideogram", http.MethodPost, endpoint, h, body)
	if err != nil {
		return nil, err
	}
	var decoded ideogramResponse
	if err := decodeJSON("ideogram", raw, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].URL) == "" {
		if len(decoded.Data) > 0 && decoded.Data[0].IsImageSafe != nil && !*decoded.Data[0].IsImageSafe {
			return nil, errors.New("ideogram: image was flagged as unsafe")
		}
		return nil, errors.New("ideogram: response has no image url")
	}
	data, _, err := c.call.Download(ctx, "ideogram", decoded.Data[0].URL)
	return data, err
}
