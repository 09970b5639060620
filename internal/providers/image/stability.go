package image

import (
	"context"
	"net/http"
)

const (
	stabilityModel    = "sd3-turbo"
	stabilityStrength = "0.7"
)

// stability posts a multipart form to the SD3 endpoint. A reference image
// switches the request to image-to-image at a fixed strength.
func (c *Client) stability(ctx context.Context, req Request) ([]byte, error) {
	form := newForm().
		Field("prompt", req.Message).
		Field("model", stabilityModel).
		Field("output_format", "jpeg")
	if req.HasImage() {
		form.Field("mode", "image-to-image").
			Field("strength", stabilityStrength).
			File("image", "image", req.Image)
	} else {
		ratio := req.AspectRatio
		if ratio == "" {
			ratio = "1:1"
		}
		form.Field("mode", "text-to-image").Field("aspect_ratio", ratio)
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}
	h := bearer(req.APIKey)
	h.Set("Accept", "image/*")
	h.Set("Content-Type", contentType)
	data, _, err := c.call.Do(ctx, "stability", http.MethodPost, c.endpoints.Stability+"/v2beta/stable-image/generate/sd3", h, body)
	if err != nil {
		return nil, err
	}
	c.call.Logger.Debug().Bool("image_to_image", req.HasImage()).Int("bytes", len(data)).Msg("stability: generated image")
	return data, nil
}
