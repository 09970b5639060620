package image

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	dalleGenerateModel = "dall-e-3"
	dalleEditModel     = "dall-e-2"
	dalleSize          = "1024x1024"
)

type dalleGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type dalleResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// dalle calls the edit endpoint when a reference image is present and the
// generation endpoint otherwise. Both answer with a hosted URL that is
// fetched in a second request.
func (c *Client) dalle(ctx context.Context, req Request) ([]byte, error) {
	var decoded dalleResponse
	if req.HasImage() {
		body, contentType, err := newForm().
			Field("model", dalleEditModel).
			Field("prompt", req.Message).
			Field("n", "1").
			Field("size", dalleSize).
			File("image", "image", req.Image).
			Encode()
		if err != nil {
			return nil, err
		}
		h := bearer(req.APIKey)
		h.Set("Content-Type", contentType)
		raw, _, err := c.call.Do(ctx, "dalle", http.MethodPost, c.endpoints.OpenAI+"/images/edits", h, body)
		if err != nil {
			return nil, err
		}
		if err := decodeJSON("dalle", raw, &decoded); err != nil {
			return nil, err
		}
	} else {
		payload := dalleGenerateRequest{Model: dalleGenerateModel, Prompt: req.Message, N: 1, Size: dalleSize}
		if err := c.call.JSON(ctx, "dalle", http.MethodPost, c.endpoints.OpenAI+"/images/generations", bearer(req.APIKey), payload, &decoded); err != nil {
			return nil, err
		}
	}
	if len(decoded.Data) == 0 || strings.TrimSpace(decoded.Data[0].URL) == "" {
		return nil, errors.New("dalle: response has no image url")
	}
	data, _, err := c.call.Download(ctx, "dalle", decoded.Data[0].URL)
	if err != nil {
		return nil, err
	}
	c.call.Logger.Debug().Bool("edit", req.HasImage()).Int("bytes", len(data)).Msg("dalle: generated image")
	return data, nil
}
