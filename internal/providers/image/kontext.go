package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"genstudio/internal/poll"
	"genstudio/internal/providers/httpx"
)

const kontextModel = "flux-kontext-pro"

// Kontext workflow statuses that end polling. Only Ready carries a result.
const (
	kontextReady            = "Ready"
	kontextError            = "Error"
	kontextContentModerated = "Content Moderated"
	kontextRequestModerated = "Request Moderated"
)

type kontextSubmitRequest struct {
	Prompt      string `json:"prompt"`
	InputImage  string `json:"input_image,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type kontextSubmitResponse struct {
	RequestID string `json:"request_id"`
}

type kontextResultResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

func kontextDone(r kontextResultResponse) bool {
	switch r.Status {
	case kontextReady, kontextError, kontextContentModerated, kontextRequestModerated:
		return true
	}
	return false
}

// KontextRefKind tells how a parsed Kontext result must be turned into bytes.
type KontextRefKind int

const (
	KontextURL KontextRefKind = iota + 1
	KontextBase64
)

// KontextRef is the image reference found in a Kontext result payload.
type KontextRef struct {
	Kind  KontextRefKind
	Value string
}

// ParseKontextResult finds the image reference in a result payload. The
// shapes are tried in order: bare string, {"sample"}, {"url"},
// {"base64":[...]}; anything else is an error.
func ParseKontextResult(raw json.RawMessage) (KontextRef, error) {
	value, err := extractKontextImage(raw)
	if err != nil {
		return KontextRef{}, err
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return KontextRef{Kind: KontextURL, Value: value}, nil
	}
	return KontextRef{Kind: KontextBase64, Value: value}, nil
}

func extractKontextImage(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s), nil
	}
	var obj struct {
		Sample *string  `json:"sample"`
		URL    *string  `json:"url"`
		Base64 []string `json:"base64"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Sample != nil && strings.TrimSpace(*obj.Sample) != "":
			return strings.TrimSpace(*obj.Sample), nil
		case obj.URL != nil && strings.TrimSpace(*obj.URL) != "":
			return strings.TrimSpace(*obj.URL), nil
		case len(obj.Base64) > 0 && strings.TrimSpace(obj.Base64[0]) != "":
			return strings.TrimSpace(obj.Base64[0]), nil
		}
	}
	return "", fmt.Errorf("kontext: unrecognized result shape: %s", httpx.Truncate(string(raw), 200))
}

// decodeBase64Image accepts a data URI or bare standard base64.
func decodeBase64Image(value string) ([]byte, error) {
	if strings.HasPrefix(value, "data:") {
		idx := strings.Index(value, ",")
		if idx < 0 {
			return nil, errors.New("kontext: malformed data uri")
		}
		value = value[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("kontext: decode base64 image: %w", err)
	}
	return data, nil
}

// kontext submits a Flux Kontext workflow, polls get_result until the
// workflow reaches a terminal status, then resolves the result reference.
func (c *Client) kontext(ctx context.Context, req Request) ([]byte, error) {
	base := fmt.Sprintf("%s/workflows/accounts/fireworks/models/%s", c.endpoints.Fireworks, kontextModel)
	payload := kontextSubmitRequest{Prompt: req.Message, AspectRatio: req.AspectRatio}
	if req.HasImage() {
		// EncodeToString reads the caller's buffer without retaining it.
		payload.InputImage = "data:" + http.DetectContentType(req.Image) + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
	}
	var submitted kontextSubmitResponse
	if err := c.call.JSON(ctx, "kontext", http.MethodPost, base, bearer(req.APIKey), payload, &submitted); err != nil {
		return nil, err
	}
	if strings.TrimSpace(submitted.RequestID) == "" {
		return nil, errors.New("kontext: submit response has no request_id")
	}

	opts := c.poll
	opts.OnAttempt = func(attempt int) {
		c.call.Logger.Debug().Str("request_id", submitted.RequestID).Int("attempt", attempt).Msg("kontext: polling result")
	}
	result, err := poll.Until(ctx, func(ctx context.Context) (kontextResultResponse, error) {
		var out kontextResultResponse
		err := c.call.JSON(ctx, "kontext", http.MethodPost, base+"/get_result", bearer(req.APIKey), map[string]string{"id": submitted.RequestID}, &out)
		return out, err
	}, kontextDone, opts)
	if err != nil {
		return nil, fmt.Errorf("kontext: %w", err)
	}
	if result.Status != kontextReady {
		return nil, fmt.Errorf("kontext: generation ended with status %q", result.Status)
	}

	ref, err := ParseKontextResult(result.Result)
	if err != nil {
		return nil, err
	}
	if ref.Kind == KontextURL {
		data, _, err := c.call.Download(ctx, "kontext", ref.Value)
		return data, err
	}
	return decodeBase64Image(ref.Value)
}
