package image

import (
	"bytes"
	"encoding/json"
	"fmt"

	"genstudio/internal/providers/httpx"
)

func newForm() *httpx.Form {
	return httpx.NewForm()
}

func decodeJSON(provider string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

func jsonBody(provider string, v any) (*bytes.Reader, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", provider, err)
	}
	return bytes.NewReader(payload), nil
}
