package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/poll"
	"genstudio/internal/providers/httpx"
)

const didDefaultVoice = "en-US-JennyNeural"

type didProvider struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

type didScript struct {
	Type      string      `json:"type"`
	Input     string      `json:"input"`
	Provider  didProvider `json:"provider"`
	Subtitles bool        `json:"subtitles"`
}

type didTalkRequest struct {
	SourceURL string         `json:"source_url"`
	Script    didScript      `json:"script"`
	Config    map[string]any `json:"config"`
}

type didAnimationRequest struct {
	SourceURL string         `json:"source_url"`
	DriverURL string         `json:"driver_url"`
	Config    map[string]any `json:"config"`
}

type didSubmitResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type didError struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type didStatus struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	ResultURL string          `json:"result_url"`
	Error     json.RawMessage `json:"error"`
}

// failure returns the provider's error message, or "" while the job has
// not failed. D-ID sends error either as an object or as a bare string.
func (s didStatus) failure() string {
	raw := bytes.TrimSpace(s.Error)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
		return "D-ID video generation failed"
	}
	var e didError
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Description != "" {
			return e.Description
		}
		if e.Kind != "" {
			return "D-ID video generation failed: " + e.Kind
		}
	}
	return httpx.Message(raw)
}

// GenerateDID renders a talking avatar when a script is given and a silent
// driver animation otherwise, then polls until a result_url or an error
// shows up.
func (c *Client) GenerateDID(ctx context.Context, req Request) (string, error) {
	h := http.Header{}
	h.Set("Authorization", "Basic "+req.APIKey)

	resource := "animations"
	var payload any
	if script := strings.TrimSpace(req.Prompt); script != "" {
		resource = "talks"
		voice := strings.TrimSpace(req.Voice)
		if voice == "" {
			voice = didDefaultVoice
		}
		payload = didTalkRequest{
			SourceURL: req.ImageURL,
			Script: didScript{
				Type:     "text",
				Input:    script,
				Provider: didProvider{Type: "microsoft", VoiceID: voice},
			},
			Config: map[string]any{"fluent": true, "stitch": true, "pad_audio": 0.0},
		}
	} else {
		payload = didAnimationRequest{
			SourceURL: req.ImageURL,
			DriverURL: "bank://" + strings.TrimSpace(req.AnimationType),
			Config:    map[string]any{"mute": true, "stitch": true},
		}
	}

	var submitted didSubmitResponse
	if err := c.call.JSON(ctx, "d-id", http.MethodPost, c.did+"/"+resource, h, payload, &submitted); err != nil {
		req.observe(Update{State: domain.JobStateFailed, Detail: err.Error()})
		return "", err
	}
	if submitted.ID == "" {
		msg := strings.TrimSpace(submitted.Description)
		if msg == "" {
			msg = "D-ID did not return a job id"
		}
		req.observe(Update{State: domain.JobStateFailed, Detail: msg})
		return "", errors.New(msg)
	}
	req.observe(Update{State: domain.JobStateSubmitted, RemoteID: submitted.ID})

	status, err := poll.Until(ctx, func(ctx context.Context) (didStatus, error) {
		var s didStatus
		err := c.call.JSON(ctx, "d-id", http.MethodGet, fmt.Sprintf("%s/%s/%s", c.did, resource, submitted.ID), h, nil, &s)
		return s, err
	}, func(s didStatus) bool {
		return s.ResultURL != "" || s.failure() != ""
	}, c.pollOptions(req, "d-id", submitted.ID))
	switch {
	case errors.Is(err, poll.ErrTimeout):
		req.observe(Update{State: domain.JobStateTimedOut, RemoteID: submitted.ID})
		return "", ErrDIDTimeout
	case err != nil:
		req.observe(Update{State: domain.JobStateFailed, RemoteID: submitted.ID, Detail: err.Error()})
		return "", err
	case status.failure() != "":
		msg := status.failure()
		req.observe(Update{State: domain.JobStateFailed, RemoteID: submitted.ID, Detail: msg})
		return "", errors.New(msg)
	}
	req.observe(Update{State: domain.JobStateSucceeded, RemoteID: submitted.ID, Detail: status.ResultURL})
	c.call.Logger.Debug().Str("id", submitted.ID).Str("resource", resource).Msg("d-id: video ready")
	return status.ResultURL, nil
}
