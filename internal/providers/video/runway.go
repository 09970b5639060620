package video

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/poll"
)

const (
	runwayAPIVersion = "2024-11-06"
	runwayModel      = "gen3a_turbo"
)

type runwaySubmitRequest struct {
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText,omitempty"`
	Model       string `json:"model"`
	Duration    int    `json:"duration"`
	Ratio       string `json:"ratio"`
}

type runwayTask struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Output  []string `json:"output"`
	Error   string   `json:"error"`
	Failure string   `json:"failure"`
}

func (t runwayTask) errorMessage() string {
	if t.Error != "" {
		return t.Error
	}
	if t.Status == "FAILED" {
		if t.Failure != "" {
			return t.Failure
		}
		return "RunwayML generation failed"
	}
	return ""
}

// GenerateRunway submits an image-to-video task and polls it until it
// succeeds or reports an error.
func (c *Client) GenerateRunway(ctx context.Context, req Request) (string, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+req.APIKey)
	h.Set("X-Runway-Version", runwayAPIVersion)

	text := strings.TrimSpace(req.Prompt)
	if text == "" {
		text = strings.TrimSpace(req.AnimationType)
	}
	payload := runwaySubmitRequest{
		PromptImage: req.ImageURL,
		PromptText:  text,
		Model:       runwayModel,
		Duration:    5,
		Ratio:       "1280:768",
	}
	var submitted runwayTask
	if err := c.call.JSON(ctx, "runway", http.MethodPost, c.runway+"/v1/image_to_video", h, payload, &submitted); err != nil {
		req.observe(Update{State: domain.JobStateFailed, Detail: err.Error()})
		return "", err
	}
	if submitted.ID == "" {
		req.observe(Update{State: domain.JobStateFailed, Detail: ErrRunwayStart.Error()})
		return "", ErrRunwayStart
	}
	req.observe(Update{State: domain.JobStateSubmitted, RemoteID: submitted.ID})

	task, err := poll.Until(ctx, func(ctx context.Context) (runwayTask, error) {
		var t runwayTask
		err := c.call.JSON(ctx, "runway", http.MethodGet, c.runway+"/v1/tasks/"+submitted.ID, h, nil, &t)
		return t, err
	}, func(t runwayTask) bool {
		return t.Status == "SUCCEEDED" || t.errorMessage() != ""
	}, c.pollOptions(req, "runway", submitted.ID))
	switch {
	case errors.Is(err, poll.ErrTimeout):
		req.observe(Update{State: domain.JobStateTimedOut, RemoteID: submitted.ID})
		return "", ErrRunwayTimeout
	case err != nil:
		req.observe(Update{State: domain.JobStateFailed, RemoteID: submitted.ID, Detail: err.Error()})
		return "", err
	case task.errorMessage() != "":
		msg := task.errorMessage()
		req.observe(Update{State: domain.JobStateFailed, RemoteID: submitted.ID, Detail: msg})
		return "", errors.New(msg)
	case len(task.Output) == 0 || strings.TrimSpace(task.Output[0]) == "":
		req.observe(Update{State: domain.JobStateTimedOut, RemoteID: submitted.ID})
		return "", ErrRunwayTimeout
	}
	req.observe(Update{State: domain.JobStateSucceeded, RemoteID: submitted.ID, Detail: task.Output[0]})
	return task.Output[0], nil
}
