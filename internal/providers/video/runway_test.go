package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"genstudio/internal/domain"
)

func TestRunwaySucceeds(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://runway.test/v1/image_to_video", `{"id":"task-1"}`)
	transport.on(http.MethodGet, "https://runway.test/v1/tasks/task-1",
		`{"id":"task-1","status":"RUNNING"}`,
		`{"id":"task-1","status":"SUCCEEDED","output":["https://runway.test/v.mp4"]}`)
	client := newTestClient(t, transport)

	url, err := client.GenerateRunway(context.Background(), Request{ImageURL: "https://cdn.test/a.jpg", Prompt: "slow pan", APIKey: "rw"})
	if err != nil {
		t.Fatalf("GenerateRunway returned error: %v", err)
	}
	if url != "https://runway.test/v.mp4" {
		t.Fatalf("url = %q", url)
	}
	submit := transport.calls[0]
	if submit.header.Get("Authorization") != "Bearer rw" {
		t.Fatalf("Authorization = %q", submit.header.Get("Authorization"))
	}
	if submit.header.Get("X-Runway-Version") != runwayAPIVersion {
		t.Fatalf("X-Runway-Version = %q", submit.header.Get("X-Runway-Version"))
	}
	var body runwaySubmitRequest
	if err := json.Unmarshal(submit.body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.PromptImage != "https://cdn.test/a.jpg" || body.PromptText != "slow pan" {
		t.Fatalf("body = %+v", body)
	}
}

func TestRunwayMissingIDFailsImmediately(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://runway.test/v1/image_to_video", `{}`)
	client := newTestClient(t, transport)

	_, err := client.GenerateRunway(context.Background(), Request{ImageURL: "x", AnimationType: "zoom", APIKey: "rw"})
	if !errors.Is(err, ErrRunwayStart) {
		t.Fatalf("err = %v, want ErrRunwayStart", err)
	}
	if err.Error() != "Failed to start RunwayML generation" {
		t.Fatalf("message = %q", err.Error())
	}
	if len(transport.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(transport.calls))
	}
}

func TestRunwaySucceededWithoutOutputIsTimeout(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://runway.test/v1/image_to_video", `{"id":"task-2"}`)
	transport.on(http.MethodGet, "https://runway.test/v1/tasks/task-2", `{"id":"task-2","status":"SUCCEEDED","output":[]}`)
	client := newTestClient(t, transport)

	var last domain.JobState
	url, err := client.GenerateRunway(context.Background(), Request{ImageURL: "x", Prompt: "p", APIKey: "rw", Observer: func(u Update) { last = u.State }})
	if url != "" {
		t.Fatalf("url = %q, want empty", url)
	}
	if err == nil || err.Error() != "RunwayML video generation timed out" {
		t.Fatalf("err = %v, want timeout message", err)
	}
	if last != domain.JobStateTimedOut {
		t.Fatalf("last state = %q, want timed_out", last)
	}
}

func TestRunwayErrorField(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://runway.test/v1/image_to_video", `{"id":"task-3"}`)
	transport.on(http.MethodGet, "https://runway.test/v1/tasks/task-3", `{"id":"task-3","status":"FAILED","failure":"Invalid asset dimensions"}`)
	client := newTestClient(t, transport)

	_, err := client.GenerateRunway(context.Background(), Request{ImageURL: "x", Prompt: "p", APIKey: "rw"})
	if err == nil || err.Error() != "Invalid asset dimensions" {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateRejectsUnknownModel(t *testing.T) {
	client := newTestClient(t, newStubTransport())
	_, err := client.Generate(context.Background(), "dall-e", Request{})
	if !errors.Is(err, domain.ErrUnsupportedModel) {
		t.Fatalf("err = %v, want ErrUnsupportedModel", err)
	}
}
