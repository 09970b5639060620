package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"genstudio/internal/domain"
)

func TestDIDTalkSubmitsScriptAndPolls(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/talks", `{"id":"tlk_1","status":"created"}`)
	transport.on(http.MethodGet, "https://did.test/talks/tlk_1",
		`{"id":"tlk_1","status":"started"}`,
		`{"id":"tlk_1","status":"done","result_url":"https://did.test/out.mp4"}`)
	client := newTestClient(t, transport)

	var states []domain.JobState
	url, err := client.GenerateDID(context.Background(), Request{
		ImageURL: "https://cdn.test/face.jpg",
		Prompt:   "Hello there",
		Voice:    "en-US-GuyNeural",
		APIKey:   "dXNlcjpwYXNz",
		Observer: func(u Update) { states = append(states, u.State) },
	})
	if err != nil {
		t.Fatalf("GenerateDID returned error: %v", err)
	}
	if url != "https://did.test/out.mp4" {
		t.Fatalf("url = %q", url)
	}
	submit := transport.calls[0]
	if submit.header.Get("Authorization") != "Basic dXNlcjpwYXNz" {
		t.Fatalf("Authorization = %q", submit.header.Get("Authorization"))
	}
	var body didTalkRequest
	if err := json.Unmarshal(submit.body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Script.Input != "Hello there" || body.Script.Provider.VoiceID != "en-US-GuyNeural" {
		t.Fatalf("script = %+v", body.Script)
	}
	want := []domain.JobState{domain.JobStateSubmitted, domain.JobStatePolling, domain.JobStatePolling, domain.JobStateSucceeded}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestDIDAnimationWithoutScript(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/animations", `{"id":"anm_1"}`)
	transport.on(http.MethodGet, "https://did.test/animations/anm_1", `{"id":"anm_1","result_url":"https://did.test/anm.mp4"}`)
	client := newTestClient(t, transport)

	url, err := client.GenerateDID(context.Background(), Request{ImageURL: "https://cdn.test/face.jpg", AnimationType: "nostalgia", APIKey: "k"})
	if err != nil {
		t.Fatalf("GenerateDID returned error: %v", err)
	}
	if url != "https://did.test/anm.mp4" {
		t.Fatalf("url = %q", url)
	}
	var body didAnimationRequest
	if err := json.Unmarshal(transport.calls[0].body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.DriverURL != "bank://nostalgia" {
		t.Fatalf("driver_url = %q", body.DriverURL)
	}
}

func TestDIDMissingIDFailsBeforePolling(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/talks", `{"status":"created"}`)
	client := newTestClient(t, transport)

	var last domain.JobState
	_, err := client.GenerateDID(context.Background(), Request{
		ImageURL: "https://cdn.test/face.jpg",
		Prompt:   "hi",
		Voice:    "v",
		APIKey:   "k",
		Observer: func(u Update) { last = u.State },
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := transport.count(http.MethodGet, "https://did.test/"); n != 0 {
		t.Fatalf("poll calls = %d, want 0", n)
	}
	if last != domain.JobStateFailed {
		t.Fatalf("last state = %q, want failed", last)
	}
}

func TestDIDMissingIDUsesDescription(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/animations", `{"kind":"BadRequestError","description":"source_url is not a valid image"}`)
	client := newTestClient(t, transport)

	_, err := client.GenerateDID(context.Background(), Request{ImageURL: "x", AnimationType: "a", APIKey: "k"})
	if err == nil || err.Error() != "source_url is not a valid image" {
		t.Fatalf("err = %v, want provider description", err)
	}
}

func TestDIDErrorFieldIsTerminal(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/talks", `{"id":"tlk_2"}`)
	transport.on(http.MethodGet, "https://did.test/talks/tlk_2", `{"id":"tlk_2","status":"error","error":{"kind":"FaceError","description":"no face detected"}}`)
	client := newTestClient(t, transport)

	_, err := client.GenerateDID(context.Background(), Request{ImageURL: "x", Prompt: "hi", Voice: "v", APIKey: "k"})
	if err == nil || err.Error() != "no face detected" {
		t.Fatalf("err = %v, want provider description", err)
	}
	if errors.Is(err, ErrDIDTimeout) {
		t.Fatalf("rejection must not look like a timeout")
	}
	if n := transport.count(http.MethodGet, "https://did.test/talks/tlk_2"); n != 1 {
		t.Fatalf("poll calls = %d, want 1", n)
	}
}

func TestDIDStringErrorField(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/animations", `{"id":"anm_7"}`)
	transport.on(http.MethodGet, "https://did.test/animations/anm_7", `{"id":"anm_7","status":"error","error":"source image could not be downloaded"}`)
	client := newTestClient(t, transport)

	_, err := client.GenerateDID(context.Background(), Request{ImageURL: "x", AnimationType: "nostalgia", APIKey: "k"})
	if err == nil || err.Error() != "source image could not be downloaded" {
		t.Fatalf("err = %v, want provider message", err)
	}
	if n := transport.count(http.MethodGet, "https://did.test/animations/anm_7"); n != 1 {
		t.Fatalf("poll calls = %d, want 1", n)
	}
}

func TestDIDTimeout(t *testing.T) {
	transport := newStubTransport()
	transport.on(http.MethodPost, "https://did.test/talks", `{"id":"tlk_3"}`)
	transport.on(http.MethodGet, "https://did.test/talks/tlk_3", `{"id":"tlk_3","status":"started"}`)
	client := newTestClient(t, transport)

	var last domain.JobState
	_, err := client.GenerateDID(context.Background(), Request{ImageURL: "x", Prompt: "hi", Voice: "v", APIKey: "k", Observer: func(u Update) { last = u.State }})
	if !errors.Is(err, ErrDIDTimeout) {
		t.Fatalf("err = %v, want ErrDIDTimeout", err)
	}
	if err.Error() != "D-ID video generation timed out" {
		t.Fatalf("message = %q", err.Error())
	}
	if n := transport.count(http.MethodGet, "https://did.test/talks/tlk_3"); n != 3 {
		t.Fatalf("poll calls = %d, want 3", n)
	}
	if last != domain.JobStateTimedOut {
		t.Fatalf("last state = %q, want timed_out", last)
	}
}
