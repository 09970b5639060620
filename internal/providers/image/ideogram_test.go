package image

import (
	"bytes"
	"context"
	"net/http"
	"testing"
)

func TestIdeogramAspectRatio(t *testing.T) {
	tests := map[string]string{
		"16:9":  "16x9",
		"9:16":  "9x16",
		" 4:3 ": "4x3",
		"7:5":   "1x1",
		"":      "1x1",
	}
	for in, want := range tests {
		if got := ideogramAspectRatio(in); got != want {
			t.Fatalf("ideogramAspectRatio(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIdeogramUsesAPIKeyHeaderAndSecondFetch(t *testing.T) {
	transport := newCaptureTransport()
	transport.onJSON(http.MethodPost, "https://ideogram.test/v1/ideogram-v3/generate", `{"data":[{"url":"https://ideogram.test/out/1.png","is_image_safe":true}]}`)
	want := []byte("ideogram-bytes")
	transport.onBytes("https://ideogram.test/out/1.png", "image/png", want)
	client := newTestClient(t, transport)

	got, err := client.ideogram(context.Background(), Request{Message: "poster", APIKey: "ideo-key", AspectRatio: "16:9", NegativePrompt: "blurry"})
	if err != nil {
		t.Fatalf("ideogram returned error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("bytes = %q", got)
	}
	if len(transport.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(transport.calls))
	}
	call := transport.calls[0]
	if call.header.Get("Api-Key") != "ideo-key" {
		t.Fatalf("Api-Key = %q", call.header.Get("Api-Key"))
	}
	if call.header.Get("Authorization") != "" {
		t.Fatalf("Authorization header should not be sent")
	}
	form := readForm(t, call)
	if got := form.Value["aspect_ratio"]; len(got) != 1 || got[0] != "16x9" {
		t.Fatalf("aspect_ratio = %v", got)
	}
	if got := form.Value["negative_prompt"]; len(got) != 1 || got[0] != "blurry" {
		t.Fatalf("negative_prompt = %v", got)
	}
}

func TestIdeogramRemixWithReferenceImage(t *testing.T) {
	transport := newCaptureTransport()
	transport.onJSON(http.MethodPost, "https://ideogram.test/v1/ideogram-v3/remix", `{"data":[{"url":"https://ideogram.test/out/2.png"}]}`)
	transport.onBytes("https://ideogram.test/out/2.png", "image/png", []byte("remixed"))
	client := newTestClient(t, transport)

	if _, err := client.ideogram(context.Background(), Request{Message: "poster", APIKey: "k", Image: []byte{0xFF, 0xD8, 0xFF, 0xDB}}); err != nil {
		t.Fatalf("ideogram returned error: %v", err)
	}
	form := readForm(t, transport.calls[0])
	if len(form.File["image"]) != 1 {
		t.Fatalf("image part missing")
	}
}
