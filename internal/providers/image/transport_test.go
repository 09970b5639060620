package image

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"genstudio/internal/poll"
)

type capturedCall struct {
	method string
	url    string
	header http.Header
	body   []byte
}

type responseStub struct {
	status int
	header http.Header
	body   []byte
}

// captureTransport replays canned responses keyed by "METHOD URL". A key
// with several stubs answers them in order and then repeats the last one.
type captureTransport struct {
	mu        sync.Mutex
	responses map[string][]responseStub
	calls     []capturedCall
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{responses: map[string][]responseStub{}}
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		body = b
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, capturedCall{method: req.Method, url: req.URL.String(), header: req.Header.Clone(), body: body})

	key := req.Method + " " + req.URL.String()
	stubs := c.responses[key]
	if len(stubs) == 0 {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("no stub for " + key)),
			Request:    req,
		}, nil
	}
	stub := stubs[0]
	if len(stubs) > 1 {
		c.responses[key] = stubs[1:]
	}
	header := stub.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: stub.status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(stub.body)),
		Request:    req,
	}, nil
}

func (c *captureTransport) on(method, url string, status int, contentType string, body string) {
	c.responses[method+" "+url] = append(c.responses[method+" "+url], responseStub{
		status: status,
		header: http.Header{"Content-Type": []string{contentType}},
		body:   []byte(body),
	})
}

func (c *captureTransport) onJSON(method, url, body string) {
	c.on(method, url, http.StatusOK, "application/json", body)
}

func (c *captureTransport) onBytes(url string, contentType string, body []byte) {
	c.responses["GET "+url] = append(c.responses["GET "+url], responseStub{
		status: http.StatusOK,
		header: http.Header{"Content-Type": []string{contentType}},
		body:   body,
	})
}

func newTestClient(t *testing.T, transport *captureTransport) *Client {
	t.Helper()
	return NewClient(Options{
		HTTPClient: &http.Client{Transport: transport},
		Endpoints: Endpoints{
			OpenAI:    "https://openai.test/v1",
			Fireworks: "https://fireworks.test/inference/v1",
			Stability: "https://stability.test",
			Ideogram:  "https://ideogram.test",
			Replicate: "https://replicate.test/v1",
		},
		Poll: poll.Options{MaxAttempts: 5, Interval: time.Millisecond},
	})
}
