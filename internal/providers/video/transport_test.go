package video

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

// stubTransport answers "METHOD URL" keys with queued JSON bodies; the
// last body for a key repeats.
type stubTransport struct {
	mu     sync.Mutex
	bodies map[string][]string
	calls  []capturedCall
}

func newStubTransport() *stubTransport {
	return &stubTransport{bodies: map[string][]string{}}
}

func (s *stubTransport) on(method, url string, bodies ...string) {
	s.bodies[method+" "+url] = append(s.bodies[method+" "+url], bodies...)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, capturedCall{method: req.Method, url: req.URL.String(), header: req.Header.Clone(), body: body})
	key := req.Method + " " + req.URL.String()
	queue := s.bodies[key]
	if len(queue) == 0 {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: io.NopCloser(strings.NewReader("not found")), Request: req}, nil
	}
	out := queue[0]
	if len(queue) > 1 {
		s.bodies[key] = queue[1:]
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(out))),
		Request:    req,
	}, nil
}

func (s *stubTransport) count(method, prefix string) int {
	n := 0
	for _, c := range s.calls {
		if c.method == method && strings.HasPrefix(c.url, prefix) {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, transport *stubTransport) *Client {
	t.Helper()
	return NewClient(Options{
		HTTPClient:    &http.Client{Transport: transport},
		DIDBaseURL:    "https://did.test",
		RunwayBaseURL: "https://runway.test",
		Poll:          poll.Options{MaxAttempts: 3, Interval: time.Millisecond},
	})
}
