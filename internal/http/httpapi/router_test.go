package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"genstudio/internal/domain"
	"genstudio/internal/generate"
	"genstudio/internal/http/handlers"
	"genstudio/internal/middleware"
	"genstudio/internal/models"
)

type stubGenerator struct {
	jobID string
}

func (s *stubGenerator) GenerateImage(ctx context.Context, in generate.ImageInput) domain.Result[generate.ImageOutput] {
	return domain.OK(generate.ImageOutput{Model: in.Model})
}

func (s *stubGenerator) GenerateVideo(ctx context.Context, in generate.VideoInput) domain.Result[generate.VideoOutput] {
	return domain.OK(generate.VideoOutput{})
}

func (s *stubGenerator) VideoJob(ctx context.Context, jobID string) domain.Result[domain.VideoJob] {
	s.jobID = jobID
	return domain.Fail[domain.VideoJob](domain.ErrNotFound)
}

func (s *stubGenerator) History(ctx context.Context, limit, offset int) domain.Result[[]domain.Generation] {
	return domain.OK([]domain.Generation{})
}

func (s *stubGenerator) EnhancePrompt(ctx context.Context, in generate.EnhanceInput) domain.Result[generate.EnhanceOutput] {
	return domain.OK(generate.EnhanceOutput{Prompt: in.Prompt})
}

type noStrategies struct{}

func (noStrategies) HasStrategy(string) bool { return false }

func newTestRouter(gen *stubGenerator) http.Handler {
	app := handlers.NewApp(gen, noStrategies{}, models.NewResolver(func(string) (string, bool) { return "", false }), nil)
	return NewRouter(app, Config{JWTSecret: "secret", RateLimitPerMin: 100}, zerolog.Nop())
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubGenerator{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestModelsArePublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubGenerator{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGenerationRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(&stubGenerator{})
	for _, path := range []string{"/api/generate-image", "/api/generate-video"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestVideoStatusRoute(t *testing.T) {
	gen := &stubGenerator{}
	token, err := middleware.SignJWT("secret", middleware.TokenClaims{Sub: "u1"})
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/videos/job-42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newTestRouter(gen).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if gen.jobID != "job-42" {
		t.Fatalf("job id = %q, want job-42", gen.jobID)
	}
}
