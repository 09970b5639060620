package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"genstudio/internal/domain"
	"genstudio/internal/generate"
	"genstudio/internal/infra"
	"genstudio/internal/models"
)

// Generator is the orchestration surface the handlers drive.
type Generator interface {
	GenerateImage(ctx context.Context, in generate.ImageInput) domain.Result[generate.ImageOutput]
	GenerateVideo(ctx context.Context, in generate.VideoInput) domain.Result[generate.VideoOutput]
	VideoJob(ctx context.Context, jobID string) domain.Result[domain.VideoJob]
	History(ctx context.Context, limit, offset int) domain.Result[[]domain.Generation]
	EnhancePrompt(ctx context.Context, in generate.EnhanceInput) domain.Result[generate.EnhanceOutput]
}

// StrategyChecker reports whether a model can be dispatched.
type StrategyChecker interface {
	HasStrategy(model string) bool
}

type App struct {
	Generator      Generator
	Strategies     StrategyChecker
	Credits        *models.Resolver
	Logger         *infra.Logger
	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 10 << 20

func NewApp(gen Generator, strategies StrategyChecker, credits *models.Resolver, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if credits == nil {
		credits = models.NewResolver(nil)
	}
	return &App{
		Generator:      gen,
		Strategies:     strategies,
		Credits:        credits,
		Logger:         logger,
		MaxUploadBytes: defaultMaxUploadBytes,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes a failed Result for errors detected in the transport layer.
func (a *App) fail(w http.ResponseWriter, err error) {
	writeResult(a, w, domain.Fail[struct{}](err))
}

func writeResult[T any](a *App, w http.ResponseWriter, res domain.Result[T]) {
	a.json(w, statusFor(res), res)
}

func statusFor[T any](res domain.Result[T]) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Code {
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeValidation, domain.CodeInvalidAPIKey:
		return http.StatusBadRequest
	case domain.CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
