package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"genstudio/internal/domain"
	"genstudio/internal/generate"
	"genstudio/internal/middleware"
)

// GenerateVideo accepts a JSON generate.VideoInput and blocks until the
// provider finishes or the poll budget runs out.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var in generate.VideoInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&in); err != nil {
		a.fail(w, fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err))
		return
	}
	in.Locale = middleware.LocaleFromContext(r.Context())
	in.Country = middleware.CountryFromContext(r.Context())

	writeResult(a, w, a.Generator.GenerateVideo(r.Context(), in))
}

// VideoStatus reports the tracked state of a video job.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		a.fail(w, fmt.Errorf("%w: jobID required", domain.ErrInvalidInput))
		return
	}
	writeResult(a, w, a.Generator.VideoJob(r.Context(), jobID))
}
