package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/generate"
	"genstudio/internal/middleware"
	"genstudio/internal/models"
)

// GenerateImage handles the multipart image form: model, prompt,
// useCredits, aspectRatio, negativePrompt, the model's API key field and an
// optional image file.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.fail(w, fmt.Errorf("%w: expected a multipart form: %v", domain.ErrInvalidInput, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	model := strings.TrimSpace(r.FormValue("model"))
	in := generate.ImageInput{
		Model:          model,
		Prompt:         r.FormValue("prompt"),
		UseCredits:     formBool(r.FormValue("useCredits")),
		APIKey:         userAPIKey(r, model),
		AspectRatio:    r.FormValue("aspectRatio"),
		NegativePrompt: r.FormValue("negativePrompt"),
		Locale:         middleware.LocaleFromContext(r.Context()),
		Country:        middleware.CountryFromContext(r.Context()),
	}

	img, err := readUpload(r, "image", a.MaxUploadBytes)
	if err != nil {
		a.fail(w, err)
		return
	}
	in.Image = img

	writeResult(a, w, a.Generator.GenerateImage(r.Context(), in))
}

// userAPIKey reads the key from the model's own form field, falling back
// to a generic apiKey field.
func userAPIKey(r *http.Request, model string) string {
	if cfg, ok := models.Lookup(model); ok && cfg.APIKey.FormDataKey != "" {
		if v := strings.TrimSpace(r.FormValue(cfg.APIKey.FormDataKey)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.FormValue("apiKey"))
}

func readUpload(r *http.Request, field string, limit int64) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, field, err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, field, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, field, limit)
	}
	return data, nil
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// ListGenerations returns the caller's history; ?limit and ?offset page it.
func (a *App) ListGenerations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	writeResult(a, w, a.Generator.History(r.Context(), limit, offset))
}
