package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"genstudio/internal/domain"
	"genstudio/internal/generate"
	"genstudio/internal/middleware"
)

// EnhancePrompt accepts a JSON generate.EnhanceInput.
func (a *App) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var in generate.EnhanceInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
		a.fail(w, fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err))
		return
	}
	in.Locale = middleware.LocaleFromContext(r.Context())
	writeResult(a, w, a.Generator.EnhancePrompt(r.Context(), in))
}
