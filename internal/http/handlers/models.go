package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/models"
)

type modelView struct {
	models.Config
	CreditCost   int  `json:"creditCost"`
	Dispatchable bool `json:"dispatchable"`
}

// ListModels returns the registry ordered by id, optionally filtered by
// ?type=image|video|both|utility.
func (a *App) ListModels(w http.ResponseWriter, r *http.Request) {
	entries := models.All()
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		t := models.Type(strings.ToLower(raw))
		switch t {
		case models.TypeImage, models.TypeVideo, models.TypeBoth, models.TypeUtility:
			entries = models.ByType(t)
		default:
			a.fail(w, fmt.Errorf("%w: unknown model type %q", domain.ErrInvalidInput, raw))
			return
		}
	}

	out := make([]modelView, 0, len(entries))
	for _, cfg := range entries {
		cost, err := a.Credits.CreditCost(cfg.Value)
		if err != nil {
			cost = cfg.Credits.Fallback
		}
		dispatchable := a.Strategies != nil && a.Strategies.HasStrategy(cfg.Value)
		out = append(out, modelView{Config: cfg, CreditCost: cost, Dispatchable: dispatchable})
	}
	writeResult(a, w, domain.OK(out))
}
