package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"genstudio/internal/domain"
)

// Resolver turns registry indirections (credit env keys, API key env keys)
// into concrete values.
type Resolver struct {
	lookupEnv func(string) (string, bool)
}

// NewResolver builds a Resolver over lookupEnv, or the process environment
// when nil.
func NewResolver(lookupEnv func(string) (string, bool)) *Resolver {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Resolver{lookupEnv: lookupEnv}
}

// CreditCost returns the number of credits one generation with model costs.
func (r *Resolver) CreditCost(model string) (int, error) {
	cfg, ok := Lookup(model)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, model)
	}
	if cfg.Credits.EnvKey != "" {
		if raw, ok := r.lookupEnv(cfg.Credits.EnvKey); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 {
				return n, nil
			}
		}
	}
	return cfg.Credits.Fallback, nil
}

// ResolveAPIKey picks the platform key when the user spends credits and
// their own key otherwise.
func (r *Resolver) ResolveAPIKey(model string, useCredits bool, userKey string) (string, error) {
	cfg, ok := Lookup(model)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, model)
	}
	if useCredits {
		key, _ := r.lookupEnv(cfg.APIKey.EnvKey)
		if key = strings.TrimSpace(key); key == "" {
			return "", fmt.Errorf("%w: platform key for %s is not configured", domain.ErrMissingAPIKey, cfg.Label)
		}
		return key, nil
	}
	if key := strings.TrimSpace(userKey); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: provide your %s API key or use credits", domain.ErrMissingAPIKey, cfg.Label)
}

// AssertSufficientCredits fails when a credit-funded request costs more than
// the available balance. Requests made with the user's own key always pass.
func (r *Resolver) AssertSufficientCredits(useCredits bool, credits int, model string) error {
	if !useCredits {
		return nil
	}
	cost, err := r.CreditCost(model)
	if err != nil {
		return err
	}
	if credits < cost {
		return fmt.Errorf("%w: %d required, %d available", domain.ErrInsufficientCredits, cost, credits)
	}
	return nil
}
