package image

import "genstudio/internal/models"

// Strategy returns the implementation behind key. Every key in
// models.StrategyKeys has a case here.
func (c *Client) Strategy(key models.StrategyKey) (Strategy, bool) {
	switch key {
	case models.StrategyDalle:
		return c.dalle, true
	case models.StrategyFireworksSDXL:
		return c.fireworks(fireworksSDXL), true
	case models.StrategyPlaygroundV2:
		return c.fireworks(playgroundV2), true
	case models.StrategyPlaygroundV25:
		return c.fireworks(playgroundV25), true
	case models.StrategyFireworksKontext:
		return c.kontext, true
	case models.StrategyStability:
		return c.stability, true
	case models.StrategyIdeogram:
		return c.ideogram, true
	case models.StrategyReplicate:
		return c.replicate, true
	case models.StrategyNone:
		return nil, false
	}
	return nil, false
}

// GetStrategy resolves a model name to its strategy. Unknown models and
// models without a strategy (video, utility) report false.
func (c *Client) GetStrategy(model string) (Strategy, bool) {
	cfg, ok := models.Lookup(model)
	if !ok || !cfg.Dispatchable() {
		return nil, false
	}
	return c.Strategy(cfg.StrategyKey)
}

// HasStrategy reports whether model is known and dispatchable.
func (c *Client) HasStrategy(model string) bool {
	_, ok := c.GetStrategy(model)
	return ok
}
