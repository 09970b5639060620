package image

import (
	"testing"

	"genstudio/internal/models"
)

func TestEveryStrategyKeyHasImplementation(t *testing.T) {
	client := NewClient(Options{})
	for _, key := range models.StrategyKeys() {
		if s, ok := client.Strategy(key); !ok || s == nil {
			t.Fatalf("strategy key %q has no implementation", key)
		}
	}
	if _, ok := client.Strategy(models.StrategyNone); ok {
		t.Fatalf("empty strategy key should not resolve")
	}
}

func TestRegistryEntriesWithStrategyAreDispatchable(t *testing.T) {
	client := NewClient(Options{})
	for _, cfg := range models.All() {
		_, ok := client.GetStrategy(cfg.Value)
		if cfg.Dispatchable() != ok {
			t.Fatalf("GetStrategy(%q) ok = %v, want %v", cfg.Value, ok, cfg.Dispatchable())
		}
		if client.HasStrategy(cfg.Value) != ok {
			t.Fatalf("HasStrategy(%q) disagrees with GetStrategy", cfg.Value)
		}
	}
}

func TestGetStrategyIsTotal(t *testing.T) {
	client := NewClient(Options{})
	inputs := []string{"", " ", "dall-e ", "DALL-E", "d-id", "runway-ml", "chatgpt", "../etc", "\x00", "unknown-model", "stable-diffusion-xl"}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("GetStrategy(%q) panicked: %v", in, r)
				}
			}()
			s, ok := client.GetStrategy(in)
			if ok != (s != nil) {
				t.Fatalf("GetStrategy(%q) returned ok=%v with strategy nil=%v", in, ok, s == nil)
			}
		}()
	}
	for _, model := range []string{"d-id", "runway-ml", "chatgpt", "nope"} {
		if client.HasStrategy(model) {
			t.Fatalf("HasStrategy(%q) = true, want false", model)
		}
	}
	if !client.HasStrategy("stable-diffusion-xl") {
		t.Fatalf("HasStrategy(stable-diffusion-xl) = false")
	}
}
