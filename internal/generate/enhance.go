package generate

import (
	"context"
	"fmt"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/models"
	"genstudio/internal/providers/prompt"
)

// EnhanceInput asks the chatgpt helper model to expand Prompt for Target.
type EnhanceInput struct {
	Prompt     string        `json:"prompt"`
	Target     prompt.Target `json:"target"`
	UseCredits bool          `json:"useCredits"`
	APIKey     string        `json:"apiKey"`
	Locale     string        `json:"-"`
}

type EnhanceOutput struct {
	Prompt           string   `json:"prompt"`
	Keywords         []string `json:"keywords"`
	Provider         string   `json:"provider"`
	FallbackReason   string   `json:"fallbackReason,omitempty"`
	CreditsUsed      int      `json:"creditsUsed"`
	CreditsRemaining *int     `json:"creditsRemaining,omitempty"`
}

// EnhancePrompt rewrites a prompt. Answers from the offline fallback are
// not charged.
func (s *Service) EnhancePrompt(ctx context.Context, in EnhanceInput) domain.Result[EnhanceOutput] {
	out, err := s.enhancePrompt(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("code", string(domain.CodeFor(err))).Msg("generate: enhance failed")
		return domain.Fail[EnhanceOutput](err)
	}
	return domain.OK(out)
}

func (s *Service) enhancePrompt(ctx context.Context, in EnhanceInput) (EnhanceOutput, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return EnhanceOutput{}, err
	}
	text := strings.TrimSpace(in.Prompt)
	if text == "" {
		return EnhanceOutput{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	target := in.Target
	switch target {
	case "":
		target = prompt.TargetImage
	case prompt.TargetImage, prompt.TargetVideo:
	default:
		return EnhanceOutput{}, fmt.Errorf("%w: target must be image or video", domain.ErrInvalidInput)
	}
	if s.prompts == nil {
		return EnhanceOutput{}, fmt.Errorf("%w: prompt enhancement is not configured", domain.ErrUnsupportedModel)
	}

	key, err := s.resolver.ResolveAPIKey(models.ModelChatGPT, in.UseCredits, in.APIKey)
	if err != nil {
		return EnhanceOutput{}, err
	}
	cost, err := s.chargeQuote(ctx, uid, models.ModelChatGPT, in.UseCredits)
	if err != nil {
		return EnhanceOutput{}, err
	}

	res, err := s.prompts.Enhance(ctx, prompt.Request{Prompt: text, Target: target, Locale: in.Locale, APIKey: key})
	if err != nil {
		return EnhanceOutput{}, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if res.Fallback() {
		cost = 0
	}
	remaining, err := s.settle(ctx, uid, cost)
	if err != nil {
		return EnhanceOutput{}, err
	}
	return EnhanceOutput{
		Prompt:           res.Prompt,
		Keywords:         res.Keywords,
		Provider:         res.Provider,
		FallbackReason:   res.FallbackReason,
		CreditsUsed:      cost,
		CreditsRemaining: remaining,
	}, nil
}
