package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"genstudio/internal/domain"
	"genstudio/internal/imaging"
	"genstudio/internal/models"
	"genstudio/internal/providers/httpx"
	"genstudio/internal/providers/image"
	"genstudio/internal/storage"
)

// ImageInput is one image generation request.
type ImageInput struct {
	Model          string
	Prompt         string
	Image          []byte
	UseCredits     bool
	APIKey         string
	AspectRatio    string
	NegativePrompt string
	Locale         string
	Country        string
}

// ImageOutput describes a stored generated image.
type ImageOutput struct {
	ID               string `json:"id"`
	Model            string `json:"model"`
	URL              string `json:"url"`
	StorageKey       string `json:"storageKey"`
	ContentType      string `json:"contentType"`
	CreditsUsed      int    `json:"creditsUsed"`
	CreditsRemaining *int   `json:"creditsRemaining,omitempty"`
}

// GenerateImage runs the full image pipeline and reports the outcome as a
// Result.
func (s *Service) GenerateImage(ctx context.Context, in ImageInput) domain.Result[ImageOutput] {
	out, err := s.generateImage(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("model", in.Model).Str("code", string(domain.CodeFor(err))).Msg("generate: image failed")
		return domain.Fail[ImageOutput](err)
	}
	return domain.OK(out)
}

func (s *Service) generateImage(ctx context.Context, in ImageInput) (ImageOutput, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return ImageOutput{}, err
	}

	model := strings.TrimSpace(in.Model)
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return ImageOutput{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	strategy, ok := s.images.GetStrategy(model)
	if !ok {
		if models.IsVideo(model) {
			return ImageOutput{}, fmt.Errorf("%w: %q generates video, not images", domain.ErrUnsupportedModel, model)
		}
		return ImageOutput{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedModel, model)
	}

	apiKey, err := s.resolver.ResolveAPIKey(model, in.UseCredits, in.APIKey)
	if err != nil {
		return ImageOutput{}, err
	}
	cost, err := s.chargeQuote(ctx, uid, model, in.UseCredits)
	if err != nil {
		return ImageOutput{}, err
	}

	data, err := strategy(ctx, image.Request{
		Message:        prompt,
		Image:          s.prepareReference(in.Image),
		APIKey:         apiKey,
		UseCredits:     in.UseCredits,
		AspectRatio:    strings.TrimSpace(in.AspectRatio),
		NegativePrompt: strings.TrimSpace(in.NegativePrompt),
	})
	if err != nil {
		return ImageOutput{}, err
	}
	if len(data) == 0 {
		return ImageOutput{}, fmt.Errorf("%w: %s returned an empty image", domain.ErrProviderFailure, model)
	}

	contentType := http.DetectContentType(data)
	obj, err := s.blobs.Put(ctx, storage.NewKey("generated", uid, httpx.Extension(contentType)), data, contentType)
	if err != nil {
		return ImageOutput{}, fmt.Errorf("store image: %w", internalErr(err))
	}

	remaining, err := s.settle(ctx, uid, cost)
	if err != nil {
		return ImageOutput{}, err
	}

	gen := &domain.Generation{
		ID:          uuid.NewString(),
		UserID:      uid,
		Kind:        domain.GenerationKindImage,
		Model:       model,
		Prompt:      prompt,
		URL:         obj.URL,
		StorageKey:  obj.Key,
		ContentType: obj.ContentType,
		Credits:     cost,
		Locale:      in.Locale,
		Country:     in.Country,
		CreatedAt:   s.now().UTC(),
	}
	s.record(ctx, gen)

	s.logger.Info().Str("user_id", uid).Str("model", model).Str("key", obj.Key).Int("credits", cost).Msg("generate: image stored")
	return ImageOutput{
		ID:               gen.ID,
		Model:            model,
		URL:              obj.URL,
		StorageKey:       obj.Key,
		ContentType:      obj.ContentType,
		CreditsUsed:      cost,
		CreditsRemaining: remaining,
	}, nil
}

// prepareReference shrinks oversized uploads. Undecodable data is passed
// through untouched; the caller's slice is never modified.
func (s *Service) prepareReference(data []byte) []byte {
	if len(data) == 0 || s.maxRefDim == 0 {
		return data
	}
	fitted, _, err := imaging.Fit(data, s.maxRefDim)
	if err != nil {
		s.logger.Debug().Err(err).Msg("generate: reference image left as uploaded")
		return data
	}
	return fitted
}
