package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"genstudio/internal/domain"
	"genstudio/internal/models"
	"genstudio/internal/poll"
	"genstudio/internal/providers/video"
	"genstudio/internal/storage"
)

// VideoInput is one video generation request. A request needs an
// animation type, or both a script and a voice. JobID is optional; a client
// that supplies its own UUID can watch progress while the request runs.
type VideoInput struct {
	JobID         string `json:"jobId"`
	Model         string `json:"model"`
	ImageURL      string `json:"imageUrl"`
	Script        string `json:"script"`
	Voice         string `json:"voice"`
	AnimationType string `json:"animationType"`
	UseCredits    bool   `json:"useCredits"`
	APIKey        string `json:"apiKey"`
	Locale        string `json:"-"`
	Country       string `json:"-"`
}

// VideoOutput describes a persisted video.
type VideoOutput struct {
	JobID            string `json:"jobId"`
	Model            string `json:"model"`
	URL              string `json:"url"`
	StorageKey       string `json:"storageKey"`
	CreditsUsed      int    `json:"creditsUsed"`
	CreditsRemaining *int   `json:"creditsRemaining,omitempty"`
}

// GenerateVideo submits a video job, waits for it and persists the result.
func (s *Service) GenerateVideo(ctx context.Context, in VideoInput) domain.Result[VideoOutput] {
	out, err := s.generateVideo(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("model", in.Model).Str("code", string(domain.CodeFor(err))).Msg("generate: video failed")
		return domain.Fail[VideoOutput](err)
	}
	return domain.OK(out)
}

func validateVideo(in VideoInput) error {
	if !models.IsVideo(in.Model) {
		return fmt.Errorf("%w: %q is not a video model", domain.ErrUnsupportedModel, in.Model)
	}
	if in.ImageURL == "" {
		return fmt.Errorf("%w: an image is required", domain.ErrInvalidInput)
	}
	if in.AnimationType == "" && (in.Script == "" || in.Voice == "") {
		return fmt.Errorf("%w: provide an animation type, or both a script and a voice", domain.ErrInvalidInput)
	}
	if in.JobID != "" {
		if _, err := uuid.Parse(in.JobID); err != nil {
			return fmt.Errorf("%w: jobId must be a UUID", domain.ErrInvalidInput)
		}
	}
	return nil
}

func (s *Service) generateVideo(ctx context.Context, in VideoInput) (VideoOutput, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return VideoOutput{}, err
	}

	in.JobID = strings.TrimSpace(in.JobID)
	in.Model = strings.TrimSpace(in.Model)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Script = strings.TrimSpace(in.Script)
	in.Voice = strings.TrimSpace(in.Voice)
	in.AnimationType = strings.TrimSpace(in.AnimationType)
	if err := validateVideo(in); err != nil {
		return VideoOutput{}, err
	}
	if in.JobID != "" {
		if err := s.claimJobID(ctx, in.JobID); err != nil {
			return VideoOutput{}, err
		}
	}

	cost, err := s.chargeQuote(ctx, uid, in.Model, in.UseCredits)
	if err != nil {
		return VideoOutput{}, err
	}
	apiKey, err := s.resolver.ResolveAPIKey(in.Model, in.UseCredits, in.APIKey)
	if err != nil {
		return VideoOutput{}, err
	}

	if in.JobID == "" {
		in.JobID = uuid.NewString()
	}
	job := domain.VideoJob{ID: in.JobID, UserID: uid, Provider: in.Model, State: domain.JobStateSubmitted}
	s.track(ctx, job)

	remoteURL, err := s.videos.Generate(ctx, in.Model, video.Request{
		ImageURL:      in.ImageURL,
		Prompt:        in.Script,
		Voice:         in.Voice,
		AnimationType: in.AnimationType,
		APIKey:        apiKey,
		Observer: func(u video.Update) {
			job.State = u.State
			if u.RemoteID != "" {
				job.RemoteID = u.RemoteID
			}
			if u.Attempt > 0 {
				job.Attempts = u.Attempt
			}
			if u.State == domain.JobStateFailed {
				job.Error = u.Detail
			}
			s.track(ctx, job)
		},
	})
	if err != nil {
		if !job.State.Terminal() {
			job.State = domain.JobStateFailed
			if isTimeout(err) {
				job.State = domain.JobStateTimedOut
			}
			job.Error = err.Error()
			s.track(ctx, job)
		}
		return VideoOutput{}, err
	}

	obj, err := s.persister.PersistURL(ctx, storage.NewKey("videos", uid, ".mp4"), remoteURL)
	if err != nil {
		job.State = domain.JobStateFailed
		job.Error = err.Error()
		s.track(ctx, job)
		return VideoOutput{}, fmt.Errorf("store video: %w", err)
	}
	job.State = domain.JobStateSucceeded
	job.ResultURL = obj.URL
	s.track(ctx, job)

	remaining, err := s.settle(ctx, uid, cost)
	if err != nil {
		return VideoOutput{}, err
	}

	s.record(ctx, &domain.Generation{
		ID:          uuid.NewString(),
		UserID:      uid,
		Kind:        domain.GenerationKindVideo,
		Model:       in.Model,
		Prompt:      firstNonEmpty(in.Script, in.AnimationType),
		URL:         obj.URL,
		StorageKey:  obj.Key,
		ContentType: obj.ContentType,
		Credits:     cost,
		Locale:      in.Locale,
		Country:     in.Country,
		CreatedAt:   s.now().UTC(),
	})

	s.logger.Info().Str("user_id", uid).Str("model", in.Model).Str("job_id", job.ID).Str("remote_id", job.RemoteID).Msg("generate: video stored")
	return VideoOutput{
		JobID:            job.ID,
		Model:            in.Model,
		URL:              obj.URL,
		StorageKey:       obj.Key,
		CreditsUsed:      cost,
		CreditsRemaining: remaining,
	}, nil
}

// claimJobID rejects a client-supplied job id that is already tracked,
// whoever owns it.
func (s *Service) claimJobID(ctx context.Context, id string) error {
	if s.jobs == nil {
		return nil
	}
	_, err := s.jobs.Get(ctx, id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: jobId %s is already in use", domain.ErrInvalidInput, id)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return internalErr(fmt.Errorf("check job id: %w", err))
	}
}

// track records the job view; tracking never fails a generation.
func (s *Service) track(ctx context.Context, job domain.VideoJob) {
	if s.jobs == nil {
		return
	}
	job.UpdatedAt = s.now().UTC()
	if err := s.jobs.Record(context.WithoutCancel(ctx), job); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("generate: record job state failed")
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, video.ErrDIDTimeout) || errors.Is(err, video.ErrRunwayTimeout) || errors.Is(err, poll.ErrTimeout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
