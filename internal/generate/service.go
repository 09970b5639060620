// Package generate orchestrates image and video generation and prompt
// enhancement: it authenticates the caller, validates input, settles
// credentials and credits, dispatches to a provider and persists the result. Public methods return domain.Result and
// never a Go error.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genstudio/internal/domain"
	"genstudio/internal/infra"
	"genstudio/internal/models"
	"genstudio/internal/providers/image"
	"genstudio/internal/providers/prompt"
	"genstudio/internal/providers/video"
	"genstudio/internal/storage"
)

// Authenticator yields the calling user's id or an ErrUnauthorized error.
type Authenticator interface {
	UserID(ctx context.Context) (string, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context) (string, error)

func (f AuthenticatorFunc) UserID(ctx context.Context) (string, error) { return f(ctx) }

// CreditStore reads and spends platform credits.
type CreditStore interface {
	Balance(ctx context.Context, userID string) (int, error)
	Deduct(ctx context.Context, userID string, amount int) (int, error)
}

// HistoryStore records successful generations.
type HistoryStore interface {
	Save(ctx context.Context, g *domain.Generation) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Generation, error)
}

// RemotePersister copies a provider-hosted object into our storage.
type RemotePersister interface {
	PersistURL(ctx context.Context, key, sourceURL string) (storage.Object, error)
}

// JobTracker records the local view of a video job.
type JobTracker interface {
	Record(ctx context.Context, job domain.VideoJob) error
	Get(ctx context.Context, id string) (domain.VideoJob, error)
}

// ImageDispatcher resolves a model name to its image strategy.
type ImageDispatcher interface {
	GetStrategy(model string) (image.Strategy, bool)
}

// PromptEnhancer expands a short idea into a detailed prompt.
type PromptEnhancer interface {
	Enhance(ctx context.Context, req prompt.Request) (prompt.Response, error)
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	Auth      Authenticator
	Credits   CreditStore
	History   HistoryStore
	Blobs     storage.BlobStore
	Persister RemotePersister
	Jobs      JobTracker
	Images    ImageDispatcher
	Videos    video.Generator
	Prompts   PromptEnhancer
	Resolver  *models.Resolver
	Logger    *infra.Logger
	// MaxReferenceDimension bounds uploaded reference images; zero disables
	// resizing.
	MaxReferenceDimension int
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	auth      Authenticator
	credits   CreditStore
	history   HistoryStore
	blobs     storage.BlobStore
	persister RemotePersister
	jobs      JobTracker
	images    ImageDispatcher
	videos    video.Generator
	prompts   PromptEnhancer
	resolver  *models.Resolver
	logger    *infra.Logger
	maxRefDim uint
	now       func() time.Time
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	resolver := d.Resolver
	if resolver == nil {
		resolver = models.NewResolver(nil)
	}
	var maxDim uint
	if d.MaxReferenceDimension > 0 {
		maxDim = uint(d.MaxReferenceDimension)
	}
	return &Service{
		auth:      d.Auth,
		credits:   d.Credits,
		history:   d.History,
		blobs:     d.Blobs,
		persister: d.Persister,
		jobs:      d.Jobs,
		images:    d.Images,
		videos:    d.Videos,
		prompts:   d.Prompts,
		resolver:  resolver,
		logger:    logger,
		maxRefDim: maxDim,
		now:       time.Now,
	}
}

func (s *Service) userID(ctx context.Context) (string, error) {
	if s.auth == nil {
		return "", domain.ErrUnauthorized
	}
	uid, err := s.auth.UserID(ctx)
	if err != nil {
		return "", err
	}
	if uid == "" {
		return "", domain.ErrUnauthorized
	}
	return uid, nil
}

// chargeQuote checks the balance for credit-funded requests and returns the
// amount to deduct once the result is persisted.
func (s *Service) chargeQuote(ctx context.Context, uid, model string, useCredits bool) (int, error) {
	if !useCredits {
		return 0, nil
	}
	balance, err := s.credits.Balance(ctx, uid)
	if err != nil {
		return 0, internalErr(err)
	}
	if err := s.resolver.AssertSufficientCredits(true, balance, model); err != nil {
		return 0, err
	}
	return s.resolver.CreditCost(model)
}

// settle deducts cost and returns the remaining balance, or nil when
// nothing was charged.
func (s *Service) settle(ctx context.Context, uid string, cost int) (*int, error) {
	if cost <= 0 {
		return nil, nil
	}
	remaining, err := s.credits.Deduct(ctx, uid, cost)
	if err != nil {
		return nil, internalErr(err)
	}
	return &remaining, nil
}

// internalErr marks a failure of our own infrastructure (database, blob
// store, tracker). Errors that already carry a domain class pass through.
func internalErr(err error) error {
	if err == nil || errors.Is(err, domain.ErrProviderFailure) || domain.CodeFor(err) != domain.CodeGenerationFailed {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInternal, err)
}

// record writes a history document. The generation already succeeded and
// was paid for, so a failure here is logged rather than surfaced.
func (s *Service) record(ctx context.Context, g *domain.Generation) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(context.WithoutCancel(ctx), g); err != nil {
		s.logger.Error().Err(err).Str("user_id", g.UserID).Str("model", g.Model).Msg("generate: save history failed")
	}
}

// VideoJob returns the caller's tracked video job. Jobs owned by other
// users are reported as not found.
func (s *Service) VideoJob(ctx context.Context, jobID string) domain.Result[domain.VideoJob] {
	job, err := s.videoJob(ctx, jobID)
	if err != nil {
		return domain.Fail[domain.VideoJob](err)
	}
	return domain.OK(job)
}

func (s *Service) videoJob(ctx context.Context, jobID string) (domain.VideoJob, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return domain.VideoJob{}, err
	}
	if s.jobs == nil {
		return domain.VideoJob{}, domain.ErrNotFound
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.VideoJob{}, internalErr(err)
	}
	if job.UserID != uid {
		return domain.VideoJob{}, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	return job, nil
}

// History lists the caller's generations, newest first.
func (s *Service) History(ctx context.Context, limit, offset int) domain.Result[[]domain.Generation] {
	uid, err := s.userID(ctx)
	if err != nil {
		return domain.Fail[[]domain.Generation](err)
	}
	if s.history == nil {
		return domain.OK([]domain.Generation{})
	}
	items, err := s.history.ListByUser(ctx, uid, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("generate: list history failed")
		return domain.Fail[[]domain.Generation](internalErr(err))
	}
	if items == nil {
		items = []domain.Generation{}
	}
	return domain.OK(items)
}
