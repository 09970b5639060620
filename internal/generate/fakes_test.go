package generate

import (
	"context"
	"sync"

	"genstudio/internal/domain"
	"genstudio/internal/models"
	"genstudio/internal/providers/image"
	"genstudio/internal/providers/prompt"
	"genstudio/internal/providers/video"
	"genstudio/internal/storage"
)

type fakeCredits struct {
	balance      int
	balanceCalls int
	balanceErr   error
	deducted     []int
	deductErr    error
}

func (f *fakeCredits) Balance(ctx context.Context, userID string) (int, error) {
	f.balanceCalls++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeCredits) Deduct(ctx context.Context, userID string, amount int) (int, error) {
	if f.deductErr != nil {
		return 0, f.deductErr
	}
	f.deducted = append(f.deducted, amount)
	f.balance -= amount
	return f.balance, nil
}

type fakeHistory struct {
	saved []domain.Generation
}

func (f *fakeHistory) Save(ctx context.Context, g *domain.Generation) error {
	f.saved = append(f.saved, *g)
	return nil
}

func (f *fakeHistory) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Generation, error) {
	var out []domain.Generation
	for _, g := range f.saved {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

type memBlobs struct {
	objects map[string][]byte
}

func (m *memBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (storage.Object, error) {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return storage.Object{Key: key, URL: "https://cdn.test/" + key, ContentType: contentType, Size: len(data)}, nil
}

type fakePersister struct {
	sources []string
	err     error
}

func (f *fakePersister) PersistURL(ctx context.Context, key, sourceURL string) (storage.Object, error) {
	if f.err != nil {
		return storage.Object{}, f.err
	}
	f.sources = append(f.sources, sourceURL)
	return storage.Object{Key: key, URL: "https://cdn.test/" + key, ContentType: "video/mp4"}, nil
}

type fakeJobs struct {
	mu      sync.Mutex
	history []domain.VideoJob
	latest  map[string]domain.VideoJob
}

func (f *fakeJobs) Record(ctx context.Context, job domain.VideoJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		f.latest = map[string]domain.VideoJob{}
	}
	f.history = append(f.history, job)
	f.latest[job.ID] = job
	return nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (domain.VideoJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.latest[id]
	if !ok {
		return domain.VideoJob{}, domain.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobs) states() []domain.JobState {
	var out []domain.JobState
	for _, j := range f.history {
		out = append(out, j.State)
	}
	return out
}

type fakeDispatcher struct {
	strategies map[string]image.Strategy
}

func (f fakeDispatcher) GetStrategy(model string) (image.Strategy, bool) {
	s, ok := f.strategies[model]
	return s, ok
}

type fakeVideos struct {
	calls int
	fn    func(ctx context.Context, model string, req video.Request) (string, error)
}

func (f *fakeVideos) Generate(ctx context.Context, model string, req video.Request) (string, error) {
	f.calls++
	return f.fn(ctx, model, req)
}

type fakePrompts struct {
	res  prompt.Response
	reqs []prompt.Request
}

func (f *fakePrompts) Enhance(ctx context.Context, req prompt.Request) (prompt.Response, error) {
	f.reqs = append(f.reqs, req)
	return f.res, nil
}

type harness struct {
	svc     *Service
	credits *fakeCredits
	history *fakeHistory
	blobs   *memBlobs
	persist *fakePersister
	jobs    *fakeJobs
	videos  *fakeVideos
	prompts *fakePrompts
}

func newHarness(uid string, strategies map[string]image.Strategy, env map[string]string) *harness {
	h := &harness{
		credits: &fakeCredits{},
		history: &fakeHistory{},
		blobs:   &memBlobs{},
		persist: &fakePersister{},
		jobs:    &fakeJobs{},
		prompts: &fakePrompts{res: prompt.Response{Prompt: "enhanced", Provider: "openai"}},
		videos: &fakeVideos{fn: func(ctx context.Context, model string, req video.Request) (string, error) {
			return "", nil
		}},
	}
	auth := AuthenticatorFunc(func(ctx context.Context) (string, error) {
		if uid == "" {
			return "", domain.ErrUnauthorized
		}
		return uid, nil
	})
	h.svc = NewService(Deps{
		Auth:      auth,
		Credits:   h.credits,
		History:   h.history,
		Blobs:     h.blobs,
		Persister: h.persist,
		Jobs:      h.jobs,
		Images:    fakeDispatcher{strategies: strategies},
		Videos:    h.videos,
		Prompts:   h.prompts,
		Resolver: models.NewResolver(func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}),
	})
	return h
}
