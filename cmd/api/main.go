package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"genstudio/internal/adapter/repo"
	"genstudio/internal/generate"
	"genstudio/internal/http/handlers"
	httpapi "genstudio/internal/http/httpapi"
	"genstudio/internal/infra"
	"genstudio/internal/infra/geoip"
	"genstudio/internal/jobs"
	"genstudio/internal/middleware"
	"genstudio/internal/models"
	"genstudio/internal/poll"
	"genstudio/internal/providers/httpx"
	"genstudio/internal/providers/image"
	"genstudio/internal/providers/prompt"
	"genstudio/internal/providers/video"
	"genstudio/internal/sqlinline"
	"genstudio/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sql := infra.NewSQLRunner(dbpool, logger)
	if _, err := sql.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	blobs, staticDir, err := openBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open blob store")
	}

	var tracker generate.JobTracker = jobs.NewMemoryTracker(cfg.JobTTL)
	if cfg.RedisAddr != "" {
		rdb, err := jobs.Connect(ctx, jobs.RedisConfig{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			UseTLS:   cfg.RedisTLS,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		tracker = jobs.NewRedisTracker(rdb, cfg.JobTTL)
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	pollOpts := poll.Options{MaxAttempts: cfg.PollMaxAttempts, Interval: cfg.PollInterval}
	images := image.NewClient(image.Options{
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
		Endpoints: image.Endpoints{
			OpenAI:    cfg.OpenAIBaseURL,
			Fireworks: cfg.FireworksBaseURL,
			Stability: cfg.StabilityBaseURL,
			Ideogram:  cfg.IdeogramBaseURL,
			Replicate: cfg.ReplicateBaseURL,
		},
		Poll: pollOpts,
	})
	videos := video.NewClient(video.Options{
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
		DIDBaseURL:     cfg.DIDBaseURL,
		RunwayBaseURL:  cfg.RunwayBaseURL,
		Poll:           pollOpts,
	})

	enhancer := prompt.NewOpenAI(prompt.OpenAIOptions{
		Model:          cfg.PromptModel,
		BaseURL:        cfg.OpenAIBaseURL,
		Organization:   cfg.OpenAIOrg,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("reason", reason).Str("detail", detail).Msg("prompt model adjusted")
		},
	})

	resolver := models.NewResolver(nil)
	svc := generate.NewService(generate.Deps{
		Auth:                  generate.AuthenticatorFunc(middleware.CurrentUser),
		Credits:               repo.NewCreditRepository(sql),
		History:               repo.NewGenerationRepository(sql),
		Blobs:                 blobs,
		Persister:             storage.NewRemotePersister(blobs, httpx.NewCaller(nil, &logger, cfg.ProviderTimeout)),
		Jobs:                  tracker,
		Images:                images,
		Videos:                videos,
		Prompts:               enhancer,
		Resolver:              resolver,
		Logger:                &logger,
		MaxReferenceDimension: cfg.MaxReferenceDimension,
	})

	app := handlers.NewApp(svc, images, resolver, &logger)
	router := httpapi.NewRouter(app, httpapi.Config{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Locales:         middleware.NewLocales(cfg.DefaultLocale, "en", "id", "es", "fr", "de", "pt", "ja"),
		CountryLookup:   geo.Lookup(),
		StaticDir:       staticDir,
	}, logger)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// openBlobStore returns the configured store and, for the filesystem
// driver, the directory to serve under /static.
func openBlobStore(ctx context.Context, cfg *infra.Config) (storage.BlobStore, string, error) {
	if cfg.StorageDriver == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		return store, "", err
	}
	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		return nil, "", err
	}
	return store, store.BasePath(), nil
}
