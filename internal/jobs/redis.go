package jobs

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"genstudio/internal/domain"
)

const keyPrefix = "video-job:"

type redisCmdable interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisConfig describes the connection used by Connect.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	UseTLS   bool
}

// Connect dials Redis and verifies the connection with a PING.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		TLSConfig:    tlsConfig,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("jobs: ping redis: %w", err)
	}
	return rdb, nil
}

// RedisTracker stores VideoJob views as JSON strings with a TTL.
type RedisTracker struct {
	rdb redisCmdable
	ttl time.Duration
}

func NewRedisTracker(rdb redisCmdable, ttl time.Duration) *RedisTracker {
	return &RedisTracker{rdb: rdb, ttl: ttl}
}

func (r *RedisTracker) Record(ctx context.Context, job domain.VideoJob) error {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("jobs: encode job: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+job.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("jobs: record job: %w", err)
	}
	return nil
}

func (r *RedisTracker) Get(ctx context.Context, id string) (domain.VideoJob, error) {
	raw, err := r.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.VideoJob{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.VideoJob{}, fmt.Errorf("jobs: read job: %w", err)
	}
	var job domain.VideoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.VideoJob{}, fmt.Errorf("jobs: decode job: %w", err)
	}
	return job, nil
}

var _ Tracker = (*RedisTracker)(nil)
