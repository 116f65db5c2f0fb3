package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/cuepoint/pkg/adapters/file"
	redisstore "github.com/aretw0/cuepoint/pkg/adapters/redis"
	"github.com/aretw0/cuepoint/pkg/persistence/middleware"
	"github.com/aretw0/cuepoint/pkg/ports"
	"github.com/aretw0/cuepoint/pkg/session"
	goredis "github.com/redis/go-redis/v9"
)

// PersistenceOptions selects where session progress is kept.
type PersistenceOptions struct {
	// Dir is the project directory; file sessions live in Dir/.cuepoint/sessions.
	Dir string
	// RedisURL switches to Redis storage with distributed locking.
	RedisURL string
	// TTL expires Redis sessions; zero keeps them.
	TTL time.Duration
	// EncryptionKey seals snapshots at rest (64 hex chars or base64).
	EncryptionKey string
	// FallbackKeys still decrypt snapshots sealed with retired keys.
	FallbackKeys []string
	// Redact masks variables whose names match these patterns before saving.
	Redact []string
}

// OpenSessions creates the session manager. The returned func releases
// the backend.
func OpenSessions(ctx context.Context, opts PersistenceOptions, logger *slog.Logger) (*session.Manager, func() error, error) {
	mws, err := storeMiddlewares(opts)
	if err != nil {
		return nil, nil, err
	}

	if opts.RedisURL == "" {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		store := middleware.Chain(file.NewStore(filepath.Join(dir, ".cuepoint", "sessions")), mws...)
		return session.NewManager(store, session.WithLogger(logger)), func() error { return nil }, nil
	}

	redisOpts, err := goredis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var storeOpts []redisstore.Option
	if opts.TTL > 0 {
		storeOpts = append(storeOpts, redisstore.WithTTL(opts.TTL))
	}
	store := redisstore.NewFromClient(client, storeOpts...)
	var locker ports.DistributedLocker = redisstore.NewLocker(client, redisstore.DefaultPrefix)

	logger.Info("using redis session store", "addr", redisOpts.Addr, "db", redisOpts.DB)
	manager := session.NewManager(middleware.Chain(store, mws...),
		session.WithLocker(locker),
		session.WithLogger(logger),
	)
	return manager, store.Close, nil
}

// storeMiddlewares masks before it encrypts.
func storeMiddlewares(opts PersistenceOptions) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if opts.EncryptionKey == "" {
		return mws, nil
	}

	active, err := middleware.ParseKey(opts.EncryptionKey)
	if err != nil {
		return nil, err
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range opts.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key: %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	enc, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	return append(mws, enc), nil
}
