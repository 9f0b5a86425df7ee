package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/repository"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// store is the selected conversation repository plus what it needs at shutdown
type store struct {
	repo    conversation.ConversationRepository
	janitor func(ctx context.Context)
	close   func()
}

func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	logger.Info("setting up conversation store", zap.String("driver", cfg.StoreCfg.Driver))

	switch cfg.StoreCfg.Driver {
	case config.StoreDriverPostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed successfully")

		repo := repository.NewConversationPostgresRepository(db, cfg.StoreCfg.TTL)
		return &store{
			repo:    repo,
			janitor: expiredJanitor(repo, cfg.StoreCfg.CleanupInterval, logger),
			close:   db.Close,
		}, nil

	case config.StoreDriverRedis:
		client, err := setupRedis(ctx, cfg.RedisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup redis: %w", err)
		}
		return &store{
			repo:  repository.NewConversationRedisRepository(client, cfg.RedisCfg.KeyPrefix, cfg.StoreCfg.TTL),
			close: client.Close,
		}, nil

	default:
		return &store{
			repo: repository.NewConversationMemoryRepository(cfg.StoreCfg.TTL, cfg.StoreCfg.CleanupInterval),
		}, nil
	}
}

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}

func setupRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", zap.Strings("addrs", cfg.Addrs), zap.Int("db", cfg.DB))
	return client, nil
}

// expiredJanitor periodically drops postgres rows idle past the store TTL
func expiredJanitor(repo *repository.ConversationPostgresRepository, interval time.Duration, logger *zap.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.DeleteExpired(ctx)
				if err != nil {
					logger.Warn("delete expired conversations", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("expired conversations removed", zap.Int64("count", n))
				}
			}
		}
	}
}
