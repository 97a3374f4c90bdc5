package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/cache"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// loadConfig 读取配置并初始化日志
func loadConfig(configDir string) (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// store 持有文章仓储及其附带的 redis 连接
type store struct {
	repo  repository.PostRepository
	redis *redis.Client
}

func (s *store) Close() error {
	err := s.repo.Close()
	if s.redis != nil {
		if cerr := s.redis.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// openStore 按 storage.driver 选择后端，redis.enabled 时外包一层缓存
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	var repo repository.PostRepository
	switch cfg.Storage.Driver {
	case "memory":
		repo = repository.NewMemoryPostRepository()
	case "gorm":
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		gormRepo := repository.NewGormPostRepository(db)
		if err := gormRepo.InitSchema(); err != nil {
			_ = gormRepo.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo = gormRepo
	case "badger":
		badgerRepo, err := repository.OpenBadgerPostRepository(cfg.Storage.BadgerDir)
		if err != nil {
			return nil, err
		}
		repo = badgerRepo
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	s := &store{repo: repo}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, serving without cache", zap.Error(err))
			return s, nil
		}
		s.redis = client
		s.repo = repository.NewCachedPostRepository(repo, client, cfg.Redis.TTL)
	}
	logger.Info("store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("cache", s.redis != nil),
	)
	return s, nil
}
