package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

const cacheVersionKey = "posts:v"

var errStaleCache = errors.New("post cache is stale")

// CachedPostRepository 在任意 PostRepository 前加一层 redis cache-aside。
// 所有 key 带版本号，写操作 INCR 版本号使旧 key 整体失效，写后读不会读到旧数据。
// redis 不可用时直接回源；失效失败后缓存标记为 stale，直到下一次 INCR 成功前都不读缓存。
type CachedPostRepository struct {
	next  PostRepository
	cache *redis.Client
	ttl   time.Duration

	stale atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheCounters 缓存命中统计
type CacheCounters struct {
	Hits   int64
	Misses int64
}

func NewCachedPostRepository(next PostRepository, cache *redis.Client, ttl time.Duration) *CachedPostRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedPostRepository{next: next, cache: cache, ttl: ttl}
}

func (r *CachedPostRepository) version(ctx context.Context) (int64, error) {
	v, err := r.cache.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *CachedPostRepository) bump(ctx context.Context) {
	if err := r.cache.Incr(ctx, cacheVersionKey).Err(); err != nil {
		r.stale.Store(true)
		logger.Warn("post cache invalidate failed, bypassing cache", zap.Error(err))
	}
}

// clearStale 在 stale 状态下补做一次失效；成功返回 true
func (r *CachedPostRepository) clearStale(ctx context.Context) bool {
	if !r.stale.Load() {
		return true
	}
	if err := r.cache.Incr(ctx, cacheVersionKey).Err(); err != nil {
		return false
	}
	r.stale.Store(false)
	logger.Info("post cache invalidated after earlier failure")
	return true
}

// load 读缓存，未命中时回源并回填
func (r *CachedPostRepository) load(ctx context.Context, suffix string, dest any, fill func() (any, error)) error {
	var v int64
	err := errStaleCache
	if r.clearStale(ctx) {
		v, err = r.version(ctx)
	}
	if err != nil {
		if !errors.Is(err, errStaleCache) {
			logger.Warn("post cache unavailable", zap.Error(err))
		}
		val, ferr := fill()
		if ferr != nil {
			return ferr
		}
		return remarshal(val, dest)
	}
	key := fmt.Sprintf("posts:%d:%s", v, suffix)

	if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
		if uErr := json.Unmarshal(data, dest); uErr == nil {
			r.hits.Add(1)
			return nil
		}
	}
	r.misses.Add(1)

	val, err := fill()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		logger.Warn("post cache fill failed", zap.String("key", key), zap.Error(err))
	}
	return json.Unmarshal(payload, dest)
}

func (r *CachedPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.next.Create(ctx, post); err != nil {
		return err
	}
	r.bump(ctx)
	return nil
}

func (r *CachedPostRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var doc postDoc
	err := r.load(ctx, "slug:"+slug, &doc, func() (any, error) {
		p, err := r.next.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return newPostDoc(p), nil
	})
	if err != nil {
		return nil, err
	}
	return doc.toPost(), nil
}

func (r *CachedPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	var docs []postDoc
	err := r.load(ctx, "list", &docs, func() (any, error) {
		posts, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]postDoc, len(posts))
		for i, p := range posts {
			out[i] = newPostDoc(p)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	posts := make([]*model.Post, len(docs))
	for i, d := range docs {
		posts[i] = d.toPost()
	}
	return posts, nil
}

func (r *CachedPostRepository) AppendComment(ctx context.Context, postID string, comment *model.Comment) error {
	if err := r.next.AppendComment(ctx, postID, comment); err != nil {
		return err
	}
	r.bump(ctx)
	return nil
}

func (r *CachedPostRepository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}

// Close 只关闭底层仓储，redis 客户端由调用方管理
func (r *CachedPostRepository) Close() error { return r.next.Close() }

// Counters 返回命中/未命中次数
func (r *CachedPostRepository) Counters() CacheCounters {
	return CacheCounters{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

// ResetCounters 清零统计
func (r *CachedPostRepository) ResetCounters() {
	r.hits.Store(0)
	r.misses.Store(0)
}

func remarshal(val any, dest any) error {
	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}
