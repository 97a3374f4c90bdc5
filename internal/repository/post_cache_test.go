package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestCachedPostRepository_HitsAfterFirstRead(t *testing.T) {
	repo, _ := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPost("p1", "p1", base)))

	for i := 0; i < 3; i++ {
		_, err := repo.FindBySlug(ctx, "p1")
		require.NoError(t, err)
		_, err = repo.List(ctx)
		require.NoError(t, err)
	}

	c := repo.Counters()
	assert.EqualValues(t, 2, c.Misses)
	assert.EqualValues(t, 4, c.Hits)

	repo.ResetCounters()
	assert.Zero(t, repo.Counters().Hits)
}

func TestCachedPostRepository_WritesInvalidate(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPost("p1", "p1", base)))

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	require.NoError(t, repo.Create(ctx, newPost("p2", "p2", base.Add(time.Minute))))
	posts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(posts))

	require.NoError(t, repo.AppendComment(ctx, "p1", &model.Comment{ID: "c1", Author: "ann", Content: "hi there", CreatedAt: base}))
	got, err := repo.FindBySlug(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)

	v, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestCachedPostRepository_NotFoundIsNotCached(t *testing.T) {
	repo, _ := setupCachedRepo(t)
	ctx := context.Background()

	_, err := repo.FindBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.FindBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.EqualValues(t, 2, repo.Counters().Misses)
}

func TestCachedPostRepository_RedisDownFallsBack(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPost("p1", "p1", base, "go")))
	mr.Close()

	got, err := repo.FindBySlug(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.NotZero(t, got.Seq)

	// 写入仍然成功，失效失败后读请求绕过缓存
	require.NoError(t, repo.Create(ctx, newPost("p2", "p2", base)))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestCachedPostRepository_FailedInvalidateBypassesCache(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPost("p1", "p1", base)))

	// 预热 list 与 slug 缓存
	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	_, err = repo.FindBySlug(ctx, "p1")
	require.NoError(t, err)

	mr.SetError("ERR injected failure")
	require.NoError(t, repo.Create(ctx, newPost("p2", "p2", base.Add(time.Minute))))
	require.NoError(t, repo.AppendComment(ctx, "p1", &model.Comment{ID: "c1", Author: "ann", Content: "hi there", CreatedAt: base}))

	posts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(posts))

	mr.SetError("")
	posts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(posts))

	got, err := repo.FindBySlug(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "c1", got.Comments[0].ID)

	v, err := mr.Get(cacheVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	// 恢复后重新走缓存
	repo.ResetCounters()
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.Counters().Hits)
}
