package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

func TestOpenStore_Drivers(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{"memory", config.Config{Storage: config.StorageConfig{Driver: "memory"}}, &repository.MemoryPostRepository{}},
		{"badger in-memory", config.Config{Storage: config.StorageConfig{Driver: "badger"}}, &repository.BadgerPostRepository{}},
		{"gorm sqlite", config.Config{
			Storage:  config.StorageConfig{Driver: "gorm"},
			Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		}, &repository.GormPostRepository{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := openStore(ctx, &tc.cfg)
			require.NoError(t, err)
			defer st.Close()
			assert.IsType(t, tc.want, st.repo)
			assert.Nil(t, st.redis)

			n, err := st.repo.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestOpenStore_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		Redis:   config.RedisConfig{Enabled: true, Addr: mr.Addr()},
	}
	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.IsType(t, &repository.CachedPostRepository{}, st.repo)
	assert.NotNil(t, st.redis)
}

func TestOpenStore_RedisDownServesWithoutCache(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		Redis:   config.RedisConfig{Enabled: true, Addr: addr},
	}
	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.IsType(t, &repository.MemoryPostRepository{}, st.repo)
}

func TestSeedCommand(t *testing.T) {
	t.Setenv("BLOG_STORAGE_DRIVER", "memory")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"seed", "--config", t.TempDir()})
	require.NoError(t, root.Execute())
	assert.Equal(t, "loaded 3 posts\n", out.String())
}
