package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
)

type opKind int

const (
	opGet opKind = iota
	opList
	opComment
)

type request struct {
	kind opKind
	slug string
	id   string
}

func main() {
	ctx := context.Background()

	// DATABASE_URL 指向 PostgreSQL 时使用真实库，否则内存 SQLite
	var dialector gorm.Dialector
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(":memory:")
	}
	db := must(gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard}))
	sqlDB := must(db.DB())
	if os.Getenv("DATABASE_URL") == "" {
		sqlDB.SetMaxOpenConns(1)
	}

	mustDo(db.Exec("DROP TABLE IF EXISTS comments").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS post_tags").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS posts").Error)
	base := repository.NewGormPostRepository(db)
	mustDo(base.InitSchema())

	const (
		postCount    = 300
		commentsEach = 5
		requestCount = 6000
		ttl          = 10 * time.Minute
	)

	fmt.Println("Setting up test data...")
	posts := make([]*model.Post, 0, postCount)
	start := time.Now().UTC().Add(-postCount * time.Hour)
	for i := 0; i < postCount; i++ {
		title := fmt.Sprintf("Benchmark post number %d", i)
		content := strings.Repeat(fmt.Sprintf("word%d ", i%17), 200)
		p := &model.Post{
			ID:        uuid.NewString(),
			Slug:      service.Slugify(title),
			Title:     title,
			Content:   content,
			Excerpt:   service.Excerpt(content),
			ImageURL:  "https://placehold.co/1200x600.png",
			CreatedAt: start.Add(time.Duration(i) * time.Hour).Truncate(time.Microsecond),
			Tags:      []string{"bench", "tag" + strconv.Itoa(i%10)},
			Comments:  []model.Comment{},
		}
		for j := 0; j < commentsEach; j++ {
			p.Comments = append(p.Comments, model.Comment{
				ID:        uuid.NewString(),
				Author:    fmt.Sprintf("reader%d", j),
				Content:   "great read, thanks for sharing",
				CreatedAt: p.CreatedAt.Add(time.Duration(j+1) * time.Minute),
			})
		}
		mustDo(base.Create(ctx, p))
		posts = append(posts, p)
	}
	fmt.Printf("Test data ready: %d posts, %d comments each\n", postCount, commentsEach)

	// REDIS_ADDR 未设置时使用 miniredis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		redisAddr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	cached := repository.NewCachedPostRepository(base, client, ttl)
	reqs := makeRequests(requestCount, posts)

	noCache := runScenario(ctx, base, reqs, false, client, nil)
	withCache := runScenario(ctx, cached, reqs, true, client, cached)

	fmt.Printf("\nPost read latency (%d req, %d posts, %s + Redis)\n", requestCount, postCount, db.Dialector.Name())
	fmt.Printf("%-12s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d mem=%s\n",
		"No cache", avg(noCache.durations), pct(noCache.durations, 0.95), pct(noCache.durations, 0.99),
		noCache.counters.Hits, noCache.counters.Misses, noCache.cacheKeys, formatBytes(noCache.memoryBytes),
	)
	fmt.Printf("%-12s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d mem=%s\n",
		"Redis cache", avg(withCache.durations), pct(withCache.durations, 0.95), pct(withCache.durations, 0.99),
		withCache.counters.Hits, withCache.counters.Misses, withCache.cacheKeys, formatBytes(withCache.memoryBytes),
	)
}

type scenarioResult struct {
	durations   []time.Duration
	counters    repository.CacheCounters
	cacheKeys   int
	memoryBytes int64
}

func runScenario(ctx context.Context, repo repository.PostRepository, reqs []request, warm bool, client *redis.Client, cached *repository.CachedPostRepository) scenarioResult {
	client.FlushAll(ctx)
	if cached != nil {
		cached.ResetCounters()
	}

	call := func(r request, i int) error {
		switch r.kind {
		case opList:
			_, err := repo.List(ctx)
			return err
		case opComment:
			return repo.AppendComment(ctx, r.id, &model.Comment{
				ID:        uuid.NewString(),
				Author:    "bench",
				Content:   "comment #" + strconv.Itoa(i),
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			})
		default:
			_, err := repo.FindBySlug(ctx, r.slug)
			return err
		}
	}

	if warm {
		fmt.Print("  Warming cache...")
		for i, r := range reqs {
			if r.kind == opComment {
				continue
			}
			if err := call(r, i); err != nil {
				panic(err)
			}
		}
		fmt.Println(" done")
		if cached != nil {
			cached.ResetCounters()
		}
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for i, r := range reqs {
		begin := time.Now()
		if err := call(r, i); err != nil {
			panic(err)
		}
		if r.kind != opComment {
			out = append(out, time.Since(begin))
		}
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()
	var memBytes int64
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		memBytes = parseRedisMemory(info)
	}

	res := scenarioResult{durations: out, cacheKeys: len(keys), memoryBytes: memBytes}
	if cached != nil {
		res.counters = cached.Counters()
	}
	return res
}

// parseRedisMemory 从 INFO memory 中取 used_memory
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// makeRequests 读多写少：80% 详情（热点集中在最新文章），18% 列表，2% 评论
func makeRequests(n int, posts []*model.Post) []request {
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		idx := len(posts) - 1 - int(math.Abs(rnd.NormFloat64())*float64(len(posts))/6)%len(posts)
		p := posts[idx]
		switch x := rnd.Float64(); {
		case x < 0.02:
			out[i] = request{kind: opComment, id: p.ID}
		case x < 0.20:
			out[i] = request{kind: opList}
		default:
			out[i] = request{kind: opGet, slug: p.Slug}
		}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
