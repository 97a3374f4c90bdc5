package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

var t0 = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

const twentyWords = "Go makes it simple to build reliable and efficient software with a small language, fast builds, and a strong standard library for everyone."

// stepClock 每次调用前进一分钟
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		now := cur
		cur = cur.Add(time.Minute)
		return now
	}
}

func newTestService(opts ...Option) (PostService, *repository.MemoryPostRepository) {
	repo := repository.NewMemoryPostRepository()
	opts = append([]Option{WithClock(stepClock(t0))}, opts...)
	return NewPostService(repo, opts...), repo
}

func postIDs(posts []*model.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestCreatePost_DerivesFields(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.CreatePost(context.Background(), CreatePostInput{
		Title:   "Hello, World!",
		Content: twentyWords,
		Tags:    "Go, react, REACT",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, []string{"go", "react"}, p.Tags)
	assert.Equal(t, Excerpt(twentyWords), p.Excerpt)
	assert.True(t, strings.HasSuffix(p.Excerpt, "..."))
	assert.Equal(t, "https://placehold.co/1200x600.png", p.ImageURL)
	assert.Equal(t, t0, p.CreatedAt)
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, p.Comments)
}

func TestCreatePost_RoundTripBySlug(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, CreatePostInput{Title: "Round Trip", Content: "some content here", Tags: "a,b", ImageURL: "https://example.com/x.png"})
	require.NoError(t, err)

	got, err := svc.GetPostBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreatePost_SlugFallback(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.CreatePost(ctx, CreatePostInput{Title: "!!!", Content: "punctuation only title"})
	require.NoError(t, err)
	b, err := svc.CreatePost(ctx, CreatePostInput{Title: "???", Content: "punctuation only title"})
	require.NoError(t, err)

	assert.Regexp(t, `^[a-z0-9]{12}$`, a.Slug)
	assert.NotEqual(t, a.Slug, b.Slug)
}

func TestCreatePost_Validation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		in     CreatePostInput
		fields []string
	}{
		{"missing title", CreatePostInput{Content: "body"}, []string{"title"}},
		{"missing content", CreatePostInput{Title: "title"}, []string{"content"}},
		{"both blank", CreatePostInput{Title: "   ", Content: "\n\t"}, []string{"title", "content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			for _, f := range tt.fields {
				assert.Contains(t, ve.Fields, f)
			}
			assert.Len(t, ve.Fields, len(tt.fields))
		})
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected posts must not be stored")
}

func TestListPosts_EmptyStore(t *testing.T) {
	svc, _ := newTestService()

	posts, err := svc.ListPosts(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	posts, err = svc.ListPosts(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListPosts_NewestFirst(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, CreatePostInput{Title: "First", Content: "one"})
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, CreatePostInput{Title: "Second", Content: "two"})
	require.NoError(t, err)

	// 插入一篇更早的文章，应排在最后
	backdated := &model.Post{ID: "old", Slug: "old", Title: "Old", Content: "zero", CreatedAt: t0.Add(-24 * time.Hour), Tags: []string{}, Comments: []model.Comment{}}
	require.NoError(t, repo.Create(ctx, backdated))

	posts, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID, "old"}, postIDs(posts))
}

func TestListPosts_SearchScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tagged, err := svc.CreatePost(ctx, CreatePostInput{Title: "Hooks intro", Content: "state and effects", Tags: "react"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, CreatePostInput{Title: "Templates", Content: "single file components", Tags: "vue"})
	require.NoError(t, err)
	mentioned, err := svc.CreatePost(ctx, CreatePostInput{Title: "Frameworks", Content: "Why the React framework won", Tags: "frontend"})
	require.NoError(t, err)

	posts, err := svc.ListPosts(ctx, "react")
	require.NoError(t, err)
	assert.Equal(t, []string{mentioned.ID, tagged.ID}, postIDs(posts))
}

func TestListPosts_PredicateIsExact(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inputs := []CreatePostInput{
		{Title: "Go Concurrency", Content: "channels", Tags: "golang"},
		{Title: "Rust", Content: "ownership and borrowing", Tags: "systems"},
		{Title: "Python", Content: "GOod for scripting", Tags: "scripting"},
		{Title: "Databases", Content: "indexes", Tags: "postgres,sql"},
		{Title: "Ergonomics", Content: "desks", Tags: "cargo-cult"},
	}
	for _, in := range inputs {
		_, err := svc.CreatePost(ctx, in)
		require.NoError(t, err)
	}
	all, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)

	for _, q := range []string{"go", "GO", "o", "sql", "xyz", "ing", " "} {
		got, err := svc.ListPosts(ctx, q)
		require.NoError(t, err)

		want := make([]string, 0)
		for _, p := range all {
			if matches(p, strings.ToLower(q)) {
				want = append(want, p.ID)
			}
		}
		assert.Equal(t, want, postIDs(got), "query %q", q)
		for _, p := range got {
			lq := strings.ToLower(q)
			hit := strings.Contains(strings.ToLower(p.Title), lq) || strings.Contains(strings.ToLower(p.Content), lq)
			for _, tag := range p.Tags {
				hit = hit || strings.Contains(tag, lq)
			}
			assert.True(t, hit, "query %q returned non-matching post %s", q, p.Title)
		}
	}

	got, err := svc.ListPosts(ctx, "go")
	require.NoError(t, err)
	// Go Concurrency(标题) / Python(正文 GOod) / Ergonomics(标签 cargo-cult)
	assert.Len(t, got, 3)
}

func TestAddComment_PrependsNewest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{Title: "Post", Content: "body"})
	require.NoError(t, err)

	c1, err := svc.AddComment(ctx, AddCommentInput{PostID: p.ID, Author: "ann", Content: "first comment"})
	require.NoError(t, err)
	c2, err := svc.AddComment(ctx, AddCommentInput{PostID: p.ID, Author: "bob", Content: "second comment"})
	require.NoError(t, err)

	got, err := svc.GetPostBySlug(ctx, p.Slug)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, c2.ID, got.Comments[0].ID)
	assert.Equal(t, c1.ID, got.Comments[1].ID)
	assert.True(t, got.Comments[0].CreatedAt.After(got.Comments[1].CreatedAt))
}

func TestAddComment_UnknownPostIsSilent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, CreatePostInput{Title: "Post", Content: "body"})
	require.NoError(t, err)
	before, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)

	c, err := svc.AddComment(ctx, AddCommentInput{PostID: "does-not-exist", Author: "ann", Content: "hello"})
	require.NoError(t, err)
	assert.Nil(t, c)

	after, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, after[0].Comments)
	assert.Equal(t, p.ID, after[0].ID)
}

func TestAddComment_StrictModeReportsNotFound(t *testing.T) {
	svc, _ := newTestService(WithStrictComments(true))

	_, err := svc.AddComment(context.Background(), AddCommentInput{PostID: "missing", Author: "ann", Content: "hello"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddComment_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, err := svc.CreatePost(ctx, CreatePostInput{Title: "Post", Content: "body"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: p.ID, Author: " ", Content: "hello"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "author is required")

	got, err := svc.GetPostBySlug(ctx, p.Slug)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestGetPostBySlug_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.GetPostBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestGetPostBySlug_DuplicateTitlesReturnNewest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{Title: "Same Title", Content: "v1"})
	require.NoError(t, err)
	newer, err := svc.CreatePost(ctx, CreatePostInput{Title: "Same Title", Content: "v2"})
	require.NoError(t, err)

	got, err := svc.GetPostBySlug(ctx, "same-title")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

type failingRepo struct{ repository.PostRepository }

func (failingRepo) List(context.Context) ([]*model.Post, error) { return nil, errors.New("boom") }
func (failingRepo) AppendComment(context.Context, string, *model.Comment) error {
	return errors.New("disk full")
}

func TestService_PropagatesStorageErrors(t *testing.T) {
	svc := NewPostService(failingRepo{})
	ctx := context.Background()

	_, err := svc.ListPosts(ctx, "")
	assert.ErrorContains(t, err, "boom")

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: "p", Author: "a", Content: "c"})
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, IsValidation(err))
}
