package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

const (
	defaultImageURL = "https://placehold.co/1200x600.png"
	slugAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugFallbackLen = 12
)

// CreatePostInput 创建文章参数；Tags 为逗号分隔字符串
type CreatePostInput struct {
	Title    string `json:"title" validate:"notblank"`
	Content  string `json:"content" validate:"notblank"`
	Tags     string `json:"tags"`
	ImageURL string `json:"imageUrl"`
}

// AddCommentInput 评论参数
type AddCommentInput struct {
	PostID  string `json:"postId"`
	Author  string `json:"author" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

// PostService 文章服务：派生 slug/摘要/标签、校验、检索与排序，存储交给 PostRepository
type PostService interface {
	ListPosts(ctx context.Context, query string) ([]*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error)
	// AddComment 返回新评论；宽松模式下文章不存在时返回 (nil, nil)
	AddComment(ctx context.Context, in AddCommentInput) (*model.Comment, error)
	CountPosts(ctx context.Context) (int64, error)
}

// Option 服务选项
type Option func(*postService)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *postService) { s.now = now }
}

// WithStrictComments 评论不存在的文章时返回 ErrPostNotFound
func WithStrictComments(strict bool) Option {
	return func(s *postService) { s.strictComments = strict }
}

// WithDefaultImageURL 未指定配图时使用的地址
func WithDefaultImageURL(url string) Option {
	return func(s *postService) {
		if url != "" {
			s.defaultImageURL = url
		}
	}
}

type postService struct {
	repo            repository.PostRepository
	validate        *validator.Validate
	now             func() time.Time
	strictComments  bool
	defaultImageURL string
}

func NewPostService(repo repository.PostRepository, opts ...Option) PostService {
	s := &postService{
		repo:            repo,
		validate:        newValidator(),
		now:             time.Now,
		defaultImageURL: defaultImageURL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// timestamp UTC 且截断到微秒，保证各存储后端读回后完全一致
func (s *postService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *postService) ListPosts(ctx context.Context, query string) ([]*model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	res := make([]*model.Post, 0, len(posts))
	if query == "" {
		res = append(res, posts...)
	} else {
		q := strings.ToLower(query)
		for _, p := range posts {
			if matches(p, q) {
				res = append(res, p)
			}
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// matches 标题、正文、任一标签包含 q（q 已转小写）
func matches(p *model.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (s *postService) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	slug := Slugify(in.Title)
	if slug == "" {
		fallback, err := gonanoid.Generate(slugAlphabet, slugFallbackLen)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		slug = fallback
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = s.defaultImageURL
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		Slug:      slug,
		Title:     in.Title,
		Content:   in.Content,
		Excerpt:   Excerpt(in.Content),
		ImageURL:  imageURL,
		CreatedAt: s.timestamp(),
		Tags:      NormalizeTags(in.Tags),
		Comments:  []model.Comment{},
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	logger.Info("post created", zap.String("id", post.ID), zap.String("slug", post.Slug), zap.Strings("tags", post.Tags))
	return post, nil
}

func (s *postService) AddComment(ctx context.Context, in AddCommentInput) (*model.Comment, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: s.timestamp(),
	}
	err := s.repo.AppendComment(ctx, in.PostID, comment)
	if errors.Is(err, repository.ErrPostNotFound) {
		if s.strictComments {
			return nil, err
		}
		// 宽松模式：静默忽略
		logger.Debug("comment on unknown post ignored", zap.String("post_id", in.PostID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

func (s *postService) CountPosts(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
