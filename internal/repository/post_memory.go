package repository

import (
	"context"
	"sync"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// MemoryPostRepository 进程内存储，新文章插在最前；读写锁保证并发安全
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []*model.Post
	seq   uint64
}

// NewMemoryPostRepository 创建内存仓储
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{}
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	post.Seq = r.seq
	stored := post.Clone()
	for i := range stored.Comments {
		r.seq++
		stored.Comments[i].Seq = r.seq
		stored.Comments[i].PostID = stored.ID
	}
	r.posts = append([]*model.Post{stored}, r.posts...)
	return nil
}

func (r *MemoryPostRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrPostNotFound
}

func (r *MemoryPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*model.Post, len(r.posts))
	for i, p := range r.posts {
		out[i] = p.Clone()
	}
	r.mu.RUnlock()

	sortStoreOrder(out)
	return out, nil
}

func (r *MemoryPostRepository) AppendComment(ctx context.Context, postID string, comment *model.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.ID != postID {
			continue
		}
		r.seq++
		comment.Seq = r.seq
		comment.PostID = postID
		p.Comments = append([]model.Comment{*comment}, p.Comments...)
		return nil
	}
	return ErrPostNotFound
}

func (r *MemoryPostRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

func (r *MemoryPostRepository) Close() error { return nil }
