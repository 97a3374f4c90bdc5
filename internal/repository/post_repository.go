package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// ErrPostNotFound 文章不存在
var ErrPostNotFound = errors.New("post not found")

// PostRepository 文章仓储接口
// 存储顺序统一为 created_at DESC, seq DESC；评论按最新在前返回
type PostRepository interface {
	// Create 写入文章，由实现分配 Seq
	Create(ctx context.Context, post *model.Post) error

	// FindBySlug 按存储顺序返回第一篇匹配的文章
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)

	// List 按存储顺序返回全部文章
	List(ctx context.Context) ([]*model.Post, error)

	// AppendComment 将评论插到文章评论列表最前；文章不存在返回 ErrPostNotFound
	AppendComment(ctx context.Context, postID string, comment *model.Comment) error

	// Count 统计文章数量
	Count(ctx context.Context) (int64, error)

	// Close 释放底层资源
	Close() error
}

// postDoc 序列化文档（badger 存储、redis 缓存共用）；Seq 不进入 model 的 JSON
type postDoc struct {
	Seq         uint64      `json:"seq"`
	Post        *model.Post `json:"post"`
	CommentSeqs []uint64    `json:"commentSeqs"`
}

func newPostDoc(p *model.Post) postDoc {
	doc := postDoc{Seq: p.Seq, Post: p, CommentSeqs: make([]uint64, len(p.Comments))}
	for i, c := range p.Comments {
		doc.CommentSeqs[i] = c.Seq
	}
	return doc
}

func (d postDoc) toPost() *model.Post {
	p := d.Post
	if p == nil {
		p = &model.Post{}
	}
	p.Seq = d.Seq
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	for i := range p.Comments {
		p.Comments[i].PostID = p.ID
		if i < len(d.CommentSeqs) {
			p.Comments[i].Seq = d.CommentSeqs[i]
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p
}

// sortStoreOrder 对文章按存储顺序排序
func sortStoreOrder(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].NewerThan(posts[j])
	})
}
