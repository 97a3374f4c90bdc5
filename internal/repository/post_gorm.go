package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

const storeOrder = "created_at DESC, seq DESC"

// commentOrder 评论按插入顺序倒序，最新追加的在前
const commentOrder = "seq DESC"

// GormPostRepository 基于 gorm 的文章仓储（sqlite / postgres）
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository 创建 gorm 仓储
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// InitSchema 初始化表结构
func (r *GormPostRepository) InitSchema() error {
	if err := r.db.AutoMigrate(&model.Post{}, &model.Tag{}, &model.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate post tables: %w", err)
	}
	return nil
}

// Create 在一个事务内写入文章、标签与初始评论
func (r *GormPostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if len(post.Tags) > 0 {
			rows := make([]model.Tag, len(post.Tags))
			for i, v := range post.Tags {
				rows[i] = model.Tag{PostID: post.ID, Value: v, Position: i}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(post.Comments) > 0 {
			// 倒序插入，使 comments[0] 拿到最大的 seq
			comments := make([]model.Comment, len(post.Comments))
			for i, c := range post.Comments {
				c.PostID = post.ID
				comments[len(comments)-1-i] = c
			}
			if err := tx.Create(&comments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormPostRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("TagRows", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order(commentOrder) })
}

func (r *GormPostRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := r.withChildren(ctx).
		Where("slug = ?", slug).
		Order(storeOrder).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	hydrate(&post)
	return &post, nil
}

func (r *GormPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	if err := r.withChildren(ctx).Order(storeOrder).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		hydrate(p)
	}
	return posts, nil
}

func (r *GormPostRepository) AppendComment(ctx context.Context, postID string, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrPostNotFound
		}
		comment.PostID = postID
		return tx.Create(comment).Error
	})
}

func (r *GormPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}

func (r *GormPostRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// hydrate 把标签行还原为有序字符串切片
func hydrate(p *model.Post) {
	p.Tags = make([]string, len(p.TagRows))
	for i, t := range p.TagRows {
		p.Tags[i] = t.Value
	}
	p.TagRows = nil
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	for i := range p.Comments {
		p.Comments[i].CreatedAt = p.Comments[i].CreatedAt.UTC()
	}
	p.CreatedAt = p.CreatedAt.UTC()
}
