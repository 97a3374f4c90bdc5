package model

import "time"

// Post 博客文章
// Seq 为存储层分配的插入序号，CreatedAt 相同时序号大的排在前面
type Post struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	Slug      string    `gorm:"type:varchar(255);index:idx_post_slug;not null" json:"slug"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Excerpt   string    `gorm:"type:text" json:"excerpt"`
	ImageURL  string    `gorm:"type:text" json:"imageUrl"`
	CreatedAt time.Time `gorm:"index:idx_post_created" json:"createdAt"`

	// Tags 对外暴露的有序标签；持久化走 TagRows
	Tags     []string  `gorm:"-" json:"tags"`
	TagRows  []Tag     `gorm:"foreignKey:PostID;references:ID" json:"-"`
	Comments []Comment `gorm:"foreignKey:PostID;references:ID" json:"comments"`
}

func (Post) TableName() string { return "posts" }

// Clone 深拷贝，避免调用方修改存储内的切片
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	cp.TagRows = nil
	cp.Comments = append([]Comment{}, p.Comments...)
	return &cp
}

// NewerThan 存储顺序：CreatedAt 降序，其次 Seq 降序
func (p *Post) NewerThan(o *Post) bool {
	if !p.CreatedAt.Equal(o.CreatedAt) {
		return p.CreatedAt.After(o.CreatedAt)
	}
	return p.Seq > o.Seq
}
