package model

import "time"

// Comment 文章评论，按时间倒序挂在 Post 上
type Comment struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	PostID    string    `gorm:"type:varchar(36);index:idx_comment_post;not null" json:"-"`
	Author    string    `gorm:"type:varchar(255);not null" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string { return "comments" }
