package model

// Tag 文章标签行，Position 保留输入顺序
type Tag struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	PostID   string `gorm:"type:varchar(36);not null;index:idx_tag_post;uniqueIndex:ux_tag_post_value"`
	Value    string `gorm:"type:varchar(255);not null;index:idx_tag_value;uniqueIndex:ux_tag_post_value"`
	Position int    `gorm:"not null"`
}

func (Tag) TableName() string { return "post_tags" }
