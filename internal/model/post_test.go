package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPost_NewerThan(t *testing.T) {
	base := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	older := &Post{Seq: 5, CreatedAt: base}
	newer := &Post{Seq: 1, CreatedAt: base.Add(time.Second)}
	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))

	// 时间相同按插入序号
	a := &Post{Seq: 2, CreatedAt: base}
	b := &Post{Seq: 3, CreatedAt: base}
	assert.True(t, b.NewerThan(a))
	assert.False(t, a.NewerThan(b))
}

func TestPost_Clone(t *testing.T) {
	p := &Post{ID: "p1", Tags: []string{"go"}, Comments: []Comment{{ID: "c1"}}}
	cp := p.Clone()
	cp.Tags[0] = "rust"
	cp.Comments[0].ID = "c2"

	assert.Equal(t, "go", p.Tags[0])
	assert.Equal(t, "c1", p.Comments[0].ID)

	var nilPost *Post
	assert.Nil(t, nilPost.Clone())
}
