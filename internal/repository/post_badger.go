package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/d60-Lab/gin-blog/internal/model"
)

const (
	badgerPostPrefix = "post:"
	badgerIDPrefix   = "idx:post:id:"
	badgerSeqKey     = "seq:post"
)

// BadgerPostRepository 基于 badger 的嵌入式文章仓储
type BadgerPostRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadgerPostRepository 打开目录；dir 为空时使用内存模式
func OpenBadgerPostRepository(dir string) (*BadgerPostRepository, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	seq, err := db.GetSequence([]byte(badgerSeqKey), 100)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to get sequence: %w", err)
	}
	return &BadgerPostRepository{db: db, seq: seq}, nil
}

func postKey(seq uint64) []byte { return []byte(fmt.Sprintf("%s%020d", badgerPostPrefix, seq)) }
func idKey(id string) []byte    { return []byte(badgerIDPrefix + id) }

func (r *BadgerPostRepository) next() (uint64, error) {
	n, err := r.seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequence 从 0 开始
	return n + 1, nil
}

func (r *BadgerPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seq, err := r.next()
	if err != nil {
		return err
	}
	stored := post.Clone()
	stored.Seq = seq
	for i := range stored.Comments {
		cs, err := r.next()
		if err != nil {
			return err
		}
		stored.Comments[i].Seq = cs
	}
	data, err := json.Marshal(newPostDoc(stored))
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(idKey(post.ID)); err == nil {
			return fmt.Errorf("post id %s already exists", post.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		key := postKey(seq)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idKey(post.ID), key)
	})
	if err != nil {
		return err
	}
	post.Seq = seq
	return nil
}

func (r *BadgerPostRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
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

func (r *BadgerPostRepository) List(ctx context.Context) ([]*model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var posts []*model.Post
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPostPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var doc postDoc
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			posts = append(posts, doc.toPost())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortStoreOrder(posts)
	return posts, nil
}

func (r *BadgerPostRepository) AppendComment(ctx context.Context, postID string, comment *model.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cs, err := r.next()
	if err != nil {
		return err
	}

	// 乐观事务冲突时重试
	for attempt := 0; attempt < 3; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			ref, err := txn.Get(idKey(postID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPostNotFound
			}
			if err != nil {
				return err
			}
			key, err := ref.ValueCopy(nil)
			if err != nil {
				return err
			}
			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			var doc postDoc
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &doc) }); err != nil {
				return err
			}

			p := doc.toPost()
			c := *comment
			c.Seq = cs
			c.PostID = postID
			p.Comments = append([]model.Comment{c}, p.Comments...)

			data, err := json.Marshal(newPostDoc(p))
			if err != nil {
				return err
			}
			return txn.Set(key, data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return err
	}
	comment.Seq = cs
	comment.PostID = postID
	return nil
}

func (r *BadgerPostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPostPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (r *BadgerPostRepository) Close() error {
	if err := r.seq.Release(); err != nil {
		return err
	}
	return r.db.Close()
}
