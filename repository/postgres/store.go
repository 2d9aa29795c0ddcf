// Package postgres 是 repository.Store 的 GORM + PostgreSQL 实现
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"threadsnet/model"
	"threadsnet/repository"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// Migrate 自动建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserRelationship{},
		&model.Friendship{},
		&model.Post{},
		&model.Reaction{},
		&model.Comment{},
		&model.Reply{},
		&model.Conversation{},
		&model.Message{},
		&model.SensitiveWord{},
		&model.SystemSettings{},
	)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate 把 GORM 错误映射为仓储层错误（需要 gorm.Config.TranslateError）
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}
