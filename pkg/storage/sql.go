package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"gorm.io/gorm"
)

// Decoder rebuilds a value from its stored JSON form.
type Decoder func(data []byte) (any, error)

// DecodeJSON decodes stored values into T.
func DecodeJSON[T any]() Decoder {
	return func(data []byte) (any, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}

		return v, nil
	}
}

type entry struct {
	ID     uint   `gorm:"primaryKey"`
	Bucket string `gorm:"size:64;not null;uniqueIndex:idx_entries_bucket_name"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_entries_bucket_name"`
	Value  []byte
}

type sqlStorage struct {
	db     *gorm.DB
	bucket string
	decode Decoder
}

var _ Storage = (*sqlStorage)(nil)

func (s *sqlStorage) Create(ctx context.Context, key string, value any) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := s.scope(tx, key).Model(&entry{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return pkgerrors.ErrEntityExists
		}

		return tx.Create(&entry{Bucket: s.bucket, Name: key, Value: data}).Error
	})
}

func (s *sqlStorage) Get(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, pkgerrors.ErrEmptyKey
	}

	var e entry
	err := s.scope(s.db.WithContext(ctx), key).Take(&e).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.ErrNotFound
	case err != nil:
		return nil, err
	}

	return s.value(e)
}

func (s *sqlStorage) Update(ctx context.Context, key string, value any) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	res := s.scope(s.db.WithContext(ctx), key).Model(&entry{}).Update("value", data)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}

	return nil
}

// List pages through the bucket in insertion order.
func (s *sqlStorage) List(ctx context.Context, offset, limit uint64) ([]any, uint64, error) {
	db := s.db.WithContext(ctx).Where("bucket = ?", s.bucket)

	var n int64
	if err := db.Model(&entry{}).Count(&n).Error; err != nil {
		return nil, 0, err
	}
	total := uint64(n)
	if offset >= total {
		return nil, total, nil
	}
	if limit == 0 {
		return []any{}, total, nil
	}

	var es []entry
	if err := db.Order("id").Offset(int(offset)).Limit(int(limit)).Find(&es).Error; err != nil {
		return nil, 0, err
	}

	result := make([]any, 0, len(es))
	for _, e := range es {
		v, err := s.value(e)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, v)
	}

	return result, total, nil
}

func (s *sqlStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	return s.scope(s.db.WithContext(ctx), key).Delete(&entry{}).Error
}

func (s *sqlStorage) scope(db *gorm.DB, key string) *gorm.DB {
	return db.Where("bucket = ? AND name = ?", s.bucket, key)
}

func (s *sqlStorage) value(e entry) (any, error) {
	if s.decode == nil {
		var v any
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		return v, nil
	}
	v, err := s.decode(e.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return v, nil
}
