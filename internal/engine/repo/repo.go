// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

// Filter maps column names to the value they must equal. Callers only pass
// column names they control, never raw request keys.
type Filter map[string]any

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	cols := make([]string, 0, len(f))
	for col := range f {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		db = db.Where(clause.Eq{Column: clause.Column{Name: col}, Value: f[col]})
	}
	return db
}

// CrudRepo is the generic repository for tables without extra queries.
type CrudRepo[T any] struct {
	database.IDatabase
}

func NewCrudRepo[T any](db database.IDatabase) *CrudRepo[T] {
	return &CrudRepo[T]{IDatabase: db}
}

func (r *CrudRepo[T]) Create(ctx context.Context, v *T) error {
	return r.DB(ctx).Create(v).Error
}

func (r *CrudRepo[T]) Get(ctx context.Context, id uint64) (*T, error) {
	var v T
	if err := r.DB(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// GetForUpdate reads the row with a FOR UPDATE lock; it only locks inside a
// transaction.
func (r *CrudRepo[T]) GetForUpdate(ctx context.Context, id uint64) (*T, error) {
	var v T
	err := r.DB(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *CrudRepo[T]) List(ctx context.Context, filter Filter, page model.PageReq) ([]*T, int64, error) {
	return paginate[T](filter.apply(r.DB(ctx).Model(new(T))), page)
}

func (r *CrudRepo[T]) Update(ctx context.Context, id uint64, updates map[string]any) error {
	res := r.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CrudRepo[T]) Delete(ctx context.Context, id uint64) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func paginate[T any](db *gorm.DB, page model.PageReq) ([]*T, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page.Normalize()
	var list []*T
	err := db.Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&list).Error
	return list, total, err
}
