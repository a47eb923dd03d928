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
	"time"

	"gorm.io/gorm"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/statemachine"
)

var errNotFound = gorm.ErrRecordNotFound

type IDocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	Get(ctx context.Context, id uint64) (*model.Document, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Document, error)
	// GetLatest returns the is_latest row of a series
	GetLatest(ctx context.Context, seriesId string) (*model.Document, error)
	List(ctx context.Context, q *model.DocumentQuery) ([]*model.Document, int64, error)
	ListVersions(ctx context.Context, seriesId string) ([]*model.Document, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) error
	// DueForExpiry lists documents past expires_at that can still expire
	DueForExpiry(ctx context.Context, now time.Time) ([]*model.Document, error)
}

type DocumentRepo struct {
	*CrudRepo[model.Document]
}

func NewDocumentRepo(db database.IDatabase) IDocumentRepository {
	return &DocumentRepo{CrudRepo: NewCrudRepo[model.Document](db)}
}

func (r *DocumentRepo) GetLatest(ctx context.Context, seriesId string) (*model.Document, error) {
	var d model.Document
	err := r.DB(ctx).Where("series_id = ? AND is_latest", seriesId).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) List(ctx context.Context, q *model.DocumentQuery) ([]*model.Document, int64, error) {
	db := r.DB(ctx).Model(&model.Document{})
	if !q.AllVersions {
		db = db.Where("is_latest")
	}
	if q.SeriesId != "" {
		db = db.Where("series_id = ?", q.SeriesId)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.AuthorId != nil {
		db = db.Where("author_id = ?", *q.AuthorId)
	}
	if q.OwnerId != nil {
		db = db.Where("owner_id = ?", *q.OwnerId)
	}
	if q.OrganizationId != nil {
		db = db.Where("organization_id = ?", *q.OrganizationId)
	}
	return paginate[model.Document](db, q.PageReq)
}

func (r *DocumentRepo) ListVersions(ctx context.Context, seriesId string) ([]*model.Document, error) {
	var list []*model.Document
	err := r.DB(ctx).Where("series_id = ?", seriesId).Order("version").Find(&list).Error
	return list, err
}

func (r *DocumentRepo) DueForExpiry(ctx context.Context, now time.Time) ([]*model.Document, error) {
	var list []*model.Document
	err := r.DB(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("status NOT IN ?", []string{string(statemachine.DocumentArchived), string(statemachine.DocumentExpired)}).
		Order("id").
		Find(&list).Error
	return list, err
}

type IFavoriteRepository interface {
	Create(ctx context.Context, f *model.FavoriteFile) error
	List(ctx context.Context, userId uint64, q *model.FavoriteQuery) ([]*model.FavoriteFile, int64, error)
	DeleteOwned(ctx context.Context, userId, id uint64) error
}

type FavoriteRepo struct {
	*CrudRepo[model.FavoriteFile]
}

func NewFavoriteRepo(db database.IDatabase) IFavoriteRepository {
	return &FavoriteRepo{CrudRepo: NewCrudRepo[model.FavoriteFile](db)}
}

func (r *FavoriteRepo) List(ctx context.Context, userId uint64, q *model.FavoriteQuery) ([]*model.FavoriteFile, int64, error) {
	db := r.DB(ctx).Model(&model.FavoriteFile{}).Where("user_id = ?", userId)
	if q.ProjectId != nil {
		db = db.Where("project_id = ?", *q.ProjectId)
	}
	return paginate[model.FavoriteFile](db, q.PageReq)
}

func (r *FavoriteRepo) DeleteOwned(ctx context.Context, userId, id uint64) error {
	res := r.DB(ctx).Where("id = ? AND user_id = ?", id, userId).Delete(&model.FavoriteFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}
