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

package service

import (
	"context"
	"strings"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
)

type FavoriteService struct {
	tx        Transactor
	favorites repo.IFavoriteRepository
}

func NewFavoriteService(tx Transactor, favorites repo.IFavoriteRepository) *FavoriteService {
	return &FavoriteService{tx: tx, favorites: favorites}
}

// Add pins a file of a project for the caller. Pinning the same file twice
// is a conflict.
func (s *FavoriteService) Add(ctx context.Context, p *Principal, req *model.AddFavoriteReq) (*model.FavoriteFile, error) {
	if req.ProjectId == 0 {
		return nil, errs.Validation("projectId is required")
	}
	name := strings.TrimSpace(req.Filename)
	if err := validateName("filename", name, 255); err != nil {
		return nil, err
	}
	f := &model.FavoriteFile{UserId: p.UserId, ProjectId: req.ProjectId, Filename: name}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.favorites.Create(ctx, f), "favorite file")
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FavoriteService) List(ctx context.Context, p *Principal, q *model.FavoriteQuery) (*model.ListResp[*model.FavoriteFile], error) {
	q.Normalize()
	list, total, err := s.favorites.List(ctx, p.UserId, q)
	if err != nil {
		return nil, errs.FromDB(err, "favorite file")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

func (s *FavoriteService) Remove(ctx context.Context, p *Principal, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.favorites.DeleteOwned(ctx, p.UserId, id), "favorite file")
	})
}
