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

	"github.com/google/uuid"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/statemachine"
)

type DocumentService struct {
	tx        Transactor
	docs      repo.IDocumentRepository
	templates *repo.CrudRepo[model.DocumentTemplate]
	machine   *statemachine.StateMachine[statemachine.DocumentStatus]
}

func NewDocumentService(tx Transactor, docs repo.IDocumentRepository, children *repo.DocumentChildren) *DocumentService {
	return &DocumentService{
		tx:        tx,
		docs:      docs,
		templates: children.Templates,
		machine:   statemachine.NewDocumentStateMachine(),
	}
}

// Create starts a new series at version 1.
func (s *DocumentService) Create(ctx context.Context, p *Principal, req *model.CreateDocumentReq) (*model.Document, error) {
	if err := validateName("title", req.Title, 255); err != nil {
		return nil, err
	}
	d := &model.Document{
		SeriesId:       uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Type:           orDefault(req.Type, "other"),
		Status:         statemachine.DocumentDraft,
		Priority:       orDefault(req.Priority, "normal"),
		Visibility:     orDefault(req.Visibility, "private"),
		Version:        1,
		IsLatest:       true,
		Content:        req.Content,
		FilePath:       req.FilePath,
		AuthorId:       p.UserId,
		OwnerId:        p.UserId,
		ReviewerId:     req.ReviewerId,
		OrganizationId: req.OrganizationId,
		DepartmentId:   req.DepartmentId,
		ExpiresAt:      req.ExpiresAt,
		Tags:           jsonSlice(req.Tags),
		CustomFields:   jsonMap(req.CustomFields),
		UpdatedBy:      &p.UserId,
	}
	if req.OwnerId != nil {
		d.OwnerId = *req.OwnerId
	}
	if err := validateDocument(d); err != nil {
		return nil, err
	}

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if req.TemplateId != nil {
			tpl, err := s.templates.Get(ctx, *req.TemplateId)
			if err != nil {
				return errs.FromDB(err, "document template")
			}
			if !tpl.IsActive {
				return errs.Conflict("document template %d is inactive", tpl.ID)
			}
			if d.Content == nil {
				d.Content = tpl.Content
			}
			if req.Type == "" {
				d.Type = tpl.Type
			}
		}
		return errs.FromDB(s.docs.Create(ctx, d), "document")
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("document created", "documentId", d.ID, "seriesId", d.SeriesId, "by", p.UserId)
	return d, nil
}

func validateDocument(d *model.Document) error {
	if err := oneOf("type", d.Type, model.DocumentTypes); err != nil {
		return err
	}
	if err := oneOf("priority", d.Priority, model.DocumentPriorities); err != nil {
		return err
	}
	return oneOf("visibility", d.Visibility, model.DocumentVisibilities)
}

func (s *DocumentService) Get(ctx context.Context, id uint64) (*model.Document, error) {
	d, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "document")
	}
	return d, nil
}

func (s *DocumentService) List(ctx context.Context, q *model.DocumentQuery) (*model.ListResp[*model.Document], error) {
	q.Normalize()
	list, total, err := s.docs.List(ctx, q)
	if err != nil {
		return nil, errs.FromDB(err, "document")
	}
	return model.NewListResp(list, total, q.PageReq), nil
}

// Versions lists every row of the series the document belongs to, oldest
// first.
func (s *DocumentService) Versions(ctx context.Context, id uint64) ([]*model.Document, error) {
	d, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, errs.FromDB(err, "document")
	}
	list, err := s.docs.ListVersions(ctx, d.SeriesId)
	if err != nil {
		return nil, errs.FromDB(err, "document")
	}
	return list, nil
}

// Update edits the latest version in place. Superseded versions are frozen.
func (s *DocumentService) Update(ctx context.Context, p *Principal, id uint64, req *model.UpdateDocumentReq) (*model.Document, error) {
	return s.mutate(ctx, p, id, func(prev *model.Document) (map[string]any, error) {
		if !prev.IsLatest {
			return nil, errs.Conflict("document %d is superseded by a newer version", id)
		}
		next := *prev
		updates := map[string]any{}
		if req.Title != nil {
			if err := validateName("title", *req.Title, 255); err != nil {
				return nil, err
			}
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Type != nil {
			next.Type, updates["type"] = *req.Type, *req.Type
		}
		if req.Priority != nil {
			next.Priority, updates["priority"] = *req.Priority, *req.Priority
		}
		if req.Visibility != nil {
			next.Visibility, updates["visibility"] = *req.Visibility, *req.Visibility
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.FilePath != nil {
			updates["file_path"] = *req.FilePath
		}
		if req.ReviewerId != nil {
			updates["reviewer_id"] = *req.ReviewerId
		}
		if req.ExpiresAt != nil {
			updates["expires_at"] = *req.ExpiresAt
		}
		if req.Tags != nil {
			updates["tags"] = jsonSlice(req.Tags)
		}
		if req.CustomFields != nil {
			updates["custom_fields"] = jsonMap(req.CustomFields)
		}
		return updates, validateDocument(&next)
	})
}

func (s *DocumentService) ChangeStatus(ctx context.Context, p *Principal, id uint64, status string) (*model.Document, error) {
	to := statemachine.DocumentStatus(status)
	if !to.Valid() {
		return nil, errs.Validation("unknown document status %q", status)
	}
	return s.mutate(ctx, p, id, func(prev *model.Document) (map[string]any, error) {
		if err := s.machine.Transition(prev.Status, to); err != nil {
			return nil, errs.Wrap(errs.KindConflict, err, "illegal document status transition")
		}
		if to == statemachine.DocumentExpired && (prev.ExpiresAt == nil || prev.ExpiresAt.After(now())) {
			return nil, errs.Conflict("document has not reached its expiry deadline")
		}
		return map[string]any{"status": string(to)}, nil
	})
}

func (s *DocumentService) mutate(ctx context.Context, p *Principal, id uint64, fn func(prev *model.Document) (map[string]any, error)) (*model.Document, error) {
	var d *model.Document
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		prev, err := s.docs.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "document")
		}
		updates, err := fn(prev)
		if err != nil {
			return err
		}
		updates["updated_at"] = NextUpdatedAt(prev.UpdatedAt)
		if p != nil {
			updates["updated_by"] = p.UserId
		}
		if err := s.docs.Update(ctx, id, updates); err != nil {
			return errs.FromDB(err, "document")
		}
		d, err = s.docs.Get(ctx, id)
		return errs.FromDB(err, "document")
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewVersion supersedes the latest row of a series. The flip of is_latest
// and the insert of version+1 commit together.
func (s *DocumentService) NewVersion(ctx context.Context, p *Principal, id uint64, req *model.NewVersionReq) (*model.Document, error) {
	var next *model.Document
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		cur, err := s.docs.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "document")
		}
		if !cur.IsLatest {
			return errs.Conflict("only the latest version of series %s can be versioned", cur.SeriesId)
		}

		at := NextUpdatedAt(cur.UpdatedAt)
		if err := s.docs.Update(ctx, cur.ID, map[string]any{"is_latest": false, "updated_at": at}); err != nil {
			return errs.FromDB(err, "document")
		}

		v := *cur
		v.ID, v.CreatedAt, v.UpdatedAt = 0, at, at
		v.Version = cur.Version + 1
		v.IsLatest = true
		v.Status = statemachine.DocumentDraft
		v.UpdatedBy = &p.UserId
		v.Tags = jsonSlice(cur.Tags)
		v.CustomFields = jsonMap(cur.CustomFields)
		if req.Title != nil {
			if err := validateName("title", *req.Title, 255); err != nil {
				return err
			}
			v.Title = *req.Title
		}
		if req.Content != nil {
			v.Content = req.Content
		}
		if req.FilePath != nil {
			v.FilePath = req.FilePath
		}
		if err := s.docs.Create(ctx, &v); err != nil {
			return errs.FromDB(err, "document")
		}
		next = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithContext(ctx).Infow("document versioned", "seriesId", next.SeriesId, "version", next.Version, "by", p.UserId)
	return next, nil
}

// Delete removes one version. Removing the latest promotes the newest
// remaining version so the series keeps exactly one latest row.
func (s *DocumentService) Delete(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		d, err := s.docs.GetForUpdate(ctx, id)
		if err != nil {
			return errs.FromDB(err, "document")
		}
		if err := s.docs.Delete(ctx, id); err != nil {
			return errs.FromDB(err, "document")
		}
		if !d.IsLatest {
			return nil
		}
		versions, err := s.docs.ListVersions(ctx, d.SeriesId)
		if err != nil {
			return errs.FromDB(err, "document")
		}
		if len(versions) == 0 {
			return nil
		}
		newest := versions[len(versions)-1]
		return errs.FromDB(s.docs.Update(ctx, newest.ID, map[string]any{
			"is_latest":  true,
			"updated_at": NextUpdatedAt(newest.UpdatedAt),
		}), "document")
	})
}

// ExpireDue moves every document past its expires_at into expired.
func (s *DocumentService) ExpireDue(ctx context.Context) (int, error) {
	due, err := s.docs.DueForExpiry(ctx, now())
	if err != nil {
		return 0, errs.FromDB(err, "document")
	}
	n := 0
	for _, d := range due {
		if _, err := s.ChangeStatus(ctx, nil, d.ID, string(statemachine.DocumentExpired)); err != nil {
			log.WithContext(ctx).Errorw("document expiry failed", "documentId", d.ID, "error", err)
			continue
		}
		n++
	}
	if n > 0 {
		log.WithContext(ctx).Infow("documents expired", "count", n)
	}
	return n, nil
}

func (s *DocumentService) CreateTemplate(ctx context.Context, p *Principal, tpl *model.DocumentTemplate) (*model.DocumentTemplate, error) {
	if err := validateName("name", tpl.Name, 255); err != nil {
		return nil, err
	}
	tpl.Type = orDefault(tpl.Type, "other")
	if err := oneOf("type", tpl.Type, model.DocumentTypes); err != nil {
		return nil, err
	}
	tpl.ID = 0
	tpl.CreatedBy = p.UserId
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.templates.Create(ctx, tpl), "document template")
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *DocumentService) ListTemplates(ctx context.Context, page model.PageReq) (*model.ListResp[*model.DocumentTemplate], error) {
	page.Normalize()
	list, total, err := s.templates.List(ctx, nil, page)
	if err != nil {
		return nil, errs.FromDB(err, "document template")
	}
	return model.NewListResp(list, total, page), nil
}

func (s *DocumentService) DeleteTemplate(ctx context.Context, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		return errs.FromDB(s.templates.Delete(ctx, id), "document template")
	})
}

// DocumentChild constrains the child row types that hang off a document.
type DocumentChild[T any] interface {
	*T
	AttachTo(documentId uint64)
	ParentId() uint64
	ResetIdentity()
}

// ChildService serves one document child table. prepare fills in fields the
// caller does not send, such as the acting user.
type ChildService[T any, PT DocumentChild[T]] struct {
	tx      Transactor
	docs    repo.IDocumentRepository
	rows    *repo.CrudRepo[T]
	name    string
	prepare func(p *Principal, v PT)
}

func NewChildService[T any, PT DocumentChild[T]](tx Transactor, docs repo.IDocumentRepository, rows *repo.CrudRepo[T], name string, prepare func(*Principal, PT)) *ChildService[T, PT] {
	return &ChildService[T, PT]{tx: tx, docs: docs, rows: rows, name: name, prepare: prepare}
}

func (s *ChildService[T, PT]) Name() string {
	return s.name
}

func (s *ChildService[T, PT]) Create(ctx context.Context, p *Principal, documentId uint64, v PT) (PT, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.docs.Get(ctx, documentId); err != nil {
			return errs.FromDB(err, "document")
		}
		v.ResetIdentity()
		v.AttachTo(documentId)
		if s.prepare != nil {
			s.prepare(p, v)
		}
		return errs.FromDB(s.rows.Create(ctx, (*T)(v)), s.name)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *ChildService[T, PT]) List(ctx context.Context, documentId uint64, page model.PageReq) (*model.ListResp[*T], error) {
	page.Normalize()
	if _, err := s.docs.Get(ctx, documentId); err != nil {
		return nil, errs.FromDB(err, "document")
	}
	list, total, err := s.rows.List(ctx, repo.Filter{"document_id": documentId}, page)
	if err != nil {
		return nil, errs.FromDB(err, s.name)
	}
	return model.NewListResp(list, total, page), nil
}

func (s *ChildService[T, PT]) Delete(ctx context.Context, documentId, id uint64) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		row, err := s.rows.Get(ctx, id)
		if err != nil {
			return errs.FromDB(err, s.name)
		}
		if PT(row).ParentId() != documentId {
			return errs.NotFound("%s not found", s.name)
		}
		return errs.FromDB(s.rows.Delete(ctx, id), s.name)
	})
}
