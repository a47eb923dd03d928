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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/statemachine"
)

func newDocumentService(docs *MockDocumentRepo, tx Transactor) *DocumentService {
	return NewDocumentService(tx, docs, &repo.DocumentChildren{})
}

func TestDocumentService_CreateStartsSeries(t *testing.T) {
	docs := &MockDocumentRepo{}
	docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	d, err := newDocumentService(docs, &fakeTx{}).Create(context.Background(), principal, &model.CreateDocumentReq{Title: "NDA", Type: "contract"})
	require.NoError(t, err)
	assert.Len(t, d.SeriesId, 36)
	assert.Equal(t, 1, d.Version)
	assert.True(t, d.IsLatest)
	assert.Equal(t, statemachine.DocumentDraft, d.Status)
	assert.Equal(t, "normal", d.Priority)
	assert.Equal(t, "private", d.Visibility)
	assert.Equal(t, uint64(7), d.AuthorId)
	assert.Equal(t, uint64(7), d.OwnerId)
}

func TestDocumentService_CreateValidatesVocabulary(t *testing.T) {
	_, err := newDocumentService(&MockDocumentRepo{}, &fakeTx{}).Create(context.Background(), principal, &model.CreateDocumentReq{Title: "x", Type: "novel"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

// A new version flips the previous row and inserts version+1 in one
// transaction, leaving exactly one latest row.
func TestDocumentService_NewVersionSupersedes(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	frozenNow(t, at)

	v1 := &model.Document{
		BaseModel: model.BaseModel{ID: 10, UpdatedAt: at.Add(-time.Hour)},
		SeriesId:  "5f0c7c1e-1f7a-4c55-9a53-3d0c8d6a2e11",
		Title:     "NDA",
		Status:    statemachine.DocumentApproved,
		Version:   1,
		IsLatest:  true,
		AuthorId:  3,
		OwnerId:   3,
	}
	rows := map[uint64]*model.Document{10: v1}

	tx := &fakeTx{}
	docs := &MockDocumentRepo{}
	docs.On("GetForUpdate", mock.Anything, uint64(10)).Return(v1, nil)
	docs.On("Update", mock.MatchedBy(inTx), uint64(10), mock.Anything).
		Run(func(args mock.Arguments) {
			updates := args.Get(2).(map[string]any)
			rows[10].IsLatest = updates["is_latest"].(bool)
		}).
		Return(nil)
	docs.On("Create", mock.MatchedBy(inTx), mock.Anything).
		Run(func(args mock.Arguments) {
			d := args.Get(1).(*model.Document)
			d.ID = 11
			rows[11] = d
		}).
		Return(nil)

	content := "v2 body"
	v2, err := newDocumentService(docs, tx).NewVersion(context.Background(), principal, 10, &model.NewVersionReq{Content: &content})
	require.NoError(t, err)

	assert.Equal(t, 1, tx.calls)
	assert.False(t, rows[10].IsLatest)
	assert.True(t, v2.IsLatest)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, v1.SeriesId, v2.SeriesId)
	assert.Equal(t, statemachine.DocumentDraft, v2.Status)
	assert.Equal(t, "v2 body", *v2.Content)
	assert.Equal(t, uint64(3), v2.AuthorId)

	latest := 0
	for _, d := range rows {
		if d.SeriesId == v1.SeriesId && d.IsLatest {
			latest++
		}
	}
	assert.Equal(t, 1, latest)
}

func TestDocumentService_NewVersionOfSupersededRow(t *testing.T) {
	docs := &MockDocumentRepo{}
	docs.On("GetForUpdate", mock.Anything, uint64(10)).Return(&model.Document{BaseModel: model.BaseModel{ID: 10}, IsLatest: false}, nil)

	_, err := newDocumentService(docs, &fakeTx{}).NewVersion(context.Background(), principal, 10, &model.NewVersionReq{})
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_ChangeStatus(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	tests := []struct {
		from      statemachine.DocumentStatus
		to        string
		expiresAt *time.Time
		wantKind  errs.Kind
	}{
		{statemachine.DocumentDraft, "pending_review", nil, ""},
		{statemachine.DocumentInReview, "approved", nil, ""},
		{statemachine.DocumentRejected, "draft", nil, ""},
		{statemachine.DocumentSigned, "expired", nil, errs.KindConflict},
		{statemachine.DocumentSigned, "expired", &future, errs.KindConflict},
		{statemachine.DocumentSigned, "expired", &past, ""},
		{statemachine.DocumentDraft, "signed", nil, errs.KindConflict},
		{statemachine.DocumentArchived, "expired", &past, errs.KindConflict},
		{statemachine.DocumentDraft, "lost", nil, errs.KindValidation},
	}
	for _, tt := range tests {
		prev := &model.Document{BaseModel: model.BaseModel{ID: 1}, Status: tt.from, IsLatest: true, ExpiresAt: tt.expiresAt}
		docs := &MockDocumentRepo{}
		docs.On("GetForUpdate", mock.Anything, uint64(1)).Return(prev, nil).Maybe()
		docs.On("Get", mock.Anything, uint64(1)).Return(prev, nil).Maybe()
		docs.On("Update", mock.Anything, uint64(1), mock.Anything).Return(nil).Maybe()

		_, err := newDocumentService(docs, &fakeTx{}).ChangeStatus(context.Background(), principal, 1, tt.to)
		if tt.wantKind == "" {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
			continue
		}
		assert.Equal(t, tt.wantKind, errs.KindOf(err), "%s -> %s", tt.from, tt.to)
	}
}

func TestDocumentService_DeleteLatestPromotesPrevious(t *testing.T) {
	v2 := &model.Document{BaseModel: model.BaseModel{ID: 11}, SeriesId: "s", Version: 2, IsLatest: true}
	v1 := &model.Document{BaseModel: model.BaseModel{ID: 10}, SeriesId: "s", Version: 1}

	docs := &MockDocumentRepo{}
	docs.On("GetForUpdate", mock.Anything, uint64(11)).Return(v2, nil)
	docs.On("Delete", mock.Anything, uint64(11)).Return(nil)
	docs.On("ListVersions", mock.Anything, "s").Return([]*model.Document{v1}, nil)
	docs.On("Update", mock.Anything, uint64(10), mock.MatchedBy(func(u map[string]any) bool {
		return u["is_latest"] == true
	})).Return(nil)

	require.NoError(t, newDocumentService(docs, &fakeTx{}).Delete(context.Background(), 11))
	docs.AssertExpectations(t)
}

func TestDocumentService_ExpireDue(t *testing.T) {
	deadline := time.Now().Add(-time.Minute)
	due := []*model.Document{
		{BaseModel: model.BaseModel{ID: 1}, Status: statemachine.DocumentDraft, ExpiresAt: &deadline},
		{BaseModel: model.BaseModel{ID: 2}, Status: statemachine.DocumentSigned, ExpiresAt: &deadline},
	}
	docs := &MockDocumentRepo{}
	docs.On("DueForExpiry", mock.Anything, mock.Anything).Return(due, nil)
	for _, d := range due {
		docs.On("GetForUpdate", mock.Anything, d.ID).Return(d, nil)
		docs.On("Get", mock.Anything, d.ID).Return(d, nil)
		docs.On("Update", mock.Anything, d.ID, mock.MatchedBy(func(u map[string]any) bool {
			_, stamped := u["updated_by"]
			return u["status"] == "expired" && !stamped
		})).Return(nil)
	}

	n, err := newDocumentService(docs, &fakeTx{}).ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDocumentChildAccessors(t *testing.T) {
	comment := &model.DocumentComment{BaseModel: model.BaseModel{ID: 5}, DocumentId: 2}
	assert.Equal(t, uint64(2), comment.ParentId())
	comment.AttachTo(1)
	assert.Equal(t, uint64(1), comment.ParentId())
	comment.ResetIdentity()
	assert.Zero(t, comment.ID)
}
