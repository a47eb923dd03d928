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
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
)

// DocumentChildServices serves the tables that hang off a document.
type DocumentChildServices struct {
	WorkflowSteps *ChildService[model.DocumentWorkflowStep, *model.DocumentWorkflowStep]
	Signatures    *ChildService[model.DocumentSignature, *model.DocumentSignature]
	Comments      *ChildService[model.DocumentComment, *model.DocumentComment]
	Attachments   *ChildService[model.DocumentAttachment, *model.DocumentAttachment]
	Watchers      *ChildService[model.DocumentWatcher, *model.DocumentWatcher]
}

func NewDocumentChildServices(tx Transactor, docs repo.IDocumentRepository, c *repo.DocumentChildren) *DocumentChildServices {
	return &DocumentChildServices{
		WorkflowSteps: NewChildService(tx, docs, c.WorkflowSteps, "workflow step",
			func(_ *Principal, s *model.DocumentWorkflowStep) { s.Status = orDefault(s.Status, "pending") }),
		Signatures: NewChildService(tx, docs, c.Signatures, "signature",
			func(p *Principal, s *model.DocumentSignature) {
				s.SignerId = p.UserId
				s.SignedAt = now()
			}),
		Comments: NewChildService(tx, docs, c.Comments, "comment",
			func(p *Principal, cm *model.DocumentComment) { cm.AuthorId = p.UserId }),
		Attachments: NewChildService(tx, docs, c.Attachments, "attachment",
			func(p *Principal, a *model.DocumentAttachment) { a.UploadedBy = p.UserId }),
		Watchers: NewChildService(tx, docs, c.Watchers, "watcher",
			func(p *Principal, w *model.DocumentWatcher) {
				if w.UserId == 0 {
					w.UserId = p.UserId
				}
			}),
	}
}

// Services groups the catalog services handed to the router.
type Services struct {
	Auth       *AuthService
	User       *UserService
	Team       *TeamService
	Project    *ProjectService
	Task       *TaskService
	Document   *DocumentService
	DocChild   *DocumentChildServices
	Favorite   *FavoriteService
	Dashboard  *DashboardService
	Statistics *StatisticsService
}
