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

package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/go-arcade/workhub/pkg/statemachine"
)

var (
	DocumentTypes        = []string{"contract", "agreement", "policy", "procedure", "report", "memo", "letter", "form", "template", "other"}
	DocumentPriorities   = []string{"low", "normal", "high", "critical", "urgent"}
	DocumentVisibilities = []string{"private", "team", "department", "organization", "public"}
)

// Document is one version of a document series. Exactly one row per
// series_id has is_latest set.
type Document struct {
	BaseModel
	SeriesId       string                      `gorm:"column:series_id" json:"seriesId"`
	Title          string                      `gorm:"column:title" json:"title"`
	Description    *string                     `gorm:"column:description" json:"description,omitempty"`
	Type           string                      `gorm:"column:type" json:"type"`
	Status         statemachine.DocumentStatus `gorm:"column:status" json:"status"`
	Priority       string                      `gorm:"column:priority" json:"priority"`
	Visibility     string                      `gorm:"column:visibility" json:"visibility"`
	Version        int                         `gorm:"column:version" json:"version"`
	IsLatest       bool                        `gorm:"column:is_latest" json:"isLatest"`
	Content        *string                     `gorm:"column:content" json:"content,omitempty"`
	FilePath       *string                     `gorm:"column:file_path" json:"filePath,omitempty"`
	AuthorId       uint64                      `gorm:"column:author_id" json:"authorId"`
	OwnerId        uint64                      `gorm:"column:owner_id" json:"ownerId"`
	ReviewerId     *uint64                     `gorm:"column:reviewer_id" json:"reviewerId,omitempty"`
	OrganizationId *uint64                     `gorm:"column:organization_id" json:"organizationId,omitempty"`
	DepartmentId   *uint64                     `gorm:"column:department_id" json:"departmentId,omitempty"`
	ExpiresAt      *time.Time                  `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	CustomFields   datatypes.JSONMap           `gorm:"column:custom_fields;type:jsonb" json:"customFields"`
	UpdatedBy      *uint64                     `gorm:"column:updated_by" json:"updatedBy,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentWorkflowStep struct {
	BaseModel
	DocumentId  uint64     `gorm:"column:document_id" json:"documentId"`
	StepOrder   int        `gorm:"column:step_order" json:"stepOrder"`
	Name        string     `gorm:"column:name" json:"name"`
	AssigneeId  *uint64    `gorm:"column:assignee_id" json:"assigneeId,omitempty"`
	Status      string     `gorm:"column:status" json:"status"`
	Comment     *string    `gorm:"column:comment" json:"comment,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

func (DocumentWorkflowStep) TableName() string {
	return "document_workflow_steps"
}

type DocumentSignature struct {
	BaseModel
	DocumentId    uint64    `gorm:"column:document_id" json:"documentId"`
	SignerId      uint64    `gorm:"column:signer_id" json:"signerId"`
	SignatureData *string   `gorm:"column:signature_data" json:"signatureData,omitempty"`
	SignedAt      time.Time `gorm:"column:signed_at" json:"signedAt"`
	IpAddress     *string   `gorm:"column:ip_address" json:"ipAddress,omitempty"`
}

func (DocumentSignature) TableName() string {
	return "document_signatures"
}

type DocumentComment struct {
	BaseModel
	DocumentId uint64 `gorm:"column:document_id" json:"documentId"`
	AuthorId   uint64 `gorm:"column:author_id" json:"authorId"`
	Content    string `gorm:"column:content" json:"content"`
}

func (DocumentComment) TableName() string {
	return "document_comments"
}

type DocumentAttachment struct {
	BaseModel
	DocumentId  uint64 `gorm:"column:document_id" json:"documentId"`
	Filename    string `gorm:"column:filename" json:"filename"`
	FilePath    string `gorm:"column:file_path" json:"filePath"`
	ContentType string `gorm:"column:content_type" json:"contentType"`
	SizeBytes   int64  `gorm:"column:size_bytes" json:"sizeBytes"`
	UploadedBy  uint64 `gorm:"column:uploaded_by" json:"uploadedBy"`
}

func (DocumentAttachment) TableName() string {
	return "document_attachments"
}

type DocumentWatcher struct {
	BaseModel
	DocumentId uint64 `gorm:"column:document_id" json:"documentId"`
	UserId     uint64 `gorm:"column:user_id" json:"userId"`
}

func (DocumentWatcher) TableName() string {
	return "document_watchers"
}

type DocumentTemplate struct {
	BaseModel
	Name           string  `gorm:"column:name" json:"name"`
	Description    *string `gorm:"column:description" json:"description,omitempty"`
	Type           string  `gorm:"column:type" json:"type"`
	Content        *string `gorm:"column:content" json:"content,omitempty"`
	IsActive       bool    `gorm:"column:is_active" json:"isActive"`
	CreatedBy      uint64  `gorm:"column:created_by" json:"createdBy"`
	OrganizationId *uint64 `gorm:"column:organization_id" json:"organizationId,omitempty"`
}

func (DocumentTemplate) TableName() string {
	return "document_templates"
}

type CreateDocumentReq struct {
	Title          string         `json:"title"`
	Description    *string        `json:"description"`
	Type           string         `json:"type"`
	Priority       string         `json:"priority"`
	Visibility     string         `json:"visibility"`
	Content        *string        `json:"content"`
	FilePath       *string        `json:"filePath"`
	OwnerId        *uint64        `json:"ownerId"`
	ReviewerId     *uint64        `json:"reviewerId"`
	OrganizationId *uint64        `json:"organizationId"`
	DepartmentId   *uint64        `json:"departmentId"`
	ExpiresAt      *time.Time     `json:"expiresAt"`
	TemplateId     *uint64        `json:"templateId"`
	Tags           []string       `json:"tags"`
	CustomFields   map[string]any `json:"customFields"`
}

type UpdateDocumentReq struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Type         *string        `json:"type"`
	Priority     *string        `json:"priority"`
	Visibility   *string        `json:"visibility"`
	Content      *string        `json:"content"`
	FilePath     *string        `json:"filePath"`
	ReviewerId   *uint64        `json:"reviewerId"`
	ExpiresAt    *time.Time     `json:"expiresAt"`
	Tags         []string       `json:"tags"`
	CustomFields map[string]any `json:"customFields"`
}

// NewVersionReq carries the fields that change in the superseding row;
// everything else is copied from the current latest version.
type NewVersionReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	FilePath *string `json:"filePath"`
}

type DocumentQuery struct {
	PageReq
	Status         string  `query:"status"`
	Type           string  `query:"type"`
	AuthorId       *uint64 `query:"authorId"`
	OwnerId        *uint64 `query:"ownerId"`
	OrganizationId *uint64 `query:"organizationId"`
	SeriesId       string  `query:"seriesId"`
	// AllVersions includes superseded rows
	AllVersions bool `query:"allVersions"`
}

// The document child tables share the document_id parent column.

func (s *DocumentWorkflowStep) AttachTo(documentId uint64) { s.DocumentId = documentId }
func (s *DocumentWorkflowStep) ParentId() uint64           { return s.DocumentId }
func (s *DocumentSignature) AttachTo(documentId uint64)    { s.DocumentId = documentId }
func (s *DocumentSignature) ParentId() uint64              { return s.DocumentId }
func (c *DocumentComment) AttachTo(documentId uint64)      { c.DocumentId = documentId }
func (c *DocumentComment) ParentId() uint64                { return c.DocumentId }
func (a *DocumentAttachment) AttachTo(documentId uint64)   { a.DocumentId = documentId }
func (a *DocumentAttachment) ParentId() uint64             { return a.DocumentId }
func (w *DocumentWatcher) AttachTo(documentId uint64)      { w.DocumentId = documentId }
func (w *DocumentWatcher) ParentId() uint64                { return w.DocumentId }
