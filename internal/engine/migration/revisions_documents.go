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

package migration

import (
	"github.com/go-arcade/workhub/pkg/migrate"
)

var documentEnums = []migrate.CreateEnum{
	{Name: "document_type", Values: []string{"contract", "agreement", "policy", "procedure", "report", "memo", "letter", "form", "template", "other"}},
	{Name: "document_status", Values: []string{"draft", "pending_review", "in_review", "approved", "rejected", "signed", "archived", "expired"}},
	{Name: "document_priority", Values: []string{"low", "normal", "high", "critical", "urgent"}},
	{Name: "document_visibility", Values: []string{"private", "team", "department", "organization", "public"}},
}

// documentChild builds a table hanging off documents. Children go away with
// their document.
func documentChild(name string, cols []migrate.Column, fks ...migrate.ForeignKey) migrate.CreateTable {
	all := append([]migrate.Column{col("document_id", "BIGINT")}, cols...)
	keys := append([]migrate.ForeignKey{fk("fk_"+name+"_document", "document_id", "documents", migrate.Cascade)}, fks...)
	return migrate.CreateTable{Name: name, Columns: table(all...), ForeignKeys: keys}
}

func documentsRevision() *migrate.Revision {
	up := make([]migrate.Op, 0, 16)
	for _, e := range documentEnums {
		up = append(up, e)
	}
	up = append(up,
		migrate.CreateTable{
			Name: "documents",
			Columns: table(
				col("series_id", "VARCHAR(64)"),
				col("title", "VARCHAR(255)"),
				opt("description", "TEXT"),
				enum("type", "document_type", "'other'"),
				enum("status", "document_status", "'draft'"),
				enum("priority", "document_priority", "'normal'"),
				enum("visibility", "document_visibility", "'private'"),
				def("version", "INTEGER", "1"),
				def("is_latest", "BOOLEAN", "true"),
				opt("content", "TEXT"),
				opt("file_path", "VARCHAR(1024)"),
				col("author_id", "BIGINT"),
				col("owner_id", "BIGINT"),
				opt("reviewer_id", "BIGINT"),
				opt("organization_id", "BIGINT"),
				opt("department_id", "BIGINT"),
				opt("expires_at", "TIMESTAMPTZ"),
				def("tags", "JSONB", "'[]'"),
				def("custom_fields", "JSONB", "'{}'"),
				opt("updated_by", "BIGINT"),
			),
			Uniques: []migrate.Unique{{Name: "uq_documents_series_version", Columns: []string{"series_id", "version"}}},
			ForeignKeys: []migrate.ForeignKey{
				fk("fk_documents_author", "author_id", "users", migrate.Restrict),
				fk("fk_documents_owner", "owner_id", "users", migrate.Restrict),
				fk("fk_documents_reviewer", "reviewer_id", "users", migrate.SetNull),
				fk("fk_documents_organization", "organization_id", "organizations", migrate.SetNull),
				fk("fk_documents_department", "department_id", "departments", migrate.SetNull),
				fk("fk_documents_updated_by", "updated_by", "users", migrate.SetNull),
			},
		},
		migrate.CreateIndex{Index: migrate.Index{
			Name:    "uq_documents_series_latest",
			Table:   "documents",
			Columns: []string{"series_id"},
			Unique:  true,
			Where:   "is_latest",
		}},
		index("idx_documents_status", "documents", "status"),
		index("idx_documents_expires_at", "documents", "expires_at"),
		documentChild("document_workflow_steps",
			[]migrate.Column{
				col("step_order", "INTEGER"),
				col("name", "VARCHAR(255)"),
				opt("assignee_id", "BIGINT"),
				def("status", "VARCHAR(32)", "'pending'"),
				opt("comment", "TEXT"),
				opt("completed_at", "TIMESTAMPTZ"),
			},
			fk("fk_document_workflow_steps_assignee", "assignee_id", "users", migrate.SetNull),
		),
		documentChild("document_signatures",
			[]migrate.Column{
				col("signer_id", "BIGINT"),
				opt("signature_data", "TEXT"),
				def("signed_at", "TIMESTAMPTZ", "now()"),
				opt("ip_address", "VARCHAR(64)"),
			},
			fk("fk_document_signatures_signer", "signer_id", "users", migrate.Cascade),
		),
		documentChild("document_comments",
			[]migrate.Column{col("author_id", "BIGINT"), col("content", "TEXT")},
			fk("fk_document_comments_author", "author_id", "users", migrate.Cascade),
		),
		documentChild("document_attachments",
			[]migrate.Column{
				col("filename", "VARCHAR(512)"),
				col("file_path", "VARCHAR(1024)"),
				col("content_type", "VARCHAR(255)"),
				def("size_bytes", "BIGINT", "0"),
				col("uploaded_by", "BIGINT"),
			},
			fk("fk_document_attachments_uploader", "uploaded_by", "users", migrate.Cascade),
		),
		documentChild("document_watchers",
			[]migrate.Column{col("user_id", "BIGINT")},
			fk("fk_document_watchers_user", "user_id", "users", migrate.Cascade),
		),
		migrate.CreateUnique{Table: "document_watchers", Name: "uq_document_watchers", Columns: []string{"document_id", "user_id"}},
		migrate.CreateTable{
			Name: "document_templates",
			Columns: table(
				col("name", "VARCHAR(255)"),
				opt("description", "TEXT"),
				enum("type", "document_type", "'other'"),
				opt("content", "TEXT"),
				def("is_active", "BOOLEAN", "true"),
				col("created_by", "BIGINT"),
				opt("organization_id", "BIGINT"),
			),
			ForeignKeys: []migrate.ForeignKey{
				fk("fk_document_templates_creator", "created_by", "users", migrate.Restrict),
				fk("fk_document_templates_organization", "organization_id", "organizations", migrate.SetNull),
			},
		},
	)

	down := drop(
		"document_templates", "document_watchers", "document_attachments", "document_comments",
		"document_signatures", "document_workflow_steps", "documents",
	)
	for i := len(documentEnums) - 1; i >= 0; i-- {
		down = append(down, migrate.DropEnum{Name: documentEnums[i].Name})
	}
	return &migrate.Revision{
		ID:          RevDocuments,
		Parents:     []string{RevMergeTeamsFav},
		Description: "document management",
		Upgrade:     up,
		Downgrade:   down,
	}
}
