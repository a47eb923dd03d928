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

// Package migration holds the concrete schema history of workhub.
package migration

import (
	"sync"

	"gorm.io/gorm"

	"github.com/go-arcade/workhub/pkg/metrics"
	"github.com/go-arcade/workhub/pkg/migrate"
)

const (
	RevBase          = "596d2a8fbb37"
	RevOrganizations = "7b2c9d41e0a3"
	RevProjects      = "405fd6725f21"
	RevTeams         = "add_team_management_models"
	RevFavorites     = "add_favorite_files_table"
	RevMergeTeamsFav = "c4d8e2f1a9b7"
	RevDocuments     = "9e3a1f6c2b58"
	RevKpi           = "e1f47a2d8c36"
	RevTaskTracking  = "5a6b7c8d9e0f"
)

// Revisions returns a fresh copy of the schema history in registration order.
func Revisions() []*migrate.Revision {
	return []*migrate.Revision{
		baseRevision(),
		organizationsRevision(),
		projectsRevision(),
		teamsRevision(),
		favoritesRevision(),
		{
			ID:          RevMergeTeamsFav,
			Parents:     []string{RevTeams, RevFavorites},
			Description: "merge team management and favorite files",
		},
		documentsRevision(),
		kpiRevision(),
		taskTrackingRevision(),
	}
}

var (
	registryOnce sync.Once
	registry     *migrate.Registry
	registryErr  error
)

// Registry validates the history once per process.
func Registry() (*migrate.Registry, error) {
	registryOnce.Do(func() {
		registry, registryErr = migrate.NewRegistry(Revisions()...)
	})
	return registry, registryErr
}

// NewEngine binds the history to a postgres database. Applied revisions are
// counted in the migration metrics.
func NewEngine(db *gorm.DB) (*migrate.Engine, error) {
	reg, err := Registry()
	if err != nil {
		return nil, err
	}
	return migrate.NewEngine(reg, migrate.NewPostgresStore(db), migrate.WithObserver(metrics.ObserveMigration)), nil
}

func id() migrate.Column {
	return migrate.Column{Name: "id", Identity: true}
}

// table prepends the identity column and appends the timestamps every
// catalog row carries.
func table(cols ...migrate.Column) []migrate.Column {
	out := make([]migrate.Column, 0, len(cols)+3)
	out = append(out, id())
	out = append(out, cols...)
	return append(out,
		migrate.Column{Name: "created_at", Type: "TIMESTAMPTZ", Default: "now()"},
		migrate.Column{Name: "updated_at", Type: "TIMESTAMPTZ", Default: "now()"},
	)
}

func col(name, typ string) migrate.Column {
	return migrate.Column{Name: name, Type: typ}
}

func opt(name, typ string) migrate.Column {
	return migrate.Column{Name: name, Type: typ, Nullable: true}
}

func def(name, typ, value string) migrate.Column {
	return migrate.Column{Name: name, Type: typ, Default: value}
}

func enum(name, domain, value string) migrate.Column {
	return migrate.Column{Name: name, Type: domain, Enum: true, Default: value}
}

func fk(name, column, ref string, onDelete migrate.OnDelete) migrate.ForeignKey {
	return migrate.ForeignKey{Name: name, Columns: []string{column}, RefTable: ref, OnDelete: onDelete}
}

func index(name, tbl string, cols ...string) migrate.CreateIndex {
	return migrate.CreateIndex{Index: migrate.Index{Name: name, Table: tbl, Columns: cols}}
}

func drop(tables ...string) []migrate.Op {
	ops := make([]migrate.Op, len(tables))
	for i, t := range tables {
		ops[i] = migrate.DropTable{Name: t}
	}
	return ops
}
