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

package database

import (
	"context"

	"gorm.io/gorm"
)

// IDatabase is the handle every repository embeds.
type IDatabase interface {
	// Database returns the primary *gorm.DB (Postgres)
	Database() *gorm.DB

	// DB returns the transaction bound to ctx when one is open, otherwise the
	// primary connection scoped to ctx.
	DB(ctx context.Context) *gorm.DB

	// Transaction runs fn inside a single transaction. Nested calls reuse the
	// outer transaction so a service operation commits or rolls back as a unit.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// databaseAdapter adapts Manager to IDatabase interface
type databaseAdapter struct {
	manager Manager
}

// NewDatabaseAdapter creates an IDatabase adapter from Manager
func NewDatabaseAdapter(manager Manager) IDatabase {
	return &databaseAdapter{manager: manager}
}

// NewFromGorm wraps an already opened connection, mostly for tests and tools.
func NewFromGorm(db *gorm.DB) IDatabase {
	return &databaseAdapter{manager: &managerImpl{postgres: db}}
}

func (d *databaseAdapter) Database() *gorm.DB {
	return d.manager.Postgres()
}

func (d *databaseAdapter) DB(ctx context.Context) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.manager.Postgres().WithContext(ctx)
}

func (d *databaseAdapter) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}
	return d.manager.Postgres().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// TxFromContext returns the transaction opened by Transaction, or nil.
func TxFromContext(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}
