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

package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const (
	// DefaultLockKey is the pg_advisory_lock key shared by every migration run.
	DefaultLockKey int64 = 0x776f726b687562
	DefaultTable         = "schema_migrations"
)

type PostgresStore struct {
	db      *gorm.DB
	table   string
	lockKey int64
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, table: DefaultTable, lockKey: DefaultLockKey}
}

// Lock takes a session level advisory lock on a dedicated pooled connection
// and keeps that connection until unlock.
func (p *PostgresStore) Lock(ctx context.Context) (func() error, error) {
	sqlDB, err := p.db.DB()
	if err != nil {
		return nil, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", p.lockKey); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	if err := p.ensureTable(ctx); err != nil {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", p.lockKey)
		_ = conn.Close()
		return nil, err
	}
	return func() error {
		defer conn.Close()
		_, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", p.lockKey)
		return err
	}, nil
}

func (p *PostgresStore) ensureTable(ctx context.Context) error {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (version_num VARCHAR(64) NOT NULL PRIMARY KEY)", quote(p.table))
	return p.db.WithContext(ctx).Exec(stmt).Error
}

func (p *PostgresStore) Heads(ctx context.Context) ([]string, error) {
	var exists bool
	if err := p.db.WithContext(ctx).
		Raw("SELECT to_regclass(?) IS NOT NULL", p.table).
		Scan(&exists).Error; err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	var heads []string
	err := p.db.WithContext(ctx).
		Table(p.table).
		Order("version_num").
		Pluck("version_num", &heads).Error
	return heads, err
}

func (p *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postgresTx{db: tx, table: p.table})
	})
}

type postgresTx struct {
	db    *gorm.DB
	table string
}

func (t *postgresTx) Apply(ctx context.Context, op Op) error {
	for _, stmt := range op.SQL() {
		if err := t.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (t *postgresTx) SetHeads(ctx context.Context, heads []string) error {
	db := t.db.WithContext(ctx)
	if err := db.Exec(fmt.Sprintf("DELETE FROM %s", quote(t.table))).Error; err != nil {
		return err
	}
	for _, h := range heads {
		if err := db.Exec(fmt.Sprintf("INSERT INTO %s (version_num) VALUES (?)", quote(t.table)), h).Error; err != nil {
			return err
		}
	}
	return nil
}
