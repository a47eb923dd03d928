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
	"gorm.io/plugin/dbresolver"
)

// ReadDB routes the query to a replica when DBResolver has replicas
// registered. Inside a transaction the transaction itself is returned so
// reads observe uncommitted writes.
func ReadDB(ctx context.Context, d IDatabase) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.Database().WithContext(ctx).Clauses(dbresolver.Read)
}

// WriteDB forces the query onto the primary.
func WriteDB(ctx context.Context, d IDatabase) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.Database().WithContext(ctx).Clauses(dbresolver.Write)
}

// ReadPrimary is used for read-your-writes paths that must not hit a lagging replica.
func ReadPrimary(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Write)
}
