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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTableSQL(t *testing.T) {
	op := CreateTable{
		Name: "members",
		Columns: []Column{
			{Name: "id", Identity: true},
			{Name: "team_id", Type: "BIGINT"},
			{Name: "role", Type: "VARCHAR(32)", Default: "'member'"},
			{Name: "note", Type: "TEXT", Nullable: true},
		},
		Uniques:     []Unique{{Name: "uq_members_team_role", Columns: []string{"team_id", "role"}}},
		ForeignKeys: []ForeignKey{{Name: "fk_members_team", Columns: []string{"team_id"}, RefTable: "teams", OnDelete: Cascade}},
	}
	want := "CREATE TABLE \"members\" (\n" +
		"\t\"id\" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,\n" +
		"\t\"team_id\" BIGINT NOT NULL,\n" +
		"\t\"role\" VARCHAR(32) NOT NULL DEFAULT 'member',\n" +
		"\t\"note\" TEXT,\n" +
		"\tCONSTRAINT \"uq_members_team_role\" UNIQUE (\"team_id\", \"role\"),\n" +
		"\tCONSTRAINT \"fk_members_team\" FOREIGN KEY (\"team_id\") REFERENCES \"teams\" (\"id\") ON DELETE CASCADE\n" +
		")"
	assert.Equal(t, []string{want}, op.SQL())
}

func TestOpSQL(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want string
	}{
		{"drop table", DropTable{Name: "t"}, `DROP TABLE "t"`},
		{"add enum column", AddColumn{Table: "p", Column: Column{Name: "status", Type: "projectstatus", Enum: true, Default: "'planning'"}},
			`ALTER TABLE "p" ADD COLUMN "status" "projectstatus" NOT NULL DEFAULT 'planning'`},
		{"drop column", DropColumn{Table: "p", Column: "x"}, `ALTER TABLE "p" DROP COLUMN "x"`},
		{"partial unique index", CreateIndex{Index{Name: "uq_active", Table: "m", Columns: []string{"a", "b"}, Unique: true, Where: "is_active"}},
			`CREATE UNIQUE INDEX "uq_active" ON "m" ("a", "b") WHERE is_active`},
		{"index", CreateIndex{Index{Name: "ix", Table: "m", Columns: []string{"a"}}}, `CREATE INDEX "ix" ON "m" ("a")`},
		{"drop index", DropIndex{Name: "ix"}, `DROP INDEX "ix"`},
		{"unique", CreateUnique{Table: "u", Name: "uq_u_email", Columns: []string{"email"}},
			`ALTER TABLE "u" ADD CONSTRAINT "uq_u_email" UNIQUE ("email")`},
		{"foreign key default restrict", CreateForeignKey{Table: "t", ForeignKey: ForeignKey{Name: "fk", Columns: []string{"owner_id"}, RefTable: "users"}},
			`ALTER TABLE "t" ADD CONSTRAINT "fk" FOREIGN KEY ("owner_id") REFERENCES "users" ("id") ON DELETE RESTRICT`},
		{"drop constraint", DropConstraint{Table: "t", Name: "fk"}, `ALTER TABLE "t" DROP CONSTRAINT "fk"`},
		{"enum", CreateEnum{Name: "prio", Values: []string{"low", "o'high"}}, `CREATE TYPE "prio" AS ENUM ('low', 'o''high')`},
		{"drop enum", DropEnum{Name: "prio"}, `DROP TYPE "prio"`},
		{"exec", Exec{Statement: "UPDATE t SET a = 1"}, "UPDATE t SET a = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, tt.op.SQL())
		})
	}
}

func TestSchemaApplyRules(t *testing.T) {
	users := CreateTable{Name: "users", Columns: []Column{{Name: "id", Identity: true}}}

	t.Run("nullable foreign key may not cascade", func(t *testing.T) {
		s := NewSchema()
		assert.NoError(t, users.Apply(s))
		err := CreateTable{
			Name:        "tasks",
			Columns:     []Column{{Name: "id", Identity: true}, {Name: "executor_id", Type: "BIGINT", Nullable: true}},
			ForeignKeys: []ForeignKey{{Name: "fk", Columns: []string{"executor_id"}, RefTable: "users", OnDelete: Cascade}},
		}.Apply(s)
		assert.ErrorContains(t, err, "may not cascade")
		assert.False(t, s.HasTable("tasks"))
	})

	t.Run("set null needs a nullable column", func(t *testing.T) {
		s := NewSchema()
		assert.NoError(t, users.Apply(s))
		err := CreateTable{
			Name:        "tasks",
			Columns:     []Column{{Name: "id", Identity: true}, {Name: "owner_id", Type: "BIGINT"}},
			ForeignKeys: []ForeignKey{{Name: "fk", Columns: []string{"owner_id"}, RefTable: "users", OnDelete: SetNull}},
		}.Apply(s)
		assert.ErrorContains(t, err, "cannot SET NULL")
	})

	t.Run("referenced table cannot be dropped", func(t *testing.T) {
		s := NewSchema()
		assert.NoError(t, users.Apply(s))
		assert.NoError(t, CreateTable{
			Name:        "tasks",
			Columns:     []Column{{Name: "id", Identity: true}, {Name: "owner_id", Type: "BIGINT"}},
			ForeignKeys: []ForeignKey{{Name: "fk_tasks_owner", Columns: []string{"owner_id"}, RefTable: "users"}},
		}.Apply(s))
		assert.ErrorContains(t, DropTable{Name: "users"}.Apply(s), "referenced by tasks.fk_tasks_owner")
	})

	t.Run("enum must exist before use and outlive its columns", func(t *testing.T) {
		s := NewSchema()
		assert.NoError(t, users.Apply(s))
		col := AddColumn{Table: "users", Column: Column{Name: "kind", Type: "userkind", Enum: true, Nullable: true}}
		assert.ErrorContains(t, col.Apply(s), `type "userkind" does not exist`)
		assert.NoError(t, CreateEnum{Name: "userkind", Values: []string{"a", "b"}}.Apply(s))
		assert.NoError(t, col.Apply(s))
		assert.ErrorContains(t, DropEnum{Name: "userkind"}.Apply(s), "used by users.kind")
	})

	t.Run("drop column removes dependent indexes", func(t *testing.T) {
		s := NewSchema()
		assert.NoError(t, users.Apply(s))
		assert.NoError(t, AddColumn{Table: "users", Column: Column{Name: "email", Type: "TEXT"}}.Apply(s))
		assert.NoError(t, CreateIndex{Index{Name: "ix_email", Table: "users", Columns: []string{"email"}}}.Apply(s))
		assert.NoError(t, DropColumn{Table: "users", Column: "email"}.Apply(s))
		assert.Empty(t, s.Indexes)
	})
}
