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
	"fmt"
	"slices"
	"strings"
)

// OnDelete is the referential action of a foreign key.
type OnDelete string

const (
	Restrict OnDelete = "RESTRICT"
	Cascade  OnDelete = "CASCADE"
	SetNull  OnDelete = "SET NULL"
)

// Column describes a table column. Identity columns are bigint primary keys
// generated by the database. When Enum is set, Type names an enum domain.
type Column struct {
	Name     string
	Type     string
	Enum     bool
	Nullable bool
	Default  string
	Identity bool
}

func (c Column) definition() string {
	if c.Identity {
		return quote(c.Name) + " BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	}
	typ := c.Type
	if c.Enum {
		typ = quote(c.Type)
	}
	def := quote(c.Name) + " " + typ
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Default != "" {
		def += " DEFAULT " + c.Default
	}
	return def
}

type Unique struct {
	Name    string
	Columns []string
}

type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnDelete   OnDelete
}

func (fk ForeignKey) onDelete() OnDelete {
	if fk.OnDelete == "" {
		return Restrict
	}
	return fk.OnDelete
}

func (fk ForeignKey) clause() string {
	refCols := fk.RefColumns
	if len(refCols) == 0 {
		refCols = []string{"id"}
	}
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
		quote(fk.Name), quoteList(fk.Columns), quote(fk.RefTable), quoteList(refCols), fk.onDelete())
}

type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Where   string
}

// Op is a single schema mutation. SQL renders postgres statements and Apply
// replays the same change on an in-memory Schema.
type Op interface {
	SQL() []string
	Apply(s *Schema) error
	String() string
}

type CreateTable struct {
	Name        string
	Columns     []Column
	Uniques     []Unique
	ForeignKeys []ForeignKey
}

func (o CreateTable) SQL() []string {
	parts := make([]string, 0, len(o.Columns)+len(o.Uniques)+len(o.ForeignKeys))
	for _, c := range o.Columns {
		parts = append(parts, c.definition())
	}
	for _, u := range o.Uniques {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", quote(u.Name), quoteList(u.Columns)))
	}
	for _, fk := range o.ForeignKeys {
		parts = append(parts, fk.clause())
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", quote(o.Name), strings.Join(parts, ",\n\t"))}
}

func (o CreateTable) Apply(s *Schema) error {
	if s.HasTable(o.Name) {
		return fmt.Errorf("table %q already exists", o.Name)
	}
	t := &Table{
		Name:        o.Name,
		Uniques:     make(map[string]Unique),
		ForeignKeys: make(map[string]ForeignKey),
	}
	for _, c := range o.Columns {
		if _, dup := t.Column(c.Name); dup {
			return fmt.Errorf("column %q specified more than once on %q", c.Name, o.Name)
		}
		if err := s.checkColumnType(c); err != nil {
			return err
		}
		t.Columns = append(t.Columns, c)
	}
	// the table must exist before self references and constraints resolve
	s.Tables[o.Name] = t
	for _, u := range o.Uniques {
		if err := (CreateUnique{Table: o.Name, Name: u.Name, Columns: u.Columns}).Apply(s); err != nil {
			delete(s.Tables, o.Name)
			return err
		}
	}
	for _, fk := range o.ForeignKeys {
		if err := (CreateForeignKey{Table: o.Name, ForeignKey: fk}).Apply(s); err != nil {
			delete(s.Tables, o.Name)
			return err
		}
	}
	return nil
}

func (o CreateTable) String() string { return "create table " + o.Name }

type DropTable struct {
	Name string
}

func (o DropTable) SQL() []string {
	return []string{"DROP TABLE " + quote(o.Name)}
}

func (o DropTable) Apply(s *Schema) error {
	if _, err := s.table(o.Name); err != nil {
		return err
	}
	if refs := s.referencedBy(o.Name); len(refs) > 0 {
		return fmt.Errorf("cannot drop table %q: referenced by %s", o.Name, strings.Join(refs, ", "))
	}
	for name, idx := range s.Indexes {
		if idx.Table == o.Name {
			delete(s.Indexes, name)
		}
	}
	delete(s.Tables, o.Name)
	return nil
}

func (o DropTable) String() string { return "drop table " + o.Name }

type AddColumn struct {
	Table  string
	Column Column
}

func (o AddColumn) SQL() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(o.Table), o.Column.definition())}
}

func (o AddColumn) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	if _, dup := t.Column(o.Column.Name); dup {
		return fmt.Errorf("column %q already exists on %q", o.Column.Name, o.Table)
	}
	if o.Column.Identity {
		return fmt.Errorf("identity column %q cannot be added to %q", o.Column.Name, o.Table)
	}
	if err := s.checkColumnType(o.Column); err != nil {
		return err
	}
	t.Columns = append(t.Columns, o.Column)
	return nil
}

func (o AddColumn) String() string { return "add column " + o.Table + "." + o.Column.Name }

type DropColumn struct {
	Table  string
	Column string
}

func (o DropColumn) SQL() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(o.Table), quote(o.Column))}
}

func (o DropColumn) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == o.Column })
	if i < 0 {
		return fmt.Errorf("column %q does not exist on %q", o.Column, o.Table)
	}
	if err := s.dropColumnDependents(t, o.Column); err != nil {
		return err
	}
	t.Columns = slices.Delete(t.Columns, i, i+1)
	return nil
}

func (o DropColumn) String() string { return "drop column " + o.Table + "." + o.Column }

type CreateIndex struct {
	Index
}

func (o CreateIndex) SQL() []string {
	kind := "INDEX"
	if o.Unique {
		kind = "UNIQUE INDEX"
	}
	stmt := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, quote(o.Name), quote(o.Table), quoteList(o.Columns))
	if o.Where != "" {
		stmt += " WHERE " + o.Where
	}
	return []string{stmt}
}

func (o CreateIndex) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	if len(o.Columns) == 0 {
		return fmt.Errorf("index %q has no columns", o.Name)
	}
	if err := t.hasColumns(o.Columns); err != nil {
		return err
	}
	if _, dup := s.Indexes[o.Name]; dup || s.constraintExists(o.Name) {
		return fmt.Errorf("relation %q already exists", o.Name)
	}
	s.Indexes[o.Name] = o.Index
	return nil
}

func (o CreateIndex) String() string { return "create index " + o.Name }

type DropIndex struct {
	Name string
}

func (o DropIndex) SQL() []string {
	return []string{"DROP INDEX " + quote(o.Name)}
}

func (o DropIndex) Apply(s *Schema) error {
	if _, ok := s.Indexes[o.Name]; !ok {
		return fmt.Errorf("index %q does not exist", o.Name)
	}
	delete(s.Indexes, o.Name)
	return nil
}

func (o DropIndex) String() string { return "drop index " + o.Name }

type CreateUnique struct {
	Table   string
	Name    string
	Columns []string
}

func (o CreateUnique) SQL() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)",
		quote(o.Table), quote(o.Name), quoteList(o.Columns))}
}

func (o CreateUnique) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	if len(o.Columns) == 0 {
		return fmt.Errorf("unique constraint %q has no columns", o.Name)
	}
	if err := t.hasColumns(o.Columns); err != nil {
		return err
	}
	if _, dup := s.Indexes[o.Name]; dup || s.constraintExists(o.Name) {
		return fmt.Errorf("relation %q already exists", o.Name)
	}
	t.Uniques[o.Name] = Unique{Name: o.Name, Columns: o.Columns}
	return nil
}

func (o CreateUnique) String() string { return "create unique " + o.Name }

type CreateForeignKey struct {
	Table string
	ForeignKey
}

func (o CreateForeignKey) SQL() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD %s", quote(o.Table), o.clause())}
}

func (o CreateForeignKey) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	fk := o.ForeignKey
	if len(fk.RefColumns) == 0 {
		fk.RefColumns = []string{"id"}
	}
	fk.OnDelete = fk.onDelete()
	if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
		return fmt.Errorf("foreign key %q column count mismatch", fk.Name)
	}
	if err := t.hasColumns(fk.Columns); err != nil {
		return err
	}
	ref, err := s.table(fk.RefTable)
	if err != nil {
		return err
	}
	if err := ref.hasColumns(fk.RefColumns); err != nil {
		return err
	}
	if !s.isKey(ref, fk.RefColumns) {
		return fmt.Errorf("no unique constraint matching given keys for referenced table %q", fk.RefTable)
	}
	for _, name := range fk.Columns {
		c, _ := t.Column(name)
		switch {
		case c.Nullable && fk.OnDelete == Cascade:
			return fmt.Errorf("foreign key %q: nullable column %q may not cascade", fk.Name, name)
		case !c.Nullable && fk.OnDelete == SetNull:
			return fmt.Errorf("foreign key %q: column %q is not nullable, cannot SET NULL", fk.Name, name)
		}
	}
	if _, dup := s.Indexes[fk.Name]; dup || s.constraintExists(fk.Name) {
		return fmt.Errorf("constraint %q already exists", fk.Name)
	}
	t.ForeignKeys[fk.Name] = fk
	return nil
}

func (o CreateForeignKey) String() string { return "create foreign key " + o.Name }

// DropConstraint removes a unique or foreign key constraint.
type DropConstraint struct {
	Table string
	Name  string
}

func (o DropConstraint) SQL() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", quote(o.Table), quote(o.Name))}
}

func (o DropConstraint) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	if _, ok := t.ForeignKeys[o.Name]; ok {
		delete(t.ForeignKeys, o.Name)
		return nil
	}
	u, ok := t.Uniques[o.Name]
	if !ok {
		return fmt.Errorf("constraint %q of relation %q does not exist", o.Name, o.Table)
	}
	for _, other := range s.Tables {
		for _, fk := range other.ForeignKeys {
			if fk.RefTable == o.Table && slices.Equal(fk.RefColumns, u.Columns) {
				return fmt.Errorf("cannot drop constraint %q: foreign key %q depends on it", o.Name, fk.Name)
			}
		}
	}
	delete(t.Uniques, o.Name)
	return nil
}

func (o DropConstraint) String() string { return "drop constraint " + o.Name }

type CreateEnum struct {
	Name   string
	Values []string
}

func (o CreateEnum) SQL() []string {
	vals := make([]string, len(o.Values))
	for i, v := range o.Values {
		vals[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return []string{fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", quote(o.Name), strings.Join(vals, ", "))}
}

func (o CreateEnum) Apply(s *Schema) error {
	if _, ok := s.Enums[o.Name]; ok {
		return fmt.Errorf("type %q already exists", o.Name)
	}
	if len(o.Values) == 0 {
		return fmt.Errorf("enum %q has no values", o.Name)
	}
	seen := make(map[string]struct{}, len(o.Values))
	for _, v := range o.Values {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("enum %q repeats value %q", o.Name, v)
		}
		seen[v] = struct{}{}
	}
	s.Enums[o.Name] = slices.Clone(o.Values)
	return nil
}

func (o CreateEnum) String() string { return "create enum " + o.Name }

type DropEnum struct {
	Name string
}

func (o DropEnum) SQL() []string {
	return []string{"DROP TYPE " + quote(o.Name)}
}

func (o DropEnum) Apply(s *Schema) error {
	if _, ok := s.Enums[o.Name]; !ok {
		return fmt.Errorf("type %q does not exist", o.Name)
	}
	if users := s.enumInUse(o.Name); len(users) > 0 {
		return fmt.Errorf("cannot drop type %q: used by %s", o.Name, strings.Join(users, ", "))
	}
	delete(s.Enums, o.Name)
	return nil
}

func (o DropEnum) String() string { return "drop enum " + o.Name }

// Exec runs a raw statement. It has no effect on the in-memory schema and is
// meant for data fixes and check constraints.
type Exec struct {
	Statement string
}

func (o Exec) SQL() []string { return []string{o.Statement} }

func (o Exec) Apply(*Schema) error { return nil }

func (o Exec) String() string { return "exec" }

func (s *Schema) checkColumnType(c Column) error {
	if c.Identity {
		return nil
	}
	if c.Type == "" {
		return fmt.Errorf("column %q has no type", c.Name)
	}
	if c.Enum {
		if _, ok := s.Enums[c.Type]; !ok {
			return fmt.Errorf("type %q does not exist", c.Type)
		}
	}
	return nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteList(idents []string) string {
	q := make([]string, len(idents))
	for i, id := range idents {
		q[i] = quote(id)
	}
	return strings.Join(q, ", ")
}
