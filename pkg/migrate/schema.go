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
	"sort"
	"strings"
)

// Schema is an in-memory model of the catalog objects the ops touch. It
// backs MemoryStore and the dry run performed by NewRegistry.
type Schema struct {
	Tables  map[string]*Table
	Enums   map[string][]string
	Indexes map[string]Index
}

type Table struct {
	Name        string
	Columns     []Column
	Uniques     map[string]Unique
	ForeignKeys map[string]ForeignKey
}

func NewSchema() *Schema {
	return &Schema{
		Tables:  make(map[string]*Table),
		Enums:   make(map[string][]string),
		Indexes: make(map[string]Index),
	}
}

func (s *Schema) Clone() *Schema {
	out := NewSchema()
	for name, t := range s.Tables {
		ct := &Table{
			Name:        t.Name,
			Columns:     slices.Clone(t.Columns),
			Uniques:     make(map[string]Unique, len(t.Uniques)),
			ForeignKeys: make(map[string]ForeignKey, len(t.ForeignKeys)),
		}
		for k, v := range t.Uniques {
			ct.Uniques[k] = v
		}
		for k, v := range t.ForeignKeys {
			ct.ForeignKeys[k] = v
		}
		out.Tables[name] = ct
	}
	for k, v := range s.Enums {
		out.Enums[k] = slices.Clone(v)
	}
	for k, v := range s.Indexes {
		out.Indexes[k] = v
	}
	return out
}

func (s *Schema) HasTable(name string) bool {
	_, ok := s.Tables[name]
	return ok
}

func (s *Schema) table(name string) (*Table, error) {
	t, ok := s.Tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", name)
	}
	return t, nil
}

// TableNames returns the sorted table names.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) hasColumns(cols []string) error {
	for _, c := range cols {
		if _, ok := t.Column(c); !ok {
			return fmt.Errorf("column %q does not exist on %q", c, t.Name)
		}
	}
	return nil
}

// isKey reports whether cols are the identity column or covered by a full
// unique constraint or index, as postgres requires for a referenced key.
func (s *Schema) isKey(t *Table, cols []string) bool {
	if len(cols) == 1 {
		if c, ok := t.Column(cols[0]); ok && c.Identity {
			return true
		}
	}
	for _, u := range t.Uniques {
		if slices.Equal(u.Columns, cols) {
			return true
		}
	}
	for _, idx := range s.Indexes {
		if idx.Table == t.Name && idx.Unique && idx.Where == "" && slices.Equal(idx.Columns, cols) {
			return true
		}
	}
	return false
}

func (s *Schema) constraintExists(name string) bool {
	for _, t := range s.Tables {
		if _, ok := t.Uniques[name]; ok {
			return true
		}
		if _, ok := t.ForeignKeys[name]; ok {
			return true
		}
	}
	return false
}

// referencedBy lists the foreign keys of other tables pointing at table.
func (s *Schema) referencedBy(table string) []string {
	var refs []string
	for _, t := range s.Tables {
		if t.Name == table {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == table {
				refs = append(refs, t.Name+"."+fk.Name)
			}
		}
	}
	sort.Strings(refs)
	return refs
}

func (s *Schema) enumInUse(enum string) []string {
	var users []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if c.Enum && c.Type == enum {
				users = append(users, t.Name+"."+c.Name)
			}
		}
	}
	sort.Strings(users)
	return users
}

// dropColumnDependents removes indexes and constraints that include column,
// mirroring what postgres does on DROP COLUMN.
func (s *Schema) dropColumnDependents(t *Table, column string) error {
	for name, idx := range s.Indexes {
		if idx.Table == t.Name && slices.Contains(idx.Columns, column) {
			delete(s.Indexes, name)
		}
	}
	for name, u := range t.Uniques {
		if slices.Contains(u.Columns, column) {
			delete(t.Uniques, name)
		}
	}
	for name, fk := range t.ForeignKeys {
		if slices.Contains(fk.Columns, column) {
			delete(t.ForeignKeys, name)
		}
	}
	for _, other := range s.Tables {
		for name, fk := range other.ForeignKeys {
			if fk.RefTable == t.Name && slices.Contains(fk.RefColumns, column) {
				return fmt.Errorf("column %s.%s is referenced by %s.%s", t.Name, column, other.Name, name)
			}
		}
	}
	return nil
}

// Dump renders the schema in a stable textual form. Two schemas are equal
// exactly when their dumps are equal.
func (s *Schema) Dump() string {
	var b strings.Builder
	enums := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		enums = append(enums, name)
	}
	sort.Strings(enums)
	for _, name := range enums {
		fmt.Fprintf(&b, "enum %s (%s)\n", name, strings.Join(s.Enums[name], ","))
	}
	for _, name := range s.TableNames() {
		t := s.Tables[name]
		fmt.Fprintf(&b, "table %s\n", name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  column %s\n", c.definition())
		}
		for _, k := range sortedKeys(t.Uniques) {
			u := t.Uniques[k]
			fmt.Fprintf(&b, "  unique %s (%s)\n", u.Name, strings.Join(u.Columns, ","))
		}
		for _, k := range sortedKeys(t.ForeignKeys) {
			fk := t.ForeignKeys[k]
			fmt.Fprintf(&b, "  fk %s (%s) -> %s(%s) on delete %s\n", fk.Name,
				strings.Join(fk.Columns, ","), fk.RefTable, strings.Join(fk.RefColumns, ","), fk.onDelete())
		}
	}
	for _, k := range sortedKeys(s.Indexes) {
		idx := s.Indexes[k]
		fmt.Fprintf(&b, "index %s on %s (%s) unique=%t where=%q\n", idx.Name, idx.Table,
			strings.Join(idx.Columns, ","), idx.Unique, idx.Where)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
