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

	"github.com/go-arcade/workhub/pkg/errs"
)

const (
	TargetHead = "head"
	TargetBase = "base"
	TargetBack = "-1"
)

var (
	ErrBranchedHead   = &errs.Error{Kind: errs.KindMigrationFailed, Code: 5101, Msg: "branched head"}
	ErrNoSuchRevision = &errs.Error{Kind: errs.KindMigrationFailed, Code: 5102, Msg: "no-such-revision"}
	ErrNotApplied     = &errs.Error{Kind: errs.KindMigrationFailed, Code: 5103, Msg: "revision not applied"}
)

// Revision is one atomic schema change. No parents marks a base revision,
// more than one marks a merge.
type Revision struct {
	ID          string
	Parents     []string
	Description string
	Upgrade     []Op
	Downgrade   []Op
}

func (r *Revision) IsMerge() bool { return len(r.Parents) > 1 }

// Registry is a validated revision graph.
type Registry struct {
	revisions map[string]*Revision
	children  map[string][]string
	order     []string
	index     map[string]int
}

// NewRegistry validates the graph and performs a dry run of every revision
// against an in-memory schema: each upgrade must apply cleanly and its
// downgrade must restore the previous schema exactly.
func NewRegistry(revisions ...*Revision) (*Registry, error) {
	r := &Registry{
		revisions: make(map[string]*Revision, len(revisions)),
		children:  make(map[string][]string),
		index:     make(map[string]int),
	}
	for _, rev := range revisions {
		if rev.ID == "" {
			return nil, errs.MigrationFailed("revision without id")
		}
		if rev.ID == TargetHead || rev.ID == TargetBase || rev.ID == TargetBack {
			return nil, errs.MigrationFailed("revision id %q is reserved", rev.ID)
		}
		if _, dup := r.revisions[rev.ID]; dup {
			return nil, errs.MigrationFailed("duplicate revision %s", rev.ID)
		}
		r.revisions[rev.ID] = rev
	}
	for _, rev := range revisions {
		for _, p := range rev.Parents {
			if _, ok := r.revisions[p]; !ok {
				return nil, errs.MigrationFailed("revision %s: unknown parent %s", rev.ID, p)
			}
			if slices.Contains(r.children[p], rev.ID) {
				return nil, errs.MigrationFailed("revision %s lists parent %s twice", rev.ID, p)
			}
			r.children[p] = append(r.children[p], rev.ID)
		}
	}
	if err := r.sort(revisions); err != nil {
		return nil, err
	}
	if err := r.dryRun(); err != nil {
		return nil, err
	}
	return r, nil
}

// sort orders revisions topologically; ties keep registration order.
func (r *Registry) sort(revisions []*Revision) error {
	pending := make(map[string]int, len(revisions))
	for _, rev := range revisions {
		pending[rev.ID] = len(rev.Parents)
	}
	for len(r.order) < len(revisions) {
		progressed := false
		for _, rev := range revisions {
			if n, ok := pending[rev.ID]; !ok || n > 0 {
				continue
			}
			delete(pending, rev.ID)
			r.index[rev.ID] = len(r.order)
			r.order = append(r.order, rev.ID)
			for _, c := range r.children[rev.ID] {
				pending[c]--
			}
			progressed = true
			break
		}
		if !progressed {
			var stuck []string
			for id := range pending {
				stuck = append(stuck, id)
			}
			sort.Strings(stuck)
			return errs.MigrationFailed("revision graph has a cycle through %v", stuck)
		}
	}
	return nil
}

func (r *Registry) dryRun() error {
	s := NewSchema()
	for _, id := range r.order {
		rev := r.revisions[id]
		before := s.Dump()
		next := s.Clone()
		if err := applyOps(next, rev.Upgrade); err != nil {
			return errs.MigrationFailed("revision %s upgrade: %v", id, err)
		}
		back := next.Clone()
		if err := applyOps(back, rev.Downgrade); err != nil {
			return errs.MigrationFailed("revision %s downgrade: %v", id, err)
		}
		if back.Dump() != before {
			return errs.MigrationFailed("revision %s downgrade does not restore the previous schema", id)
		}
		s = next
	}
	return nil
}

func applyOps(s *Schema, ops []Op) error {
	for _, op := range ops {
		if err := op.Apply(s); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (r *Registry) Get(id string) (*Revision, bool) {
	rev, ok := r.revisions[id]
	return rev, ok
}

// Revisions returns every revision in topological order.
func (r *Registry) Revisions() []*Revision {
	out := make([]*Revision, len(r.order))
	for i, id := range r.order {
		out[i] = r.revisions[id]
	}
	return out
}

// Heads returns the revisions nobody descends from.
func (r *Registry) Heads() []string {
	var heads []string
	for _, id := range r.order {
		if len(r.children[id]) == 0 {
			heads = append(heads, id)
		}
	}
	return heads
}

// Ancestors returns ids and everything they descend from.
func (r *Registry) Ancestors(ids ...string) map[string]struct{} {
	seen := make(map[string]struct{})
	stack := slices.Clone(ids)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if rev, ok := r.revisions[id]; ok {
			stack = append(stack, rev.Parents...)
		}
	}
	return seen
}

// ordered returns the members of set in topological order.
func (r *Registry) ordered(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.index[ids[i]] < r.index[ids[j]] })
	return ids
}

func (r *Registry) resolve(id string) (*Revision, error) {
	rev, ok := r.revisions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRevision, id)
	}
	return rev, nil
}

// Schema replays the upgrades of every revision in heads' ancestry.
func (r *Registry) Schema(heads ...string) (*Schema, error) {
	s := NewSchema()
	for _, id := range r.ordered(r.Ancestors(heads...)) {
		rev, err := r.resolve(id)
		if err != nil {
			return nil, err
		}
		if err := applyOps(s, rev.Upgrade); err != nil {
			return nil, err
		}
	}
	return s, nil
}
