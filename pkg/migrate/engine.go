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
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/log"
)

const (
	DirectionUpgrade   = "upgrade"
	DirectionDowngrade = "downgrade"
)

// Observer is notified after every committed revision.
type Observer func(direction, revision string, elapsed time.Duration)

type Engine struct {
	registry *Registry
	store    Store
	observer Observer
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(registry *Registry, store Store, opts ...Option) *Engine {
	e := &Engine{registry: registry, store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *Registry { return e.registry }

// HistoryEntry is one revision with its applied marker.
type HistoryEntry struct {
	Revision *Revision
	Applied  bool
	Head     bool
}

func (h HistoryEntry) String() string {
	var b strings.Builder
	parents := "<base>"
	if len(h.Revision.Parents) > 0 {
		parents = strings.Join(h.Revision.Parents, ", ")
	}
	fmt.Fprintf(&b, "%s -> %s", parents, h.Revision.ID)
	if h.Revision.IsMerge() {
		b.WriteString(" (merge)")
	}
	if h.Head {
		b.WriteString(" (head)")
	}
	if h.Applied {
		b.WriteString(" [applied]")
	}
	if h.Revision.Description != "" {
		b.WriteString(", " + h.Revision.Description)
	}
	return b.String()
}

// Current returns the recorded heads, sorted.
func (e *Engine) Current(ctx context.Context) ([]string, error) {
	heads, err := e.store.Heads(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindMigrationFailed, err, "read current revision")
	}
	sort.Strings(heads)
	return heads, nil
}

func (e *Engine) History(ctx context.Context) ([]HistoryEntry, error) {
	heads, err := e.Current(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := e.applied(heads)
	if err != nil {
		return nil, err
	}
	revs := e.registry.Revisions()
	out := make([]HistoryEntry, len(revs))
	for i, rev := range revs {
		_, ok := applied[rev.ID]
		out[i] = HistoryEntry{Revision: rev, Applied: ok, Head: len(e.registry.children[rev.ID]) == 0}
	}
	return out, nil
}

func (e *Engine) applied(heads []string) (map[string]struct{}, error) {
	for _, h := range heads {
		if _, err := e.registry.resolve(h); err != nil {
			return nil, err
		}
	}
	return e.registry.Ancestors(heads...), nil
}

// Upgrade applies every ancestor of target that is not applied yet, one
// transaction per revision. It returns the ids it applied.
func (e *Engine) Upgrade(ctx context.Context, target string) ([]string, error) {
	unlock, err := e.store.Lock(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindMigrationFailed, err, "lock")
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warnw("release migration lock failed", "error", err)
		}
	}()

	// 1. read heads under the lock so a concurrent run sees our result
	heads, err := e.Current(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := e.applied(heads)
	if err != nil {
		return nil, err
	}

	// 2. resolve the target
	if target == TargetHead {
		graphHeads := e.registry.Heads()
		switch len(graphHeads) {
		case 0:
			return nil, nil
		case 1:
			target = graphHeads[0]
		default:
			return nil, fmt.Errorf("%w: heads %s", ErrBranchedHead, strings.Join(graphHeads, ", "))
		}
	}
	if _, err := e.registry.resolve(target); err != nil {
		return nil, err
	}
	if _, ok := applied[target]; ok {
		log.Infow("migration target already applied", "target", target)
		return nil, nil
	}

	// 3. leaving a branched state requires a target that merges every head
	if len(heads) > 1 {
		ancestry := e.registry.Ancestors(target)
		for _, h := range heads {
			if _, ok := ancestry[h]; !ok {
				return nil, fmt.Errorf("%w: heads %s, target %s does not merge them",
					ErrBranchedHead, strings.Join(heads, ", "), target)
			}
		}
	}

	// 4. plan and apply
	pending := make(map[string]struct{})
	for id := range e.registry.Ancestors(target) {
		if _, ok := applied[id]; !ok {
			pending[id] = struct{}{}
		}
	}
	var done []string
	for _, id := range e.registry.ordered(pending) {
		rev := e.registry.revisions[id]
		next := replace(heads, rev.Parents, rev.ID)
		if err := e.run(ctx, DirectionUpgrade, rev, rev.Upgrade, next); err != nil {
			return done, err
		}
		heads = next
		done = append(done, id)
	}
	return done, nil
}

// Downgrade reverts applied revisions that target does not descend from.
// target is a revision id, TargetBack or TargetBase.
func (e *Engine) Downgrade(ctx context.Context, target string) ([]string, error) {
	unlock, err := e.store.Lock(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindMigrationFailed, err, "lock")
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warnw("release migration lock failed", "error", err)
		}
	}()

	heads, err := e.Current(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := e.applied(heads)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]struct{})
	switch target {
	case TargetBase:
	case TargetBack:
		switch len(heads) {
		case 0:
			return nil, nil
		case 1:
			for id := range applied {
				if id != heads[0] {
					keep[id] = struct{}{}
				}
			}
		default:
			return nil, fmt.Errorf("%w: heads %s, downgrade to an explicit revision",
				ErrBranchedHead, strings.Join(heads, ", "))
		}
	default:
		if _, err := e.registry.resolve(target); err != nil {
			return nil, err
		}
		if _, ok := applied[target]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotApplied, target)
		}
		keep = e.registry.Ancestors(target)
	}

	revert := make(map[string]struct{})
	for id := range applied {
		if _, ok := keep[id]; !ok {
			revert[id] = struct{}{}
		}
	}
	order := e.registry.ordered(revert)
	slices.Reverse(order)

	var done []string
	for _, id := range order {
		rev := e.registry.revisions[id]
		next := e.afterRevert(heads, rev)
		if err := e.run(ctx, DirectionDowngrade, rev, rev.Downgrade, next); err != nil {
			return done, err
		}
		heads = next
		done = append(done, id)
	}
	return done, nil
}

// afterRevert drops rev from heads and restores those of its parents that
// no remaining head already descends from.
func (e *Engine) afterRevert(heads []string, rev *Revision) []string {
	var next []string
	for _, h := range heads {
		if h != rev.ID {
			next = append(next, h)
		}
	}
	covered := e.registry.Ancestors(next...)
	for _, p := range rev.Parents {
		if _, ok := covered[p]; !ok {
			next = append(next, p)
		}
	}
	sort.Strings(next)
	return next
}

func (e *Engine) run(ctx context.Context, direction string, rev *Revision, ops []Op, heads []string) error {
	start := time.Now()
	log.Infow("running migration", "direction", direction, "revision", rev.ID, "description", rev.Description)
	err := e.store.InTx(ctx, func(tx Tx) error {
		for _, op := range ops {
			if err := tx.Apply(ctx, op); err != nil {
				return err
			}
		}
		return tx.SetHeads(ctx, heads)
	})
	if err != nil {
		log.Errorw("migration failed", "direction", direction, "revision", rev.ID, "error", err)
		return errs.Wrap(errs.KindMigrationFailed, err, fmt.Sprintf("%s %s", direction, rev.ID))
	}
	elapsed := time.Since(start)
	if e.observer != nil {
		e.observer(direction, rev.ID, elapsed)
	}
	log.Infow("migration applied", "direction", direction, "revision", rev.ID, "elapsed", elapsed)
	return nil
}

// replace removes parents from heads and adds id.
func replace(heads, parents []string, id string) []string {
	next := make([]string, 0, len(heads)+1)
	for _, h := range heads {
		if !slices.Contains(parents, h) {
			next = append(next, h)
		}
	}
	next = append(next, id)
	sort.Strings(next)
	return next
}
