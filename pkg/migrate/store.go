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
	"slices"
	"sync"
)

// Store persists the schema and the recorded heads.
type Store interface {
	// Lock blocks until the global migration lock is held.
	Lock(ctx context.Context) (unlock func() error, err error)
	Heads(ctx context.Context) ([]string, error)
	// InTx runs fn in one transaction; an error rolls everything back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	Apply(ctx context.Context, op Op) error
	SetHeads(ctx context.Context, heads []string) error
}

// MemoryStore keeps the schema in memory. Transactions work on a copy that
// replaces the live schema only on commit.
type MemoryStore struct {
	lock chan struct{}

	mu     sync.Mutex
	schema *Schema
	heads  []string

	// BeforeApply, when set, may fail an op before it runs.
	BeforeApply func(op Op) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lock:   make(chan struct{}, 1),
		schema: NewSchema(),
	}
}

func (m *MemoryStore) Lock(ctx context.Context) (func() error, error) {
	select {
	case m.lock <- struct{}{}:
		return func() error {
			<-m.lock
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MemoryStore) Heads(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.heads), nil
}

// Schema returns a copy of the committed schema.
func (m *MemoryStore) Schema() *Schema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schema.Clone()
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	tx := &memoryTx{store: m, schema: m.schema.Clone(), heads: slices.Clone(m.heads)}
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.schema = tx.schema
	m.heads = tx.heads
	m.mu.Unlock()
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	schema *Schema
	heads  []string
}

func (t *memoryTx) Apply(_ context.Context, op Op) error {
	if t.store.BeforeApply != nil {
		if err := t.store.BeforeApply(op); err != nil {
			return err
		}
	}
	return op.Apply(t.schema)
}

func (t *memoryTx) SetHeads(_ context.Context, heads []string) error {
	t.heads = slices.Clone(heads)
	return nil
}
