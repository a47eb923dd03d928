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

package statemachine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned when from → to is not an allowed edge.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionValidator can veto an otherwise allowed transition.
type TransitionValidator[T comparable] func(from, to T) error

// StateHook runs after a transition into state has been accepted.
type StateHook[T comparable] func(from, to T) error

// StateMachine holds the transition graph of a lifecycle. It carries no
// current state: callers pass the persisted state in, so one machine is
// shared by every request.
type StateMachine[T comparable] struct {
	mu          sync.RWMutex
	transitions map[T][]T
	terminal    map[T]bool
	validators  []TransitionValidator[T]
	onEnter     map[T][]StateHook[T]
}

func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		transitions: make(map[T][]T),
		terminal:    make(map[T]bool),
		onEnter:     make(map[T][]StateHook[T]),
	}
}

// Allow adds the edges from → to...
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.transitions[from], target) {
			sm.transitions[from] = append(sm.transitions[from], target)
		}
	}
	return sm
}

// Terminal marks states with no outgoing edges.
func (sm *StateMachine[T]) Terminal(states ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, s := range states {
		sm.terminal[s] = true
	}
	return sm
}

func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.terminal[state]
}

func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.transitions[from], to)
}

// NextStates returns a copy of the allowed targets of from.
func (sm *StateMachine[T]) NextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.transitions[from])
}

func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

func (sm *StateMachine[T]) OnEnter(state T, h StateHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = append(sm.onEnter[state], h)
	return sm
}

// Transition checks from → to against the graph and validators, then runs
// the enter hooks of to. A same-state transition is rejected.
func (sm *StateMachine[T]) Transition(from, to T) error {
	sm.mu.RLock()
	allowed := slices.Contains(sm.transitions[from], to)
	validators := slices.Clone(sm.validators)
	hooks := slices.Clone(sm.onEnter[to])
	sm.mu.RUnlock()

	if !allowed {
		return fmt.Errorf("%w: %v → %v", ErrInvalidTransition, from, to)
	}
	for _, v := range validators {
		if err := v(from, to); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	for _, h := range hooks {
		if err := h(from, to); err != nil {
			return fmt.Errorf("enter hook failed for state %v: %w", to, err)
		}
	}
	return nil
}
