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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type light string

const (
	red    light = "red"
	green  light = "green"
	yellow light = "yellow"
)

func newLight() *StateMachine[light] {
	return New[light]().
		Allow(red, green).
		Allow(green, yellow).
		Allow(yellow, red)
}

func TestStateMachine_Transition(t *testing.T) {
	sm := newLight()
	assert.NoError(t, sm.Transition(red, green))
	err := sm.Transition(red, yellow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, sm.Transition(red, red), ErrInvalidTransition)
}

func TestStateMachine_AllowDeduplicates(t *testing.T) {
	sm := newLight().Allow(red, green, green)
	assert.Equal(t, []light{green}, sm.NextStates(red))
}

func TestStateMachine_NextStatesIsCopy(t *testing.T) {
	sm := newLight()
	next := sm.NextStates(red)
	next[0] = yellow
	assert.Equal(t, []light{green}, sm.NextStates(red))
	assert.Empty(t, sm.NextStates("blue"))
}

func TestStateMachine_Validator(t *testing.T) {
	veto := errors.New("maintenance")
	sm := newLight().AddValidator(func(from, to light) error {
		if to == green {
			return veto
		}
		return nil
	})
	assert.ErrorIs(t, sm.Transition(red, green), veto)
	assert.NoError(t, sm.Transition(green, yellow))
}

func TestStateMachine_OnEnter(t *testing.T) {
	var entered []light
	sm := newLight().OnEnter(green, func(from, to light) error {
		entered = append(entered, from, to)
		return nil
	})
	require.NoError(t, sm.Transition(red, green))
	assert.Equal(t, []light{red, green}, entered)

	boom := errors.New("boom")
	sm.OnEnter(yellow, func(from, to light) error { return boom })
	assert.ErrorIs(t, sm.Transition(green, yellow), boom)
}

func TestStateMachine_Terminal(t *testing.T) {
	sm := newLight().Terminal(yellow)
	assert.True(t, sm.IsTerminal(yellow))
	assert.False(t, sm.IsTerminal(red))
}
