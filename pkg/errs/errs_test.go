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

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("bad %s", "input"), want: KindValidation},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", NotFound("user not found")), want: KindNotFound},
		{name: "plain error", err: errors.New("boom"), want: KindUnexpected},
		{name: "nil", err: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("team member already active"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFromDB(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(FromDB(gorm.ErrRecordNotFound, "project")))
	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrDuplicatedKey, "favorite file")))
	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrForeignKeyViolated, "user")))
	assert.Equal(t, KindUnexpected, KindOf(FromDB(errors.New("connection reset"), "task")))
	assert.NoError(t, FromDB(nil, "task"))

	kept := Validation("progress out of range")
	assert.Same(t, kept, FromDB(kept, "project"))
}

func TestMessageOfHidesUnexpected(t *testing.T) {
	assert.Equal(t, "project not found", MessageOf(NotFound("project not found")))
	assert.NotContains(t, MessageOf(Wrap(KindUnexpected, errors.New("pq: secret"), "query")), "secret")
	assert.Equal(t, 4090, CodeOf(Conflict("x")))
	assert.Equal(t, 5000, CodeOf(errors.New("x")))
}

func TestUnprocessable(t *testing.T) {
	err := Unprocessable("progress must be within 0..100")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, CodeUnprocessable, CodeOf(err))
	assert.ErrorIs(t, err, ErrValidation)
}
