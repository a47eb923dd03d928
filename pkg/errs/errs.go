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

// Package errs defines the error kinds surfaced by the catalog, the report
// and KPI engines and the migration engine.
package errs

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not-found"
	KindConflict        Kind = "conflict"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindFormulaInvalid  Kind = "formula-invalid"
	KindMigrationFailed Kind = "migration-failed"
	KindUnexpected      Kind = "unexpected"
)

// Error carries a kind, a machine readable code and a human message.
type Error struct {
	Kind Kind
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can compare against the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrFormulaInvalid  = &Error{Kind: KindFormulaInvalid}
	ErrMigrationFailed = &Error{Kind: KindMigrationFailed}
	ErrUnexpected      = &Error{Kind: KindUnexpected}
)

// CodeUnprocessable marks validation errors answered with 422.
const CodeUnprocessable = 4221

// business codes: http status prefix plus a sequence number
var kindCodes = map[Kind]int{
	KindValidation:      4000,
	KindUnauthenticated: 4401,
	KindForbidden:       4030,
	KindNotFound:        4004,
	KindConflict:        4090,
	KindFormulaInvalid:  4220,
	KindMigrationFailed: 5100,
	KindUnexpected:      5000,
}

func newError(kind Kind, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Code: kindCodes[kind], Msg: msg}
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

// Unprocessable is a validation error on well formed input that breaks a
// domain rule, such as a progress outside 0..100.
func Unprocessable(format string, args ...any) error {
	e := newError(KindValidation, format, args...)
	e.Code = CodeUnprocessable
	return e
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(KindUnauthenticated, format, args...)
}

func FormulaInvalid(format string, args ...any) error {
	return newError(KindFormulaInvalid, format, args...)
}

func MigrationFailed(format string, args ...any) error {
	return newError(KindMigrationFailed, format, args...)
}

// Wrap attaches a kind to an underlying error. The original error keeps its
// stack through github.com/pkg/errors.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: kindCodes[kind], Msg: msg, Err: errors.WithStack(err)}
}

// KindOf reports the kind of err. Errors without a kind are unexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// CodeOf returns the machine readable code of err.
func CodeOf(err error) int {
	var e *Error
	if stderrors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return kindCodes[KindOf(err)]
}

// MessageOf returns the message that may be shown to a client. Unexpected
// errors never leak their cause.
func MessageOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) && e.Kind != KindUnexpected {
		return e.Msg
	}
	return "Internal error, please contact the administrator"
}

// FromDB translates gorm errors into catalog error kinds.
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, err, fmt.Sprintf("%s already exists", what))
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(KindConflict, err, fmt.Sprintf("%s is still referenced", what))
	case stderrors.Is(err, gorm.ErrCheckConstraintViolated):
		return Wrap(KindValidation, err, fmt.Sprintf("%s violates a check constraint", what))
	}
	var e *Error
	if stderrors.As(err, &e) {
		return err
	}
	return Wrap(KindUnexpected, err, what)
}
