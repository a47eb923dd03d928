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

package http

import (
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode   int    `json:"code"`
	ErrMsg    string `json:"errMsg"`
	Path      string `json:"path"`
	RequestID string `json:"requestId,omitempty"`
}

// WithRepErr writes an error envelope with the given http status
func WithRepErr(c *fiber.Ctx, status, code int, errMsg string) error {
	rid, _ := c.Locals(REQUESTID).(string)
	return c.Status(status).JSON(ResponseErr{
		ErrCode:   code,
		ErrMsg:    errMsg,
		Path:      c.Path(),
		RequestID: rid,
	})
}

// StatusOf maps an error kind to its http status.
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		if errs.CodeOf(err) == errs.CodeUnprocessable {
			return fiber.StatusUnprocessableEntity
		}
		return fiber.StatusBadRequest
	case errs.KindFormulaInvalid:
		return fiber.StatusUnprocessableEntity
	case errs.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case errs.KindForbidden:
		return fiber.StatusForbidden
	case errs.KindNotFound:
		return fiber.StatusNotFound
	case errs.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// WithError renders err. Unexpected errors are logged with the request id
// and answered with an opaque message.
func WithError(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	if status == fiber.StatusInternalServerError {
		log.WithContext(c.UserContext()).Errorw("unexpected error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return WithRepErr(c, status, errs.CodeOf(err), errs.MessageOf(err))
}
