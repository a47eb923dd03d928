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

package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// ExceptionMiddleware turns a panic into an opaque 500 and logs the stack.
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithContext(c.UserContext()).Errorw("panic recovered",
				"panic", fmt.Sprint(r),
				"path", c.Path(),
				"stack", string(debug.Stack()),
			)
			err = http.WithRepErr(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg)
		}
	}()
	return c.Next()
}
