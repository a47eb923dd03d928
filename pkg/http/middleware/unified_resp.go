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
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// UnifiedResponseMiddleware wraps handler results stored in Locals into the
// success envelope. Locals(STATUS) overrides the default 200, e.g. 201 on
// create or 204 on delete.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status, _ := c.Locals(http.STATUS).(int)
		if status == 0 {
			status = fiber.StatusOK
		}

		if detail := c.Locals(http.DETAIL); detail != nil {
			return http.WithRepStatus(c, status, detail)
		}
		if c.Locals(http.OPERATION) != nil {
			if status == fiber.StatusNoContent {
				return http.WithRepNoContent(c)
			}
			c.Status(status)
			return http.WithRepNotDetail(c)
		}
		return nil
	}
}
