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
	"strings"
	"time"

	"github.com/go-arcade/workhub/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type writerFunc func(p []byte) (int, error)

func (w writerFunc) Write(p []byte) (int, error) {
	return w(p)
}

// paths under a "/*" rule are matched by prefix
var excludedPaths = []string{
	"/health",
	"/metrics",
}

func skipPath(path string) bool {
	for _, rule := range excludedPaths {
		if prefix, ok := strings.CutSuffix(rule, "/*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if path == rule {
			return true
		}
	}
	return false
}

// AccessLogMiddleware writes one line per request through the zap logger.
func AccessLogMiddleware(enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return logger.New(logger.Config{
		TimeFormat: time.RFC3339Nano,
		TimeZone:   "UTC",
		Format:     "rid:[${locals:request_id}] ip:[${ip}] method:[${method}] path:[${path}] status:[${status}] latency:[${latency}] bytes:[${bytesSent}] ua:[${ua}] error:[${error}]",
		Next: func(c *fiber.Ctx) bool {
			return skipPath(c.Path())
		},
		Output: writerFunc(func(p []byte) (int, error) {
			log.Info(strings.TrimSpace(string(p)))
			return len(p), nil
		}),
	})
}
