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
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/http/jwt"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestRequestMiddleware_PreservesExistingId(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		assert.Equal(t, "existing-request-id-12345", c.Get(HeaderRequestId))
		assert.Equal(t, "existing-request-id-12345", log.RequestIDFromContext(c.UserContext()))
		return c.SendString("ok")
	})

	req := httptest.NewRequest(nethttp.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestId, "existing-request-id-12345")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "existing-request-id-12345", resp.Header.Get(HeaderRequestId))
}

func TestRequestMiddleware_GeneratesUUID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendString("ok") })

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/test", nil))
		require.NoError(t, err)
		rid := resp.Header.Get(HeaderRequestId)
		_, err = uuid.Parse(rid)
		assert.NoError(t, err)
		assert.False(t, seen[rid])
		seen[rid] = true
	}
}

func TestUnifiedResponseMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(UnifiedResponseMiddleware())
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(http.DETAIL, fiber.Map{"id": 1})
		return nil
	})
	app.Post("/created", func(c *fiber.Ctx) error {
		c.Locals(http.STATUS, fiber.StatusCreated)
		c.Locals(http.DETAIL, fiber.Map{"id": 2})
		return nil
	})
	app.Delete("/gone", func(c *fiber.Ctx) error {
		c.Locals(http.STATUS, fiber.StatusNoContent)
		c.Locals(http.OPERATION, "delete")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/detail", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(200), body["code"])
	assert.Equal(t, "Request Success", body["msg"])

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodPost, "/created", nil))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodDelete, "/gone", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestExceptionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware(), ExceptionMiddleware)
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, http.InternalError.Msg, body["errMsg"])
	assert.NotEmpty(t, body["requestId"])
}

func TestTimeoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(TimeoutMiddleware(20 * time.Millisecond))
	app.Get("/slow", func(c *fiber.Ctx) error {
		<-c.UserContext().Done()
		return c.UserContext().Err()
	})
	app.Get("/fast", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		assert.True(t, ok)
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/slow", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/fast", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCorsMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(CorsMiddleware("https://app.example.com"))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(nethttp.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Custom")

	req = httptest.NewRequest(nethttp.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAuthorizationMiddleware(t *testing.T) {
	auth := http.Auth{SecretKey: "secret", RedisKeyPrefix: "t:"}
	store := cache.NewFastCache(cache.FastCacheConfig{})
	pair, err := jwt.GenToken(jwt.AuthClaims{UserId: 9, Role: "admin"}, []byte(auth.SecretKey), time.Hour, time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(AuthorizationMiddleware(auth, store))
	app.Get("/me", func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"id": claims.UserId})
	})

	call := func(header string) int {
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 401, call(""))
	assert.Equal(t, 401, call("Token abc"))
	assert.Equal(t, 401, call("Bearer not-a-jwt"))
	// session not recorded yet
	assert.Equal(t, 401, call("Bearer "+pair.AccessToken))

	store.Set(context.Background(), SessionKey(auth.RedisKeyPrefix, pair.SessionId), "9", time.Hour)
	assert.Equal(t, 200, call("Bearer "+pair.AccessToken))
	assert.Equal(t, 401, call("Bearer "+pair.RefreshToken))
}
