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
	"errors"
	"strings"

	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/http/jwt"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// SessionKey is where the auth service records a live session.
func SessionKey(prefix, sessionId string) string {
	return prefix + sessionId
}

// AuthorizationMiddleware verifies the bearer access token and that its
// session has not been revoked, then stores the claims in Locals(CLAIMS).
func AuthorizationMiddleware(auth http.Auth, store cache.ICache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return http.WithRepErr(c, fiber.StatusUnauthorized, http.AuthorizationEmpty.Code, http.AuthorizationEmpty.Msg)
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return http.WithRepErr(c, fiber.StatusUnauthorized, http.TokenFormatIncorrect.Code, http.TokenFormatIncorrect.Msg)
		}

		claims, err := jwt.ParseToken(parts[1], auth.SecretKey, jwt.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return http.WithRepErr(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg)
			}
			log.WithContext(c.UserContext()).Debugw("parse token failed", "error", err)
			return http.WithRepErr(c, fiber.StatusUnauthorized, http.InvalidToken.Code, http.InvalidToken.Msg)
		}

		err = store.Get(c.UserContext(), SessionKey(auth.RedisKeyPrefix, claims.SessionId())).Err()
		if errors.Is(err, redis.Nil) {
			return http.WithRepErr(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg)
		}
		if err != nil {
			log.WithContext(c.UserContext()).Errorw("check session failed", "error", err)
			return http.WithRepErr(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg)
		}

		c.Locals(http.CLAIMS, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthorizationMiddleware.
func ClaimsFrom(c *fiber.Ctx) (*jwt.AuthClaims, bool) {
	claims, ok := c.Locals(http.CLAIMS).(*jwt.AuthClaims)
	return claims, ok && claims != nil
}
