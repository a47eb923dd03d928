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

package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/http/middleware"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	// public
	r.Post("/register", rt.register)
	r.Post("/login", rt.login)
	r.Post("/refresh", rt.refresh)

	// authenticated
	r.Post("/logout", auth, rt.logout)
	r.Get("/me", auth, rt.me)
}

func (rt *Router) register(c *fiber.Ctx) error {
	var req model.RegisterReq
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := rt.Services.Auth.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return created(c, u)
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := rt.Services.Auth.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return detail(c, resp)
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	var req model.RefreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return errs.Validation("refreshToken is required")
	}
	resp, err := rt.Services.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return detail(c, resp)
}

func (rt *Router) logout(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return errs.Unauthenticated("missing session")
	}
	if err := rt.Services.Auth.Logout(c.UserContext(), claims.SessionId()); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) me(c *fiber.Ctx) error {
	u, err := rt.Services.Auth.Me(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return detail(c, u)
}
