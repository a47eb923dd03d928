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
)

func (rt *Router) userRouter(r fiber.Router) {
	userGroup := r.Group("/users")
	{
		userGroup.Get("/", rt.listUsers)
		userGroup.Post("/", rt.createUser)
		userGroup.Get("/:id", rt.getUser)
		userGroup.Put("/:id", rt.updateUser)
		userGroup.Delete("/:id", rt.deleteUser)
	}
}

func (rt *Router) listUsers(c *fiber.Ctx) error {
	var q model.UserQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.User.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createUser(c *fiber.Ctx) error {
	var req model.CreateUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := rt.Services.User.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, u)
}

func (rt *Router) getUser(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	u, err := rt.Services.User.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, u)
}

func (rt *Router) updateUser(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateUserReq
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := rt.Services.User.Update(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return detail(c, u)
}

func (rt *Router) deleteUser(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.User.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return deleted(c)
}
