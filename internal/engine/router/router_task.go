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

func (rt *Router) taskRouter(r fiber.Router) {
	taskGroup := r.Group("/tasks")
	{
		taskGroup.Get("/", rt.listTasks)
		taskGroup.Post("/", rt.createTask)
		taskGroup.Get("/:id", rt.getTask)
		taskGroup.Put("/:id", rt.updateTask)
		taskGroup.Delete("/:id", rt.deleteTask)
	}
}

func (rt *Router) listTasks(c *fiber.Ctx) error {
	var q model.TaskQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Task.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createTask(c *fiber.Ctx) error {
	var req model.CreateTaskReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := rt.Services.Task.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, t)
}

func (rt *Router) getTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := rt.Services.Task.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, t)
}

func (rt *Router) updateTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateTaskReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := rt.Services.Task.Update(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return detail(c, t)
}

func (rt *Router) deleteTask(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Task.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}
