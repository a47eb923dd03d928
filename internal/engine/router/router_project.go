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

func (rt *Router) projectRouter(r fiber.Router) {
	projectGroup := r.Group("/projects")
	{
		projectGroup.Get("/", rt.listProjects)
		projectGroup.Post("/", rt.createProject)
		projectGroup.Get("/:id", rt.getProject)
		projectGroup.Put("/:id", rt.updateProject)
		projectGroup.Delete("/:id", rt.deleteProject)

		// status machine
		projectGroup.Put("/:id/status", rt.changeProjectStatus)

		// team assignment
		projectGroup.Get("/:id/teams", rt.listProjectTeams)
		projectGroup.Post("/:id/teams", rt.assignProjectTeam)
		projectGroup.Delete("/:id/teams/:teamId", rt.removeProjectTeam)
	}
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	var q model.ProjectQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Project.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createProject(c *fiber.Ctx) error {
	var req model.CreateProjectReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := rt.Services.Project.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, p)
}

func (rt *Router) getProject(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	p, err := rt.Services.Project.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, p)
}

func (rt *Router) updateProject(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateProjectReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := rt.Services.Project.Update(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return detail(c, p)
}

func (rt *Router) deleteProject(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Project.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) changeProjectStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.ChangeStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := rt.Services.Project.ChangeStatus(c.UserContext(), principal(c), id, req.Status)
	if err != nil {
		return err
	}
	return detail(c, p)
}

func (rt *Router) listProjectTeams(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	teams, err := rt.Services.Project.ListTeams(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, teams)
}

func (rt *Router) assignProjectTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.AssignTeamReq
	if err := bind(c, &req); err != nil {
		return err
	}
	pt, err := rt.Services.Project.AssignTeam(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return created(c, pt)
}

func (rt *Router) removeProjectTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	teamId, err := idParam(c, "teamId")
	if err != nil {
		return err
	}
	if err := rt.Services.Project.RemoveTeam(c.UserContext(), id, teamId); err != nil {
		return err
	}
	return deleted(c)
}
