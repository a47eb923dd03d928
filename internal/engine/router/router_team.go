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
	"github.com/go-arcade/workhub/pkg/http"
)

func (rt *Router) teamRouter(r fiber.Router) {
	teamGroup := r.Group("/teams")
	{
		teamGroup.Get("/", rt.listTeams)
		teamGroup.Post("/", rt.createTeam)
		teamGroup.Get("/:id", rt.getTeam)
		teamGroup.Put("/:id", rt.updateTeam)
		teamGroup.Delete("/:id", rt.deleteTeam)
		teamGroup.Post("/:id/disband", rt.disbandTeam)

		// membership
		teamGroup.Get("/:id/members", rt.listMembers)
		teamGroup.Post("/:id/members", rt.addMember)
		teamGroup.Put("/:id/members/:memberId", rt.updateMember)
		teamGroup.Delete("/:id/members/:userId", rt.leaveTeam)
		teamGroup.Post("/:id/members/me/:what", rt.touchMembership)
	}
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	var q model.TeamQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Team.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req model.CreateTeamReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := rt.Services.Team.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, t)
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := rt.Services.Team.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, t)
}

func (rt *Router) updateTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateTeamReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := rt.Services.Team.Update(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return detail(c, t)
}

func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Team.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) disbandTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := rt.Services.Team.Disband(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, t)
}

func (rt *Router) listMembers(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var q model.MemberQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Team.ListMembers(c.UserContext(), id, &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) addMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.AddMemberReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := rt.Services.Team.AddMember(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return created(c, m)
}

func (rt *Router) updateMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	memberId, err := idParam(c, "memberId")
	if err != nil {
		return err
	}
	var req model.UpdateMemberReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := rt.Services.Team.UpdateMember(c.UserContext(), id, memberId, &req)
	if err != nil {
		return err
	}
	return detail(c, m)
}

func (rt *Router) leaveTeam(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	userId, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	if err := rt.Services.Team.Leave(c.UserContext(), id, userId); err != nil {
		return err
	}
	return deleted(c)
}

// touchMembership records last_seen_at or last_read_at of the caller.
func (rt *Router) touchMembership(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Team.Touch(c.UserContext(), id, principal(c).UserId, c.Params("what")); err != nil {
		return err
	}
	c.Locals(http.OPERATION, c.Params("what"))
	return nil
}
