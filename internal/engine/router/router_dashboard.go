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
	"github.com/go-arcade/workhub/internal/engine/service"
)

func (rt *Router) dashboardRouter(r fiber.Router) {
	d := rt.Services.Dashboard
	if d == nil {
		return
	}
	dashGroup := r.Group("/dashboards")
	{
		resourceRoutes(dashGroup, "/flows", d.Flows)
		resourceRoutes(dashGroup, "/widget-types", d.WidgetTypes)
		resourceRoutes(dashGroup, "/data", d.DashboardDatas)
		resourceRoutes(dashGroup, "/widgets", d.Widgets)
		resourceRoutes(dashGroup, "/access", d.Access)
		resourceRoutes(dashGroup, "/flow-bindings", d.FlowDashboards)
		resourceRoutes(dashGroup, "/groups", d.Groups)
		resourceRoutes(dashGroup, "/group-members", d.GroupMembers)
		// the dashboards themselves last so /:id does not shadow the above
		resourceRoutes(dashGroup, "", d.Dashboards)
	}
}

// resourceRoutes mounts list, create, get, patch and delete for one table.
func resourceRoutes[T any, PT service.Identified[T]](r fiber.Router, path string, s *service.Resource[T, PT]) {
	if s == nil {
		return
	}
	r.Get(path+"/", func(c *fiber.Ctx) error {
		var page model.PageReq
		if err := bindQuery(c, &page); err != nil {
			return err
		}
		list, err := s.List(c.UserContext(), c.Queries(), page)
		if err != nil {
			return err
		}
		return detail(c, list)
	})
	r.Post(path+"/", func(c *fiber.Ctx) error {
		v := PT(new(T))
		if err := bind(c, v); err != nil {
			return err
		}
		out, err := s.Create(c.UserContext(), principal(c), v)
		if err != nil {
			return err
		}
		return created(c, out)
	})
	r.Get(path+"/:id", func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		out, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return detail(c, out)
	})
	r.Put(path+"/:id", func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		patch := map[string]any{}
		if err := bind(c, &patch); err != nil {
			return err
		}
		out, err := s.Update(c.UserContext(), id, patch)
		if err != nil {
			return err
		}
		return detail(c, out)
	})
	r.Delete(path+"/:id", func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := s.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return deleted(c)
	})
}
