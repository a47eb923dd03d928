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

func (rt *Router) kpiRouter(r fiber.Router) {
	if rt.Kpi == nil {
		return
	}
	kpiGroup := r.Group("/kpi")
	{
		kpiGroup.Get("/", rt.listKpis)
		kpiGroup.Post("/", rt.createKpi)
		kpiGroup.Post("/calculate", rt.calculateKpis)

		kpiGroup.Get("/templates", rt.listKpiTemplates)
		kpiGroup.Post("/templates", rt.createKpiTemplate)
		kpiGroup.Delete("/templates/:id", rt.deleteKpiTemplate)
		kpiGroup.Post("/templates/:id/instantiate", rt.instantiateKpiTemplate)

		kpiGroup.Get("/schedules", rt.listKpiSchedules)
		kpiGroup.Post("/schedules", rt.createKpiSchedule)
		kpiGroup.Delete("/schedules/:id", rt.deleteKpiSchedule)

		kpiGroup.Get("/notifications", rt.listKpiNotifications)
		kpiGroup.Put("/notifications/:id/read", rt.readKpiNotification)

		// static paths above must win over /:id
		kpiGroup.Get("/:id", rt.getKpi)
		kpiGroup.Put("/:id", rt.updateKpi)
		kpiGroup.Delete("/:id", rt.deleteKpi)
		kpiGroup.Get("/:id/calculations", rt.listKpiCalculations)
	}
}

func (rt *Router) listKpis(c *fiber.Ctx) error {
	var q model.KpiQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Kpi.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createKpi(c *fiber.Ctx) error {
	var req model.CreateKpiReq
	if err := bind(c, &req); err != nil {
		return err
	}
	k, err := rt.Kpi.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, k)
}

func (rt *Router) getKpi(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	k, err := rt.Kpi.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, k)
}

func (rt *Router) updateKpi(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateKpiReq
	if err := bind(c, &req); err != nil {
		return err
	}
	k, err := rt.Kpi.Update(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return detail(c, k)
}

func (rt *Router) deleteKpi(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Kpi.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) calculateKpis(c *fiber.Ctx) error {
	var req model.CalculateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	calcs, err := rt.Kpi.Calculate(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return detail(c, calcs)
}

func (rt *Router) listKpiCalculations(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var page model.PageReq
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	list, err := rt.Kpi.Calculations(c.UserContext(), id, page)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) listKpiTemplates(c *fiber.Ctx) error {
	var page model.PageReq
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	list, err := rt.Kpi.ListTemplates(c.UserContext(), page)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createKpiTemplate(c *fiber.Ctx) error {
	var req model.CreateKpiTemplateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := rt.Kpi.CreateTemplate(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return created(c, t)
}

func (rt *Router) deleteKpiTemplate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Kpi.DeleteTemplate(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) instantiateKpiTemplate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.InstantiateKpiReq
	if err := bind(c, &req); err != nil {
		return err
	}
	k, err := rt.Kpi.Instantiate(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return created(c, k)
}

func (rt *Router) listKpiSchedules(c *fiber.Ctx) error {
	var q model.ScheduleQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Kpi.ListSchedules(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createKpiSchedule(c *fiber.Ctx) error {
	var req model.CreateScheduleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := rt.Kpi.CreateSchedule(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, s)
}

func (rt *Router) deleteKpiSchedule(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Kpi.DeleteSchedule(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) listKpiNotifications(c *fiber.Ctx) error {
	var q model.NotificationQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Kpi.ListNotifications(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) readKpiNotification(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Kpi.MarkNotificationRead(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}
