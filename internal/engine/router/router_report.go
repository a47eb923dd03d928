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
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/workhub/internal/engine/model"
)

const headerArchivePath = "X-Archive-Path"

func (rt *Router) reportRouter(r fiber.Router) {
	if rt.Reports == nil {
		return
	}
	reportGroup := r.Group("/reports")
	{
		reportGroup.Delete("/cache", rt.invalidateReports)
		reportGroup.Get("/:kind", rt.generateReport)
		reportGroup.Get("/:kind/export", rt.exportReport)
	}
}

func (rt *Router) generateReport(c *fiber.Ctx) error {
	var f model.ReportFilter
	if err := bindQuery(c, &f); err != nil {
		return err
	}
	body, err := rt.Reports.Generate(c.UserContext(), principal(c), c.Params("kind"), f)
	if err != nil {
		return err
	}
	return detail(c, json.RawMessage(body))
}

// exportReport writes the file directly; it bypasses the envelope.
func (rt *Router) exportReport(c *fiber.Ctx) error {
	var f model.ReportFilter
	if err := bindQuery(c, &f); err != nil {
		return err
	}
	exp, err := rt.Reports.Export(c.UserContext(), principal(c), c.Params("kind"), c.Query("format", "json"), f)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, exp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exp.Filename))
	if exp.ArchivePath != "" {
		c.Set(headerArchivePath, exp.ArchivePath)
	}
	return c.Status(fiber.StatusOK).Send(exp.Body)
}

func (rt *Router) invalidateReports(c *fiber.Ctx) error {
	if err := rt.Reports.Invalidate(c.UserContext(), principal(c)); err != nil {
		return err
	}
	return deleted(c)
}
