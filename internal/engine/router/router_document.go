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

func (rt *Router) documentRouter(r fiber.Router) {
	docGroup := r.Group("/documents")
	{
		// templates first so "/templates" never reaches "/:id"
		docGroup.Get("/templates", rt.listDocumentTemplates)
		docGroup.Post("/templates", rt.createDocumentTemplate)
		docGroup.Delete("/templates/:id", rt.deleteDocumentTemplate)

		docGroup.Get("/", rt.listDocuments)
		docGroup.Post("/", rt.createDocument)
		docGroup.Get("/:id", rt.getDocument)
		docGroup.Put("/:id", rt.updateDocument)
		docGroup.Delete("/:id", rt.deleteDocument)
		docGroup.Put("/:id/status", rt.changeDocumentStatus)
		docGroup.Get("/:id/versions", rt.listDocumentVersions)
		docGroup.Post("/:id/versions", rt.newDocumentVersion)

		if children := rt.Services.DocChild; children != nil {
			childRoutes(docGroup, "workflow-steps", children.WorkflowSteps)
			childRoutes(docGroup, "signatures", children.Signatures)
			childRoutes(docGroup, "comments", children.Comments)
			childRoutes(docGroup, "attachments", children.Attachments)
			childRoutes(docGroup, "watchers", children.Watchers)
		}
	}
}

// childRoutes mounts list, create and delete of one child table under
// /:id/<path>.
func childRoutes[T any, PT service.DocumentChild[T]](r fiber.Router, path string, s *service.ChildService[T, PT]) {
	if s == nil {
		return
	}
	r.Get("/:id/"+path, func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var page model.PageReq
		if err := bindQuery(c, &page); err != nil {
			return err
		}
		list, err := s.List(c.UserContext(), id, page)
		if err != nil {
			return err
		}
		return detail(c, list)
	})
	r.Post("/:id/"+path, func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		v := PT(new(T))
		if err := bind(c, v); err != nil {
			return err
		}
		row, err := s.Create(c.UserContext(), principal(c), id, v)
		if err != nil {
			return err
		}
		return created(c, row)
	})
	r.Delete("/:id/"+path+"/:childId", func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		childId, err := idParam(c, "childId")
		if err != nil {
			return err
		}
		if err := s.Delete(c.UserContext(), id, childId); err != nil {
			return err
		}
		return deleted(c)
	})
}

func (rt *Router) listDocuments(c *fiber.Ctx) error {
	var q model.DocumentQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Document.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createDocument(c *fiber.Ctx) error {
	var req model.CreateDocumentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := rt.Services.Document.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, d)
}

func (rt *Router) getDocument(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	d, err := rt.Services.Document.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, d)
}

func (rt *Router) updateDocument(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateDocumentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := rt.Services.Document.Update(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return detail(c, d)
}

func (rt *Router) deleteDocument(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Document.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) changeDocumentStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.ChangeStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := rt.Services.Document.ChangeStatus(c.UserContext(), principal(c), id, req.Status)
	if err != nil {
		return err
	}
	return detail(c, d)
}

func (rt *Router) listDocumentVersions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	versions, err := rt.Services.Document.Versions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return detail(c, versions)
}

func (rt *Router) newDocumentVersion(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.NewVersionReq
	if err := bind(c, &req); err != nil {
		return err
	}
	d, err := rt.Services.Document.NewVersion(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return err
	}
	return created(c, d)
}

func (rt *Router) listDocumentTemplates(c *fiber.Ctx) error {
	var page model.PageReq
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	list, err := rt.Services.Document.ListTemplates(c.UserContext(), page)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) createDocumentTemplate(c *fiber.Ctx) error {
	var tpl model.DocumentTemplate
	if err := bind(c, &tpl); err != nil {
		return err
	}
	out, err := rt.Services.Document.CreateTemplate(c.UserContext(), principal(c), &tpl)
	if err != nil {
		return err
	}
	return created(c, out)
}

func (rt *Router) deleteDocumentTemplate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Document.DeleteTemplate(c.UserContext(), id); err != nil {
		return err
	}
	return deleted(c)
}
