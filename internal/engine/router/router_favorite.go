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

func (rt *Router) favoriteRouter(r fiber.Router) {
	favGroup := r.Group("/favorites")
	{
		favGroup.Get("/", rt.listFavorites)
		favGroup.Post("/", rt.addFavorite)
		favGroup.Delete("/:id", rt.removeFavorite)
	}
}

func (rt *Router) listFavorites(c *fiber.Ctx) error {
	var q model.FavoriteQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	list, err := rt.Services.Favorite.List(c.UserContext(), principal(c), &q)
	if err != nil {
		return err
	}
	return detail(c, list)
}

func (rt *Router) addFavorite(c *fiber.Ctx) error {
	var req model.AddFavoriteReq
	if err := bind(c, &req); err != nil {
		return err
	}
	f, err := rt.Services.Favorite.Add(c.UserContext(), principal(c), &req)
	if err != nil {
		return err
	}
	return created(c, f)
}

func (rt *Router) removeFavorite(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Favorite.Remove(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return deleted(c)
}

func (rt *Router) statistics(c *fiber.Ctx) error {
	stats, err := rt.Services.Statistics.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return detail(c, stats)
}
