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
	"errors"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-arcade/workhub/internal/engine/kpi"
	"github.com/go-arcade/workhub/internal/engine/report"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/http/middleware"
	"github.com/go-arcade/workhub/pkg/version"
)

type Router struct {
	Http     *http.Http
	Store    cache.ICache
	Services *service.Services
	Kpi      *kpi.Service
	Reports  *report.Engine
	Registry *prometheus.Registry
}

func NewRouter(
	httpConf *http.Http,
	store cache.ICache,
	services *service.Services,
	kpiService *kpi.Service,
	reports *report.Engine,
	registry *prometheus.Registry,
) *Router {
	return &Router{
		Http:     httpConf,
		Store:    store,
		Services: services,
		Kpi:      kpiService,
		Reports:  reports,
		Registry: registry,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "workhub",
		DisableStartupMessage: true,
		ReadTimeout:           rt.Http.ReadTimeoutDuration(),
		WriteTimeout:          rt.Http.WriteTimeoutDuration(),
		IdleTimeout:           rt.Http.IdleTimeoutDuration(),
		BodyLimit:             rt.Http.BodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          errorHandler,
	})

	// order matters: the request id must exist before anything logs
	app.Use(
		middleware.RequestMiddleware(),
		middleware.ExceptionMiddleware,
		middleware.TraceMiddleware(),
		middleware.AccessLogMiddleware(rt.Http.AccessLog),
		middleware.CorsMiddleware(rt.Http.AllowOrigins),
		middleware.MetricsMiddleware(),
		middleware.TimeoutMiddleware(rt.Http.RequestTimeoutDuration()),
		middleware.UnifiedResponseMiddleware(),
	)

	if rt.Http.ExposeMetrics && rt.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{})))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return detail(c, version.GetVersion())
	})

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth, rt.Store)

	rt.authRouter(app.Group("/auth"), auth)

	api := app.Group("/api", auth)
	{
		rt.userRouter(api)
		rt.taskRouter(api)
		rt.projectRouter(api)
		rt.teamRouter(api)
		rt.documentRouter(api)
		rt.kpiRouter(api)
		rt.reportRouter(api)
		rt.favoriteRouter(api)
		rt.dashboardRouter(api)
		api.Get("/statistics", rt.statistics)
	}

	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErr(c, fiber.StatusNotFound, http.RouteNotFound.Code, http.RouteNotFound.Msg)
	})

	return app
}

// errorHandler renders every error a handler returns with the error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return http.WithRepErr(c, fe.Code, fe.Code, fe.Message)
	}
	return http.WithError(c, err)
}

func principal(c *fiber.Ctx) *service.Principal {
	claims, _ := middleware.ClaimsFrom(c)
	return service.PrincipalFromClaims(claims)
}

func idParam(c *fiber.Ctx, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, errs.Validation("%s must be a positive integer", name)
	}
	return v, nil
}

func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return errs.Validation("%s: %v", http.RequestParameterParsingFailed.Msg, err)
	}
	return nil
}

func bindQuery(c *fiber.Ctx, v any) error {
	if err := c.QueryParser(v); err != nil {
		return errs.Validation("%s: %v", http.RequestParameterParsingFailed.Msg, err)
	}
	return nil
}

func detail(c *fiber.Ctx, v any) error {
	c.Locals(http.DETAIL, v)
	return nil
}

func created(c *fiber.Ctx, v any) error {
	c.Locals(http.STATUS, fiber.StatusCreated)
	c.Locals(http.DETAIL, v)
	return nil
}

func deleted(c *fiber.Ctx) error {
	c.Locals(http.STATUS, fiber.StatusNoContent)
	c.Locals(http.OPERATION, c.Path())
	return nil
}
