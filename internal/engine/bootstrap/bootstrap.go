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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/kpi"
	"github.com/go-arcade/workhub/internal/engine/migration"
	"github.com/go-arcade/workhub/internal/engine/router"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cron"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
	"github.com/go-arcade/workhub/pkg/migrate"
	"github.com/go-arcade/workhub/pkg/safe"
)

var ProviderSet = wire.NewSet(NewApp, ProvideCron, ProvideRegistry)

const (
	jobExpireDocuments = "sweep:documents"
	jobDisbandTeams    = "sweep:teams"
)

type App struct {
	HttpApp  *fiber.App
	Logger   *log.Logger
	Metrics  *metrics.Server
	Cron     *cron.Scheduler
	Kpi      *kpi.Scheduler
	Services *service.Services
	DB       database.IDatabase
	AppConf  config.AppConfig
}

// ProvideCron returns the process-wide job runner. It is started by Run.
func ProvideCron() (*cron.Scheduler, func()) {
	s := cron.New()
	return s, s.Stop
}

func ProvideRegistry(server *metrics.Server) *prometheus.Registry {
	return server.GetRegistry()
}

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	runner *cron.Scheduler,
	kpiScheduler *kpi.Scheduler,
	services *service.Services,
	db database.IDatabase,
	appConf config.AppConfig,
) (*App, func(), error) {
	app := &App{
		HttpApp:  rt.Router(),
		Logger:   logger,
		Metrics:  metricsServer,
		Cron:     runner,
		Kpi:      kpiScheduler,
		Services: services,
		DB:       db,
		AppConf:  appConf,
	}

	cleanup := func() {
		logger.Log.Info("stopping background jobs...")
		runner.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Log.Warnw("metrics server shutdown failed", "error", err)
		}
	}
	return app, cleanup, nil
}

// Migrate upgrades the schema to head when autoMigrate is on.
func Migrate(ctx context.Context, app *App) error {
	if !app.AppConf.Database.AutoMigrate {
		return nil
	}
	engine, err := migration.NewEngine(app.DB.Database())
	if err != nil {
		return err
	}
	applied, err := engine.Upgrade(ctx, migrate.TargetHead)
	if err != nil {
		return err
	}
	app.Logger.Log.Infow("schema upgraded", "applied", applied)
	return nil
}

// StartJobs registers the KPI schedules and the periodic sweeps, then starts
// the runner.
func StartJobs(ctx context.Context, app *App) error {
	kpiConf := app.AppConf.Kpi
	if kpiConf.SchedulerEnabled {
		if err := app.Kpi.Start(ctx); err != nil {
			return fmt.Errorf("start kpi scheduler: %w", err)
		}
	}
	if kpiConf.SweepSpec != "" {
		docs, teams := app.Services.Document, app.Services.Team
		if err := app.Cron.Add(jobExpireDocuments, kpiConf.SweepSpec, func(ctx context.Context) error {
			n, err := docs.ExpireDue(ctx)
			if n > 0 {
				log.WithContext(ctx).Infow("documents expired", "count", n)
			}
			return err
		}); err != nil {
			return err
		}
		if err := app.Cron.Add(jobDisbandTeams, kpiConf.SweepSpec, func(ctx context.Context) error {
			n, err := teams.SweepAutoDisband(ctx)
			if n > 0 {
				log.WithContext(ctx).Infow("teams auto-disbanded", "count", n)
			}
			return err
		}); err != nil {
			return err
		}
	}
	app.Cron.Start()
	return nil
}

// Run starts the app and waits for an exit signal, then shuts down gracefully.
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log
	appConf := app.AppConf
	ctx := context.Background()

	if err := Migrate(ctx, app); err != nil {
		logger.Fatalf("schema migration failed: %v", err)
	}
	if err := StartJobs(ctx, app); err != nil {
		logger.Fatalf("background jobs failed to start: %v", err)
	}

	if err := app.Metrics.Start(); err != nil {
		logger.Errorw("metrics server failed", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	safe.Go(func() {
		addr := fmt.Sprintf("%s:%d", appConf.Http.Host, appConf.Http.Port)
		logger.Infow("HTTP listener started", "address", addr)
		var err error
		if tls := appConf.Http.TLS; tls.CertFile != "" && tls.KeyFile != "" {
			err = app.HttpApp.ListenTLS(addr, tls.CertFile, tls.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			logger.Errorw("HTTP listener failed", "address", addr, "error", err)
		}
	})

	sig := <-quit
	logger.Infof("Received signal: %v, shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConf.Http.ShutdownTimeoutDuration())
	defer cancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()
	logger.Info("Server shutdown complete")
}
