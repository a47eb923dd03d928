//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/google/wire"

	"github.com/go-arcade/workhub/internal/engine/bootstrap"
	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/kpi"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/internal/engine/report"
	"github.com/go-arcade/workhub/internal/engine/router"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		log.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		repo.ProviderSet,
		service.ProviderSet,
		kpi.ProviderSet,
		report.ProviderSet,
		router.ProviderSet,
		bootstrap.ProviderSet,
	))
}
