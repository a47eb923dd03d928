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

package kpi

import (
	"github.com/google/wire"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/database"
)

var ProviderSet = wire.NewSet(ProvideNotifier, ProvideEngine, ProvideService, NewScheduler)

func ProvideEngine(db database.IDatabase, kpis repo.IKpiRepository, inputs repo.IKpiInputRepository, notifier Notifier) *Engine {
	return NewEngine(db, kpis, inputs, notifier)
}

func ProvideService(db database.IDatabase, kpis repo.IKpiRepository, support *repo.KpiSupportRepos, engine *Engine, conf config.KpiConfig) *Service {
	return NewService(db, kpis, support, engine, conf)
}
