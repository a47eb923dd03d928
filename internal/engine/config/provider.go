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

package config

import (
	"github.com/google/wire"

	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
)

var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideCacheConfig,
	ProvideMetricsConfig,
	ProvideReportConfig,
	ProvideKpiConfig,
	ProvideStorageConfig,
)

func ProvideConf(configPath string) AppConfig {
	return NewConf(configPath)
}

func ProvideHttpConfig(appConf AppConfig) *http.Http {
	httpConfig := appConf.Http
	httpConfig.SetDefaults()
	return &httpConfig
}

func ProvideLogConfig(appConf AppConfig) *log.Conf {
	logConf := appConf.Log
	return &logConf
}

func ProvideDatabaseConfig(appConf AppConfig) database.Database {
	return appConf.Database
}

func ProvideRedisConfig(appConf AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideCacheConfig(appConf AppConfig) cache.Conf {
	return appConf.Cache
}

func ProvideMetricsConfig(appConf AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

func ProvideReportConfig(appConf AppConfig) ReportConfig {
	reportConf := appConf.Report
	reportConf.SetDefaults()
	return reportConf
}

func ProvideKpiConfig(appConf AppConfig) KpiConfig {
	kpiConf := appConf.Kpi
	kpiConf.SetDefaults()
	return kpiConf
}

func ProvideStorageConfig(appConf AppConfig) StorageConfig {
	return appConf.Storage
}
