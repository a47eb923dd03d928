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
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
)

type ReportConfig struct {
	CacheTTL     int      `mapstructure:"cacheTtl"` // seconds
	AllowedRoles []string `mapstructure:"allowedRoles"`
	AdminRoles   []string `mapstructure:"adminRoles"`
	Archive      bool     `mapstructure:"archive"`
}

func (r *ReportConfig) SetDefaults() {
	if r.CacheTTL <= 0 {
		r.CacheTTL = 300
	}
	if len(r.AllowedRoles) == 0 {
		r.AllowedRoles = []string{"admin", "manager"}
	}
	if len(r.AdminRoles) == 0 {
		r.AdminRoles = []string{"admin"}
	}
}

func (r ReportConfig) TTL() time.Duration {
	return time.Duration(r.CacheTTL) * time.Second
}

type KpiConfig struct {
	DefaultWarningBand float64 `mapstructure:"defaultWarningBand"`
	DefaultTimeout     int     `mapstructure:"defaultTimeout"` // seconds
	WebhookURL         string  `mapstructure:"webhookUrl"`
	WebhookTimeout     int     `mapstructure:"webhookTimeout"` // seconds
	WebhookRetry       int     `mapstructure:"webhookRetry"`
	SchedulerEnabled   bool    `mapstructure:"schedulerEnabled"`
	// SweepSpec drives the document expiry and team auto-disband sweeps.
	SweepSpec string `mapstructure:"sweepSpec"`
}

func (k *KpiConfig) SetDefaults() {
	if k.DefaultWarningBand <= 0 {
		k.DefaultWarningBand = 0.25
	}
	if k.DefaultTimeout <= 0 {
		k.DefaultTimeout = 60
	}
	if k.WebhookTimeout <= 0 {
		k.WebhookTimeout = 5
	}
	if k.SweepSpec == "" {
		k.SweepSpec = "*/5 * * * *"
	}
}

// StorageConfig points at the object store report exports are archived to.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"useSsl"`
}

func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Cache    cache.Conf
	Metrics  metrics.MetricsConfig
	Report   ReportConfig
	Kpi      KpiConfig
	Storage  StorageConfig
}

var (
	mu   sync.RWMutex
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		loaded, err := LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})
	return Current()
}

// Current returns the latest configuration, including hot reloads.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func LoadConfigFile(confDir string) (AppConfig, error) {
	var loaded AppConfig

	config := viper.New()
	config.SetConfigFile(confDir)
	config.SetEnvPrefix("WORKHUB")
	config.AutomaticEnv()
	if err := config.ReadInConfig(); err != nil {
		return loaded, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("The configuration changes, re-analyze the configuration file: %s", e.Name)
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "path", e.Name, "error", err)
			return
		}
		next.setDefaults()
		mu.Lock()
		cfg = next
		mu.Unlock()
	})
	if err := config.Unmarshal(&loaded); err != nil {
		return loaded, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	loaded.setDefaults()
	log.Infow("config file loaded",
		"path", confDir,
	)

	return loaded, nil
}

func (c *AppConfig) setDefaults() {
	c.Http.SetDefaults()
	c.Report.SetDefaults()
	c.Kpi.SetDefaults()
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}
}
