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

package http

import "time"

// Locals keys handlers use to hand results to UnifiedResponseMiddleware.
const (
	DETAIL    = "detail"
	OPERATION = "operation"
	STATUS    = "status"
	CLAIMS    = "claims"
	REQUESTID = "request_id"
)

type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	AccessLog       bool   `mapstructure:"accessLog"`
	ExposeMetrics   bool   `mapstructure:"exposeMetrics"`
	BodyLimit       int    `mapstructure:"bodyLimit"`       // bytes
	ReadTimeout     int    `mapstructure:"readTimeout"`     // seconds
	WriteTimeout    int    `mapstructure:"writeTimeout"`    // seconds
	IdleTimeout     int    `mapstructure:"idleTimeout"`     // seconds
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"` // seconds
	RequestTimeout  int    `mapstructure:"requestTimeout"`  // seconds
	// AllowOrigins is a comma separated origin list for CORS
	AllowOrigins string `mapstructure:"allowOrigins"`
	TLS          TLS    `mapstructure:"tls"`
	Auth         Auth   `mapstructure:"auth"`
}

type TLS struct {
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

type Auth struct {
	SecretKey      string `mapstructure:"secretKey"`
	AccessExpire   int    `mapstructure:"accessExpire"`  // minutes
	RefreshExpire  int    `mapstructure:"refreshExpire"` // minutes
	RedisKeyPrefix string `mapstructure:"redisKeyPrefix"`
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 8 * 1024 * 1024
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 60
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10
	}
	if h.RequestTimeout <= 0 {
		h.RequestTimeout = 30
	}
	if h.AllowOrigins == "" {
		h.AllowOrigins = "http://localhost:3000"
	}
	if h.Auth.AccessExpire <= 0 {
		h.Auth.AccessExpire = 60
	}
	if h.Auth.RefreshExpire <= 0 {
		h.Auth.RefreshExpire = 7 * 24 * 60
	}
	if h.Auth.RedisKeyPrefix == "" {
		h.Auth.RedisKeyPrefix = "workhub:token:"
	}
}

func (a Auth) AccessTTL() time.Duration {
	return time.Duration(a.AccessExpire) * time.Minute
}

func (a Auth) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshExpire) * time.Minute
}

func seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

func (h *Http) ReadTimeoutDuration() time.Duration     { return seconds(h.ReadTimeout) }
func (h *Http) WriteTimeoutDuration() time.Duration    { return seconds(h.WriteTimeout) }
func (h *Http) IdleTimeoutDuration() time.Duration     { return seconds(h.IdleTimeout) }
func (h *Http) ShutdownTimeoutDuration() time.Duration { return seconds(h.ShutdownTimeout) }
func (h *Http) RequestTimeoutDuration() time.Duration  { return seconds(h.RequestTimeout) }
