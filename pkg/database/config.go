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

package database

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type SourceConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
	// Replicas enables read-write separation through DBResolver. Report and
	// KPI input queries are routed to replicas when any are configured.
	Replicas []SourceConfig `mapstructure:"replicas"`
}

type Database struct {
	OutPut       bool           `mapstructure:"output"`
	MaxOpenConns int            `mapstructure:"maxOpenConns"`
	MaxIdleConns int            `mapstructure:"maxIdleConns"`
	MaxLifetime  int            `mapstructure:"maxLifeTime"`
	MaxIdleTime  int            `mapstructure:"maxIdleTime"`
	SlowSQL      int            `mapstructure:"slowSql"` // milliseconds
	AutoMigrate  bool           `mapstructure:"autoMigrate"`
	Postgres     PostgresConfig `mapstructure:"postgres"`
}

func GetConnMaxLifetime(maxLifetime int) time.Duration {
	if maxLifetime > 0 {
		return time.Duration(maxLifetime) * time.Second
	}
	return 300 * time.Second
}

func GetConnMaxIdleTime(maxIdleTime int) time.Duration {
	if maxIdleTime > 0 {
		return time.Duration(maxIdleTime) * time.Second
	}
	return 60 * time.Second
}

func getSlowThreshold(ms int) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Second
}

// BuildPostgresDSN renders a libpq keyword/value DSN. Timestamps are kept in UTC.
func BuildPostgresDSN(user, password, host, port, db, sslMode, timeZone string) string {
	if port == "" {
		port = "5432"
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	if timeZone == "" {
		timeZone = "UTC"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, quoteDSNValue(password), db, port, sslMode, url.PathEscape(timeZone))
}

func quoteDSNValue(v string) string {
	if v == "" {
		return "''"
	}
	return v
}

func buildReplicaDialectors(primary PostgresConfig) ([]gorm.Dialector, error) {
	if len(primary.Replicas) == 0 {
		return nil, nil
	}
	dialectors := make([]gorm.Dialector, 0, len(primary.Replicas))
	for _, c := range primary.Replicas {
		if c.Host == "" || c.User == "" || c.DBName == "" {
			return nil, fmt.Errorf("incomplete replica config: host, user, and dbname are required")
		}
		dsn := BuildPostgresDSN(c.User, c.Password, c.Host, c.Port, c.DBName, primary.SSLMode, primary.TimeZone)
		dialectors = append(dialectors, postgres.Open(dsn))
	}
	return dialectors, nil
}
