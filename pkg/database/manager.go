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
	"time"

	"github.com/go-arcade/workhub/pkg/log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Manager interface {
	// Postgres returns the primary connection (with replicas registered when configured)
	Postgres() *gorm.DB

	// Close closes all database connections
	Close() error
}

type managerImpl struct {
	postgres *gorm.DB
}

func (m *managerImpl) Postgres() *gorm.DB {
	return m.postgres
}

func (m *managerImpl) Close() error {
	if m.postgres == nil {
		return nil
	}
	sqlDB, err := m.postgres.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close Postgres: %w", err)
	}
	return nil
}

func NewManager(cfg Database) (Manager, error) {
	db, err := newPostgresConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect Postgres: %w", err)
	}
	log.Infow("postgres database connected",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
		"replicas", len(cfg.Postgres.Replicas),
	)
	return &managerImpl{postgres: db}, nil
}

func newPostgresConnection(cfg Database) (*gorm.DB, error) {
	pg := cfg.Postgres
	dsn := BuildPostgresDSN(pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode, pg.TimeZone)

	logConfig := gormlogger.Config{
		SlowThreshold:             getSlowThreshold(cfg.SlowSQL),
		LogLevel:                  gormlogger.Warn,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	}

	var gormLogger gormlogger.Interface
	if cfg.OutPut {
		logConfig.LogLevel = gormlogger.Info
		gormLogger = NewGormLoggerAdapter(logConfig, gormlogger.Info)
	} else {
		gormLogger = NewGormLoggerAdapter(logConfig, gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}

	replicas, err := buildReplicaDialectors(pg)
	if err != nil {
		return nil, fmt.Errorf("failed to build replica dialectors: %w", err)
	}
	if len(replicas) > 0 {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: cfg.OutPut,
		}).
			SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime)).
			SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetMaxOpenConns(cfg.MaxOpenConns))
		if err != nil {
			return nil, fmt.Errorf("failed to register DBResolver plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	return db, nil
}
