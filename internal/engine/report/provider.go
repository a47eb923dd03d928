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

package report

import (
	"context"

	"github.com/google/wire"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/minio"
)

var ProviderSet = wire.NewSet(ProvideArchiver, NewEngine)

// ProvideArchiver connects the export archive. Without storage config, or
// with archiving off, it returns nil and exports are not archived.
func ProvideArchiver(conf config.ReportConfig, storage config.StorageConfig) Archiver {
	if !conf.Archive || !storage.Enabled() {
		return nil
	}
	m, err := minio.New(storage.Endpoint, storage.AccessKey, storage.SecretKey, storage.Bucket, storage.Region, storage.UseSSL)
	if err != nil {
		log.Warnw("report archive disabled", "endpoint", storage.Endpoint, "error", err)
		return nil
	}
	if err := m.EnsureBucket(context.Background()); err != nil {
		log.Warnw("report archive disabled", "bucket", storage.Bucket, "error", err)
		return nil
	}
	return m
}
