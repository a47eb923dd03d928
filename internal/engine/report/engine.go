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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/id"
	"github.com/go-arcade/workhub/pkg/log"
	"github.com/go-arcade/workhub/pkg/metrics"
)

// generationKey holds the current cache generation. Rotating it orphans
// every cached report at once; the orphans expire with their TTL.
const generationKey = "report:generation"

// Archiver stores exported files.
type Archiver interface {
	Put(ctx context.Context, objectName string, body []byte, contentType string) (string, error)
}

// Engine builds reports through a read-through cache. Concurrent identical
// requests in one process share a single aggregation; across processes the
// guarantee is one aggregation per process.
type Engine struct {
	facts   repo.IReportRepository
	store   cache.ICache
	query   *cache.CachedQuery[[]byte]
	conf    config.ReportConfig
	archive Archiver
	now     func() time.Time

	mu    sync.Mutex
	local string
}

func NewEngine(facts repo.IReportRepository, store cache.ICache, conf config.ReportConfig, archive Archiver) *Engine {
	c := conf
	c.SetDefaults()
	e := &Engine{
		facts:   facts,
		store:   store,
		conf:    c,
		archive: archive,
		now:     time.Now,
		local:   id.GetXid(),
	}
	e.query = cache.NewCachedQuery(store,
		cache.WithTTL[[]byte](c.TTL()),
		cache.WithLogPrefix[[]byte]("[Report]"),
		cache.WithSharedHook[[]byte](func(key string) {
			metrics.ReportSingleflightSharedTotal.WithLabelValues(kindOfKey(key)).Inc()
		}),
	)
	return e
}

func kindOfKey(key string) string {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) < 4 {
		return "unknown"
	}
	return parts[2]
}

// Generate returns the canonical JSON of a report. Repeated calls within the
// cache TTL return the same bytes.
func (e *Engine) Generate(ctx context.Context, p *service.Principal, kindName string, f model.ReportFilter) ([]byte, error) {
	// 1. resolve kind and scope
	kind, err := ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	f, err = Scope(p, f, e.conf.AllowedRoles, e.conf.AdminRoles)
	if err != nil {
		return nil, err
	}
	f = Canonicalize(f)
	if err := Validate(kind, f); err != nil {
		return nil, err
	}

	// 2. read through the cache
	key, err := e.key(ctx, kind, f, p)
	if err != nil {
		return nil, err
	}
	body, hit, err := e.query.Get(ctx, key, func(ctx context.Context) ([]byte, error) {
		return e.build(ctx, kind, f)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.ReportCacheHitsTotal.WithLabelValues(string(kind)).Inc()
	}
	return body, nil
}

// Report decodes the canonical JSON of Generate.
func (e *Engine) Report(ctx context.Context, p *service.Principal, kindName string, f model.ReportFilter) (*Report, error) {
	body, err := e.Generate(ctx, p, kindName, f)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, "decode report")
	}
	return &r, nil
}

func (e *Engine) key(ctx context.Context, kind Kind, f model.ReportFilter, p *service.Principal) (string, error) {
	canon, err := CanonicalBytes(f)
	if err != nil {
		return "", errs.Wrap(errs.KindUnexpected, err, "encode report filter")
	}
	scope := "all"
	if !p.HasRole(e.conf.AdminRoles...) {
		scope = fmt.Sprintf("org=%s,dept=%s", optional(p.OrganizationId), optional(p.DepartmentId))
	}
	sum := sha256.Sum256(append(append(canon, '|'), scope...))
	return fmt.Sprintf("report:%s:%s:%s", e.generation(ctx), kind, hex.EncodeToString(sum[:])), nil
}

func optional(v *uint64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

// generation reads the shared generation, creating it on first use. When
// the cache is unreachable the process falls back to its own generation.
func (e *Engine) generation(ctx context.Context) string {
	v, err := e.store.Get(ctx, generationKey).Result()
	if err == nil && v != "" {
		return v
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.WithContext(ctx).Warnw("report generation unavailable, using local", "error", err)
		return e.local
	}
	if err := e.store.Set(ctx, generationKey, e.local, 0).Err(); err != nil {
		log.WithContext(ctx).Warnw("report generation not stored", "error", err)
	}
	return e.local
}

// Invalidate drops every cached report by rotating the generation.
func (e *Engine) Invalidate(ctx context.Context, p *service.Principal) error {
	if !p.HasRole(e.conf.AdminRoles...) {
		return errs.Forbidden("invalidating the report cache requires one of the roles %v", e.conf.AdminRoles)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	next := id.GetXid()
	if err := e.store.Set(ctx, generationKey, next, 0).Err(); err != nil {
		return errs.Wrap(errs.KindUnexpected, err, "rotate report generation")
	}
	e.local = next
	log.WithContext(ctx).Infow("report cache invalidated", "generation", next, "by", p.UserId)
	return nil
}

func (e *Engine) build(ctx context.Context, kind Kind, f model.ReportFilter) ([]byte, error) {
	start := time.Now()
	at := e.now().UTC().Truncate(time.Second)
	r := &Report{
		Kind:        kind,
		GeneratedAt: at,
		Filters:     f,
		Rows:        [][]any{},
		Summary:     []SummaryItem{},
	}

	if kind == KindProjectProgress {
		facts, err := e.facts.ProjectFacts(ctx, f)
		if err != nil {
			return nil, errs.FromDB(err, "project facts")
		}
		projectProgress(r, facts, at)
	} else {
		facts, err := e.facts.TaskFacts(ctx, f)
		if err != nil {
			return nil, errs.FromDB(err, "task facts")
		}
		switch kind {
		case KindTaskSummary:
			taskSummary(r, facts, at)
		case KindPerformance:
			performance(r, facts)
		case KindTimeTracking:
			timeTracking(r, facts)
		case KindUserWorkload:
			userWorkload(r, facts, at)
		case KindDepartmentAnalytics:
			departmentAnalytics(r, facts)
		case KindTaskCompletion:
			taskCompletion(r, facts)
		}
	}

	metrics.ReportGenerationsTotal.WithLabelValues(string(kind)).Inc()
	log.WithContext(ctx).Infow("report generated", "kind", kind, "rows", len(r.Rows), "elapsed", time.Since(start))
	return sonic.ConfigStd.Marshal(r)
}
