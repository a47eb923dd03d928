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

package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/errs"
)

type StatisticsService struct {
	stats repo.IStatisticsRepository
}

func NewStatisticsService(stats repo.IStatisticsRepository) *StatisticsService {
	return &StatisticsService{stats: stats}
}

// Overview counts the catalog. The queries are independent and run
// concurrently against the read replicas.
func (s *StatisticsService) Overview(ctx context.Context) (*model.Statistics, error) {
	out := &model.Statistics{}
	g, ctx := errgroup.WithContext(ctx)

	counts := []struct {
		table string
		dst   *int64
	}{
		{"users", &out.Users},
		{"teams", &out.Teams},
		{"projects", &out.Projects},
		{"tasks", &out.Tasks},
		{"documents", &out.Documents},
		{"kpis", &out.Kpis},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.stats.Count(ctx, c.table)
			if err != nil {
				return errs.FromDB(err, c.table)
			}
			*c.dst = n
			return nil
		})
	}

	groups := []struct {
		table string
		dst   *map[string]int64
	}{
		{"tasks", &out.TaskStatus},
		{"projects", &out.ProjectStatus},
		{"documents", &out.DocStatus},
	}
	for _, c := range groups {
		g.Go(func() error {
			m, err := s.stats.CountBy(ctx, c.table, "status")
			if err != nil {
				return errs.FromDB(err, c.table)
			}
			if m == nil {
				m = map[string]int64{}
			}
			*c.dst = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
