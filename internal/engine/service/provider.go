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
	"github.com/google/wire"

	"github.com/go-arcade/workhub/internal/engine/repo"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/database"
	"github.com/go-arcade/workhub/pkg/http"
)

var ProviderSet = wire.NewSet(ProvideServices)

// ProvideServices wires every catalog service onto the shared database
// handle, which doubles as the transactor.
func ProvideServices(
	db database.IDatabase,
	store cache.ICache,
	httpConf *http.Http,
	users repo.IUserRepository,
	teams repo.ITeamRepository,
	members repo.ITeamMemberRepository,
	projects repo.IProjectRepository,
	tasks repo.ITaskRepository,
	docs repo.IDocumentRepository,
	children *repo.DocumentChildren,
	favorites repo.IFavoriteRepository,
	dashboards *repo.DashboardRepos,
	stats repo.IStatisticsRepository,
) *Services {
	return &Services{
		Auth:       NewAuthService(users, store, httpConf),
		User:       NewUserService(db, users),
		Team:       NewTeamService(db, teams, members),
		Project:    NewProjectService(db, projects),
		Task:       NewTaskService(db, tasks),
		Document:   NewDocumentService(db, docs, children),
		DocChild:   NewDocumentChildServices(db, docs, children),
		Favorite:   NewFavoriteService(db, favorites),
		Dashboard:  NewDashboardService(db, dashboards),
		Statistics: NewStatisticsService(stats),
	}
}
