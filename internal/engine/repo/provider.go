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

package repo

import (
	"github.com/google/wire"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/database"
)

var ProviderSet = wire.NewSet(
	NewUserRepo,
	NewTeamRepo,
	NewTeamMemberRepo,
	NewProjectRepo,
	NewTaskRepo,
	NewDocumentRepo,
	NewFavoriteRepo,
	NewKpiRepo,
	NewKpiInputRepo,
	NewReportRepo,
	NewStatisticsRepo,
	ProvideDocumentChildren,
	ProvideDashboardRepos,
	ProvideKpiSupportRepos,
)

// DocumentChildren groups the repositories of tables that hang off documents.
type DocumentChildren struct {
	WorkflowSteps *CrudRepo[model.DocumentWorkflowStep]
	Signatures    *CrudRepo[model.DocumentSignature]
	Comments      *CrudRepo[model.DocumentComment]
	Attachments   *CrudRepo[model.DocumentAttachment]
	Watchers      *CrudRepo[model.DocumentWatcher]
	Templates     *CrudRepo[model.DocumentTemplate]
}

func ProvideDocumentChildren(db database.IDatabase) *DocumentChildren {
	return &DocumentChildren{
		WorkflowSteps: NewCrudRepo[model.DocumentWorkflowStep](db),
		Signatures:    NewCrudRepo[model.DocumentSignature](db),
		Comments:      NewCrudRepo[model.DocumentComment](db),
		Attachments:   NewCrudRepo[model.DocumentAttachment](db),
		Watchers:      NewCrudRepo[model.DocumentWatcher](db),
		Templates:     NewCrudRepo[model.DocumentTemplate](db),
	}
}

type DashboardRepos struct {
	Flows          *CrudRepo[model.Flow]
	WidgetTypes    *CrudRepo[model.WidgetType]
	Dashboards     *CrudRepo[model.Dashboard]
	DashboardDatas *CrudRepo[model.DashboardData]
	Widgets        *CrudRepo[model.Widget]
	Access         *CrudRepo[model.AccessDashboard]
	FlowDashboards *CrudRepo[model.FlowDashboard]
	Groups         *CrudRepo[model.GroupUser]
	GroupMembers   *CrudRepo[model.UserGroup]
}

func ProvideDashboardRepos(db database.IDatabase) *DashboardRepos {
	return &DashboardRepos{
		Flows:          NewCrudRepo[model.Flow](db),
		WidgetTypes:    NewCrudRepo[model.WidgetType](db),
		Dashboards:     NewCrudRepo[model.Dashboard](db),
		DashboardDatas: NewCrudRepo[model.DashboardData](db),
		Widgets:        NewCrudRepo[model.Widget](db),
		Access:         NewCrudRepo[model.AccessDashboard](db),
		FlowDashboards: NewCrudRepo[model.FlowDashboard](db),
		Groups:         NewCrudRepo[model.GroupUser](db),
		GroupMembers:   NewCrudRepo[model.UserGroup](db),
	}
}

type KpiSupportRepos struct {
	Templates     *CrudRepo[model.KPITemplate]
	Notifications *CrudRepo[model.KPINotification]
	Schedules     *CrudRepo[model.KPISchedule]
}

func ProvideKpiSupportRepos(db database.IDatabase) *KpiSupportRepos {
	return &KpiSupportRepos{
		Templates:     NewCrudRepo[model.KPITemplate](db),
		Notifications: NewCrudRepo[model.KPINotification](db),
		Schedules:     NewCrudRepo[model.KPISchedule](db),
	}
}
