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

package router

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/report"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/cache"
	"github.com/go-arcade/workhub/pkg/http"
	"github.com/go-arcade/workhub/pkg/http/jwt"
	"github.com/go-arcade/workhub/pkg/http/middleware"
)

const testSecret = "router-test-secret"

type fakeFacts struct {
	tasks []model.TaskFact
}

func (f *fakeFacts) TaskFacts(ctx context.Context, filter model.ReportFilter) ([]model.TaskFact, error) {
	return f.tasks, nil
}

func (f *fakeFacts) ProjectFacts(ctx context.Context, filter model.ReportFilter) ([]model.ProjectFact, error) {
	return nil, nil
}

type fakeStats struct{}

func (fakeStats) Count(ctx context.Context, table string) (int64, error) {
	return int64(len(table)), nil
}

func (fakeStats) CountBy(ctx context.Context, table, column string) (map[string]int64, error) {
	return map[string]int64{"open": 2}, nil
}

type testServer struct {
	app   *fiber.App
	conf  *http.Http
	store *cache.FastCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conf := &http.Http{Auth: http.Auth{SecretKey: testSecret}}
	conf.SetDefaults()
	store := cache.NewFastCache(cache.FastCacheConfig{})

	reportConf := config.ReportConfig{}
	reportConf.SetDefaults()
	facts := &fakeFacts{tasks: []model.TaskFact{
		{TaskId: 1, Title: "write docs", Status: "done", Priority: "high", Type: "task"},
		{TaskId: 2, Title: "fix login", Status: "in_progress", Priority: "medium", Type: "bug"},
	}}
	reports := report.NewEngine(facts, store, reportConf, nil)

	services := &service.Services{Statistics: service.NewStatisticsService(fakeStats{})}
	rt := NewRouter(conf, store, services, nil, reports, nil)
	return &testServer{app: rt.Router(), conf: conf, store: store}
}

// login issues an access token and records its session the way the auth
// service does.
func (s *testServer) login(t *testing.T, role string) string {
	t.Helper()
	pair, err := jwt.GenToken(jwt.AuthClaims{UserId: 7, Username: "ana", Role: role}, []byte(testSecret), time.Minute, time.Hour)
	require.NoError(t, err)
	key := middleware.SessionKey(s.conf.Auth.RedisKeyPrefix, pair.SessionId)
	require.NoError(t, s.store.Set(context.Background(), key, "7", time.Hour).Err())
	return pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string) *nethttp.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])

	resp = s.do(t, fiber.MethodGet, "/version", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, decode(t, resp)["detail"])
}

func TestApiRequiresToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/api/statistics", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(http.AuthorizationEmpty.Code), body["code"])
	assert.Equal(t, "/api/statistics", body["path"])
}

func TestRevokedSessionIsRejected(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")
	claims, err := jwt.ParseToken(token, testSecret, jwt.TokenTypeAccess)
	require.NoError(t, err)
	require.NoError(t, s.store.Del(context.Background(), middleware.SessionKey(s.conf.Auth.RedisKeyPrefix, claims.SessionId())).Err())

	resp := s.do(t, fiber.MethodGet, "/api/statistics", token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownRouteEnvelope(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodGet, "/nowhere", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(http.RouteNotFound.Code), body["code"])
	assert.NotEmpty(t, body["requestId"])
}

func TestStatistics(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "member")

	resp := s.do(t, fiber.MethodGet, "/api/statistics", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	detail := decode(t, resp)["detail"].(map[string]any)
	assert.Equal(t, float64(len("users")), detail["users"])
	assert.Equal(t, map[string]any{"open": float64(2)}, detail["taskStatus"])
}

func TestGenerateReport(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp := s.do(t, fiber.MethodGet, "/api/reports/task_summary?statuses=done&statuses=in_progress", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	detail := decode(t, resp)["detail"].(map[string]any)
	assert.Equal(t, "task_summary", detail["kind"])
	assert.NotEmpty(t, detail["columns"])
}

func TestGenerateReportUnknownKind(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp := s.do(t, fiber.MethodGet, "/api/reports/astrology", token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Contains(t, body["errMsg"], "astrology")
	assert.NotEmpty(t, body["requestId"])
}

func TestGenerateReportBadTime(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp := s.do(t, fiber.MethodGet, "/api/reports/task_summary?from=yesterday", token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExportReportCSV(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp := s.do(t, fiber.MethodGet, "/api/reports/task_summary/export?format=csv", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment; filename=\"task_summary-")
	assert.Empty(t, resp.Header.Get(headerArchivePath))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestExportReportUnknownFormat(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp := s.do(t, fiber.MethodGet, "/api/reports/task_summary/export?format=docx", token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInvalidateReportCache(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, fiber.MethodDelete, "/api/reports/cache", s.login(t, "member"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, fiber.MethodDelete, "/api/reports/cache", s.login(t, "admin"))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestIdParamRejectsGarbage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		_, err := idParam(c, "id")
		return err
	})

	for _, raw := range []string{"abc", "0", "-1"} {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/things/"+raw, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, raw)
	}
}
