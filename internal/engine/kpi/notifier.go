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

package kpi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/go-arcade/workhub/internal/engine/config"
	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/pkg/http"
)

type webhookPayload struct {
	Event          string    `json:"event"`
	KpiId          uint64    `json:"kpiId"`
	KpiName        string    `json:"kpiName"`
	NotificationId uint64    `json:"notificationId"`
	CalculationId  string    `json:"calculationId"`
	Status         string    `json:"status"`
	PreviousStatus *string   `json:"previousStatus,omitempty"`
	Message        string    `json:"message"`
	At             time.Time `json:"at"`
}

// WebhookNotifier posts notifications as JSON to one URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, timeout time.Duration, retry int) *WebhookNotifier {
	return &WebhookNotifier{
		client: http.NewClient(http.ClientConfig{Timeout: timeout, RetryCount: retry}),
		url:    url,
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, k *model.KPI, n *model.KPINotification) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			Event:          "kpi.status_changed",
			KpiId:          k.ID,
			KpiName:        k.Name,
			NotificationId: n.ID,
			CalculationId:  n.CalculationId,
			Status:         n.Status,
			PreviousStatus: n.PreviousStatus,
			Message:        n.Message,
			At:             n.CreatedAt,
		}).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s answered %d", w.url, resp.StatusCode())
	}
	return nil
}

// ProvideNotifier returns nil when no webhook is configured.
func ProvideNotifier(conf config.KpiConfig) Notifier {
	if conf.WebhookURL == "" {
		return nil
	}
	return NewWebhookNotifier(conf.WebhookURL, time.Duration(conf.WebhookTimeout)*time.Second, conf.WebhookRetry)
}
