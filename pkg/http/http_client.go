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

import (
	"time"

	"github.com/go-resty/resty/v2"
)

type ClientConfig struct {
	Timeout    time.Duration
	RetryCount int
	Headers    map[string]string
}

// NewClient returns a resty client for outbound calls such as webhooks.
// Retries back off between 200ms and 2s and only trigger on transport
// errors or 5xx answers.
func NewClient(conf ClientConfig) *resty.Client {
	if conf.Timeout <= 0 {
		conf.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(conf.Timeout).
		SetRetryCount(conf.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", "workhub").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if len(conf.Headers) > 0 {
		client.SetHeaders(conf.Headers)
	}
	return client
}
