/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend is a minimal HTTP client for the report server API. It
// supplies the two external collaborators the canvas depends on: the
// read-only datasource list and the preview-data fetch.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reportstudio/internal/canvas"
	"reportstudio/internal/domain"
)

// Client talks to the report server. It implements canvas.PreviewProvider.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, merr := json.Marshal(body)
		if merr != nil {
			return merr
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// ListDatasources returns the datasources available to the report (read-only).
func (c *Client) ListDatasources(ctx context.Context) ([]domain.Datasource, error) {
	var list []domain.Datasource
	if err := c.doJSON(ctx, http.MethodGet, "/api/datasources", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// previewRequest is the payload sent to the preview endpoint: the component's
// datasource binding plus a row limit.
type previewRequest struct {
	DatasourceAlias string         `json:"datasourceAlias"`
	Fields          []domain.Field `json:"fields,omitempty"`
	Limit           int            `json:"limit"`
}

// FetchPreview fetches sample rows for a bound component, satisfying
// canvas.PreviewProvider. Unbound components resolve to an empty page rather
// than an error; the canvas renders them as "no data".
func (c *Client) FetchPreview(ctx context.Context, comp domain.Component) (canvas.PreviewData, error) {
	if comp.DatasourceAlias == "" {
		return canvas.PreviewData{}, nil
	}
	req := previewRequest{DatasourceAlias: comp.DatasourceAlias, Limit: 50}
	if comp.Data != nil {
		req.Fields = comp.Data.Fields
		if comp.Data.Limit > 0 {
			req.Limit = comp.Data.Limit
		}
	}
	var data canvas.PreviewData
	if err := c.doJSON(ctx, http.MethodPost, "/api/preview", req, &data); err != nil {
		return canvas.PreviewData{}, err
	}
	return data, nil
}
