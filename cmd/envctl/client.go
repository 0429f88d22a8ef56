package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Alwanly/service-env-state/internal/server/controller/dto"
)

// Client calls the controller API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a non-2xx controller answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("controller returned status %d", e.Status)
	}
	return fmt.Sprintf("controller returned status %d: %s", e.Status, e.Message)
}

func (c *Client) GetEnv(ctx context.Context) (dto.EnvResponse, string, error) {
	var out dto.EnvResponse
	resp, err := c.do(ctx, http.MethodGet, "/env", nil)
	if err != nil {
		return out, "", err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, "", fmt.Errorf("failed to decode env: %w", err)
	}
	return out, resp.Header.Get("ETag"), nil
}

func (c *Client) SetInterval(ctx context.Context, interval string) (dto.DispatchActionResponse, error) {
	var out dto.DispatchActionResponse
	err := c.call(ctx, http.MethodPut, "/env/telegraf-interval", dto.SetTelegrafIntervalRequest{TelegrafSystemInterval: &interval}, &out)
	return out, err
}

func (c *Client) SetHostPage(ctx context.Context, disabled bool) (dto.DispatchActionResponse, error) {
	var out dto.DispatchActionResponse
	err := c.call(ctx, http.MethodPut, "/env/host-page", dto.SetHostPageDisplayRequest{HostPageDisabled: &disabled}, &out)
	return out, err
}

func (c *Client) Dispatch(ctx context.Context, actionType string, payload json.RawMessage) (dto.DispatchActionResponse, error) {
	var out dto.DispatchActionResponse
	err := c.call(ctx, http.MethodPost, "/env/actions", dto.DispatchActionRequest{Type: actionType, Payload: payload}, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, limit int) (dto.HistoryResponse, error) {
	var out dto.HistoryResponse
	path := "/env/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": []string{strconv.Itoa(limit)}}.Encode()
	}
	err := c.call(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// call performs a request whose response is a success envelope and decodes
// its data into out.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &msg) == nil {
		apiErr.Message = msg.Message
		if apiErr.Message == "" {
			apiErr.Message = msg.Error
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return nil, apiErr
}
