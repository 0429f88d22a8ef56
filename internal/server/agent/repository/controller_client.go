package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Alwanly/service-env-state/internal/config"
	"github.com/Alwanly/service-env-state/internal/env"
	"github.com/Alwanly/service-env-state/pkg/logger"
)

type controllerClient struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *logger.CanonicalLogger
}

// NewControllerClient creates a new controller client repository
func NewControllerClient(cfg *config.AgentConfig, log *logger.CanonicalLogger) IControllerClient {
	return &controllerClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.ControllerURL,
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     log,
	}
}

func (c *controllerClient) GetEnv(ctx context.Context, ifNoneMatch string) (*env.State, string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/env", nil)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		etag := resp.Header.Get("ETag")
		if etag == "" {
			etag = ifNoneMatch
		}
		return nil, etag, true, nil
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, "", false, fmt.Errorf("get env: %w (status %d)", ErrUnauthorized, resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", false, fmt.Errorf("get env failed with status %d: %s", resp.StatusCode, string(b))
	}

	var state env.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, "", false, fmt.Errorf("failed to decode env response: %w", err)
	}

	etag := resp.Header.Get("ETag")
	c.logger.Debug("fetched env from controller", logger.ETag(etag))
	return &state, etag, false, nil
}
