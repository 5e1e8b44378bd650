package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iho/buttonmarket/internal/adapter/http/dto"
	"github.com/iho/buttonmarket/internal/adapter/http/middleware"
)

var errInconsistent = errors.New("ledger is inconsistent")

// apiClient talks to the marketplace HTTP API.
type apiClient struct {
	baseURL   string
	timeout   time.Duration
	accountID string
	role      string
	token     string
	http      *http.Client
}

// statusError is a non-2xx answer from the API.
type statusError struct {
	Status  int
	Message string
	Details string
}

func (e *statusError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == status
}

// actingAs defaults the caller to the account being read.
func (c *apiClient) actingAs(account string) string {
	if c.accountID != "" {
		return c.accountID
	}
	return account
}

func (c *apiClient) do(ctx context.Context, method, path, caller string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if caller != "" {
		req.Header.Set(middleware.AccountIDHeader, caller)
	}
	if c.role != "" {
		req.Header.Set(middleware.AccountRoleHeader, c.role)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var statusErr error
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		se := &statusError{Status: resp.StatusCode, Message: apiErr.Error, Details: apiErr.Message}
		if se.Message == "" {
			se.Message = http.StatusText(resp.StatusCode)
		}
		// A 409 reconciliation report still carries a body worth decoding.
		if resp.StatusCode != http.StatusConflict {
			return se
		}
		statusErr = se
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return statusErr
}
