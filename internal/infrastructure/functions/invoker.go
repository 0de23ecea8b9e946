// Package functions invokes remote serverless functions over HTTP.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Invoker POSTs JSON payloads to <baseURL>/<name> and unwraps the standard
// {success, result, error} envelope. A transport failure and a
// {success:false} response produce the same outcome for callers: an error.
type Invoker struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewInvoker(baseURL string, timeout time.Duration, log zerolog.Logger) *Invoker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Invoker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (i *Invoker) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: marshal payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("invoke %s: read response: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invoke %s: status %d", name, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invoke %s: decode envelope: %w", name, err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = "function reported failure"
		}
		return nil, fmt.Errorf("invoke %s: %s", name, env.Error)
	}
	return env.Result, nil
}
