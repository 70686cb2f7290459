package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Forwarder posts events to the external audit endpoint. It runs inside the
// queue worker, off the request path.
type Forwarder struct {
	Endpoint string
	Client   *http.Client
}

// NewForwarder constructs a Forwarder.
func NewForwarder(endpoint string, client *http.Client) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{Endpoint: endpoint, Client: client}
}

// Forward delivers one event. A non-2xx status is an error so callers can
// log it; the worker swallows it either way.
func (f *Forwarder) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("audit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("audit: post event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("audit: endpoint responded %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
