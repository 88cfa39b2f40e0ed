package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EndpointSender delivers notifications by posting them to the send-email
// endpoint, which renders and forwards them to the email provider.
type EndpointSender struct {
	url    string
	client *http.Client
}

// NewEndpointSender creates a sender for the endpoint at url.
func NewEndpointSender(url string, timeout time.Duration) *EndpointSender {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EndpointSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type endpointRequest struct {
	Type  Kind   `json:"type"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Data  any    `json:"data,omitempty"`
}

type endpointResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Send posts n to the endpoint. A non-2xx status or a body without
// "success": true is reported as an error.
func (e *EndpointSender) Send(ctx context.Context, n Notification) error {
	payload := endpointRequest{
		Type:  n.Kind,
		Email: n.Recipient.Email,
		Name:  n.Recipient.Name,
		Data:  n.Data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", n.Kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", n.Kind, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", n.Kind, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read send-email response: %w", err)
	}

	var result endpointResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse send-email response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode/100 != 2 || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("send-email endpoint error (status %d): %s", resp.StatusCode, msg)
	}

	return nil
}
