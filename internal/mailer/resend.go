// Package mailer renders notification emails and delivers them through the
// Resend transactional email API. It also serves the send-email endpoint.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultResendURL = "https://api.resend.com"

// Message is an outgoing email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Provider sends a rendered email and returns the provider message ID.
type Provider interface {
	SendEmail(ctx context.Context, msg Message) (string, error)
}

// Resend is a client for the Resend HTTP API.
type Resend struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewResend creates a Resend client. An empty baseURL selects the public API.
func NewResend(baseURL, apiKey string, timeout time.Duration) *Resend {
	if baseURL == "" {
		baseURL = defaultResendURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Resend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type resendResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// SendEmail implements Provider.
func (r *Resend) SendEmail(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read resend response: %w", err)
	}

	var result resendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse resend response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("resend API error (status %d): %s %s", resp.StatusCode, result.Name, result.Message)
	}

	return result.ID, nil
}
