package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
)

var (
	ErrInvalidType  = errors.New("invalid email type")
	ErrMissingEmail = errors.New("recipient email is required")
	ErrInvalidData  = errors.New("invalid email data")
)

// Request is the body of a send-email call.
type Request struct {
	Type  string          `json:"type"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Service renders notifications to HTML email and hands them to a provider.
// It implements notify.Dispatcher for in-process delivery.
type Service struct {
	provider Provider
	from     string
	now      func() time.Time
}

func NewService(provider Provider, from string) *Service {
	return &Service{
		provider: provider,
		from:     from,
		now:      time.Now,
	}
}

// Deliver validates and sends a send-email request. It returns the provider
// message ID.
func (s *Service) Deliver(ctx context.Context, req Request) (string, error) {
	kind, err := notify.ParseKind(req.Type)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	data, err := report.DecodeData(kind, req.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return s.send(ctx, notify.Notification{
		Kind:      kind,
		Recipient: notify.Recipient{Email: req.Email, Name: req.Name},
		Data:      data,
	})
}

// Send implements notify.Dispatcher.
func (s *Service) Send(ctx context.Context, n notify.Notification) error {
	_, err := s.send(ctx, n)
	return err
}

func (s *Service) send(ctx context.Context, n notify.Notification) (string, error) {
	if n.Recipient.Email == "" {
		return "", ErrMissingEmail
	}

	email, err := report.RenderEmail(n, s.now())
	if err != nil {
		return "", err
	}

	id, err := s.provider.SendEmail(ctx, Message{
		From:    s.from,
		To:      []string{n.Recipient.Email},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return "", err
	}

	log.Printf("[DEBUG] mailer: sent %s to %s (id %s)", n.Kind, n.Recipient.Email, id)
	return id, nil
}
