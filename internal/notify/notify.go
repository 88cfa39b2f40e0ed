// Package notify defines the notification kinds and the Dispatcher contract
// shared by every delivery channel.
package notify

import (
	"context"
	"fmt"
)

// Kind identifies what a notification is about. The string values are the
// "type" field of the send-email endpoint.
type Kind string

const (
	KindMorning      Kind = "morning_reminder"
	KindAfternoon    Kind = "afternoon_reminder"
	KindEvening      Kind = "evening_reminder"
	KindWater        Kind = "water_reminder"
	KindDailyReport  Kind = "daily_report"
	KindWeeklyReport Kind = "weekly_report"
	KindWelcome      Kind = "welcome_email"
)

var kinds = []Kind{
	KindMorning,
	KindAfternoon,
	KindEvening,
	KindWater,
	KindDailyReport,
	KindWeeklyReport,
	KindWelcome,
}

// Kinds returns every known kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts s into a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
	return k, nil
}

// Recipient is who a notification is addressed to.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Notification is a single message handed to a Dispatcher.
// Data carries the report payload for report kinds and is nil otherwise.
type Notification struct {
	Kind      Kind
	Recipient Recipient
	Data      any
}

// Dispatcher delivers notifications over some channel.
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, n Notification) error

// Send calls f(ctx, n).
func (f DispatcherFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
