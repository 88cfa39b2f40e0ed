package notify

import (
	"context"
	"errors"
	"fmt"
)

// Multi fans a notification out to several dispatchers. Every dispatcher is
// attempted; failures are joined into one error.
type Multi []Dispatcher

// Send delivers n through every dispatcher in order.
func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for i, d := range m {
		if d == nil {
			continue
		}
		if err := d.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("channel %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
