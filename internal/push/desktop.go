package push

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	appName = "fittrack"

	// Milliseconds a notification stays on screen.
	expireTimeout int32 = 5000
)

// Desktop shows notifications through the freedesktop notification daemon
// on the session bus.
type Desktop struct {
	obj dbus.BusObject
}

// NewDesktop connects to the session bus.
func NewDesktop() (*Desktop, error) {
	bus, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DBus session bus: %w", err)
	}
	return &Desktop{obj: bus.Object(notifyObj, notifyPath)}, nil
}

// Send implements notify.Dispatcher.
func (d *Desktop) Send(ctx context.Context, n notify.Notification) error {
	head, body := report.Text(n)

	res := d.obj.CallWithContext(ctx,
		notifyMethod,
		0,
		appName,
		uint32(0),
		"",
		head,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireTimeout,
	)
	if res.Err != nil {
		return fmt.Errorf("cannot send notification %q: %w", head, res.Err)
	}

	return nil
}
