package notifier

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = notificationsDest + ".Notify"
)

// NotificationBus defines the interface for the freedesktop notification service.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/bus_mock.go -package=mocks github.com/genricoloni/mpdnotify/internal/notifier NotificationBus
type NotificationBus interface {
	// Notify sends org.freedesktop.Notifications.Notify and returns the notification id.
	// A non-zero replacesID updates that notification in place.
	Notify(ctx context.Context, appName string, replacesID uint32, appIcon, summary, body string,
		actions []string, hints map[string]dbus.Variant, timeout int32) (uint32, error)

	// Close closes the D-Bus connection
	Close() error
}

// StdNotificationBus is the real implementation using godbus
type StdNotificationBus struct {
	conn *dbus.Conn
}

// NewStdNotificationBus opens a private connection to the session bus
func NewStdNotificationBus() (*StdNotificationBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdNotificationBus{conn: conn}, nil
}

// Notify calls the notification server
func (b *StdNotificationBus) Notify(ctx context.Context, appName string, replacesID uint32, appIcon, summary, body string,
	actions []string, hints map[string]dbus.Variant, timeout int32) (uint32, error) {
	obj := b.conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
	call := obj.CallWithContext(ctx, notificationsNotify, 0,
		appName, replacesID, appIcon, summary, body, actions, hints, timeout)

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes the D-Bus connection
func (b *StdNotificationBus) Close() error {
	return b.conn.Close()
}
