package notifier

import (
	"context"
	"fmt"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// imageData is the (iiibiiay) layout of the image-data hint
type imageData struct {
	Width         int32
	Height        int32
	RowStride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// DBusNotifier shows notifications through org.freedesktop.Notifications
type DBusNotifier struct {
	logger  *zap.Logger
	bus     NotificationBus
	appName string
}

var _ domain.Notifier = (*DBusNotifier)(nil)

// NewDBusNotifier creates a notifier on top of an open bus
func NewDBusNotifier(logger *zap.Logger, bus NotificationBus, appName string) *DBusNotifier {
	return &DBusNotifier{
		logger:  logger,
		bus:     bus,
		appName: appName,
	}
}

// Show displays a new notification
func (n *DBusNotifier) Show(ctx context.Context, p domain.NotificationPayload) (domain.NotificationID, error) {
	return n.notify(ctx, 0, p)
}

// Update replaces the notification identified by id
func (n *DBusNotifier) Update(ctx context.Context, id domain.NotificationID, p domain.NotificationPayload) (domain.NotificationID, error) {
	return n.notify(ctx, uint32(id), p)
}

func (n *DBusNotifier) notify(ctx context.Context, replacesID uint32, p domain.NotificationPayload) (domain.NotificationID, error) {
	id, err := n.bus.Notify(ctx, n.appName, replacesID, "", p.Summary, p.Body,
		[]string{}, imageHints(p.Image), p.TimeoutMs)
	if err != nil {
		return 0, fmt.Errorf("notify failed: %w", err)
	}

	n.logger.Debug("Notification sent",
		zap.Uint32("id", id),
		zap.Uint32("replaces", replacesID),
		zap.String("summary", p.Summary))

	return domain.NotificationID(id), nil
}

// imageHints maps an image reference to notification hints
func imageHints(img *domain.ImageRef) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	switch {
	case img == nil:
	case img.Raw != nil:
		hints["image-data"] = dbus.MakeVariant(imageData{
			Width:         int32(img.Raw.Width),
			Height:        int32(img.Raw.Height),
			RowStride:     int32(img.Raw.RowStride),
			HasAlpha:      false,
			BitsPerSample: 8,
			Channels:      3,
			Data:          img.Raw.Pixels,
		})
	case img.Path != "":
		hints["image-path"] = dbus.MakeVariant(img.Path)
	}
	return hints
}

// Close closes the bus connection
func (n *DBusNotifier) Close() error {
	return n.bus.Close()
}
