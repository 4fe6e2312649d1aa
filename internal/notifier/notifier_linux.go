//go:build linux
// +build linux

package notifier

import (
	"fmt"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// NewNotifier picks the notification backend (Linux implementation).
// The session bus is preferred; notify-send is the fallback.
func NewNotifier(logger *zap.Logger, cfg domain.Config) (domain.Notifier, error) {
	bus, err := NewStdNotificationBus()
	if err == nil {
		logger.Info("Notification backend detected", zap.String("name", "dbus"))
		return NewDBusNotifier(logger, bus, cfg.AppName()), nil
	}

	logger.Warn("Session bus unavailable, looking for notify-send", zap.Error(err))
	if commandExists(notifySendBinary) {
		logger.Info("Notification backend detected", zap.String("name", notifySendBinary))
		return NewNotifySendNotifier(logger, cfg.AppName()), nil
	}

	return nil, fmt.Errorf("no supported notification backend found: %w", err)
}
