//go:build !linux
// +build !linux

package notifier

import (
	"context"
	"fmt"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// StubNotifier is a placeholder for unsupported platforms (macOS, Windows, etc.)
type StubNotifier struct {
	logger *zap.Logger
}

// NewNotifier creates a stub notifier for unsupported platforms
func NewNotifier(logger *zap.Logger, cfg domain.Config) (domain.Notifier, error) {
	logger.Warn("Desktop notifications are not yet implemented for this platform")
	return &StubNotifier{logger: logger}, nil
}

// Show returns an error indicating the platform is not supported
func (n *StubNotifier) Show(ctx context.Context, p domain.NotificationPayload) (domain.NotificationID, error) {
	return 0, fmt.Errorf("notifications: %w", domain.ErrNotSupported)
}

// Update returns an error indicating the platform is not supported
func (n *StubNotifier) Update(ctx context.Context, id domain.NotificationID, p domain.NotificationPayload) (domain.NotificationID, error) {
	return 0, fmt.Errorf("notifications: %w", domain.ErrNotSupported)
}

// Close is a no-op
func (n *StubNotifier) Close() error {
	return nil
}
