package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-suite/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
	n.dispatcher.Subscribe(events.EventAlertRaised, n.handleAlertRaised)
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderPlacedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("OrderPlaced",
		zap.String("order_id", payload.OrderID),
		zap.String("user_id", payload.UserID),
		zap.Int("item_count", payload.ItemCount),
		zap.String("total", payload.Total),
	)
	return nil
}

func (n *NotificationService) handleAlertRaised(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AlertRaisedPayload)
	if !ok {
		return nil
	}
	n.logger.Warn("AlertRaised",
		zap.String("server_id", payload.ServerID),
		zap.String("server_name", payload.ServerName),
		zap.String("message", payload.Message),
	)
	return nil
}
