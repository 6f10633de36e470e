package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
)

// Publisher forwards serialized events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans domain events out to subscribers outside the process.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger.With(zap.String("component", "notification_service")),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventForecastUpdated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventSchedulesOptimized, n.handleEvent)
	n.dispatcher.Subscribe(events.EventScheduleGenerated, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	n.sendWebhookNotificationStub(event)
	return n.forward(ctx, event, body)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event, body []byte) error {
	if n.publisher == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return nil
	}
	if err := n.publisher.Publish(ctx, n.cfg.RedisChannel, body); err != nil {
		n.logger.Warn("event publish failed",
			zap.String("channel", n.cfg.RedisChannel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
