package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to domain
// events so they reach Redis subscribers.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification forwarding disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification forwarding enabled")
}
