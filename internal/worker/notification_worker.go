package worker

import (
	"go.uber.org/zap"

	"github.com/futuremakers/feedback-service/internal/service"
)

// StartNotificationWorker subscribes the notification service's event
// handlers at startup. Reply delivery itself runs synchronously in the
// reply flow; the handlers registered here observe ticket lifecycle
// events for the log.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("ticket event handlers registered")
	}
}
