package notify

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input describes one notification to fan out to a set of recipients.
type Input struct {
	Title        string
	Message      string
	Type         models.NotificationType
	Priority     models.Priority
	RelatedModel string
	RelatedID    *primitive.ObjectID
	ActionURL    string
}

// UserNotifier delivers in-app notifications. Callers treat delivery as
// fire-and-forget: a returned error is logged, never propagated to the
// operation that triggered the notification.
type UserNotifier interface {
	NotifyUsers(ctx context.Context, recipients []primitive.ObjectID, input Input) error
}

// Notifier writes one notification document per recipient and, when a
// publisher is configured, mirrors each alert onto the message bus for
// shop-floor displays.
type Notifier struct {
	notifications db.NotificationCollection
	publisher     Publisher
	logger        *log.Logger
}

// NewNotifier creates a notifier. publisher may be nil.
func NewNotifier(notifications db.NotificationCollection, publisher Publisher, logger *log.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// NotifyUsers inserts one notification per recipient.
func (n *Notifier) NotifyUsers(ctx context.Context, recipients []primitive.ObjectID, input Input) error {
	if len(recipients) == 0 {
		return nil
	}

	now := time.Now()
	notifications := make([]models.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		notifications = append(notifications, models.Notification{
			Recipient:    recipient,
			Title:        input.Title,
			Message:      input.Message,
			Type:         input.Type,
			Priority:     input.Priority,
			RelatedModel: input.RelatedModel,
			RelatedID:    input.RelatedID,
			ActionURL:    input.ActionURL,
			IsRead:       false,
			CreatedAt:    now,
		})
	}

	if err := n.notifications.InsertNotifications(ctx, notifications); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(input); err != nil {
			// Bus delivery is best-effort on top of the stored notifications.
			n.logger.WithError(err).Warn("failed to publish notification to bus")
		}
	}

	n.logger.WithFields(log.Fields{
		"recipients": len(recipients),
		"type":       input.Type,
		"title":      input.Title,
	}).Debug("notifications delivered")
	return nil
}
