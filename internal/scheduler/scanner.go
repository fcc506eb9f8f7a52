package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/email"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"github.com/upkeeply/maintenance-tracker/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// reminderLookahead is the window ahead of now in which scheduled
	// maintenance produces reminders.
	reminderLookahead = 3 * 24 * time.Hour
	// notificationRetention is how long read notifications are kept before
	// the cleanup sweep removes them.
	notificationRetention = 30 * 24 * time.Hour
)

// Counts summarizes one scanner run.
type Counts struct {
	Reminders           int
	LowStockItems       int
	NotificationsPurged int64
}

// Scanner produces periodic reminders and alerts: upcoming maintenance,
// inventory below reorder threshold, and the notification retention sweep.
type Scanner struct {
	records       db.MaintenanceCollection
	items         db.InventoryCollection
	notifications db.NotificationCollection
	users         db.UserCollection
	notifier      notify.UserNotifier
	mailer        email.Mailer
	logger        *log.Logger
}

// NewScanner creates a reminder/alert scanner.
func NewScanner(
	records db.MaintenanceCollection,
	items db.InventoryCollection,
	notifications db.NotificationCollection,
	users db.UserCollection,
	notifier notify.UserNotifier,
	mailer email.Mailer,
	logger *log.Logger,
) *Scanner {
	return &Scanner{
		records:       records,
		items:         items,
		notifications: notifications,
		users:         users,
		notifier:      notifier,
		mailer:        mailer,
		logger:        logger,
	}
}

// ScanAndNotify runs the three sub-scans. Each is isolated: a failure is
// logged and the remaining scans still run.
func (s *Scanner) ScanAndNotify(ctx context.Context, now time.Time) Counts {
	var counts Counts

	reminders, err := s.ScanMaintenanceReminders(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("maintenance reminder scan failed")
	}
	counts.Reminders = reminders

	lowStock, err := s.ScanLowStock(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("low stock scan failed")
	}
	counts.LowStockItems = lowStock

	purged, err := s.CleanupNotifications(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("notification cleanup failed")
	}
	counts.NotificationsPurged = purged

	return counts
}

// ScanMaintenanceReminders notifies every active admin/manager about each
// non-terminal maintenance record scheduled within the lookahead window.
// Returns the number of in-app notifications created.
func (s *Scanner) ScanMaintenanceReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.records.FindScheduledBetween(ctx, now, now.Add(reminderLookahead))
	if err != nil {
		return 0, fmt.Errorf("find upcoming maintenance: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	recipients, err := s.alertRecipients(ctx)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		s.logger.Warn("no active admin/manager users to receive reminders")
		return 0, nil
	}

	recipientIDs := make([]primitive.ObjectID, 0, len(recipients))
	for _, u := range recipients {
		recipientIDs = append(recipientIDs, u.ID)
	}

	created := 0
	for i := range due {
		rec := &due[i]
		relatedID := rec.ID
		err := s.notifier.NotifyUsers(ctx, recipientIDs, notify.Input{
			Title: "Maintenance due soon",
			Message: fmt.Sprintf("%s is scheduled for %s",
				rec.Title, rec.ScheduledDate.Format("2006-01-02")),
			Type:         models.NotificationReminder,
			Priority:     rec.Priority,
			RelatedModel: "maintenance",
			RelatedID:    &relatedID,
		})
		if err != nil {
			s.logger.WithError(err).WithField("maintenance_id", rec.ID.Hex()).
				Error("failed to create reminder notifications")
			continue
		}
		created += len(recipientIDs)

		for _, u := range recipients {
			if u.Email == "" {
				continue
			}
			if err := s.mailer.SendMaintenanceReminder(ctx, u.Email, rec); err != nil {
				s.logger.WithError(err).WithField("to", u.Email).
					Warn("reminder email not sent")
			}
		}
	}

	s.logger.WithFields(log.Fields{
		"records":       len(due),
		"notifications": created,
	}).Info("maintenance reminder scan finished")
	return created, nil
}

// ScanLowStock sends one count-summary alert (not one per item) to all
// active admin/manager users when any inventory item sits at or below its
// reorder threshold. Returns the number of low-stock items found.
func (s *Scanner) ScanLowStock(ctx context.Context, now time.Time) (int, error) {
	items, err := s.items.FindLowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("find low stock items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	recipients, err := s.alertRecipients(ctx)
	if err != nil {
		return len(items), err
	}
	if len(recipients) == 0 {
		s.logger.Warn("no active admin/manager users to receive low stock alerts")
		return len(items), nil
	}

	recipientIDs := make([]primitive.ObjectID, 0, len(recipients))
	for _, u := range recipients {
		recipientIDs = append(recipientIDs, u.ID)
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	err = s.notifier.NotifyUsers(ctx, recipientIDs, notify.Input{
		Title:    "Low stock alert",
		Message:  fmt.Sprintf("%d item(s) need reordering: %s", len(items), strings.Join(names, ", ")),
		Type:     models.NotificationInventory,
		Priority: models.PriorityHigh,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to create low stock notifications")
	}

	for _, u := range recipients {
		if u.Email == "" {
			continue
		}
		if err := s.mailer.SendLowStockAlert(ctx, u.Email, items); err != nil {
			s.logger.WithError(err).WithField("to", u.Email).
				Warn("low stock email not sent")
		}
	}

	s.logger.WithField("items", len(items)).Info("low stock scan finished")
	return len(items), nil
}

// CleanupNotifications deletes read notifications older than the retention
// window and returns how many were removed.
func (s *Scanner) CleanupNotifications(ctx context.Context, now time.Time) (int64, error) {
	purged, err := s.notifications.DeleteReadBefore(ctx, now.Add(-notificationRetention))
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	if purged > 0 {
		s.logger.WithField("purged", purged).Info("old notifications removed")
	}
	return purged, nil
}

func (s *Scanner) alertRecipients(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindActiveByRoles(ctx, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("find alert recipients: %w", err)
	}
	return users, nil
}
