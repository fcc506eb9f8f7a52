package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeManager(username string) models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleManager,
		IsActive: true,
	}
}

func newTestScanner(store *memMaintenance, items *memInventory, notifications *memNotifications, users *memUsers, notifier *recordingNotifier, mailer *recordingMailer) *Scanner {
	return NewScanner(store, items, notifications, users, notifier, mailer, testLogger())
}

func TestScanMaintenanceReminders_WithinLookahead(t *testing.T) {
	store := newMemMaintenance()
	users := &memUsers{users: []models.User{activeManager("morgan"), activeManager("casey")}}
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}
	scanner := newTestScanner(store, &memInventory{}, &memNotifications{}, users, notifier, mailer)

	now := date(2025, time.June, 1)
	store.add(models.MaintenanceRecord{
		Title:         "Belt inspection",
		Status:        models.StatusPending,
		Priority:      models.PriorityHigh,
		ScheduledDate: now.AddDate(0, 0, 2),
	})

	created, err := scanner.ScanMaintenanceReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, created, "one notification per recipient")
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.NotificationReminder, notifier.calls[0].input.Type)
	assert.Len(t, mailer.reminders, 2)
}

func TestScanMaintenanceReminders_OutsideLookahead(t *testing.T) {
	store := newMemMaintenance()
	users := &memUsers{users: []models.User{activeManager("morgan")}}
	notifier := &recordingNotifier{}
	scanner := newTestScanner(store, &memInventory{}, &memNotifications{}, users, notifier, &recordingMailer{})

	now := date(2025, time.June, 1)
	store.add(models.MaintenanceRecord{
		Title:         "Annual overhaul",
		Status:        models.StatusPending,
		ScheduledDate: now.AddDate(0, 0, 10),
	})

	created, err := scanner.ScanMaintenanceReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, notifier.calls)
}

func TestScanMaintenanceReminders_SkipsTerminalRecords(t *testing.T) {
	store := newMemMaintenance()
	users := &memUsers{users: []models.User{activeManager("morgan")}}
	notifier := &recordingNotifier{}
	scanner := newTestScanner(store, &memInventory{}, &memNotifications{}, users, notifier, &recordingMailer{})

	now := date(2025, time.June, 1)
	store.add(models.MaintenanceRecord{
		Title:         "Already done",
		Status:        models.StatusCompleted,
		ScheduledDate: now.AddDate(0, 0, 1),
	})
	store.add(models.MaintenanceRecord{
		Title:         "Called off",
		Status:        models.StatusCancelled,
		ScheduledDate: now.AddDate(0, 0, 1),
	})

	created, err := scanner.ScanMaintenanceReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestScanMaintenanceReminders_NoRecipients(t *testing.T) {
	store := newMemMaintenance()
	notifier := &recordingNotifier{}
	scanner := newTestScanner(store, &memInventory{}, &memNotifications{}, &memUsers{}, notifier, &recordingMailer{})

	now := date(2025, time.June, 1)
	store.add(models.MaintenanceRecord{
		Title:         "Belt inspection",
		Status:        models.StatusPending,
		ScheduledDate: now.AddDate(0, 0, 1),
	})

	created, err := scanner.ScanMaintenanceReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, notifier.calls)
}

func TestScanLowStock_ThresholdBoundary(t *testing.T) {
	items := &memInventory{items: []models.InventoryItem{
		{ID: primitive.NewObjectID(), Name: "At threshold", CurrentStock: 5, MinStock: 5},
		{ID: primitive.NewObjectID(), Name: "Below threshold", CurrentStock: 4, MinStock: 5},
		{ID: primitive.NewObjectID(), Name: "Above threshold", CurrentStock: 6, MinStock: 5},
	}}
	users := &memUsers{users: []models.User{activeManager("morgan")}}
	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}
	scanner := newTestScanner(newMemMaintenance(), items, &memNotifications{}, users, notifier, mailer)

	count, err := scanner.ScanLowStock(context.Background(), date(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// One summary notification covering all low items, not one per item.
	require.Len(t, notifier.calls, 1)
	assert.Contains(t, notifier.calls[0].input.Message, "At threshold")
	assert.Contains(t, notifier.calls[0].input.Message, "Below threshold")
	assert.NotContains(t, notifier.calls[0].input.Message, "Above threshold")
	assert.Len(t, mailer.alerts, 1)
}

func TestScanLowStock_NothingLow(t *testing.T) {
	items := &memInventory{items: []models.InventoryItem{
		{ID: primitive.NewObjectID(), Name: "Plenty", CurrentStock: 50, MinStock: 5},
	}}
	notifier := &recordingNotifier{}
	scanner := newTestScanner(newMemMaintenance(), items, &memNotifications{}, &memUsers{}, notifier, &recordingMailer{})

	count, err := scanner.ScanLowStock(context.Background(), date(2025, time.June, 1))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, notifier.calls)
}

func TestCleanupNotifications_PurgesOldRead(t *testing.T) {
	now := date(2025, time.June, 1)
	notifications := &memNotifications{notifications: []models.Notification{
		{IsRead: true, CreatedAt: now.AddDate(0, 0, -45)},
		{IsRead: true, CreatedAt: now.AddDate(0, 0, -5)},
		{IsRead: false, CreatedAt: now.AddDate(0, 0, -45)},
	}}
	scanner := newTestScanner(newMemMaintenance(), &memInventory{}, notifications, &memUsers{}, &recordingNotifier{}, &recordingMailer{})

	purged, err := scanner.CleanupNotifications(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged, "only read notifications past retention go")
	assert.Len(t, notifications.notifications, 2)
}

func TestScanAndNotify_RunsAllScans(t *testing.T) {
	store := newMemMaintenance()
	now := date(2025, time.June, 1)
	store.add(models.MaintenanceRecord{
		Title:         "Belt inspection",
		Status:        models.StatusPending,
		ScheduledDate: now.AddDate(0, 0, 1),
	})
	items := &memInventory{items: []models.InventoryItem{
		{ID: primitive.NewObjectID(), Name: "Low part", CurrentStock: 1, MinStock: 5},
	}}
	notifications := &memNotifications{notifications: []models.Notification{
		{IsRead: true, CreatedAt: now.AddDate(0, 0, -60)},
	}}
	users := &memUsers{users: []models.User{activeManager("morgan")}}
	scanner := newTestScanner(store, items, notifications, users, &recordingNotifier{}, &recordingMailer{})

	counts := scanner.ScanAndNotify(context.Background(), now)
	assert.Equal(t, 1, counts.Reminders)
	assert.Equal(t, 1, counts.LowStockItems)
	assert.Equal(t, int64(1), counts.NotificationsPurged)
}
