package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"github.com/upkeeply/maintenance-tracker/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memMaintenance is an in-memory MaintenanceCollection. It reproduces the
// store behavior the generator depends on: the unique (parent, day) insert
// constraint and template date advancement.
type memMaintenance struct {
	records map[primitive.ObjectID]*models.MaintenanceRecord
}

func newMemMaintenance() *memMaintenance {
	return &memMaintenance{records: make(map[primitive.ObjectID]*models.MaintenanceRecord)}
}

func (m *memMaintenance) add(rec models.MaintenanceRecord) primitive.ObjectID {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	m.records[rec.ID] = &rec
	return rec.ID
}

func (m *memMaintenance) InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) (primitive.ObjectID, error) {
	if !rec.IsTemplate && rec.ScheduledDay != "" && rec.ParentMaintenanceID != nil {
		for _, existing := range m.records {
			if existing.IsTemplate || existing.ParentMaintenanceID == nil {
				continue
			}
			if *existing.ParentMaintenanceID == *rec.ParentMaintenanceID && existing.ScheduledDay == rec.ScheduledDay {
				return primitive.NilObjectID, db.ErrDuplicateOccurrence
			}
		}
	}
	return m.add(rec), nil
}

func (m *memMaintenance) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	rec, ok := m.records[objectID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (m *memMaintenance) FindMaintenance(ctx context.Context, filter bson.M) ([]models.MaintenanceRecord, error) {
	var out []models.MaintenanceRecord
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memMaintenance) UpdateMaintenance(ctx context.Context, id string, rec models.MaintenanceRecord) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	if _, ok := m.records[objectID]; !ok {
		return db.ErrNotFound
	}
	rec.ID = objectID
	m.records[objectID] = &rec
	return nil
}

func (m *memMaintenance) DeleteMaintenance(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	if _, ok := m.records[objectID]; !ok {
		return db.ErrNotFound
	}
	delete(m.records, objectID)
	return nil
}

func (m *memMaintenance) FindActiveTemplates(ctx context.Context, asOf time.Time) ([]models.MaintenanceRecord, error) {
	var out []models.MaintenanceRecord
	for _, rec := range m.records {
		if !rec.IsTemplate || !rec.IsRecurring || rec.Status == models.StatusCancelled {
			continue
		}
		if rec.RecurrenceEndDate != nil && rec.RecurrenceEndDate.Before(asOf) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memMaintenance) FindOccurrenceByDay(ctx context.Context, parentID primitive.ObjectID, day string) (*models.MaintenanceRecord, error) {
	for _, rec := range m.records {
		if rec.IsTemplate || rec.ParentMaintenanceID == nil {
			continue
		}
		if *rec.ParentMaintenanceID == parentID && rec.ScheduledDay == day {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memMaintenance) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.MaintenanceRecord, error) {
	var out []models.MaintenanceRecord
	for _, rec := range m.records {
		if rec.IsTemplate {
			continue
		}
		if rec.Status != models.StatusPending && rec.Status != models.StatusInProgress {
			continue
		}
		if rec.ScheduledDate.Before(from) || rec.ScheduledDate.After(to) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memMaintenance) UpdateScheduledDate(ctx context.Context, id primitive.ObjectID, date time.Time) error {
	rec, ok := m.records[id]
	if !ok {
		return db.ErrNotFound
	}
	rec.ScheduledDate = date
	return nil
}

func (m *memMaintenance) occurrencesOf(parentID primitive.ObjectID) []models.MaintenanceRecord {
	var out []models.MaintenanceRecord
	for _, rec := range m.records {
		if rec.ParentMaintenanceID != nil && *rec.ParentMaintenanceID == parentID {
			out = append(out, *rec)
		}
	}
	return out
}

// memUsers is an in-memory UserCollection.
type memUsers struct {
	users []models.User
}

func (m *memUsers) InsertUser(ctx context.Context, user models.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *memUsers) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			return &m.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memUsers) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			return &m.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memUsers) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memUsers) FindActiveByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (m *memUsers) UpdateUser(ctx context.Context, id string, user models.User) error { return nil }
func (m *memUsers) DeleteUser(ctx context.Context, id string) error                   { return nil }
func (m *memUsers) UpdateLastLogin(ctx context.Context, id string) error              { return nil }

// memInventory is an in-memory InventoryCollection covering what the scanner
// needs.
type memInventory struct {
	items []models.InventoryItem
}

func (m *memInventory) InsertItem(ctx context.Context, item models.InventoryItem) (primitive.ObjectID, error) {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	m.items = append(m.items, item)
	return item.ID, nil
}

func (m *memInventory) FindItemByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	for i := range m.items {
		if m.items[i].ID.Hex() == id {
			return &m.items[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memInventory) FindItems(ctx context.Context, filter bson.M) ([]models.InventoryItem, error) {
	return m.items, nil
}

func (m *memInventory) UpdateItem(ctx context.Context, id string, item models.InventoryItem) error {
	return nil
}

func (m *memInventory) DeleteItem(ctx context.Context, id string) error { return nil }

func (m *memInventory) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (*models.InventoryItem, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			if m.items[i].CurrentStock < quantity {
				return nil, db.ErrInsufficientStock
			}
			m.items[i].CurrentStock -= quantity
			return &m.items[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memInventory) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error) {
	if delta < 0 {
		return m.DecrementStock(ctx, id, -delta)
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].CurrentStock += delta
			return &m.items[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memInventory) FindLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range m.items {
		if item.CurrentStock <= item.MinStock {
			out = append(out, item)
		}
	}
	return out, nil
}

// memNotifications is an in-memory NotificationCollection.
type memNotifications struct {
	notifications []models.Notification
}

func (m *memNotifications) InsertNotifications(ctx context.Context, notifications []models.Notification) error {
	m.notifications = append(m.notifications, notifications...)
	return nil
}

func (m *memNotifications) FindByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.Recipient != recipient {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id string, recipient primitive.ObjectID) error {
	return nil
}

func (m *memNotifications) DeleteNotification(ctx context.Context, id string, recipient primitive.ObjectID) error {
	return nil
}

func (m *memNotifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []models.Notification
	var purged int64
	for _, n := range m.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return purged, nil
}

// recordingNotifier captures NotifyUsers calls.
type recordingNotifier struct {
	calls []notifierCall
	fail  bool
}

type notifierCall struct {
	recipients []primitive.ObjectID
	input      notify.Input
}

func (n *recordingNotifier) NotifyUsers(ctx context.Context, recipients []primitive.ObjectID, input notify.Input) error {
	if n.fail {
		return fmt.Errorf("notifier unavailable")
	}
	n.calls = append(n.calls, notifierCall{recipients: recipients, input: input})
	return nil
}

func (n *recordingNotifier) totalNotifications() int {
	total := 0
	for _, call := range n.calls {
		total += len(call.recipients)
	}
	return total
}

// recordingMailer captures outgoing emails.
type recordingMailer struct {
	reminders []string
	alerts    []string
}

func (m *recordingMailer) SendMaintenanceReminder(ctx context.Context, to string, record *models.MaintenanceRecord) error {
	m.reminders = append(m.reminders, to)
	return nil
}

func (m *recordingMailer) SendLowStockAlert(ctx context.Context, to string, items []models.InventoryItem) error {
	m.alerts = append(m.alerts, to)
	return nil
}
