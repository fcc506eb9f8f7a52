package scheduler

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *log.Logger {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger
}

func weeklyTemplate(scheduled time.Time) models.MaintenanceRecord {
	return models.MaintenanceRecord{
		Title:              "Weekly press lubrication",
		Description:        "Check oil level and grease slides",
		Status:             models.StatusPending,
		Priority:           models.PriorityMedium,
		ScheduledDate:      scheduled,
		DueDate:            scheduled.AddDate(0, 0, 7),
		IsRecurring:        true,
		RecurrencePattern:  models.RecurrenceWeekly,
		RecurrenceInterval: 1,
		IsTemplate:         true,
	}
}

func TestGenerateDueOccurrences_CreatesDueOccurrence(t *testing.T) {
	store := newMemMaintenance()
	notifier := &recordingNotifier{}
	gen := NewGenerator(store, &memUsers{}, notifier, testLogger())

	scheduled := date(2025, time.January, 6)
	tplID := store.add(weeklyTemplate(scheduled))

	asOf := date(2025, time.January, 14)
	created, err := gen.GenerateDueOccurrences(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, created, 1)

	occurrences := store.occurrencesOf(tplID)
	require.Len(t, occurrences, 1)
	occ := occurrences[0]
	assert.Equal(t, date(2025, time.January, 13), occ.ScheduledDate)
	assert.Equal(t, "2025-01-13", occ.ScheduledDay)
	assert.Equal(t, models.StatusPending, occ.Status)
	assert.False(t, occ.IsTemplate)
	assert.False(t, occ.IsRecurring)
	assert.Equal(t, occ.ScheduledDate.Add(7*24*time.Hour), occ.DueDate)

	// The template's date moved forward so the next run computes the
	// following step.
	tpl, err := store.FindMaintenanceByID(context.Background(), tplID.Hex())
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 13), tpl.ScheduledDate)
}

func TestGenerateDueOccurrences_SkipsFutureDates(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	scheduled := date(2025, time.January, 6)
	tplID := store.add(weeklyTemplate(scheduled))

	// Next occurrence would be Jan 13, still in the future as of Jan 10.
	created, err := gen.GenerateDueOccurrences(context.Background(), date(2025, time.January, 10))
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, store.occurrencesOf(tplID))
}

func TestGenerateDueOccurrences_SecondRunSameDayIsNoop(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	tplID := store.add(weeklyTemplate(date(2025, time.January, 6)))
	asOf := date(2025, time.January, 13)

	created, err := gen.GenerateDueOccurrences(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Template advanced to Jan 13; the next step (Jan 20) is in the future,
	// so a rerun at the same time creates nothing.
	created, err = gen.GenerateDueOccurrences(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, store.occurrencesOf(tplID), 1)
}

func TestGenerateDueOccurrences_DedupWhenTemplateDateStalls(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	tplID := store.add(weeklyTemplate(date(2025, time.January, 6)))
	asOf := date(2025, time.January, 13)

	created, err := gen.GenerateDueOccurrences(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// Reset the template date as if the advancement had been lost. The dedup
	// lookup must still prevent a second occurrence for the same day.
	require.NoError(t, store.UpdateScheduledDate(context.Background(), tplID, date(2025, time.January, 6)))

	created, err = gen.GenerateDueOccurrences(context.Background(), asOf)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, store.occurrencesOf(tplID), 1)
}

func TestGenerateDueOccurrences_ExhaustedChainCreatesNothing(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	tpl := weeklyTemplate(date(2025, time.January, 6))
	end := date(2025, time.January, 10)
	tpl.RecurrenceEndDate = &end
	tplID := store.add(tpl)

	created, err := gen.GenerateDueOccurrences(context.Background(), date(2025, time.February, 1))
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, store.occurrencesOf(tplID))
}

func TestGenerateDueOccurrences_OneBadTemplateDoesNotAbortBatch(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	bad := weeklyTemplate(date(2025, time.January, 6))
	bad.RecurrencePattern = models.RecurrencePattern("hourly")
	store.add(bad)

	good := weeklyTemplate(date(2025, time.January, 6))
	goodID := store.add(good)

	created, err := gen.GenerateDueOccurrences(context.Background(), date(2025, time.January, 14))
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Len(t, store.occurrencesOf(goodID), 1)
}

func TestGenerateDueOccurrences_NotifiesResolvableAssignee(t *testing.T) {
	store := newMemMaintenance()
	tech := models.User{ID: primitive.NewObjectID(), Username: "jordan", Role: models.RoleTechnician, IsActive: true}
	users := &memUsers{users: []models.User{tech}}
	notifier := &recordingNotifier{}
	gen := NewGenerator(store, users, notifier, testLogger())

	tpl := weeklyTemplate(date(2025, time.January, 6))
	tpl.AssignedTo = "jordan"
	store.add(tpl)

	_, err := gen.GenerateDueOccurrences(context.Background(), date(2025, time.January, 14))
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []primitive.ObjectID{tech.ID}, notifier.calls[0].recipients)
	assert.Equal(t, models.NotificationMaintenance, notifier.calls[0].input.Type)
}

func TestGenerateDueOccurrences_UnresolvableAssigneeSkipsNotification(t *testing.T) {
	store := newMemMaintenance()
	notifier := &recordingNotifier{}
	gen := NewGenerator(store, &memUsers{}, notifier, testLogger())

	tpl := weeklyTemplate(date(2025, time.January, 6))
	tpl.AssignedTo = "nobody-here"
	tplID := store.add(tpl)

	created, err := gen.GenerateDueOccurrences(context.Background(), date(2025, time.January, 14))
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Empty(t, notifier.calls)
	assert.Len(t, store.occurrencesOf(tplID), 1)
}

func TestScheduleNext_SeedsFromCompletedOccurrence(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	tplID := store.add(weeklyTemplate(date(2025, time.January, 6)))

	completed := models.MaintenanceRecord{
		Title:               "Weekly press lubrication",
		Status:              models.StatusCompleted,
		Priority:            models.PriorityMedium,
		ScheduledDate:       date(2025, time.January, 6),
		IsRecurring:         true,
		RecurrencePattern:   models.RecurrenceWeekly,
		RecurrenceInterval:  1,
		ParentMaintenanceID: &tplID,
	}
	completed.ID = store.add(completed)

	nextID, nextDate, err := gen.ScheduleNext(context.Background(), &completed)
	require.NoError(t, err)
	require.NotEmpty(t, nextID)
	require.NotNil(t, nextDate)
	assert.Equal(t, date(2025, time.January, 13), *nextDate)

	// Successor points at the chain root, not at the completed occurrence.
	occurrences := store.occurrencesOf(tplID)
	require.Len(t, occurrences, 2)
}

func TestScheduleNext_ExistingSuccessorIsSkipped(t *testing.T) {
	store := newMemMaintenance()
	gen := NewGenerator(store, &memUsers{}, &recordingNotifier{}, testLogger())

	tplID := store.add(weeklyTemplate(date(2025, time.January, 6)))
	seed := models.MaintenanceRecord{
		Title:               "Weekly press lubrication",
		Status:              models.StatusCompleted,
		ScheduledDate:       date(2025, time.January, 6),
		IsRecurring:         true,
		RecurrencePattern:   models.RecurrenceWeekly,
		RecurrenceInterval:  1,
		ParentMaintenanceID: &tplID,
	}
	seed.ID = store.add(seed)

	nextID, _, err := gen.ScheduleNext(context.Background(), &seed)
	require.NoError(t, err)
	require.NotEmpty(t, nextID)

	// Completing again must not create a second occurrence for the same day.
	nextID, nextDate, err := gen.ScheduleNext(context.Background(), &seed)
	require.NoError(t, err)
	assert.Empty(t, nextID)
	assert.Nil(t, nextDate)
	assert.Len(t, store.occurrencesOf(tplID), 2)
}
