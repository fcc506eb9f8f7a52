package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"github.com/upkeeply/maintenance-tracker/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dueWindow is the fixed gap between an occurrence's scheduled date and its
// due date.
const dueWindow = 7 * 24 * time.Hour

// Generator spawns concrete maintenance occurrences from recurring templates.
// Dedup is double-layered: a lookup before the insert for the common path,
// and the unique (parent, day) index for the race where two runs overlap.
type Generator struct {
	records  db.MaintenanceCollection
	users    db.UserCollection
	notifier notify.UserNotifier
	logger   *log.Logger
}

// NewGenerator creates an occurrence generator.
func NewGenerator(records db.MaintenanceCollection, users db.UserCollection, notifier notify.UserNotifier, logger *log.Logger) *Generator {
	return &Generator{
		records:  records,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// GenerateDueOccurrences scans all active recurring templates and creates an
// occurrence for each one whose next date is due or overdue as of asOf.
// A failure on one template never aborts the rest of the batch. Returns the
// ids of the created occurrences.
func (g *Generator) GenerateDueOccurrences(ctx context.Context, asOf time.Time) ([]string, error) {
	templates, err := g.records.FindActiveTemplates(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	if len(templates) == 0 {
		g.logger.Debug("no active recurring templates")
		return nil, nil
	}

	var created []string
	errorCount := 0
	for i := range templates {
		tpl := &templates[i]
		next, ok := NextOccurrence(tpl.RecurrencePattern, tpl.RecurrenceInterval, tpl.ScheduledDate, tpl.RecurrenceEndDate)
		if !ok {
			g.logger.WithFields(log.Fields{
				"template_id": tpl.ID.Hex(),
				"title":       tpl.Title,
			}).Info("recurrence chain exhausted")
			continue
		}
		if next.After(asOf) {
			// Only due-or-past dates fire; no far-future pre-creation.
			continue
		}

		id, _, err := g.spawnOccurrence(ctx, tpl, next, true)
		if err != nil {
			g.logger.WithError(err).WithField("template_id", tpl.ID.Hex()).
				Error("failed to generate occurrence")
			errorCount++
			continue
		}
		if id != "" {
			created = append(created, id)
		}
	}

	g.logger.WithFields(log.Fields{
		"templates": len(templates),
		"created":   len(created),
		"errors":    errorCount,
	}).Info("recurring generation finished")
	return created, nil
}

// ScheduleNext creates the successor occurrence for a just-completed
// recurring record, seeded from the record's own scheduled date. Returns
// ("", nil, nil) when the chain is exhausted or the successor already exists.
func (g *Generator) ScheduleNext(ctx context.Context, seed *models.MaintenanceRecord) (string, *time.Time, error) {
	next, ok := NextOccurrence(seed.RecurrencePattern, seed.RecurrenceInterval, seed.ScheduledDate, seed.RecurrenceEndDate)
	if !ok {
		g.logger.WithField("maintenance_id", seed.ID.Hex()).Info("recurrence chain exhausted")
		return "", nil, nil
	}
	return g.spawnOccurrence(ctx, seed, next, false)
}

// spawnOccurrence creates one occurrence for the given date, copying the
// template's descriptive fields. When advanceTemplate is set the template's
// scheduled date moves forward to the spawned date so the next run computes
// the following step; this also happens on a dedup skip so a chain can never
// stall on an already-generated day.
func (g *Generator) spawnOccurrence(ctx context.Context, src *models.MaintenanceRecord, date time.Time, advanceTemplate bool) (string, *time.Time, error) {
	parentID := src.ID
	if src.ParentMaintenanceID != nil {
		// Chains collapse to one root: occurrences of occurrences all point at
		// the original template.
		parentID = *src.ParentMaintenanceID
	}

	day := models.DayKey(date)
	if _, err := g.records.FindOccurrenceByDay(ctx, parentID, day); err == nil {
		g.logger.WithFields(log.Fields{
			"parent_id": parentID.Hex(),
			"day":       day,
		}).Debug("occurrence already exists, skipping")
		if advanceTemplate {
			if err := g.records.UpdateScheduledDate(ctx, src.ID, date); err != nil {
				g.logger.WithError(err).Warn("failed to advance template date")
			}
		}
		return "", nil, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return "", nil, fmt.Errorf("dedup lookup: %w", err)
	}

	occurrence := models.MaintenanceRecord{
		Title:               src.Title,
		Description:         src.Description,
		Status:              models.StatusPending,
		Priority:            src.Priority,
		MachineID:           src.MachineID,
		SiteID:              src.SiteID,
		AssignedTo:          src.AssignedTo,
		ScheduledDate:       date,
		ScheduledDay:        day,
		DueDate:             date.Add(dueWindow),
		Cost:                src.Cost,
		Notes:               src.Notes,
		IsRecurring:         false,
		ParentMaintenanceID: &parentID,
		IsTemplate:          false,
	}

	id, err := g.records.InsertMaintenance(ctx, occurrence)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateOccurrence) {
			// Another run won the insert race; same outcome as the lookup skip.
			if advanceTemplate {
				if err := g.records.UpdateScheduledDate(ctx, src.ID, date); err != nil {
					g.logger.WithError(err).Warn("failed to advance template date")
				}
			}
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("insert occurrence: %w", err)
	}

	g.notifyAssignee(ctx, src, id, date)

	if advanceTemplate {
		if err := g.records.UpdateScheduledDate(ctx, src.ID, date); err != nil {
			g.logger.WithError(err).WithField("template_id", src.ID.Hex()).
				Warn("occurrence created but template date not advanced")
		}
	}

	g.logger.WithFields(log.Fields{
		"occurrence_id": id.Hex(),
		"parent_id":     parentID.Hex(),
		"scheduled":     date.Format("2006-01-02"),
		"title":         src.Title,
	}).Info("generated maintenance occurrence")
	return id.Hex(), &date, nil
}

// notifyAssignee sends a best-effort in-app notification to the template's
// assigned user. Failure never rolls back the created occurrence.
func (g *Generator) notifyAssignee(ctx context.Context, src *models.MaintenanceRecord, occurrenceID primitive.ObjectID, date time.Time) {
	if src.AssignedTo == "" {
		return
	}
	user, err := g.users.FindUserByUsername(ctx, src.AssignedTo)
	if err != nil {
		g.logger.WithField("assigned_to", src.AssignedTo).
			Debug("assignee not resolvable to a user, skipping notification")
		return
	}

	err = g.notifier.NotifyUsers(ctx, []primitive.ObjectID{user.ID}, notify.Input{
		Title:        "Recurring maintenance scheduled",
		Message:      fmt.Sprintf("%s is scheduled for %s", src.Title, date.Format("2006-01-02")),
		Type:         models.NotificationMaintenance,
		Priority:     src.Priority,
		RelatedModel: "maintenance",
		RelatedID:    &occurrenceID,
	})
	if err != nil {
		g.logger.WithError(err).Warn("failed to notify assignee about new occurrence")
	}
}
