package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/inventory"
	"github.com/upkeeply/maintenance-tracker/internal/models"
)

// ErrInvalidTransition is returned when an update requests a status change
// the state machine forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// UpdatePatch carries the fields of a maintenance update request. Nil
// pointers leave the stored value untouched.
type UpdatePatch struct {
	Title         *string                   `json:"title,omitempty"`
	Description   *string                   `json:"description,omitempty"`
	Status        *models.MaintenanceStatus `json:"status,omitempty"`
	Priority      *models.Priority          `json:"priority,omitempty"`
	AssignedTo    *string                   `json:"assigned_to,omitempty"`
	ScheduledDate *time.Time                `json:"scheduled_date,omitempty"`
	DueDate       *time.Time                `json:"due_date,omitempty"`
	CompletedDate *time.Time                `json:"completed_date,omitempty"`
	Cost          *float64                  `json:"cost,omitempty"`
	Notes         *string                   `json:"notes,omitempty"`
	MaterialsUsed []models.MaterialUsage    `json:"materials_used,omitempty"`
}

// UpdateResult is what the caller gets back from an update: the stored
// record plus the side effects a completion produced. Inventory errors ride
// along inline so the UI can show "completed, but N items had stock issues"
// instead of failing the whole completion.
type UpdateResult struct {
	Record              *models.MaintenanceRecord `json:"record"`
	Deduction           *inventory.Result         `json:"deduction,omitempty"`
	NextMaintenanceID   string                    `json:"next_maintenance_id,omitempty"`
	NextMaintenanceDate *time.Time                `json:"next_maintenance_date,omitempty"`
}

// SuccessorScheduler schedules the next occurrence of a recurring record.
// Implemented by the occurrence generator.
type SuccessorScheduler interface {
	ScheduleNext(ctx context.Context, seed *models.MaintenanceRecord) (string, *time.Time, error)
}

// Service applies maintenance record updates. The pending -> in-progress ->
// completed transition rules live here, not in the store: the one transition
// carrying side effects is "status becomes completed", which deducts
// consumed materials and schedules the recurring successor.
type Service struct {
	records    db.MaintenanceCollection
	deductor   *inventory.Deductor
	successors SuccessorScheduler
	logger     *log.Logger
}

// NewService creates a maintenance update service.
func NewService(records db.MaintenanceCollection, deductor *inventory.Deductor, successors SuccessorScheduler, logger *log.Logger) *Service {
	return &Service{
		records:    records,
		deductor:   deductor,
		successors: successors,
		logger:     logger,
	}
}

// ApplyUpdate validates and persists a patch against a maintenance record.
// Completion side effects run exactly once: re-completing an already
// completed record is a plain field update with no deduction and no new
// occurrence.
func (s *Service) ApplyUpdate(ctx context.Context, id string, patch UpdatePatch) (*UpdateResult, error) {
	rec, err := s.records.FindMaintenanceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prior := rec.Status
	completing := false
	if patch.Status != nil && *patch.Status != prior {
		if !models.IsValidStatus(*patch.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, *patch.Status)
		}
		if !prior.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prior, *patch.Status)
		}
		rec.Status = *patch.Status
		completing = *patch.Status == models.StatusCompleted
	}

	applyFields(rec, patch)

	result := &UpdateResult{}
	if completing {
		if patch.CompletedDate != nil {
			rec.CompletedDate = patch.CompletedDate
		} else {
			now := time.Now()
			rec.CompletedDate = &now
		}

		if len(patch.MaterialsUsed) > 0 {
			deduction := s.deductor.Deduct(ctx, patch.MaterialsUsed)
			result.Deduction = deduction
			if !deduction.HasErrors() {
				// All-or-none flagging: entries are marked deducted only when
				// the whole batch succeeded. Partial decrements already applied
				// are not rolled back; the error list carries the
				// reconciliation burden to the caller.
				for i := range rec.MaterialsUsed {
					rec.MaterialsUsed[i].DeductedFromInventory = true
				}
			} else {
				s.logger.WithFields(log.Fields{
					"maintenance_id": id,
					"errors":         deduction.Errors,
				}).Warn("completion recorded with inventory errors")
			}
		}
	}

	if err := s.records.UpdateMaintenance(ctx, id, *rec); err != nil {
		return nil, fmt.Errorf("persist maintenance update: %w", err)
	}
	result.Record = rec

	if completing && rec.IsRecurring {
		nextID, nextDate, err := s.successors.ScheduleNext(ctx, rec)
		if err != nil {
			// The completion itself is already persisted; a failed successor
			// will be retried by the daily generation run.
			s.logger.WithError(err).WithField("maintenance_id", id).
				Error("failed to schedule recurring successor")
		} else if nextID != "" {
			result.NextMaintenanceID = nextID
			result.NextMaintenanceDate = nextDate
		}
	}

	return result, nil
}

func applyFields(rec *models.MaintenanceRecord, patch UpdatePatch) {
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Priority != nil {
		rec.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		rec.AssignedTo = *patch.AssignedTo
	}
	if patch.ScheduledDate != nil {
		rec.ScheduledDate = *patch.ScheduledDate
	}
	if patch.DueDate != nil {
		rec.DueDate = *patch.DueDate
	}
	if patch.Cost != nil {
		rec.Cost = *patch.Cost
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if patch.MaterialsUsed != nil {
		rec.MaterialsUsed = patch.MaterialsUsed
	}
}
