package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceStatus represents the lifecycle state of a maintenance record.
type MaintenanceStatus string

const (
	StatusPending    MaintenanceStatus = "pending"
	StatusInProgress MaintenanceStatus = "in-progress"
	StatusCompleted  MaintenanceStatus = "completed"
	StatusCancelled  MaintenanceStatus = "cancelled"
)

// Priority represents the urgency of a maintenance record or notification.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// RecurrencePattern represents how often a recurring maintenance template repeats.
type RecurrencePattern string

const (
	RecurrenceDaily     RecurrencePattern = "daily"
	RecurrenceWeekly    RecurrencePattern = "weekly"
	RecurrenceFortnight RecurrencePattern = "fortnight"
	RecurrenceMonthly   RecurrencePattern = "monthly"
	RecurrenceQuarterly RecurrencePattern = "quarterly"
	RecurrenceYearly    RecurrencePattern = "yearly"
	RecurrenceNone      RecurrencePattern = "none"
)

// MaterialUsage records one inventory item consumed by a maintenance task.
type MaterialUsage struct {
	ItemID                primitive.ObjectID `bson:"item_id" json:"item_id"`
	QuantityUsed          int                `bson:"quantity_used" json:"quantity_used"`
	DeductedFromInventory bool               `bson:"deducted_from_inventory" json:"deducted_from_inventory"`
}

// MaintenanceRecord represents one unit of scheduled or completed maintenance
// work. A record with IsTemplate=true is the master of a recurrence chain and
// is never itself performed; occurrences spawned from it carry
// ParentMaintenanceID back to the chain root (lookup only, never an ownership
// edge: deleting a template does not cascade to its occurrences).
type MaintenanceRecord struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	Status        MaintenanceStatus   `bson:"status" json:"status"`
	Priority      Priority            `bson:"priority" json:"priority"`
	MachineID     *primitive.ObjectID `bson:"machine_id,omitempty" json:"machine_id,omitempty"`
	SiteID        *primitive.ObjectID `bson:"site_id,omitempty" json:"site_id,omitempty"`
	AssignedTo    string              `bson:"assigned_to" json:"assigned_to"`
	ScheduledDate time.Time           `bson:"scheduled_date" json:"scheduled_date"`
	DueDate       time.Time           `bson:"due_date" json:"due_date"`
	CompletedDate *time.Time          `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	Cost          float64             `bson:"cost" json:"cost"`
	Notes         string              `bson:"notes" json:"notes"`
	MaterialsUsed []MaterialUsage     `bson:"materials_used,omitempty" json:"materials_used,omitempty"`

	IsRecurring         bool                `bson:"is_recurring" json:"is_recurring"`
	RecurrencePattern   RecurrencePattern   `bson:"recurrence_pattern,omitempty" json:"recurrence_pattern,omitempty"`
	RecurrenceInterval  int                 `bson:"recurrence_interval,omitempty" json:"recurrence_interval,omitempty"`
	RecurrenceEndDate   *time.Time          `bson:"recurrence_end_date,omitempty" json:"recurrence_end_date,omitempty"`
	ParentMaintenanceID *primitive.ObjectID `bson:"parent_maintenance_id,omitempty" json:"parent_maintenance_id,omitempty"`
	IsTemplate          bool                `bson:"is_template" json:"is_template"`

	// ScheduledDay is the calendar day of ScheduledDate (YYYY-MM-DD), set only
	// on generated occurrences. Backed by a unique index on
	// (parent_maintenance_id, scheduled_day) so a template can never spawn two
	// occurrences for the same day.
	ScheduledDay string `bson:"scheduled_day,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the status allows no further transitions.
func (s MaintenanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether a status change is permitted:
// pending -> in-progress -> completed, pending|in-progress -> cancelled.
func (s MaintenanceStatus) CanTransitionTo(next MaintenanceStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCompleted || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// IsValidStatus checks if a status value is one of the known states.
func IsValidStatus(s MaintenanceStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidPattern checks if a recurrence pattern is one of the known patterns.
func IsValidPattern(p RecurrencePattern) bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceFortnight,
		RecurrenceMonthly, RecurrenceQuarterly, RecurrenceYearly, RecurrenceNone:
		return true
	default:
		return false
	}
}

// DayKey formats a date as the calendar-day dedup key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
