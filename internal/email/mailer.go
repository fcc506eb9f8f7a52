package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/models"
)

// Mailer sends maintenance emails. All implementations are fire-and-forget
// from the caller's perspective: a delivery failure is logged by the caller,
// never escalated.
type Mailer interface {
	SendMaintenanceReminder(ctx context.Context, to string, record *models.MaintenanceRecord) error
	SendLowStockAlert(ctx context.Context, to string, items []models.InventoryItem) error
}

// Config holds SMTP transport configuration. An empty Host selects the
// log-only mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer.
func NewMailer(cfg Config, logger *log.Logger) Mailer {
	if cfg.Host == "" {
		logger.Info("no SMTP host configured, emails will be logged only")
		return &LogMailer{logger: logger}
	}
	logger.WithFields(log.Fields{"host": cfg.Host, "port": cfg.Port}).Info("using SMTP mailer")
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// LogMailer logs emails instead of sending them.
type LogMailer struct {
	logger *log.Logger
}

// SendMaintenanceReminder logs the reminder instead of sending it.
func (m *LogMailer) SendMaintenanceReminder(ctx context.Context, to string, record *models.MaintenanceRecord) error {
	m.logger.WithFields(log.Fields{
		"to":             to,
		"maintenance_id": record.ID.Hex(),
		"title":          record.Title,
		"scheduled_date": record.ScheduledDate,
	}).Info("maintenance reminder email (log only)")
	return nil
}

// SendLowStockAlert logs the alert instead of sending it.
func (m *LogMailer) SendLowStockAlert(ctx context.Context, to string, items []models.InventoryItem) error {
	m.logger.WithFields(log.Fields{
		"to":    to,
		"items": len(items),
	}).Info("low stock alert email (log only)")
	return nil
}

// SMTPMailer sends emails through a plain SMTP transport.
type SMTPMailer struct {
	cfg    Config
	logger *log.Logger
}

// SendMaintenanceReminder emails one upcoming-maintenance reminder.
func (m *SMTPMailer) SendMaintenanceReminder(ctx context.Context, to string, record *models.MaintenanceRecord) error {
	subject := fmt.Sprintf("Maintenance due: %s", record.Title)
	body := fmt.Sprintf(
		"Maintenance task %q is scheduled for %s (priority: %s).\r\n\r\n%s\r\n",
		record.Title,
		record.ScheduledDate.Format("2006-01-02"),
		record.Priority,
		record.Description,
	)
	return m.send(to, subject, body)
}

// SendLowStockAlert emails a summary of items below their reorder threshold.
func (m *SMTPMailer) SendLowStockAlert(ctx context.Context, to string, items []models.InventoryItem) error {
	subject := fmt.Sprintf("Low stock alert: %d item(s) need reordering", len(items))
	var b strings.Builder
	fmt.Fprintf(&b, "The following items are at or below their reorder threshold:\r\n\r\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %d %s remaining (reorder at %d)\r\n",
			item.Name, item.CurrentStock, item.Unit, item.MinStock)
	}
	return m.send(to, subject, b.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
