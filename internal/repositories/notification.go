package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aerovane/skedcore/internal/notifications"
	"github.com/aerovane/skedcore/internal/platform/db"
)

// NotificationRepository appends in-app notifications produced on
// reschedule (Decision & Audit) and on run failure (Orchestrator).
type NotificationRepository struct {
	db        *db.PostgresDB
	publisher *notifications.Publisher
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pgDB *db.PostgresDB) *NotificationRepository {
	return &NotificationRepository{db: pgDB}
}

// WithPublisher attaches an optional NATS publisher; a nil publisher is
// a valid no-op.
func (r *NotificationRepository) WithPublisher(p *notifications.Publisher) *NotificationRepository {
	r.publisher = p
	return r
}

// Create inserts a new notification and, if a publisher is attached,
// announces it on NATS.
func (r *NotificationRepository) Create(ctx context.Context, n *db.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO notifications (flight_id, type, severity, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, n.FlightID, n.Type, n.Severity, n.Message, n.Read, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	r.publisher.PublishCreated(n)
	return nil
}
