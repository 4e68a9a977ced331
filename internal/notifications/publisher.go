// Package notifications publishes created in-app notifications onto NATS
// for external subscribers, degrading to a no-op when no broker is
// configured.
package notifications

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aerovane/skedcore/internal/platform/db"
)

const createdSubject = "notifications.created"

// Publisher publishes notification-created events to NATS. A Publisher
// with a nil connection is a valid no-op value.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials natsURL and returns a Publisher. If natsURL is empty or
// the dial fails, it returns a no-op Publisher and logs a warning rather
// than failing startup.
func Connect(natsURL string) *Publisher {
	if natsURL == "" {
		return &Publisher{}
	}

	nc, err := nats.Connect(natsURL,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("notifications: disconnected from NATS: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("notifications: reconnected to NATS at %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		log.Printf("notifications: NATS unavailable, publishing disabled: %v", err)
		return &Publisher{}
	}

	return &Publisher{nc: nc}
}

// notificationEvent is the wire shape published for every created
// notification row.
type notificationEvent struct {
	ID        int64  `json:"id"`
	FlightID  *int64 `json:"flightId,omitempty"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// PublishCreated publishes one notification row. A nil connection is a
// silent no-op.
func (p *Publisher) PublishCreated(n *db.Notification) {
	if p == nil || p.nc == nil || n == nil {
		return
	}

	event := notificationEvent{
		ID:       n.ID,
		Type:     n.Type,
		Severity: n.Severity,
		Message:  n.Message,
	}
	if n.FlightID.Valid {
		id := n.FlightID.Int64
		event.FlightID = &id
	}
	event.CreatedAt = n.CreatedAt.UTC().Format(time.RFC3339)

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := p.nc.Publish(createdSubject, data); err != nil {
		log.Printf("notifications: publish failed: %v", err)
	}
}

// Close drains and closes the underlying connection, if any.
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}
