package notifications

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
)

func TestConnectEmptyURLIsNoOp(t *testing.T) {
	p := Connect("")
	if p.nc != nil {
		t.Error("Connect(\"\") should return a Publisher with no underlying connection")
	}
}

func TestConnectUnreachableURLDegradesToNoOp(t *testing.T) {
	p := Connect("nats://127.0.0.1:1")
	if p.nc != nil {
		t.Error("Connect() with an unreachable broker should degrade to a no-op Publisher")
	}
}

func TestPublishCreatedNilSafe(t *testing.T) {
	var p *Publisher
	p.PublishCreated(&db.Notification{ID: 1, Type: "test", Severity: "info", Message: "hello"})
	// no panic means success
}

func TestPublishCreatedNoOpConnection(t *testing.T) {
	p := &Publisher{}
	p.PublishCreated(&db.Notification{
		ID:        1,
		FlightID:  sql.NullInt64{Int64: 5, Valid: true},
		Type:      "auto-rescheduled",
		Severity:  "info",
		Message:   "flight rescheduled",
		CreatedAt: time.Now(),
	})
	// no underlying connection: PublishCreated must return without erroring
}

func TestCloseNilSafe(t *testing.T) {
	var p *Publisher
	p.Close()

	p2 := &Publisher{}
	p2.Close()
}
