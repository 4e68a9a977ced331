// Package orchestrator implements the pipeline orchestrator and run
// monitor: stage sequencing, correlation tagging, run metrics, and
// partial-failure recording.
package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trigger identifies what invoked a pipeline run.
type Trigger string

const (
	TriggerCron   Trigger = "cron"
	TriggerManual Trigger = "rpc"
)

// newCorrelationID generates `run-<prefix>-<unixMillis>-<uuid>`, tagging
// every downstream stage call and log record of one run.
func newCorrelationID(trigger Trigger) string {
	return fmt.Sprintf("run-%s-%d-%s", trigger, time.Now().UTC().UnixMilli(), uuid.NewString())
}

// NewCorrelationID is the exported form, used by the RPC surface to tag
// a manually triggered stage call that runs outside a full Pipeline.Run.
func NewCorrelationID(trigger Trigger) string {
	return newCorrelationID(trigger)
}
