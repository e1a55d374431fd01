package api

import (
	"fmt"
	"io"
	"time"
)

// Operation identifies the kind of gateway call being made.
type Operation string

const (
	OpFetchPlans   Operation = "fetch_plans"
	OpGenerate     Operation = "generate"
	OpUpdateStatus Operation = "update_status"
	OpSkipDay      Operation = "skip_day"
	OpSkipDate     Operation = "skip_date"
	OpDeletePlan   Operation = "delete_plan"
	OpFetchRecipes Operation = "fetch_recipes"
	OpFetchSkipped Operation = "fetch_skipped"
	OpSubscription Operation = "subscription"
	OpFreezerAdd   Operation = "freezer_add"
)

// CallEvent records metadata about a single gateway invocation.
type CallEvent struct {
	Op        Operation
	Status    int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about gateway calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes gateway call events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	fmt.Fprintf(o.w, "[%s] api_call op=%s http_status=%d latency_ms=%d status=%s\n",
		ts, event.Op, event.Status, event.LatencyMs, status)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
