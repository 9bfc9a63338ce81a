package metrics

import (
	"context"
	"time"
)

// Recorder knows how to record application metrics.
type Recorder interface {
	// ObserveAPIRequest records a remote API request.
	ObserveAPIRequest(ctx context.Context, method string, statusCode int, success bool, duration time.Duration)
	// IncPollCycle records a change set poll cycle with its classification outcome.
	IncPollCycle(ctx context.Context, status string, outcome string)
	// IncForceApplyRetry records a force apply retry due to dependent values not settled.
	IncForceApplyRetry(ctx context.Context)
	// ObserveWorkflowRun records a finished workflow run.
	ObserveWorkflowRun(ctx context.Context, applyMode string, success bool, duration time.Duration)
}

// Noop is a recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObserveAPIRequest(context.Context, string, int, bool, time.Duration) {}
func (noop) IncPollCycle(context.Context, string, string)                        {}
func (noop) IncForceApplyRetry(context.Context)                                  {}
func (noop) ObserveWorkflowRun(context.Context, string, bool, time.Duration)     {}
