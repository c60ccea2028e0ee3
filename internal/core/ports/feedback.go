package ports

import "context"

// Signal is an operator-facing cue (tone, vibration, counter) emitted by the core.
type Signal string

const (
	SignalScanSuccess       Signal = "scan_success"
	SignalScanMismatch      Signal = "scan_mismatch"
	SignalDuplicateRejected Signal = "duplicate_rejected"
	SignalRegistered        Signal = "registered"
	SignalWarning           Signal = "warning"
)

// Feedback delivers signals to the operator. It must not block and never fails.
type Feedback interface {
	Signal(ctx context.Context, s Signal)
}
