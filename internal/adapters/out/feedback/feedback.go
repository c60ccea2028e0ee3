// Package feedback turns operator signals into log lines and prometheus counters.
// A front end reads the counters (or tails the log) to play tones and vibrations.
package feedback

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"manifest/internal/core/ports"
)

// Recorder implements ports.Feedback.
type Recorder struct {
	signals *prometheus.CounterVec
	logger  *slog.Logger
}

// NewRecorder registers manifest_feedback_signals_total on reg.
func NewRecorder(reg prometheus.Registerer, logger *slog.Logger) (*Recorder, error) {
	signals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manifest",
		Name:      "feedback_signals_total",
		Help:      "Operator feedback signals emitted, by signal.",
	}, []string{"signal"})
	if err := reg.Register(signals); err != nil {
		return nil, err
	}

	return &Recorder{
		signals: signals,
		logger:  logger.With("component", "feedback"),
	}, nil
}

// Signal never blocks and never fails.
func (r *Recorder) Signal(ctx context.Context, s ports.Signal) {
	r.signals.WithLabelValues(string(s)).Inc()

	level := slog.LevelDebug
	switch s {
	case ports.SignalDuplicateRejected, ports.SignalScanMismatch, ports.SignalWarning:
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "feedback", "signal", string(s))
}

// Nop discards every signal.
type Nop struct{}

func (Nop) Signal(context.Context, ports.Signal) {}
