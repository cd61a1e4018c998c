// Package observe holds the OpenTelemetry instruments recorded by
// adaptation sessions. Tests should build Metrics from their own
// MeterProvider; GlobalMetrics uses the global one.
package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/proegssilb/tiesr-dialer-sub000"

// Metrics holds the session instruments. Safe for concurrent use.
type Metrics struct {
	// Frames counts processed frames.
	Frames metric.Int64Counter
	// SpeechOnsets counts utterances whose start was detected.
	SpeechOnsets metric.Int64Counter
	// JACVectors counts compensated mean vectors.
	JACVectors metric.Int64Counter
	// JACCycles counts full passes over the model.
	JACCycles metric.Int64Counter
	// SVAUpdates counts variance compensations.
	SVAUpdates metric.Int64Counter
	// StateResets counts persisted states replaced by defaults. Use with
	// attribute.String("reason", ...).
	StateResets metric.Int64Counter

	// FrameEnergy records frame log2 energy, Q9 converted to dB.
	FrameEnergy metric.Float64Histogram
}

var energyBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Frames, err = m.Int64Counter("tiesr.frames",
		metric.WithDescription("Frames processed."),
	); err != nil {
		return nil, err
	}
	if met.SpeechOnsets, err = m.Int64Counter("tiesr.speech.onsets",
		metric.WithDescription("Utterances in which speech was detected."),
	); err != nil {
		return nil, err
	}
	if met.JACVectors, err = m.Int64Counter("tiesr.jac.vectors",
		metric.WithDescription("Mean vectors compensated."),
	); err != nil {
		return nil, err
	}
	if met.JACCycles, err = m.Int64Counter("tiesr.jac.cycles",
		metric.WithDescription("Complete compensation passes over the model."),
	); err != nil {
		return nil, err
	}
	if met.SVAUpdates, err = m.Int64Counter("tiesr.sva.updates",
		metric.WithDescription("Variance compensations applied."),
	); err != nil {
		return nil, err
	}
	if met.StateResets, err = m.Int64Counter("tiesr.state.resets",
		metric.WithDescription("Persisted adaptation states replaced by defaults."),
	); err != nil {
		return nil, err
	}
	if met.FrameEnergy, err = m.Float64Histogram("tiesr.frame.energy",
		metric.WithDescription("Frame energy."),
		metric.WithUnit("dB"),
		metric.WithExplicitBucketBoundaries(energyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// GlobalMetrics returns metrics on otel.GetMeterProvider. The provider
// deduplicates instruments, so every call records into the same series.
func GlobalMetrics() (*Metrics, error) {
	return NewMetrics(otel.GetMeterProvider())
}

// log2 Q9 to dB: 10*log10(2)/512
const q9ToDB = 3.0103 / 512

// RecordFrame records one frame and its energy (log2, Q9).
func (m *Metrics) RecordFrame(ctx context.Context, energy int16) {
	m.Frames.Add(ctx, 1)
	m.FrameEnergy.Record(ctx, float64(energy)*q9ToDB)
}

// RecordStateReset records a persisted state that could not be used.
func (m *Metrics) RecordStateReset(ctx context.Context, reason string) {
	m.StateResets.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
