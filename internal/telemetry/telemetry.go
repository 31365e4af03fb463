// Package telemetry records gameplay counters with OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counters implements game.Recorder on otel Int64Counters.
type Counters struct {
	fired     metric.Int64Counter
	poolGrew  metric.Int64Counter
	poolSize  metric.Int64Gauge
	defeated  metric.Int64Counter
	ringsPass metric.Int64Counter
}

var _ game.Recorder = (*Counters)(nil)

// New creates the counters on the global meter provider.
func New() (*Counters, error) {
	return NewWithMeter(meter())
}

// NewWithMeter creates the counters on m.
func NewWithMeter(m metric.Meter) (*Counters, error) {
	c := &Counters{}
	var err error

	c.fired, err = m.Int64Counter(
		"railshooter.projectiles.fired",
		metric.WithDescription("Projectiles launched, by pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fired counter: %w", err)
	}

	c.poolGrew, err = m.Int64Counter(
		"railshooter.pool.grown",
		metric.WithDescription("Projectiles allocated because a pool was empty"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pool growth counter: %w", err)
	}

	c.poolSize, err = m.Int64Gauge(
		"railshooter.pool.size",
		metric.WithDescription("Pool size after the last growth"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pool size gauge: %w", err)
	}

	c.defeated, err = m.Int64Counter(
		"railshooter.enemies.defeated",
		metric.WithDescription("Enemies brought to zero health"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating defeated counter: %w", err)
	}

	c.ringsPass, err = m.Int64Counter(
		"railshooter.rings.passed",
		metric.WithDescription("Ring gates flown through"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rings counter: %w", err)
	}

	return c, nil
}

func (c *Counters) ProjectileFired(pool string) {
	c.fired.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("pool", pool)))
}

func (c *Counters) PoolGrew(pool string, size int) {
	attrs := metric.WithAttributes(attribute.String("pool", pool))
	c.poolGrew.Add(context.Background(), 1, attrs)
	c.poolSize.Record(context.Background(), int64(size), attrs)
}

func (c *Counters) EnemyDefeated(label string) {
	c.defeated.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("enemy", label)))
}

func (c *Counters) RingPassed() {
	c.ringsPass.Add(context.Background(), 1)
}
