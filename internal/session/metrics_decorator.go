package session

import (
	"context"
	"errors"
	"time"

	"github.com/Nazarious-ucu/travel-planner-api/internal/models"
)

type metricsCollector interface {
	ObserveLatency(operation string, duration time.Duration)
	IncrementCounter(operation string, result string)
}

type MetricsDecorator struct {
	next      Store
	collector metricsCollector
}

func NewMetricsDecorator(next Store, collector metricsCollector) *MetricsDecorator {
	return &MetricsDecorator{next: next, collector: collector}
}

func (m *MetricsDecorator) Load(ctx context.Context, id string) (models.SessionContext, error) {
	start := time.Now()
	sess, err := m.next.Load(ctx, id)
	m.collector.ObserveLatency("load", time.Since(start))

	switch {
	case errors.Is(err, ErrNotFound):
		m.collector.IncrementCounter("load", "miss")
	case err != nil:
		m.collector.IncrementCounter("load", "error")
	default:
		m.collector.IncrementCounter("load", "hit")
	}
	return sess, err
}

func (m *MetricsDecorator) Save(ctx context.Context, id string, sess models.SessionContext) error {
	start := time.Now()
	err := m.next.Save(ctx, id, sess)
	m.collector.ObserveLatency("save", time.Since(start))
	m.collector.IncrementCounter("save", result(err))
	return err
}

func (m *MetricsDecorator) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.collector.ObserveLatency("delete", time.Since(start))
	m.collector.IncrementCounter("delete", result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
