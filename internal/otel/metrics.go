package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce  sync.Once
	tasksRouted      metric.Int64Counter
	dispatchCounter  metric.Int64Counter
	standupsCompiled metric.Int64Counter
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		tasksRouted, err = m.Int64Counter("hydra_tasks_routed_total", metric.WithDescription("Total tasks created through the category router"))
		if err != nil {
			return
		}
		dispatchCounter, err = m.Int64Counter("hydra_notifications_dispatched_total", metric.WithDescription("Total notification delivery attempts by result"))
		if err != nil {
			return
		}
		standupsCompiled, err = m.Int64Counter("hydra_standups_compiled_total", metric.WithDescription("Total standup compiler runs"))
		if err != nil {
			return
		}
	})
	return err
}

// TaskCountFunc returns pending/in_progress/blocked/completed counts for the
// hydra_tasks_total gauge.
type TaskCountFunc func() (pending, inProgress, blocked, completed int64)

// InitMetricsWithTaskCount creates instruments and registers the task-status
// gauge callback. If taskCount is nil, the gauge is not reported.
func InitMetricsWithTaskCount(ctx context.Context, taskCount TaskCountFunc) error {
	if err := InitMetrics(ctx); err != nil {
		return err
	}
	if taskCount == nil {
		return nil
	}
	m := Meter()
	tasksGauge, err := m.Int64ObservableGauge("hydra_tasks_total", metric.WithDescription("Number of tasks by status"))
	if err != nil {
		return err
	}
	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		pending, inProgress, blocked, completed := taskCount()
		o.ObserveInt64(tasksGauge, pending, metric.WithAttributes(AttrStatus.String("pending")))
		o.ObserveInt64(tasksGauge, inProgress, metric.WithAttributes(AttrStatus.String("in_progress")))
		o.ObserveInt64(tasksGauge, blocked, metric.WithAttributes(AttrStatus.String("blocked")))
		o.ObserveInt64(tasksGauge, completed, metric.WithAttributes(AttrStatus.String("completed")))
		return nil
	}, tasksGauge)
	return err
}

// RecordTaskRouted records one task created through the router.
func RecordTaskRouted(ctx context.Context, category, role string) {
	if tasksRouted == nil {
		return
	}
	tasksRouted.Add(ctx, 1, metric.WithAttributes(AttrCategory.String(category), AttrRole.String(role)))
}

// RecordDispatch records one delivery attempt ("delivered" or "failed").
func RecordDispatch(ctx context.Context, result, priority string) {
	if dispatchCounter == nil {
		return
	}
	dispatchCounter.Add(ctx, 1, metric.WithAttributes(AttrResult.String(result), AttrPriority.String(priority)))
}

// RecordStandup records one standup compiler run.
func RecordStandup(ctx context.Context) {
	if standupsCompiled == nil {
		return
	}
	standupsCompiled.Add(ctx, 1)
}
