package tracing

import (
	"context"
	"log/slog"
	"sync"
)

// LogTracer writes a record for every finished task and, at debug level, for
// every step.
type LogTracer struct {
	lock       sync.Mutex
	logger     *slog.Logger
	timeTeller TimeTeller
	filter     TaskFilter
	inflight   map[string]*Task
}

// NewLogTracer creates a LogTracer. A nil filter accepts every task.
func NewLogTracer(
	logger *slog.Logger,
	timeTeller TimeTeller,
	filter TaskFilter,
) *LogTracer {
	if filter == nil {
		filter = AllTasks
	}

	return &LogTracer{
		logger:     logger,
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]*Task),
	}
}

// StartTask records the task start time.
func (t *LogTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()
	task.Steps = nil

	t.lock.Lock()
	t.inflight[task.ID] = &task
	t.lock.Unlock()
}

// StepTask logs the step at debug level.
func (t *LogTracer) StepTask(task Task) {
	t.lock.Lock()
	original, ok := t.inflight[task.ID]

	if ok {
		original.Steps = append(original.Steps, task.Steps...)
	}
	t.lock.Unlock()

	if !ok {
		return
	}

	for _, step := range task.Steps {
		t.logger.Debug("callback",
			"id", original.ID,
			"hook", original.What,
			"handle", step.What)
	}
}

// EndTask logs the task.
func (t *LogTracer) EndTask(task Task) {
	t.lock.Lock()
	original, ok := t.inflight[task.ID]
	delete(t.inflight, task.ID)
	t.lock.Unlock()

	if !ok {
		return
	}

	original.EndTime = t.timeTeller.CurrentTime()
	original.Detail = task.Detail

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("id", original.ID),
		slog.String("kind", original.Kind),
		slog.String("hook", original.What),
		slog.String("entity", original.Where),
		slog.Int("callbacks", len(original.Steps)),
		slog.Duration("duration", original.Duration()),
	}

	if original.ParentID != "" {
		attrs = append(attrs, slog.String("parent", original.ParentID))
	}

	if err := original.Err(); err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	t.logger.LogAttrs(context.Background(), level, "dispatch", attrs...)
}
