package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/hookr/datarecording"
	"github.com/tebeka/atexit"
)

// The tables written by DBTracer.
const (
	TaskTableName = "dispatch_task"
	StepTableName = "dispatch_step"
)

// TaskTableEntry is a row of the task table.
type TaskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
	NumSteps  int
	Error     string
}

// StepTableEntry is a row of the step table.
type StepTableEntry struct {
	TaskID string
	Seq    int
	What   string
	Time   float64
}

// DBTracer is a tracer that stores tasks into a database through a
// datarecording.DataRecorder.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime time.Time

	tracingTasks map[string]*Task
}

// NewDBTracer creates a new DBTracer. The buffered rows are flushed when the
// program exits.
func NewDBTracer(
	timeTeller TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TaskTableName, TaskTableEntry{})
	dataRecorder.CreateTable(StepTableName, StepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]*Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits the tracer to the tasks that overlap with the given
// range. A zero time leaves that end of the range open.
func (t *DBTracer) SetTimeRange(startTime, endTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if !t.endTime.IsZero() && task.StartTime.After(t.endTime) {
		return
	}

	task.Steps = nil
	t.tracingTasks[task.ID] = &task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task where must be set")
	}
}

// StepTask records a callback invocation of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		step.Time = t.timeTeller.CurrentTime()
		original.Steps = append(original.Steps, step)
	}
}

// EndTask marks the end of a task and writes it with its steps.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	original.EndTime = t.timeTeller.CurrentTime()
	original.Detail = task.Detail

	if !t.startTime.IsZero() && original.EndTime.Before(t.startTime) {
		return
	}

	t.write(original)
}

func (t *DBTracer) write(task *Task) {
	entry := TaskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: seconds(task.StartTime),
		EndTime:   seconds(task.EndTime),
		NumSteps:  len(task.Steps),
	}

	if err := task.Err(); err != nil {
		entry.Error = err.Error()
	}

	t.backend.InsertData(TaskTableName, entry)

	for i, step := range task.Steps {
		t.backend.InsertData(StepTableName, StepTableEntry{
			TaskID: task.ID,
			Seq:    i,
			What:   step.What,
			Time:   seconds(step.Time),
		})
	}
}

// Terminate drops the unfinished tasks and flushes the recorded ones.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]*Task)
	t.backend.Flush()
}

func seconds(tm time.Time) float64 {
	return float64(tm.UnixNano()) / float64(time.Second)
}
