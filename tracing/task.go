package tracing

import "time"

// A TaskStep is one callback invocation within a dispatch.
type TaskStep struct {
	Time time.Time `json:"time"`
	What string    `json:"what"`
}

// A Task is one raise of a hook.
type Task struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id"`
	Kind      string     `json:"kind"`
	What      string     `json:"what"`
	Where     string     `json:"where"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Steps     []TaskStep `json:"steps"`
	Detail    any        `json:"-"`
}

// Duration returns the time between the start and the end of the task.
func (t Task) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// Err returns the error the raise ended with, if any.
func (t Task) Err() error {
	err, _ := t.Detail.(error)
	return err
}

// The kinds of dispatch tasks.
const (
	KindFlat   = "flat"
	KindAround = "around"
)

// StepTerminal is the step name of the terminal of a chained dispatch.
const StepTerminal = "terminal"

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a TaskFilter that accepts every task.
func AllTasks(Task) bool {
	return true
}

// HookFilter accepts the tasks of the named hooks.
func HookFilter(hooks ...string) TaskFilter {
	return func(t Task) bool {
		for _, h := range hooks {
			if t.What == h {
				return true
			}
		}

		return false
	}
}
