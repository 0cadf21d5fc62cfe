package editor

import "sync"

// Task is a unit of deferred work. A cancelled task never runs.
type Task struct {
	mu        sync.Mutex
	fn        func()
	cancelled bool
	done      bool
}

// NewTask wraps fn.
func NewTask(fn func()) *Task {
	return &Task{fn: fn}
}

// Cancel prevents the task from running. Cancelling a finished task has no
// effect.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done reports whether the task has run.
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Run executes the task once unless it was cancelled. It reports whether the
// body ran.
func (t *Task) Run() bool {
	t.mu.Lock()
	if t.cancelled || t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	fn := t.fn
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Scheduler runs tasks at some later point.
type Scheduler interface {
	Schedule(t *Task)
}

// FrameQueue is the default Scheduler. Tasks wait until the host calls
// Flush, normally once per frame.
type FrameQueue struct {
	mu    sync.Mutex
	tasks []*Task
}

// NewFrameQueue creates an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// Schedule queues t for the next Flush.
func (q *FrameQueue) Schedule(t *Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// Len returns the number of queued tasks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Flush runs the tasks queued before the call, in order, and returns how
// many ran. Tasks scheduled while flushing wait for the next Flush.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	ran := 0
	for _, t := range tasks {
		if t.Run() {
			ran++
		}
	}
	return ran
}
