// Package taskqueue implements the host's cooperative task queue.
//
// Scripting is single-threaded and cooperative: work that must not reenter
// the engine synchronously (deferred dynamic imports, host callbacks) is
// posted here and run later on the host's logical main loop. The queue is
// FIFO per poster and has no cancellation: once a task is posted it will run.
package taskqueue

import "sync"

// Queue is a FIFO queue of deferred host tasks.
//
// Post is safe to call from any goroutine, including from inside a running
// task. Draining is single-consumer: exactly one goroutine may call Run or
// Drain at a time.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// New creates and returns an initialized, empty Queue.
func New() *Queue {
	return &Queue{}
}

// Post appends a task to the queue.
func (q *Queue) Post(task func()) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Len returns the number of tasks currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// pop removes and returns the oldest task, or nil if the queue is empty.
func (q *Queue) pop() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task
}

// Run runs the oldest pending task, if any, and reports whether one ran.
func (q *Queue) Run() bool {
	task := q.pop()
	if task == nil {
		return false
	}
	task()
	return true
}

// Drain runs tasks until the queue is empty, including tasks posted by the
// tasks it runs, and returns the number of tasks executed.
func (q *Queue) Drain() int {
	n := 0
	for q.Run() {
		n++
	}
	return n
}
