// Package taskgraph executes a directed acyclic graph of named tasks on a
// bounded worker pool.
//
// A task runs only after every task it depends on has succeeded. When a task
// fails, everything downstream of it is marked failed without running, but
// unrelated tasks keep going and tasks already in flight are never cancelled.
// Run blocks until every task has resolved and reports every failure in the
// order tasks resolved.
package taskgraph

import (
	"context"
	"fmt"
	"sync"
)

// State is the lifecycle state of a task.
type State int

const (
	Pending State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Task is one node of a Graph.
type Task struct {
	id         string
	run        func(context.Context) error
	deps       []*Task
	dependents []*Task
	state      State
	err        error
}

// ID returns the name the task was registered under.
func (t *Task) ID() string {
	return t.id
}

// State returns the task's terminal state. It is only meaningful after the
// graph's Run has returned.
func (t *Task) State() State {
	return t.state
}

// Err returns why the task failed, or nil.
func (t *Task) Err() error {
	return t.err
}

// Failure records one failed task.
type Failure struct {
	TaskID string
	Reason error
}

// Result is the terminal state of every task after Run returns.
type Result struct {
	// Succeeded holds the ids of successful tasks in resolution order.
	Succeeded []string
	// Failures holds one entry per failed task in resolution order,
	// including tasks that never ran because a dependency failed.
	Failures []Failure
}

// Failed reports whether any task failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Graph is a fixed set of tasks with declared dependencies.
type Graph struct {
	tasks   []*Task
	workers int
}

// New returns an empty graph that will run at most workers tasks at once.
func New(workers int) *Graph {
	if workers < 1 {
		workers = 1
	}
	return &Graph{workers: workers}
}

// Add registers a task that becomes runnable once every dep has succeeded.
func (g *Graph) Add(id string, run func(context.Context) error, deps ...*Task) *Task {
	t := &Task{id: id, run: run, deps: deps}
	for _, dep := range deps {
		dep.dependents = append(dep.dependents, t)
	}
	g.tasks = append(g.tasks, t)
	return t
}

// Run executes the graph and blocks until every task has resolved. There are
// no retries and no cancellation: a task that has started runs to completion
// even if a sibling has already failed.
func (g *Graph) Run(ctx context.Context) *Result {
	ready := make(chan *Task, len(g.tasks))
	done := make(chan *Task, len(g.tasks))
	var wg sync.WaitGroup
	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range ready {
				t.state = Running
				t.err = t.run(ctx)
				done <- t
			}
		}()
	}

	// Tasks are only mutated by the worker running them or by this scheduler
	// loop after they resolve, so no locking is needed beyond the channels.
	waiting := make(map[*Task]int, len(g.tasks))
	for _, t := range g.tasks {
		waiting[t] = len(t.deps)
		if len(t.deps) == 0 {
			ready <- t
		}
	}

	result := &Result{}
	for resolved := 0; resolved < len(g.tasks); {
		t := <-done
		resolved++
		if t.err != nil {
			t.state = Failed
			result.Failures = append(result.Failures, Failure{TaskID: t.id, Reason: t.err})
			resolved += failDependents(t, result)
			continue
		}
		t.state = Succeeded
		result.Succeeded = append(result.Succeeded, t.id)
		for _, d := range t.dependents {
			waiting[d]--
			if waiting[d] == 0 {
				ready <- d
			}
		}
	}
	close(ready)
	wg.Wait()
	return result
}

// failDependents marks every task downstream of t failed without running it
// and returns how many tasks that resolved. Only Pending tasks are touched: a
// dependent that is running or already failed via another path is left alone.
func failDependents(t *Task, result *Result) int {
	n := 0
	for _, d := range t.dependents {
		if d.state != Pending {
			continue
		}
		d.state = Failed
		d.err = fmt.Errorf("dependency %s failed", t.id)
		result.Failures = append(result.Failures, Failure{TaskID: d.id, Reason: d.err})
		n++
		n += failDependents(d, result)
	}
	return n
}
