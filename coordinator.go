package dispatch

import (
	"errors"
	"fmt"
)

// Executor schedules a task. The default executor runs tasks immediately on
// the calling goroutine; hosts that need parallelism supply their own.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Execute(task func()) { f(task) }

// DirectExecutor runs each task inline on the calling goroutine.
func DirectExecutor() Executor {
	return ExecutorFunc(func(task func()) { task() })
}

// GoroutineExecutor runs each task on its own goroutine.
func GoroutineExecutor() Executor {
	return ExecutorFunc(func(task func()) { go task() })
}

// Postprocessor runs after a successful parse and before the handler. It
// may reject the invocation: returning ErrExecutionInterrupted completes
// the pipeline without error and without execution; any other error fails
// the invocation.
type Postprocessor[C any] func(cctx *Context[C], cmd *Command[C]) error

// ExecutionResult is delivered on the channel returned by an execution
// coordination. Either Command is set with a nil Err, or Err carries the
// failure. Interrupted marks a postprocessor rejection that completed
// without error and without execution.
type ExecutionResult[C any] struct {
	Context     *Context[C]
	Command     *Command[C]
	Err         error
	Interrupted bool
}

// ExecutionCoordinator runs the invocation pipeline
// PARSING → POSTPROCESSING → EXECUTING → COMPLETED, short-circuiting to a
// failed result at any stage. Parsing and execution each run on a
// configurable executor; suggestions follow a separate path that never
// touches postprocessing or execution.
type ExecutionCoordinator[C any] struct {
	parsingExecutor    Executor
	suggestionExecutor Executor
	executionExecutor  Executor
	postprocessors     []Postprocessor[C]
	synchronize        bool
	permits            chan struct{}
}

func newCoordinator[C any]() *ExecutionCoordinator[C] {
	return &ExecutionCoordinator[C]{
		parsingExecutor:    DirectExecutor(),
		suggestionExecutor: DirectExecutor(),
		executionExecutor:  DirectExecutor(),
	}
}

// CoordinateExecution drives one invocation through the pipeline and
// delivers exactly one result on the returned channel.
func (c *ExecutionCoordinator[C]) CoordinateExecution(tree *Tree[C], cctx *Context[C], in *Input) <-chan ExecutionResult[C] {
	out := make(chan ExecutionResult[C], 1)
	c.parsingExecutor.Execute(func() {
		cmd, err := tree.Parse(cctx, in)
		if err != nil {
			out <- ExecutionResult[C]{Context: cctx, Err: err}
			return
		}
		if err := cctx.Context().Err(); err != nil {
			out <- ExecutionResult[C]{Context: cctx, Command: cmd, Err: err}
			return
		}
		for _, pp := range c.postprocessors {
			if err := pp(cctx, cmd); err != nil {
				if errors.Is(err, ErrExecutionInterrupted) {
					out <- ExecutionResult[C]{Context: cctx, Command: cmd, Interrupted: true}
				} else {
					out <- ExecutionResult[C]{Context: cctx, Command: cmd, Err: err}
				}
				return
			}
		}
		c.executionExecutor.Execute(func() {
			out <- c.invoke(cctx, cmd)
		})
	})
	return out
}

// invoke runs the handler, holding the execution permit across the
// handler's asynchronous completion when synchronized execution is on.
// Handler errors and panics surface as CommandExecutionError; the
// coordinator itself never crashes.
func (c *ExecutionCoordinator[C]) invoke(cctx *Context[C], cmd *Command[C]) ExecutionResult[C] {
	if c.synchronize {
		c.permits <- struct{}{}
		defer func() { <-c.permits }()
	}
	err := safeExecute(cmd.Handler(), cctx)
	if err != nil {
		return ExecutionResult[C]{Context: cctx, Command: cmd, Err: &CommandExecutionError{Cause: err}}
	}
	return ExecutionResult[C]{Context: cctx, Command: cmd}
}

func safeExecute[C any](h ExecutionHandler[C], cctx *Context[C]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if fh, ok := h.(FutureExecutionHandler[C]); ok {
		return <-fh.ExecuteFuture(cctx)
	}
	return h.Execute(cctx)
}

// CoordinateSuggestions drives one completion pass and delivers the
// candidate list on the returned channel.
func (c *ExecutionCoordinator[C]) CoordinateSuggestions(tree *Tree[C], cctx *Context[C], in *Input) <-chan []Suggestion {
	out := make(chan []Suggestion, 1)
	c.suggestionExecutor.Execute(func() {
		out <- tree.Suggestions(cctx, in)
	})
	return out
}
