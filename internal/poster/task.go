package poster

import "context"

// Task is one cancellable background decode bound to the draft that
// started it.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs fn in its own goroutine with a context derived from parent.
func Start(parent context.Context, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		fn(ctx)
	}()
	return t
}

// Cancel asks the task to stop. It does not wait.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when fn has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
