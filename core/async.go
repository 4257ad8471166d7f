package core

import "context"

// Waker requests that the task consuming an operation polls it again.
// Wake semantics are at-least-once; redundant wakes must be tolerated.
type Waker interface {
	Wake()
}

// Async adapts an Operation to an external task-waking scheduler: every
// poll that is neither done nor an error requests another wake. It must
// not be polled from more than one goroutine at a time.
type Async struct {
	op    Operation
	waker Waker
}

func NewAsync(op Operation, waker Waker) *Async {
	return &Async{op: op, waker: waker}
}

func (a *Async) Poll() (bool, error) {
	done, err := a.op.Poll()
	if !done && err == nil {
		a.waker.Wake()
	}
	return done, err
}

// ChannelWaker delivers wakes over a buffered channel without ever
// blocking the waking side. A wake that finds the channel full is
// dropped; one buffered wake is enough to trigger a re-poll.
type ChannelWaker chan struct{}

func NewChannelWaker() ChannelWaker { return make(ChannelWaker, 1) }

func (w ChannelWaker) Wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// Await polls op once per wake delivered on w until the operation
// produces a terminal result or ctx is done. The operation is polled once
// up front so it can request its first wake.
func Await(ctx context.Context, op Operation, w ChannelWaker) error {
	a := NewAsync(op, w)
	for {
		done, err := a.Poll()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w:
		}
	}
}
