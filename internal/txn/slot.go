package txn

import (
	"context"
	"sync/atomic"
)

// Slot is a single-assignment, single-consumption result cell.
//
// Exactly one Resolve call wins; later calls report false and leave the
// stored result untouched. Take blocks until the slot is resolved and may be
// called once; a second Take is a programming error and panics.
type Slot[T any] struct {
	done     chan struct{}
	resolved atomic.Bool
	taken    atomic.Bool
	value    T
	err      error
}

// NewSlot creates an unresolved slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{done: make(chan struct{})}
}

// Resolve stores the result. It returns false if the slot was already resolved.
func (s *Slot[T]) Resolve(v T, err error) bool {
	if !s.resolved.CompareAndSwap(false, true) {
		return false
	}
	s.value, s.err = v, err
	close(s.done)
	return true
}

// Done is closed once the slot is resolved.
func (s *Slot[T]) Done() <-chan struct{} {
	return s.done
}

// Take blocks until the slot is resolved and returns the result.
func (s *Slot[T]) Take() (T, error) {
	<-s.done
	if !s.taken.CompareAndSwap(false, true) {
		panic("txn: result slot consumed twice")
	}
	return s.value, s.err
}

// Wait is Take bounded by ctx. If ctx ends first the slot is left
// unconsumed and ctx.Err() is returned.
func (s *Slot[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		return s.Take()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
