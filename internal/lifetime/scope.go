// Package lifetime ties asynchronous work to the lifetime of a view.
//
// A Scope is opened when a screen (a CLI command, a companion request, a
// long-lived session) starts and closed when it goes away. Work started with
// Go runs under the scope's context; once the scope is closed its completion
// callback is never invoked, so a late result cannot touch state that is no
// longer shown.
package lifetime

import (
	"context"
	"sync"
)

// Scope is a cancellable view lifetime. The zero value is not usable.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New opens a scope derived from parent.
func New(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the scope's context. It is cancelled by Close.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels in-flight work. Results that arrive afterwards are dropped.
// Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// Wait blocks until every task started with Go has returned.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Go runs fn in a goroutine with the scope's context and hands its result to
// done, unless the scope was closed first. done runs on fn's goroutine while
// the scope is held, so Close waits for a done already in progress to finish;
// done must not call back into the scope.
// Go reports false without starting fn when the scope is already closed.
func Go[T any](s *Scope, fn func(ctx context.Context) (T, error), done func(T, error)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		v, err := fn(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || done == nil {
			return
		}
		done(v, err)
	}()
	return true
}

// Bind returns a context that is done when either ctx or the scope is.
func (s *Scope) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Run is the synchronous form of Go. fn runs under ctx bound to the scope;
// if the scope closes before fn returns, the result is discarded and
// context.Canceled is returned instead.
func Run[T any](ctx context.Context, s *Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := s.Bind(ctx)
	defer cancel()

	v, err := fn(ctx)
	if s.Closed() {
		var zero T
		return zero, context.Canceled
	}
	return v, err
}

// Slot holds the scope of whatever view is current and swaps it when the
// view changes, for example on sign-out.
type Slot struct {
	parent context.Context

	mu    sync.Mutex
	scope *Scope
}

// NewSlot opens the first scope under parent.
func NewSlot(parent context.Context) *Slot {
	return &Slot{parent: parent, scope: New(parent)}
}

// Current returns the open scope.
func (s *Slot) Current() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Renew closes the current scope and opens a fresh one.
func (s *Slot) Renew() *Scope {
	s.mu.Lock()
	old := s.scope
	s.scope = New(s.parent)
	next := s.scope
	s.mu.Unlock()

	old.Close()
	return next
}

// Close closes the current scope without opening another.
func (s *Slot) Close() {
	s.Current().Close()
}
