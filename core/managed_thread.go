package core

import (
	"context"
	"sync"
	"time"
)

// ThreadBody is the function executed on a managed thread's dedicated
// goroutine. The context is canceled (with cause ErrTerminated) when the
// thread is force-terminated; the body should treat ctx.Done() as its
// safe points.
type ThreadBody func(ctx context.Context)

// ManagedThread wraps one dedicated goroutine with identity tracking,
// liveness queries, forced termination and join. Each instance owns
// exactly one goroutine; Start can only succeed once.
type ManagedThread struct {
	name       string
	logger     Logger
	terminator *ForceTerminator

	mu       sync.Mutex
	started  bool
	identity ThreadIdentity
	done     chan struct{}
}

// NewManagedThread creates a thread handle. An empty name gets a
// generated one. A nil logger defaults to DefaultLogger.
func NewManagedThread(name string, logger Logger) *ManagedThread {
	if name == "" {
		name = generateName("thread")
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ManagedThread{
		name:       name,
		logger:     logger,
		terminator: NewForceTerminator(logger),
	}
}

// Name returns the caller-supplied (or generated) label.
func (t *ManagedThread) Name() string {
	return t.name
}

// Start spawns the dedicated goroutine executing body.
// Returns ErrAlreadyStarted on the second call, whether or not the first
// thread is still alive.
func (t *ManagedThread) Start(body ThreadBody) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrAlreadyStarted
	}

	ctx, kill := context.WithCancelCause(context.Background())
	done := make(chan struct{})
	t.identity = ThreadIdentity{
		id:   threadSeq.Add(1),
		kill: kill,
		done: done,
	}
	t.done = done
	t.started = true

	t.logger.Debug("thread started", F("name", t.name), F("thread", t.identity.id))

	go func() {
		defer close(done)
		body(ctx)
	}()

	return nil
}

// IsAlive queries current liveness of the goroutine. The answer is read
// live from the done channel, never cached: it can flip to false at any
// moment from the thread's own exit.
func (t *ManagedThread) IsAlive() bool {
	t.mu.Lock()
	started, done := t.started, t.done
	t.mu.Unlock()

	if !started {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Terminate delivers a forced-kill request via the thread's own identity.
// Returns ErrNotStarted before Start; a request against an already-dead
// thread is a successful no-op.
func (t *ManagedThread) Terminate() error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return ErrNotStarted
	}
	id := t.identity
	t.mu.Unlock()

	return t.terminator.Terminate(id)
}

// Join blocks until the thread exits or timeout elapses. A timeout of 0
// waits forever. Returns ErrJoinTimeout when the deadline passes first;
// the thread keeps running.
func (t *ManagedThread) Join(timeout time.Duration) error {
	t.mu.Lock()
	started, done := t.started, t.done
	t.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	if timeout <= 0 {
		<-done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrJoinTimeout
	}
}
