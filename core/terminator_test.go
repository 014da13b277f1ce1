package core

import (
	"context"
	"errors"
	"testing"
)

// TestForceTerminator_InvalidIdentity verifies the zero identity is rejected
// Given: A zero ThreadIdentity that was never issued by a ManagedThread
// When: Terminate is called
// Then: A TerminationError is returned
func TestForceTerminator_InvalidIdentity(t *testing.T) {
	ft := NewForceTerminator(NewNoOpLogger())

	err := ft.Terminate(ThreadIdentity{})

	var termErr *TerminationError
	if !errors.As(err, &termErr) {
		t.Fatalf("Terminate = %v, want *TerminationError", err)
	}
}

// TestForceTerminator_DeadIdentityIsNoOp verifies dead targets succeed
// Given: An identity whose done channel is already closed
// When: Terminate is called
// Then: nil is returned and no cancellation is delivered
func TestForceTerminator_DeadIdentityIsNoOp(t *testing.T) {
	// Arrange
	ft := NewForceTerminator(NewNoOpLogger())
	ctx, kill := context.WithCancelCause(context.Background())
	done := make(chan struct{})
	close(done)
	id := ThreadIdentity{id: 1, kill: kill, done: done}

	// Act
	err := ft.Terminate(id)

	// Assert
	if err != nil {
		t.Errorf("Terminate on dead identity = %v, want nil", err)
	}
	if ctx.Err() != nil {
		t.Error("cancellation was delivered to a dead identity")
	}
}

// TestForceTerminator_DeliversCause verifies the kill cause
// Given: A live identity
// When: Terminate is called, twice
// Then: The context is canceled with cause ErrTerminated, idempotently
func TestForceTerminator_DeliversCause(t *testing.T) {
	// Arrange
	ft := NewForceTerminator(NewNoOpLogger())
	ctx, kill := context.WithCancelCause(context.Background())
	done := make(chan struct{})
	id := ThreadIdentity{id: 2, kill: kill, done: done}

	// Act
	if err := ft.Terminate(id); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if err := ft.Terminate(id); err != nil {
		t.Fatalf("repeated Terminate failed: %v", err)
	}

	// Assert
	if !errors.Is(context.Cause(ctx), ErrTerminated) {
		t.Errorf("cause = %v, want ErrTerminated", context.Cause(ctx))
	}
}
