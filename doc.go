// Package threadctl provides controllable thread lifecycles for Go: start
// a unit of work on a dedicated goroutine, then stop it gracefully or
// force-terminate it even when the work does not check a stop flag itself.
//
// # Quick Start
//
// Run a callable once and collect its result:
//
//	runner := threadctl.Once("fetch", func(ctx context.Context) (int, error) {
//		return 42, nil
//	})
//	runner.Start()
//	v, err := runner.Result(time.Second)
//
// Run a callable in a loop until stopped:
//
//	loop := threadctl.Cycle("heartbeat", func(ctx context.Context) error {
//		sendHeartbeat()
//		return nil
//	}, 500*time.Millisecond)
//	loop.Start()
//	// ...
//	loop.Stop()
//	loop.Join(time.Second)
//
// # Key Concepts
//
// ManagedThread: wraps one dedicated goroutine with identity tracking,
// liveness queries, Join and forced termination.
//
// OnceRunner: executes the work exactly once and exposes a one-shot
// result slot; Result distinguishes a returned value, a work error, and
// a forced termination.
//
// CycleRunner: invokes the work repeatedly with an adjustable interval,
// a cooperative stop flag, pause/resume, and a configurable error policy
// (log-and-continue by default, optional stop-on-error and backoff).
//
// # Forced Termination
//
// Terminate delivers a best-effort kill: the work's context is canceled
// with cause ErrTerminated and the runner resolves to Terminated
// immediately. A goroutine cannot be preempted from outside, so work
// blocked in code that ignores its context keeps running detached until
// it returns; its side effects may be partially applied. Work that
// honors ctx.Done() unwinds at its next safe point.
//
// # Example
//
//	import (
//		"context"
//		"time"
//
//		threadctl "github.com/Swind/go-thread-control"
//	)
//
//	func main() {
//		loop := threadctl.Cycle("poller", func(ctx context.Context) error {
//			poll(ctx)
//			return nil
//		}, time.Second)
//		loop.Start()
//		defer threadctl.StopAll(5 * time.Second)
//
//		slow := threadctl.Once("slow", func(ctx context.Context) (string, error) {
//			select {
//			case <-time.After(time.Minute):
//				return "done", nil
//			case <-ctx.Done():
//				return "", ctx.Err()
//			}
//		})
//		slow.Start()
//		slow.Terminate()
//		_, err := slow.Result(time.Second) // threadctl.ErrTerminated
//		_ = err
//	}
//
// For more details, see https://github.com/Swind/go-thread-control
package threadctl
