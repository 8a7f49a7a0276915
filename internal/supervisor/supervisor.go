// Package supervisor implements C9: signal handling, worker spawning,
// joining, and fatal-error-to-exit-code propagation shared by both
// daemons. Grounded on the teacher's goroutine-supervision idiom
// (paskozdilar-packet/arp/handler.go's Begin: a sync.WaitGroup of
// long-running goroutines joined at the end) and
// original_source/src/main.rs's signal-then-join shape.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
)

// Terminator is anything with a monotonic termination flag (state.Central
// and state.Node both satisfy this).
type Terminator interface {
	MarkTerminating()
}

// Supervisor installs SIGINT/SIGTERM/SIGQUIT handlers that mark every
// registered Terminator, derives a context cancelled on the same signals,
// and joins a set of worker goroutines, propagating the first error.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logr.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

// New installs the signal handlers and returns a Supervisor whose
// Context is cancelled, and whose terminators are marked, as soon as one
// of SIGINT/SIGTERM/SIGQUIT arrives.
func New(log logr.Logger, terminators ...Terminator) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{ctx: ctx, cancel: cancel, log: log}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		for _, t := range terminators {
			t.MarkTerminating()
		}
		cancel()
	}()

	return s
}

// Context is cancelled once a termination signal arrives, or once a
// worker started with Go returns an error.
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Go spawns fn as a supervised worker. The first non-nil error any
// worker returns becomes the process's fatal error and cancels Context
// for every other worker (spec §7: capture-fatal errors propagate to
// the supervisor).
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil {
			s.mu.Lock()
			if s.firstErr == nil {
				s.firstErr = err
			}
			s.mu.Unlock()
			s.log.Error(err, "worker terminated with error", "worker", name)
			s.cancel()
		}
	}()
}

// Wait blocks until every worker has returned and reports the process
// exit code: 0 on clean shutdown, 1 if any worker returned an error
// (spec §6).
func (s *Supervisor) Wait() int {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstErr != nil {
		return 1
	}
	return 0
}
