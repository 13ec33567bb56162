//go:build !windows

package main

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// flushState is the signal-visible target of an emergency flush: the store
// and path, swapped with atomic.Pointer so arming and disarming need no
// lock (spec §4.7). The flush itself still takes the store's mutex and
// allocates; see emergencyFlush.
type flushState struct {
	store *SessionStore
	path  string
}

// SignalBroker forwards INT to the running child while the recorder is
// alive, and guarantees an emergency flush of whatever has been captured so
// far if the process is asked to terminate. Grounded on the teacher's
// signal.Notify usage in main.go, generalized from "shut down the daemon
// cleanly" to "never lose a partially recorded session".
type SignalBroker struct {
	ch    chan os.Signal
	state atomic.Pointer[flushState]
	pid   atomic.Int64
}

// NewSignalBroker installs handlers for INT, TERM and HUP.
func NewSignalBroker() *SignalBroker {
	b := &SignalBroker{ch: make(chan os.Signal, 4)}
	signal.Notify(b.ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go b.loop()
	return b
}

// Arm registers the store/path an emergency flush should target, and the
// child PID INT should be forwarded to. Called once the PTY child has
// started.
func (b *SignalBroker) Arm(store *SessionStore, path string, pid int) {
	b.state.Store(&flushState{store: store, path: path})
	b.pid.Store(int64(pid))
}

// Disarm clears the broker's targets once a session finishes normally, so a
// late signal does nothing.
func (b *SignalBroker) Disarm() {
	b.state.Store(nil)
	b.pid.Store(0)
}

// ClearChild clears only the forwarding target, leaving the store/path
// flush target armed. Called once a child has been reaped but another may
// follow (command mode between prompts), so a SIGINT arriving in that
// window falls through to emergencyFlush instead of signaling a dead PID.
func (b *SignalBroker) ClearChild() {
	b.pid.Store(0)
}

func (b *SignalBroker) loop() {
	for sig := range b.ch {
		switch sig {
		case syscall.SIGINT:
			if pid := b.pid.Load(); pid != 0 {
				syscall.Kill(int(pid), syscall.SIGINT)
				continue
			}
			b.emergencyFlush()
			os.Exit(130)
		case syscall.SIGTERM, syscall.SIGHUP:
			b.emergencyFlush()
			os.Exit(143)
		}
	}
}

// emergencyFlush writes whatever has been captured so far to disk, per
// spec §4.7 and §7 (a killed recorder still leaves a readable, partial
// document). Runs on the signal-handling goroutine, not the OS signal
// handler itself, so allocation here is safe: Go's signal.Notify delivers
// to a regular goroutine, unlike a C sigaction handler.
func (b *SignalBroker) emergencyFlush() {
	st := b.state.Load()
	if st == nil || st.store == nil {
		return
	}
	st.store.FinalizeOpen(Clock{}.Now())
	doc := st.store.Serialize()
	WriteDocument(st.path, doc)
}

// Stop releases the signal channel. Safe to call once, on normal exit.
func (b *SignalBroker) Stop() {
	signal.Stop(b.ch)
	close(b.ch)
}
