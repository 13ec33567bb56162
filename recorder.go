package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Recorder drives a PtyDriver through one or more CommandSessions and owns
// the SessionStore that accumulates them, per spec §4.4-§4.7. It is
// constructed once per `record` invocation.
type Recorder struct {
	driver *PtyDriver
	store  *SessionStore
	broker *SignalBroker
	live   *LiveViewer
	notify *Notifier
	path   string
	lock   *RecordLock
}

// NewRecorder wires a fresh Recorder targeting sessionPath. live and notify
// may both be nil.
func NewRecorder(sessionPath string, interactive bool, live *LiveViewer, notify *Notifier) (*Recorder, error) {
	lock, err := AcquireRecordLock(sessionPath)
	if err != nil {
		return nil, err
	}

	store := NewSessionStore(interactive, Clock{}.Now())
	broker := NewSignalBroker()

	return &Recorder{
		driver: NewPtyDriver(),
		store:  store,
		broker: broker,
		live:   live,
		notify: notify,
		path:   sessionPath,
		lock:   lock,
	}, nil
}

// Close releases the record lock and signal handlers. Called once, at the
// end of a Recorder's lifetime, after the document has been written.
func (r *Recorder) Close() {
	r.broker.Disarm()
	r.broker.Stop()
	r.lock.Release()
}

// RunCommandMode implements spec §4.5: a `rewindtty> ` prompt loop, each
// line executed as its own CommandSession via PtyDriver in ModeCommand.
// Grounded on the teacher's RunStandalone bufio.Scanner loop in
// standalone.go, generalized from an ad-hoc terminal echo to the
// Recorder/SessionStore/document pipeline.
func (r *Recorder) RunCommandMode() error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("rewindtty> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			fmt.Print("rewindtty> ")
			continue
		}

		if err := r.runOneCommand(line); err != nil {
			fmt.Fprintf(os.Stderr, "rewindtty: %v\n", err)
		}

		fmt.Print("rewindtty> ")
	}

	r.store.FinalizeOpen(Clock{}.Now())
	return r.finalize()
}

func (r *Recorder) runOneCommand(command string) error {
	var cs *CommandSession

	opts := RunOptions{
		Mode:    ModeCommand,
		Command: command,
		OnStart: func(pid int) {
			r.broker.Arm(r.store, r.path, pid)
		},
		OnChunk: func(ts float64, data []byte) {
			cs.appendChunk(ts, data)
			if r.live != nil {
				r.live.Broadcast(data)
			}
		},
	}

	result, err := r.driver.Run(withOpenSession(opts, r.store, command, &cs))
	r.broker.ClearChild()
	if err != nil {
		return err
	}

	r.store.CloseCurrent(result.EndTime)
	if r.notify != nil {
		r.notify.NotifySession(cs.toSession())
	}
	return nil
}

// withOpenSession opens cs against the store from the OnStart hook; because
// PtyDriver.Run doesn't know about CommandSessions, the hook is reused to
// open one the instant the child's PID is known, just before the driver
// takes its own StartTime reading and starts capturing.
func withOpenSession(opts RunOptions, store *SessionStore, command string, cs **CommandSession) RunOptions {
	userOnStart := opts.OnStart
	opts.OnStart = func(pid int) {
		*cs = store.Open(command, Clock{}.Now())
		if userOnStart != nil {
			userOnStart(pid)
		}
	}
	return opts
}

// RunInteractiveMode implements spec §4.6: a single transparent PtyDriver
// run in ModeInteractive, with a promptSegmenter turning the byte stream
// into CommandSessions as it goes.
func (r *Recorder) RunInteractiveMode() error {
	seg := newPromptSegmenter()
	var cs *CommandSession

	opts := RunOptions{
		Mode: ModeInteractive,
		OnStart: func(pid int) {
			r.broker.Arm(r.store, r.path, pid)
		},
		OnChunk: func(ts float64, data []byte) {
			if cs != nil {
				cs.appendChunk(ts, data)
			}
			if r.live != nil {
				r.live.Broadcast(data)
			}
			seg.ObserveOutput(data)
			if seg.waitingForInput && cs != nil {
				// A prompt has reappeared: the previously open command is
				// done absorbing output.
				r.store.CloseCurrent(ts)
				if r.notify != nil {
					r.notify.NotifySession(cs.toSession())
				}
				cs = nil
			}
		},
		OnInput: func(data []byte) {
			boundary, opened := seg.ObserveInput(data)
			if opened {
				cs = r.store.Open(boundary.Command, Clock{}.Now())
			} else if cs != nil {
				// Keystrokes arrive as separate reads (pty_unix.go's
				// deadline-polling loop), so the label must keep tracking
				// the segmenter's running buffer past the opening one.
				cs.Command = seg.CurrentCommand()
			}
		},
	}

	_, err := r.driver.Run(opts)
	if err != nil {
		return err
	}

	r.store.FinalizeOpen(Clock{}.Now())
	if cs != nil && r.notify != nil {
		r.notify.NotifySession(cs.toSession())
	}
	return r.finalize()
}

func (r *Recorder) finalize() error {
	doc := r.store.Serialize()
	return WriteDocument(r.path, doc)
}
