//go:build !windows

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// pollTimeout is the multiplex loop's read-deadline ceiling (spec §4.4/§5).
const pollTimeout = 10 * time.Millisecond

const readBufSize = 8192

// Run allocates a PTY, forks the configured shell under it, and multiplexes
// the PTY master against the real stdin until the child exits, per
// spec §4.4. It is single-threaded except for one bookkeeping goroutine
// that reaps the child (cmd.Wait blocks until exit and never blocks on
// anything this loop also touches, so it cannot leak or race).
func (d *PtyDriver) Run(opts RunOptions) (RunResult, error) {
	stdinFd := int(os.Stdin.Fd())
	var oldState *term.State
	if term.IsTerminal(stdinFd) {
		state, err := term.MakeRaw(stdinFd)
		if err != nil {
			return RunResult{}, fmt.Errorf("rewindtty: snapshotting terminal attributes: %w", err)
		}
		oldState = state
		defer term.Restore(stdinFd, oldState)
	}

	shell := resolveShell(opts.Mode)
	args := shellArgs(opts.Mode, opts.Command)
	cmd := exec.Command(shell, args...)
	cmd.Env = childEnviron()
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return RunResult{}, fmt.Errorf("rewindtty: spawning pty: %w", err)
	}
	defer ptmx.Close()

	if opts.OnStart != nil {
		opts.OnStart(cmd.Process.Pid)
	}

	startTime := d.clock.Now()

	childDone := make(chan error, 1)
	go func() {
		childDone <- cmd.Wait()
	}()

	masterBuf := make([]byte, readBufSize)
	stdinBuf := make([]byte, readBufSize)
	masterOpen := true
	reaped := false

	for !reaped {
		if masterOpen {
			ptmx.SetReadDeadline(time.Now().Add(pollTimeout))
			n, rerr := ptmx.Read(masterBuf)
			if n > 0 {
				ts := d.clock.Now()
				os.Stdout.Write(masterBuf[:n])
				if opts.OnChunk != nil {
					opts.OnChunk(ts, masterBuf[:n])
				}
			}
			if rerr != nil && !isTimeout(rerr) {
				// EOF / hangup: the child closed its end of the pty.
				masterOpen = false
			}
		}

		// SetReadDeadline on stdin is best-effort: it succeeds for a real
		// terminal or pty, and is simply ignored (Read returns immediately,
		// EOF-terminated) for a regular file or closed pipe, which is
		// exactly the behavior scripted/test input needs.
		os.Stdin.SetReadDeadline(time.Now().Add(pollTimeout))
		n, serr := os.Stdin.Read(stdinBuf)
		if n > 0 {
			ptmx.Write(stdinBuf[:n])
			if opts.OnInput != nil {
				opts.OnInput(stdinBuf[:n])
			}
		}
		if serr != nil && !isTimeout(serr) {
			// A failed stdin read (including EOF) terminates the loop.
			break
		}

		select {
		case <-childDone:
			reaped = true
		default:
		}
	}

	// Drain whatever bytes are still sitting in the pty master's buffer
	// after the child exited, then stop.
	if masterOpen {
		for {
			ptmx.SetReadDeadline(time.Now().Add(pollTimeout))
			n, rerr := ptmx.Read(masterBuf)
			if n > 0 {
				ts := d.clock.Now()
				os.Stdout.Write(masterBuf[:n])
				if opts.OnChunk != nil {
					opts.OnChunk(ts, masterBuf[:n])
				}
			}
			if rerr != nil {
				break
			}
		}
	}

	if !reaped {
		// The loop broke on a stdin failure before the child exited on its
		// own; block-reap it so no zombie is left behind (spec §4.4 step 5).
		if cmd.Process != nil {
			cmd.Process.Signal(syscall.SIGHUP)
		}
		<-childDone
	}

	return RunResult{StartTime: startTime, EndTime: d.clock.Now()}, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// childEnviron returns the parent's environment filtered of variables that
// would leak recorder-specific framing into the recorded session (mirrors
// the teacher's getCleanEnvironment in terminal.go).
func childEnviron() []string {
	env := os.Environ()
	cleaned := make([]string, 0, len(env))
	for _, e := range env {
		if len(e) >= len("REWINDTTY_") && e[:len("REWINDTTY_")] == "REWINDTTY_" {
			continue
		}
		cleaned = append(cleaned, e)
	}
	return cleaned
}
