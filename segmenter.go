package main

import "bytes"

// CommandBoundary reports a boundary the Segmenter detected: a new command
// line ready to open a CommandSession.
type CommandBoundary struct {
	Command string
}

// Segmenter turns the raw input/output byte streams of an interactive shell
// into command boundaries. The prompt heuristic below is one
// implementation; a future one (OSC 133 prompt markers, shell-integration
// hooks) can replace it without touching the byte-capture core (spec §4.9).
type Segmenter interface {
	// ObserveOutput feeds shell output bytes to the segmenter so it can
	// detect prompts.
	ObserveOutput(data []byte)
	// ObserveInput feeds user keystrokes to the segmenter. It returns a
	// CommandBoundary and true the moment a new command has been
	// identified (the first keystroke following a detected prompt).
	ObserveInput(data []byte) (CommandBoundary, bool)
	// Submitted reports whether the current command has been submitted
	// (a \r or \n was observed in the input stream) and is now just
	// waiting for the next prompt to close.
	Submitted() bool
	// CurrentCommand returns the command label accumulated so far for
	// whichever command is presently open, reflecting every keystroke
	// observed up to the last ObserveInput call.
	CurrentCommand() string
}

// promptMarkers are the prompt-terminating two-byte sequences the heuristic
// recognizes: a shell prompt character followed by a space (spec §4.6).
var promptMarkers = [][]byte{
	[]byte("$ "),
	[]byte("# "),
	[]byte("% "),
	[]byte("> "),
}

// promptSegmenter implements the fragile-by-design prompt-pattern heuristic
// described in spec §4.6. It is intentionally simple: nested prompts and
// non-standard $PS1 values will mis-segment, but the underlying byte
// capture (owned by the PtyDriver/SessionStore, not this type) is always
// faithful regardless.
type promptSegmenter struct {
	waitingForInput bool // true once a prompt has been seen and no command opened yet
	inputBuffer     []byte
	submitted       bool
}

// newPromptSegmenter starts in the waiting-for-a-prompt state: nothing is
// captured as a command until the first prompt is recognized.
func newPromptSegmenter() *promptSegmenter {
	return &promptSegmenter{}
}

// ObserveOutput scans newly-arrived shell output for a prompt marker. Once
// one is seen, the segmenter opens up to accept the next keystroke as the
// start of a new command.
func (s *promptSegmenter) ObserveOutput(data []byte) {
	for _, marker := range promptMarkers {
		if bytes.Contains(data, marker) {
			s.waitingForInput = true
			s.inputBuffer = s.inputBuffer[:0]
			s.submitted = false
			return
		}
	}
}

// ObserveInput feeds keystrokes in. The first call after a prompt has been
// seen opens a new CommandSession; subsequent input before submission is
// appended to the command label; a \r or \n marks submission without
// closing the session (that happens when the next prompt arrives).
func (s *promptSegmenter) ObserveInput(data []byte) (CommandBoundary, bool) {
	if len(data) == 0 {
		return CommandBoundary{}, false
	}

	opened := false
	if s.waitingForInput {
		s.waitingForInput = false
		opened = true
	}

	for _, b := range data {
		if b == '\r' || b == '\n' {
			s.submitted = true
			continue
		}
		if !s.submitted {
			s.inputBuffer = append(s.inputBuffer, b)
		}
	}

	if opened {
		return CommandBoundary{Command: cleanCommand(s.inputBuffer)}, true
	}
	return CommandBoundary{}, false
}

// Submitted reports whether \r or \n has been seen since the current
// command opened.
func (s *promptSegmenter) Submitted() bool {
	return s.submitted
}

// CurrentCommand reports the command label built up from keystrokes so far.
// Raw-mode PTY capture delivers keystrokes as separate reads, so callers
// must re-fetch this after every ObserveInput rather than trusting only the
// label returned at the opening boundary.
func (s *promptSegmenter) CurrentCommand() string {
	return cleanCommand(s.inputBuffer)
}

// cleanCommand retains only printable ASCII and trims trailing whitespace,
// per spec §4.6 ("retain printable ASCII only; trim trailing whitespace").
func cleanCommand(buf []byte) string {
	out := make([]byte, 0, len(buf))
	for _, b := range buf {
		if b >= 0x20 && b < 0x7f {
			out = append(out, b)
		}
	}
	return string(bytes.TrimRight(out, " \t"))
}
