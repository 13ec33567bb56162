package main

import "testing"

func TestPromptSegmenterOpensOnFirstKeystrokeAfterPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{name: "dollar", prompt: "user@host:~$ "},
		{name: "hash", prompt: "root@host:~# "},
		{name: "percent", prompt: "host% "},
		{name: "angle", prompt: "PS C:\\> "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := newPromptSegmenter()
			seg.ObserveOutput([]byte(tt.prompt))

			boundary, opened := seg.ObserveInput([]byte("ls -la"))
			if !opened {
				t.Fatalf("expected command to open after prompt %q", tt.prompt)
			}
			if boundary.Command != "ls -la" {
				t.Errorf("Command = %q, want %q", boundary.Command, "ls -la")
			}
		})
	}
}

func TestPromptSegmenterOnlyOpensOnce(t *testing.T) {
	seg := newPromptSegmenter()
	seg.ObserveOutput([]byte("$ "))

	if _, opened := seg.ObserveInput([]byte("l")); !opened {
		t.Fatal("expected first keystroke to open")
	}
	if _, opened := seg.ObserveInput([]byte("s")); opened {
		t.Fatal("second keystroke should not reopen")
	}
}

// TestPromptSegmenterAccumulatesAcrossSeparateKeystrokeReads mirrors raw-mode
// PTY capture, which delivers each keystroke as its own read: "l", "s", "\n"
// arriving as three separate ObserveInput calls must still build the
// command "ls", not just whatever was typed in the opening call.
func TestPromptSegmenterAccumulatesAcrossSeparateKeystrokeReads(t *testing.T) {
	seg := newPromptSegmenter()
	seg.ObserveOutput([]byte("$ "))

	boundary, opened := seg.ObserveInput([]byte("l"))
	if !opened {
		t.Fatal("expected first keystroke to open")
	}
	if boundary.Command != "l" {
		t.Errorf("opening Command = %q, want %q", boundary.Command, "l")
	}

	seg.ObserveInput([]byte("s"))
	if got := seg.CurrentCommand(); got != "ls" {
		t.Errorf("CurrentCommand() after \"s\" = %q, want %q", got, "ls")
	}

	seg.ObserveInput([]byte("\n"))
	if got := seg.CurrentCommand(); got != "ls" {
		t.Errorf("CurrentCommand() after newline = %q, want %q", got, "ls")
	}
}

func TestPromptSegmenterSubmissionMarksButDoesNotClose(t *testing.T) {
	seg := newPromptSegmenter()
	seg.ObserveOutput([]byte("$ "))
	seg.ObserveInput([]byte("ls"))
	seg.ObserveInput([]byte("\n"))

	if !seg.Submitted() {
		t.Error("expected Submitted() to be true after \\n")
	}
}

func TestCleanCommandTrimsAndFiltersControlBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "trims_trailing_space", in: []byte("ls   "), want: "ls"},
		{name: "drops_bell", in: []byte{'l', 's', 0x07}, want: "ls"},
		{name: "drops_del", in: []byte{'l', 's', 0x7f}, want: "ls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCommand(tt.in); got != tt.want {
				t.Errorf("cleanCommand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPromptSegmenterNoOutputNeverOpens(t *testing.T) {
	seg := newPromptSegmenter()
	if _, opened := seg.ObserveInput([]byte("ls")); opened {
		t.Fatal("should not open without a prior prompt")
	}
}
