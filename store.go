package main

import (
	"sync"
)

// CommandSession is a single recorded unit while it is still being
// captured: a label, its timing, and the chunk log the PtyDriver appends to.
// It is mutated only by the owning Recorder invocation; once the
// SessionStore serializes it, it is considered released.
type CommandSession struct {
	Command   string
	StartTime float64
	EndTime   float64
	buffer    *ChunkBuffer
	open      bool
}

func newCommandSession(command string, start float64) *CommandSession {
	return &CommandSession{
		Command:   command,
		StartTime: start,
		buffer:    NewChunkBuffer(),
		open:      true,
	}
}

// appendChunk records a byte chunk arriving while the session is open.
func (s *CommandSession) appendChunk(ts float64, data []byte) {
	if len(data) == 0 {
		return
	}
	s.buffer.Append(ts, data)
}

// finish closes the session at the given absolute time. Finishing an
// already-finished session is a no-op (emergency flush may race a normal
// close; the first one to land wins).
func (s *CommandSession) finish(end float64) {
	if !s.open {
		return
	}
	s.EndTime = end
	s.open = false
}

// toSession converts the in-progress record into its serializable form,
// rewriting absolute chunk timestamps to be relative to StartTime so the
// document is relocatable (spec §4.2).
func (s *CommandSession) toSession() Session {
	chunks := s.buffer.Chunks()
	out := make([]SessionChunk, len(chunks))
	for i, c := range chunks {
		out[i] = SessionChunk{
			Time: c.TS - s.StartTime,
			Size: float64(len(c.Data)),
			Data: string(c.Data),
		}
	}
	return Session{
		Command:   s.Command,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.EndTime - s.StartTime,
		Chunks:    out,
	}
}

// SessionStore is the in-memory collection of CommandSessions captured by
// one Recorder invocation. It owns the only mutable path to the sessions it
// holds; after Serialize is called the store is considered released.
type SessionStore struct {
	mu             sync.Mutex
	interactive    bool
	startTimestamp float64
	sessions       []*CommandSession
	current        *CommandSession
}

// NewSessionStore creates an empty store stamped with the session's overall
// wall-clock start time.
func NewSessionStore(interactive bool, startTimestamp float64) *SessionStore {
	return &SessionStore{
		interactive:    interactive,
		startTimestamp: startTimestamp,
	}
}

// Open starts a new CommandSession and makes it the current target for
// Append. Any previously open session must already have been closed by the
// caller (Recorder enforces this via its segmentation logic).
func (s *SessionStore) Open(command string, start float64) *CommandSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := newCommandSession(command, start)
	s.sessions = append(s.sessions, cs)
	s.current = cs
	return cs
}

// Append records a chunk against the current open session, if any.
func (s *SessionStore) Append(ts float64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.appendChunk(ts, data)
}

// CloseCurrent finalizes the current session and clears it, so a later Open
// starts a fresh one.
func (s *SessionStore) CloseCurrent(end float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.finish(end)
	s.current = nil
}

// FinalizeOpen finishes any still-open session at the given time without
// clearing it from the sessions list, for use on the emergency-flush and
// teardown paths (spec §9: interactive segmentation may drop the final
// command if the shell exits before the next prompt).
func (s *SessionStore) FinalizeOpen(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.finish(now)
	}
}

// Sessions returns the sessions captured so far, finished or not.
func (s *SessionStore) Sessions() []*CommandSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*CommandSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Serialize produces the document form of everything captured so far. Safe
// to call on a store with an open session (FinalizeOpen should be called
// first so EndTime is set; serialize leaves EndTime at its current value
// otherwise, which is the documented emergency behavior).
func (s *SessionStore) Serialize() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]Session, len(s.sessions))
	for i, cs := range s.sessions {
		sessions[i] = cs.toSession()
	}
	return Document{
		Metadata: Metadata{
			Version:         FormatVersion,
			InteractiveMode: s.interactive,
			Timestamp:       s.startTimestamp,
		},
		Sessions: sessions,
	}
}
