package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// FormatVersion is written into every document's metadata.version field.
const FormatVersion = "1.0"

// SessionChunk is the serialized form of a Chunk: byte-arrival time relative
// to the owning session's start_time, its length, and the raw bytes.
type SessionChunk struct {
	Time float64 `json:"time"`
	Size float64 `json:"size"`
	Data string  `json:"data"`
}

// Session is the serialized form of a CommandSession.
type Session struct {
	Command   string         `json:"command"`
	StartTime float64        `json:"start_time"`
	EndTime   float64        `json:"end_time"`
	Duration  float64        `json:"duration"`
	Chunks    []SessionChunk `json:"chunks"`
}

// ConcatData concatenates every chunk's raw bytes, in order, for callers
// and tests asserting on a session's captured output as a whole.
func (s Session) ConcatData() []byte {
	var buf bytes.Buffer
	for _, c := range s.Chunks {
		buf.WriteString(c.Data)
	}
	return buf.Bytes()
}

// Metadata describes the recording as a whole.
type Metadata struct {
	Version         string  `json:"version"`
	InteractiveMode bool    `json:"interactive_mode"`
	Timestamp       float64 `json:"timestamp"`
}

// Document is the top-level session artifact. It marshals as
// {"metadata": ..., "sessions": [...]}  and unmarshals either that form or
// the legacy bare-array form (a plain JSON array of Session).
type Document struct {
	Metadata Metadata  `json:"metadata"`
	Sessions []Session `json:"sessions"`
}

// documentJSON mirrors Document's field layout for marshaling; kept
// separate so UnmarshalJSON can freely reinterpret the raw bytes without
// recursing into Document's own (default) unmarshaler.
type documentJSON struct {
	Metadata Metadata  `json:"metadata"`
	Sessions []Session `json:"sessions"`
}

// MarshalJSON always writes the current (non-legacy) wrapped form.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON(d))
}

// UnmarshalJSON accepts both the wrapped object form and the legacy bare
// array form described in spec §6.2.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("rewindtty: empty session document")
	}

	if trimmed[0] == '[' {
		var sessions []Session
		if err := json.Unmarshal(trimmed, &sessions); err != nil {
			return fmt.Errorf("rewindtty: legacy session document: %w", err)
		}
		d.Metadata = Metadata{}
		d.Sessions = sessions
		return nil
	}

	var doc documentJSON
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return fmt.Errorf("rewindtty: session document: %w", err)
	}
	if doc.Sessions == nil {
		return fmt.Errorf("rewindtty: session document missing \"sessions\" array")
	}
	*d = Document(doc)
	return nil
}

// ParseDocument parses either document form from raw bytes.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	err := json.Unmarshal(data, &doc)
	return doc, err
}

// LoadDocument reads and parses a session document from path.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("rewindtty: reading %s: %w", path, err)
	}
	return ParseDocument(data)
}

// WriteDocument serializes doc as indented JSON and writes it to path.
// Errors are returned, not swallowed, except on the signal-driven emergency
// path where the caller (SignalBroker) has nowhere safe to report them.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("rewindtty: encoding session document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("rewindtty: writing %s: %w", path, err)
	}
	return nil
}
