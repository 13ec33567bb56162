//go:build !windows

package main

import (
	"path/filepath"
	"testing"
)

func TestSignalBrokerEmergencyFlushWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(false, 0)
	store.Open("long-running", 0)
	store.Append(0.1, []byte("partial output"))

	broker := &SignalBroker{}
	broker.Arm(store, path, 0)
	broker.emergencyFlush()

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Sessions) != 1 {
		t.Fatalf("Sessions = %d, want 1", len(doc.Sessions))
	}
	if doc.Sessions[0].EndTime == 0 {
		t.Error("expected FinalizeOpen to have set a non-zero EndTime")
	}
}

func TestSignalBrokerClearChildLeavesFlushTargetArmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(false, 0)
	store.Open("between-prompts", 0)

	broker := &SignalBroker{}
	broker.Arm(store, path, 4242)
	broker.ClearChild()

	if pid := broker.pid.Load(); pid != 0 {
		t.Fatalf("pid = %d after ClearChild, want 0", pid)
	}

	broker.emergencyFlush()

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("expected emergencyFlush to still write a document after ClearChild: %v", err)
	}
	if len(doc.Sessions) != 1 {
		t.Fatalf("Sessions = %d, want 1", len(doc.Sessions))
	}
}

func TestSignalBrokerDisarmStopsFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(false, 0)
	store.Open("cmd", 0)

	broker := &SignalBroker{}
	broker.Arm(store, path, 0)
	broker.Disarm()
	broker.emergencyFlush()

	if _, err := LoadDocument(path); err == nil {
		t.Error("expected no document to be written after Disarm")
	}
}
