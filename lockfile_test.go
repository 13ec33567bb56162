package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireRecordLockRefusesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	first, err := AcquireRecordLock(path)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer first.Release()

	if _, err := AcquireRecordLock(path); err == nil {
		t.Error("second acquire should fail while the first process is alive")
	}
}

func TestAcquireRecordLockReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	lp := lockPath(path)

	// A PID that is very unlikely to be alive.
	if err := os.WriteFile(lp, []byte(strconv.Itoa(999999)), 0644); err != nil {
		t.Fatalf("writing stale lock: %v", err)
	}

	lock, err := AcquireRecordLock(path)
	if err != nil {
		t.Fatalf("expected stale lock to be reclaimed, got: %v", err)
	}
	lock.Release()
}

func TestRecordLockReleaseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	lock, err := AcquireRecordLock(path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	lock.Release()

	if _, err := AcquireRecordLock(path); err != nil {
		t.Errorf("expected re-acquire after release to succeed, got: %v", err)
	}
}
