package main

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestLiveViewerRequiresAuthOnlyWithPasswordSet(t *testing.T) {
	v := NewLiveViewer(&Config{})
	if v.requiresAuth() {
		t.Error("requiresAuth() should be false with no password configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	v2 := NewLiveViewer(&Config{WatchPasswordHash: string(hash)})
	if !v2.requiresAuth() {
		t.Error("requiresAuth() should be true once a password hash is configured")
	}
}

func TestLiveViewerHandleLoginWrongPasswordRedirectsWithoutCookie(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	v := NewLiveViewer(&Config{WatchPasswordHash: string(hash)})

	form := url.Values{"password": {"wrong"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	v.handleLogin(w, req)

	resp := w.Result()
	for _, c := range resp.Cookies() {
		if c.Name == "rewindtty_watch" {
			t.Error("wrong password should not set an auth cookie")
		}
	}
}

func TestLiveViewerHandleLoginCorrectPasswordSetsCookie(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	v := NewLiveViewer(&Config{WatchPasswordHash: string(hash)})

	form := url.Values{"password": {"correct"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	v.handleLogin(w, req)

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "rewindtty_watch" {
			found = true
		}
	}
	if !found {
		t.Error("correct password should set an auth cookie")
	}
}
