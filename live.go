package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// LiveViewer mirrors a recording in progress to browsers over a websocket,
// per spec §4.13. Every connecting client gets its own ScreenReader fed the
// same byte stream the PtyDriver produced, so it sees the ANSI-rendered
// terminal even though the on-disk document only ever stores raw bytes.
// Adapted from the teacher's WebUIServer/WebSocketSink in webui.go, trimmed
// from a two-way command bridge to a read-only mirror (the recorder, not a
// remote browser, owns the PTY).
type LiveViewer struct {
	mu           sync.Mutex
	clients      map[*websocket.Conn]*ScreenReader
	authSessions map[string]time.Time
	config       *Config
	cols, rows   int
}

// NewLiveViewer constructs a viewer gated by cfg's bcrypt password hash, if
// any is set.
func NewLiveViewer(cfg *Config) *LiveViewer {
	return &LiveViewer{
		clients:      make(map[*websocket.Conn]*ScreenReader),
		authSessions: make(map[string]time.Time),
		config:       cfg,
		cols:         80,
		rows:         24,
	}
}

// Broadcast feeds a chunk of PTY output to every connected client's virtual
// terminal and pushes the resulting screen diff over its websocket.
func (v *LiveViewer) Broadcast(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for conn, sr := range v.clients {
		sr.Write(data)
		diff := sr.Diff()
		if diff == "" {
			continue
		}
		if err := conn.WriteJSON(liveMessage{Type: "output", Content: diff}); err != nil {
			log.Printf("rewindtty: live viewer write error: %v", err)
		}
	}
}

type liveMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Serve starts the viewer's HTTP server on port. Blocks until the server
// stops or errors.
func (v *LiveViewer) Serve(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", v.handleRoot)
	mux.HandleFunc("/login", v.handleLogin)
	mux.HandleFunc("/ws", v.handleWebSocket)

	addr := fmt.Sprintf("localhost:%d", port)
	log.Printf("rewindtty: live view at http://%s", addr)
	return http.ListenAndServe(addr, mux)
}

func (v *LiveViewer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if v.requiresAuth() && !v.isAuthenticated(r) {
		fmt.Fprint(w, liveLoginHTML)
		return
	}
	fmt.Fprint(w, liveViewerHTML)
}

func (v *LiveViewer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	password := r.FormValue("password")
	if err := bcrypt.CompareHashAndPassword([]byte(v.config.WatchPasswordHash), []byte(password)); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	token := generateLiveToken()
	v.mu.Lock()
	v.authSessions[token] = time.Now().Add(24 * time.Hour)
	v.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     "rewindtty_watch",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (v *LiveViewer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if v.requiresAuth() && !v.isAuthenticated(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rewindtty: live viewer upgrade error: %v", err)
		return
	}

	sr := NewScreenReader(v.cols, v.rows)
	v.mu.Lock()
	v.clients[conn] = sr
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.clients, conn)
		v.mu.Unlock()
		conn.Close()
	}()

	// The viewer never sends anything meaningful back; just drain reads so
	// the connection's close is detected.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (v *LiveViewer) requiresAuth() bool {
	return v.config != nil && v.config.WatchPasswordHash != ""
}

func (v *LiveViewer) isAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie("rewindtty_watch")
	if err != nil {
		return false
	}
	v.mu.Lock()
	expiry, ok := v.authSessions[cookie.Value]
	v.mu.Unlock()
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		v.mu.Lock()
		delete(v.authSessions, cookie.Value)
		v.mu.Unlock()
		return false
	}
	return true
}

func generateLiveToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

const liveLoginHTML = `<!DOCTYPE html><html><body>
<h3>rewindtty watch</h3>
<form method="post" action="/login">
<input type="password" name="password" placeholder="password" autofocus>
<button type="submit">Watch</button>
</form>
</body></html>`

const liveViewerHTML = `<!DOCTYPE html><html><body>
<pre id="screen" style="background:#000;color:#0f0;padding:1em;"></pre>
<script>
const screen = document.getElementById("screen");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const msg = JSON.parse(ev.data);
  if (msg.type === "output") {
    screen.textContent += msg.content + "\n";
  }
};
</script>
</body></html>`
