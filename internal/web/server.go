// Package web serves the review in a browser.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"knipclean/internal/model"
	"knipclean/internal/workspace"
)

// previewLines bounds /api/file responses.
const previewLines = 400

// TokenHeader carries the per-server token that the review page sends with
// every action.
const TokenHeader = "X-Knipclean-Token"

// Server is a review.View and review.Notifier backed by an HTTP server.
type Server struct {
	Root   string
	Addr   string
	Logger *slog.Logger

	mu       sync.Mutex
	snapshot model.Snapshot
	ready    bool
	handler  func(model.Action)
	notices  []model.Notice

	token    string
	srv      *http.Server
	disposed chan struct{}
	once     sync.Once
}

func NewServer(root, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		Root:     root,
		Addr:     addr,
		Logger:   logger,
		token:    uuid.Must(uuid.NewV4()).String(),
		disposed: make(chan struct{}),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routes of the review UI.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/action", s.handleAction)
	mux.HandleFunc("GET /api/file", s.handleFile)
	return s.checkHost(mux)
}

// Token returns the value the page must send in TokenHeader.
func (s *Server) Token() string {
	return s.token
}

// checkHost rejects requests addressed to a host name other than localhost
// or the listen address, which is what a DNS-rebound page would send.
func (s *Server) checkHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.allowedHost(r.Host) {
			s.Logger.Warn("rejected request", "host", r.Host, "path", r.URL.Path)
			http.Error(w, "forbidden host", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedHost(hostport string) bool {
	host := hostOnly(hostport)
	switch {
	case strings.EqualFold(host, "localhost"):
		return true
	case net.ParseIP(host) != nil:
		return true
	}
	listen := hostOnly(s.Addr)
	return listen != "" && strings.EqualFold(host, listen)
}

func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.Trim(hostport, "[]")
}

// checkAction returns the status to reject r with, or 0. Browsers send
// cross-site text/plain posts without a preflight.
func (s *Server) checkAction(r *http.Request) (int, string) {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || ct != "application/json" {
		return http.StatusUnsupportedMediaType, "content type must be application/json"
	}
	if origin := r.Header.Get("Origin"); origin != "" && origin != "http://"+r.Host {
		return http.StatusForbidden, "cross-origin request refused"
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get(TokenHeader)), []byte(s.token)) != 1 {
		return http.StatusForbidden, "missing or invalid token"
	}
	return 0, ""
}

// Serve accepts connections on l until Dispose is called.
func (s *Server) Serve(l net.Listener) error {
	err := s.srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on Addr and serves until Dispose is called.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.Logger.Info("web review listening", "addr", l.Addr().String(), "root", s.Root)
	return s.Serve(l)
}

// Done is closed once the server has been disposed.
func (s *Server) Done() <-chan struct{} {
	return s.disposed
}

// Render implements review.View.
func (s *Server) Render(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.ready = true
}

// OnAction implements review.View.
func (s *Server) OnAction(h func(model.Action)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Dispose implements review.View. It stops accepting requests and lets
// in-flight ones finish.
func (s *Server) Dispose() {
	s.once.Do(func() {
		close(s.disposed)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.srv.Shutdown(ctx); err != nil {
				s.Logger.Warn("web shutdown", "error", err)
			}
		}()
	})
}

// Notify implements review.Notifier.
func (s *Server) Notify(n model.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

func (s *Server) current() (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.ready
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, ready := s.current()
	if !ready {
		http.Error(w, "scan in progress, reload in a moment", http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := renderPage(&buf, snap, s.token); err != nil {
		s.Logger.Error("render page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, ready := s.current()
	if !ready {
		http.Error(w, "scan in progress", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type actionResponse struct {
	Notices []model.Notice `json:"notices"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if status, reason := s.checkAction(r); status != 0 {
		s.Logger.Warn("rejected action", "reason", reason, "origin", r.Header.Get("Origin"))
		writeJSON(w, status, actionResponse{Notices: []model.Notice{model.Error(errors.New(reason))}})
		return
	}

	var msg model.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, actionResponse{Notices: []model.Notice{model.Error(err)}})
		return
	}
	action, err := msg.Action()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, actionResponse{Notices: []model.Notice{model.Error(err)}})
		return
	}

	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		writeJSON(w, http.StatusServiceUnavailable, actionResponse{Notices: []model.Notice{model.Warning("No review session is open")}})
		return
	}

	s.Logger.Debug("web action", "action", action.String())
	// The session applies actions one at a time; notices raised while this
	// one ran belong to it.
	h(action)

	s.mu.Lock()
	notices := s.notices
	s.notices = nil
	s.mu.Unlock()
	if notices == nil {
		notices = []model.Notice{}
	}
	writeJSON(w, http.StatusOK, actionResponse{Notices: notices})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	abs, err := workspace.Resolve(s.Root, path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	preview := model.ReadPreview(abs, previewLines)
	preview.Path = path
	writeJSON(w, http.StatusOK, preview)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
