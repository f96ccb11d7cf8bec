// Package callback runs the short-lived local HTTP server that receives the
// OAuth authorization code after the user approves mammut in the browser.
package callback

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"

	"mammut/pkg/logging"
)

// CallbackPath is the single route served.
const CallbackPath = "/auth-callback"

// AppName is shown on the pages rendered to the browser.
const AppName = "mammut"

const shutdownTimeout = 5 * time.Second

//go:embed templates/success.html
var successHTML string

//go:embed templates/error.html
var errorHTML string

var (
	successTmpl = template.Must(template.New("success").Funcs(sprig.HtmlFuncMap()).Parse(successHTML))
	errorTmpl   = template.Must(template.New("error").Funcs(sprig.HtmlFuncMap()).Parse(errorHTML))
)

// Server is a local HTTP server that captures authorization codes.
// The first code received is buffered until read; later codes are dropped
// while the buffer is full.
type Server struct {
	port     int
	server   *http.Server
	listener net.Listener
	codes    chan string
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.RWMutex
	state string
}

// Start binds 127.0.0.1:port and serves the callback route in the background.
// A port of 0 picks an ephemeral port. The server is accepting connections
// when Start returns. Cancelling ctx stops the server.
func Start(ctx context.Context, port int) (*Server, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}

	s := &Server{
		port:     listener.Addr().(*net.TCPAddr).Port,
		listener: listener,
		codes:    make(chan string, 1),
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Callback", err, "Callback server stopped unexpectedly")
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	logging.Debug("Callback", "Listening on %s", listener.Addr())
	return s, nil
}

// RedirectURL returns the URL the instance should redirect the browser to.
func (s *Server) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// Codes returns the channel authorization codes are published on.
func (s *Server) Codes() <-chan string {
	return s.codes
}

// ExpectState makes the server reject callbacks whose state parameter is not
// state. An empty state accepts any callback.
func (s *Server) ExpectState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Wait blocks until a non-blank code arrives or ctx is done.
func (s *Server) Wait(ctx context.Context) (string, error) {
	for {
		select {
		case code := <-s.codes:
			if strings.TrimSpace(code) == "" {
				continue
			}
			return code, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(ctx)
		_ = s.listener.Close()
		logging.Debug("Callback", "Stopped callback server on port %d", s.port)
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		logging.Warn("Callback", "Authorization denied: %s", providerErr)
		s.render(w, http.StatusBadRequest, errorTmpl, map[string]string{
			"App":         AppName,
			"Error":       providerErr,
			"Description": query.Get("error_description"),
		})
		return
	}

	s.mu.RLock()
	expected := s.state
	s.mu.RUnlock()

	if expected != "" && query.Get("state") != expected {
		logging.Warn("Callback", "Rejected callback with unexpected state")
		s.render(w, http.StatusBadRequest, errorTmpl, map[string]string{
			"App":   AppName,
			"Error": "state_mismatch",
		})
		return
	}

	code := query.Get("code")
	if strings.TrimSpace(code) == "" {
		logging.Debug("Callback", "Rejected callback without code")
		s.render(w, http.StatusBadRequest, errorTmpl, map[string]string{
			"App":   AppName,
			"Error": "missing_code",
		})
		return
	}

	s.render(w, http.StatusOK, successTmpl, map[string]string{"App": AppName})

	select {
	case s.codes <- code:
		logging.Debug("Callback", "Received authorization code")
	default:
		logging.Debug("Callback", "Dropped authorization code, one is already pending")
	}
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data map[string]string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		logging.Error("Callback", err, "Failed to render callback page")
	}
}
