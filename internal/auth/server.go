package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/singlebase/singlebase-go/internal/api"
	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/validation"
)

// SetupResult contains the profile saved by a browser-based setup.
type SetupResult struct {
	Name    string
	Profile config.Profile
	URL     string
}

// SetupServer serves a local form that collects connection details and
// stores them as a keyring profile.
type SetupServer struct {
	result    chan SetupResult
	shutdown  chan struct{}
	closeOnce sync.Once
	csrfToken string
	profile   string

	mu            sync.Mutex
	pendingResult *SetupResult

	// Out receives the setup URL and browser hints.
	Out io.Writer
	// OpenBrowser launches the setup URL. Defaults to the platform opener.
	OpenBrowser func(url string) error
}

// NewSetupServer creates a setup server that saves to the named profile.
func NewSetupServer(profile string) (*SetupServer, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	if profile == "" {
		profile = config.DefaultProfile
	}

	return &SetupServer{
		result:      make(chan SetupResult, 1),
		shutdown:    make(chan struct{}),
		csrfToken:   hex.EncodeToString(tokenBytes),
		profile:     profile,
		Out:         os.Stdout,
		OpenBrowser: openBrowser,
	}, nil
}

func (s *SetupServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSetup)
	mux.HandleFunc("/validate", s.handleValidate)
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/success", s.handleSuccess)
	mux.HandleFunc("/complete", s.handleComplete)
	return mux
}

// Start serves the setup page on a loopback port, opens the browser and
// blocks until the form is completed or ctx is cancelled.
func (s *SetupServer) Start(ctx context.Context) (*SetupResult, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	server := &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
		}
	}()

	_, _ = fmt.Fprintf(s.Out, "Open this URL in your browser to configure profile %q:\n  %s\n", s.profile, baseURL)
	if s.OpenBrowser != nil {
		if err := s.OpenBrowser(baseURL); err != nil {
			_, _ = fmt.Fprintf(s.Out, "Could not open browser automatically: %v\n", err)
		}
	}

	select {
	case result := <-s.result:
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.shutdown:
		if pending := s.pending(); pending != nil {
			return pending, nil
		}
		return nil, fmt.Errorf("setup cancelled")
	}
}

func (s *SetupServer) pending() *SetupResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingResult
}

type setupRequest struct {
	APIKey      string `json:"api_key"`
	APIURL      string `json:"api_url"`
	EndpointKey string `json:"endpoint_key"`
}

// check validates the form and returns the endpoint URL it resolves to.
func (r *setupRequest) check() (string, error) {
	r.APIKey = strings.TrimSpace(r.APIKey)
	r.APIURL = strings.TrimSuffix(strings.TrimSpace(r.APIURL), "/")
	r.EndpointKey = strings.TrimSpace(r.EndpointKey)

	if r.APIKey == "" {
		return "", fmt.Errorf("API key is required")
	}
	switch {
	case r.APIURL != "":
		if err := validation.ValidateAPIURL(r.APIURL); err != nil {
			return "", fmt.Errorf("invalid URL: %v", err)
		}
	case r.EndpointKey != "":
		if err := validation.ValidateEndpointKey(r.EndpointKey); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("an endpoint key or API URL is required")
	}

	client, err := api.New(api.Config{APIKey: r.APIKey, APIURL: r.APIURL, EndpointKey: r.EndpointKey})
	if err != nil {
		return "", err
	}
	return client.URL(), nil
}

func (s *SetupServer) decode(w http.ResponseWriter, r *http.Request) (*setupRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	if r.Header.Get("X-CSRF-Token") != s.csrfToken {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return nil, false
	}

	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid request body",
		})
		return nil, false
	}
	return &req, true
}

func (s *SetupServer) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tmpl, err := template.New("setup").Parse(setupTemplate)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	data := map[string]string{
		"CSRFToken": s.csrfToken,
		"Profile":   s.profile,
		"BaseURL":   api.BaseAPIURL,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, data)
}

// handleValidate checks the form without saving.
func (s *SetupServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	url, err := req.check()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Settings look good",
		"url":     url,
	})
}

// handleSubmit saves the profile and makes it current.
func (s *SetupServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	url, err := req.check()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}

	profile := config.Profile{APIKey: req.APIKey}
	if req.APIURL != "" {
		profile.APIURL = req.APIURL
	} else {
		profile.EndpointKey = req.EndpointKey
	}

	if err := config.SaveProfile(s.profile, profile); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Failed to save credentials: %v", err),
		})
		return
	}

	s.mu.Lock()
	s.pendingResult = &SetupResult{Name: s.profile, Profile: profile, URL: url}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"profile": s.profile,
		"url":     url,
	})
}

func (s *SetupServer) handleSuccess(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.New("success").Parse(successTemplate)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	data := map[string]string{
		"Profile": s.profile,
		"URL":     r.URL.Query().Get("url"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, data)
}

// handleComplete signals that setup is done.
func (s *SetupServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	if pending := s.pending(); pending != nil {
		select {
		case s.result <- *pending:
		default:
		}
	}
	s.closeOnce.Do(func() { close(s.shutdown) })
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func openBrowser(url string) error {
	if shouldSkipAutoBrowserOpen() {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}
	return cmd.Start()
}

func shouldSkipAutoBrowserOpen() bool {
	if flag.Lookup("test.v") != nil {
		return true
	}
	noBrowser := strings.TrimSpace(strings.ToLower(os.Getenv("SINGLEBASE_NO_BROWSER")))
	return noBrowser == "1" || noBrowser == "true" || noBrowser == "yes"
}
