package server

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aellingwood/servelive/internal/preview"
)

// wsPath is the URL path of the WebSocket notification endpoint.
const wsPath = "/__servelive/ws"

// Options contains the configurable settings for the server.
type Options struct {
	Address      string
	Root         string
	EventPath    string
	Debounce     time.Duration
	LiveReload   bool
	Preview      bool
	PreviewStyle string
	Verbose      bool
}

// Server serves static files from a directory tree and notifies connected
// clients over server-sent events (and WebSocket) when files change.
type Server struct {
	options  Options
	hub      *Hub
	watcher  *Watcher
	renderer *preview.Renderer
	server   *http.Server
}

// New creates a Server with the given options. The root must already be
// resolved to an absolute path by the caller.
func New(opts Options) (*Server, error) {
	s := &Server{
		options: opts,
		hub:     NewHub(),
	}
	if opts.Preview {
		r, err := preview.NewRenderer(opts.PreviewStyle)
		if err != nil {
			return nil, fmt.Errorf("creating markdown renderer: %w", err)
		}
		s.renderer = r
	}
	return s, nil
}

// Start runs the server until the provided context is cancelled. The
// filesystem watch is fully established before the listener starts
// accepting connections, so a change occurring right after startup cannot
// be lost.
func (s *Server) Start(ctx context.Context) error {
	s.watcher = NewWatcher(s.options.Root)
	if err := s.watcher.Start(); err != nil {
		return err
	}
	defer s.watcher.Stop()

	debouncer := NewDebouncer(s.options.Debounce)
	go debouncer.Run(s.watcher.Signals(), func() {
		if s.options.Verbose {
			log.Printf("files changed, notifying %d subscriber(s)", s.hub.SubscriberCount())
		}
		s.hub.Broadcast()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/"+s.options.EventPath, s.handleEvents)
	mux.HandleFunc(wsPath, s.handleWS)
	mux.HandleFunc("/", s.handleRequest)

	s.server = &http.Server{
		Addr:    s.options.Address,
		Handler: mux,
	}

	// Listen for context cancellation to trigger graceful shutdown.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.options.Address, err)
	}

	fmt.Printf("Serving HTTP at http://%s\n", s.options.Address)
	fmt.Printf("    Serving files from %s\n", s.options.Root)

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Hub returns the server's notification hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleRequest serves files from the watched root. Directory URLs
// without a trailing slash are redirected to the slashed form; with a
// slash, the directory's index.html is served. Markdown files are
// rendered as preview pages when preview is enabled.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	filePath := s.resolveFilePath(r.URL.Path)
	if filePath == "" {
		s.handle404(w, r)
		return
	}

	if info, err := os.Stat(filePath); err == nil && info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		filePath = filepath.Join(filePath, "index.html")
	}

	if s.renderer != nil && strings.EqualFold(filepath.Ext(filePath), ".md") {
		s.handlePreview(w, r, filePath)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		s.handle404(w, r)
		return
	}

	ext := filepath.Ext(filePath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if s.options.LiveReload && isHTML(ext, contentType) {
		data = InjectAutoReload(data, s.options.EventPath)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handlePreview renders a Markdown file as a standalone HTML page.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, filePath string) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		s.handle404(w, r)
		return
	}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	page, err := s.renderer.RenderPage(source, name)
	if err != nil {
		log.Printf("preview render error for %s: %v", filePath, err)
		http.Error(w, "failed to render markdown preview", http.StatusInternalServerError)
		return
	}

	if s.options.LiveReload {
		page = InjectAutoReload(page, s.options.EventPath)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// resolveFilePath maps a URL path to a path under the served root. It
// returns "" for paths that would escape the root.
func (s *Server) resolveFilePath(urlPath string) string {
	cleaned := filepath.Clean(urlPath)
	if strings.Contains(cleaned, "..") {
		return ""
	}
	return filepath.Join(s.options.Root, filepath.FromSlash(cleaned))
}

// handle404 serves a 404 response. If a custom 404.html exists under the
// root, it is served; otherwise a plain text message is returned.
func (s *Server) handle404(w http.ResponseWriter, r *http.Request) {
	notFoundPath := filepath.Join(s.options.Root, "404.html")
	data, err := os.ReadFile(notFoundPath)
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(data)
		return
	}

	http.Error(w, "404 page not found", http.StatusNotFound)
}

// isHTML returns true if the file extension or content type indicates HTML.
func isHTML(ext, contentType string) bool {
	if ext == ".html" || ext == ".htm" {
		return true
	}
	return bytes.Contains([]byte(contentType), []byte("text/html"))
}
