package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/ytsum/internal/types"
	"github.com/studiowebux/ytsum/internal/videourl"
	"golang.org/x/sync/errgroup"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// Server is a fake summarization backend
type Server struct {
	config    *Config
	logs      []RequestLog
	logsMutex sync.RWMutex
	workdir   string
	logger    *slog.Logger

	addrMu sync.RWMutex
	addr   string
}

// NewServer creates a new mock server. workdir resolves relative bodyFile paths.
func NewServer(config *Config, workdir string, logger *slog.Logger) *Server {
	if config.Port == 0 && config.Host == "" {
		config.Port = 8000
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:  config,
		logs:    make([]RequestLog, 0),
		workdir: workdir,
		logger:  logger,
	}
}

// Handler returns the HTTP handler serving the configured routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.addrMu.Lock()
	s.addr = "http://" + listener.Addr().String()
	s.addrMu.Unlock()

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mock backend listening", "addr", s.Address(), "routes", len(s.config.Routes))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleRequest handles incoming HTTP requests
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	r.Body.Close()
	if err != nil {
		s.logger.Debug("failed to read request body", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	// Routes with url_contains only match a decodable {"url": ...} body
	var submitted types.SummarizeRequest
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &submitted); err != nil {
			s.logger.Debug("request body is not a summarize request", "method", r.Method, "path", r.URL.Path, "error", err)
		}
	}

	route := s.findMatchingRoute(r.Method, r.URL.Path, submitted.URL)

	var status int
	var responseBody string
	var matchedRule string

	if route == nil {
		status = http.StatusNotFound
		w.Header().Set("Content-Type", "application/json")
		responseBody = fmt.Sprintf(`{"detail":"Mock server: no route configured for %s %s"}`, r.Method, r.URL.Path)
		matchedRule = "none"
	} else {
		if route.Delay > 0 {
			select {
			case <-time.After(time.Duration(route.Delay) * time.Millisecond):
			case <-r.Context().Done():
				s.logger.Debug("client went away during delay", "path", r.URL.Path)
				return
			}
		}

		status = route.Status
		if status == 0 {
			status = http.StatusOK
		}

		for key, value := range route.Headers {
			w.Header().Set(key, value)
		}

		if route.BodyFile != "" {
			filePath := route.BodyFile
			if !filepath.IsAbs(filePath) {
				filePath = filepath.Join(s.workdir, filePath)
			}
			fileBytes, err := os.ReadFile(filePath)
			if err != nil {
				status = http.StatusInternalServerError
				responseBody = fmt.Sprintf("Mock server: Failed to read body file %s: %v", route.BodyFile, err)
			} else {
				responseBody = string(fileBytes)
			}
		} else {
			responseBody = route.Body
		}
		responseBody = expandBody(responseBody, submitted.URL)

		matchedRule = route.Name
		if matchedRule == "" {
			matchedRule = fmt.Sprintf("%s %s", route.Method, route.Path)
		}
	}

	w.WriteHeader(status)
	w.Write([]byte(responseBody))

	entry := RequestLog{
		Timestamp:   start,
		Method:      r.Method,
		Path:        r.URL.Path,
		RequestID:   r.Header.Get("X-Request-ID"),
		VideoURL:    submitted.URL,
		MatchedRule: matchedRule,
		Status:      status,
		Duration:    time.Since(start),
	}
	s.logRequest(entry)

	if s.config.Logging {
		s.logger.Info("mock request",
			"method", entry.Method,
			"path", entry.Path,
			"request_id", entry.RequestID,
			"url", entry.VideoURL,
			"rule", entry.MatchedRule,
			"status", entry.Status,
			"duration_ms", entry.Duration.Milliseconds(),
		)
	}
}

// findMatchingRoute finds the first route that matches the method, path and submitted url
func (s *Server) findMatchingRoute(method, path, videoURL string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}
		if route.URLContains != "" && !strings.Contains(videoURL, route.URLContains) {
			continue
		}

		pathType := route.PathType
		if pathType == "" {
			pathType = "exact"
		}

		matched := false
		switch pathType {
		case "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re, err := regexp.Compile(route.Path); err == nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}

	return nil
}

// expandBody substitutes {{url}} and {{videoId}}, escaped for use inside JSON strings
func expandBody(body, videoURL string) string {
	if !strings.Contains(body, "{{") {
		return body
	}
	return strings.NewReplacer(
		"{{url}}", jsonEscape(videoURL),
		"{{videoId}}", jsonEscape(videourl.ExtractVideoID(videoURL)),
	).Replace(body)
}

func jsonEscape(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted[1 : len(quoted)-1])
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// Address returns the base URL clients should use as API_BASE.
// Before Run binds the listener it is derived from the config.
func (s *Server) Address() string {
	s.addrMu.RLock()
	defer s.addrMu.RUnlock()
	if s.addr != "" {
		return s.addr
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}
