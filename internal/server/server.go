// Package server exposes detection and generation over HTTP: plain JSON
// for analyze and history, SSE for generation progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"uigen/internal/detect"
	"uigen/internal/generator"
	"uigen/internal/gitdrift"
	"uigen/internal/knowledge"
	"uigen/internal/logging"
	"uigen/internal/storage"
	"uigen/internal/taxonomy"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// decisionCacheSize bounds how many (root, manifest hash) decisions are
// kept hot before LRU eviction.
const decisionCacheSize = 128

// Options configures a Server. Store and Writer are optional: without a
// store nothing is persisted, and without a writer /api/generate responds
// 503.
type Options struct {
	Addr     string
	Detector *detect.Detector
	Store    storage.Store
	Writer   knowledge.CodeWriter
	Logger   *slog.Logger
}

type Server struct {
	httpServer *http.Server
	detector   *detect.Detector
	store      storage.Store
	writer     knowledge.CodeWriter
	drift      *gitdrift.Checker
	decisions  *lru.Cache[string, *storage.Analysis]
	log        *slog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Detector == nil {
		opts.Detector = detect.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("server")
	}
	cache, err := lru.New[string, *storage.Analysis](decisionCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		detector:  opts.Detector,
		store:     opts.Store,
		writer:    opts.Writer,
		drift:     gitdrift.New(taxonomy.DefaultFrameworkCatalog(), taxonomy.DefaultStylingCatalog()),
		decisions: cache,
		log:       opts.Logger,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the route table, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})
	return mux
}

type analyzeRequest struct {
	Root string `json:"root"`
}

type analyzeResponse struct {
	RunID    string           `json:"run_id"`
	Cached   bool             `json:"cached"`
	Decision *detect.Decision `json:"decision"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	root := strings.TrimSpace(in.Root)
	if root == "" {
		http.Error(w, "root is required", http.StatusBadRequest)
		return
	}

	a, cached, err := s.analyze(r.Context(), root)
	if err != nil {
		if errors.Is(err, detect.ErrRootAccess) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, analyzeResponse{
		RunID:    uuid.NewString(),
		Cached:   cached,
		Decision: a.Decision,
	})
}

// analyze returns the cached analysis for root when nothing the detector
// reads has changed since it was recorded, otherwise runs detection and
// records the result.
func (s *Server) analyze(ctx context.Context, root string) (*storage.Analysis, bool, error) {
	hash := detect.ManifestHash(root)
	key := root + "@" + hash

	if a, ok := s.decisions.Get(key); ok {
		d := s.drift.Since(ctx, root, a.Head)
		if d.State != gitdrift.StateDrifted {
			return a, true, nil
		}
		s.decisions.Remove(key)
		s.log.Info("cached decision invalidated", "root", root, "changed", len(d.Paths))
	}

	decision, err := s.detector.Detect(ctx, root)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	a := &storage.Analysis{
		Root:         root,
		ManifestHash: hash,
		Head:         s.drift.Head(ctx, root),
		Decision:     decision,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.store != nil {
		if err := s.store.SaveAnalysis(ctx, a); err != nil {
			s.log.Warn("save analysis failed", "root", root, "error", err)
		}
	}
	s.decisions.Add(key, a)
	return a, false, nil
}

type generateRequest struct {
	Root      string                     `json:"root"`
	Component knowledge.ComponentRequest `json:"component"`
}

// sseEvent is one server-sent frame: progress during the run, then a
// single result or error.
type sseEvent struct {
	Type   string            `json:"type"`
	RunID  string            `json:"run_id"`
	Stage  string            `json:"stage,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Error  string            `json:"error,omitempty"`
	Result *generator.Result `json:"result,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.writer == nil {
		http.Error(w, "no code writer configured: set an API key", http.StatusServiceUnavailable)
		return
	}
	var in generateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	root := strings.TrimSpace(in.Root)
	if root == "" {
		http.Error(w, "root is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Component.Name) == "" {
		http.Error(w, "component.name is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	runID := uuid.NewString()
	events := make(chan sseEvent, 16)

	go s.runGeneration(ctx, runID, root, in.Component, events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				fmt.Fprintf(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// runGeneration feeds events until the run finishes; the channel closing
// is the terminal signal. Files are never written server-side, clients
// receive the payload and decide where it lands.
func (s *Server) runGeneration(ctx context.Context, runID, root string, req knowledge.ComponentRequest, events chan<- sseEvent) {
	defer close(events)

	send := func(ev sseEvent) {
		ev.RunID = runID
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	send(sseEvent{Type: "progress", Stage: "detect", Detail: "analyzing " + root})
	a, cached, err := s.analyze(ctx, root)
	if err != nil {
		send(sseEvent{Type: "error", Stage: "detect", Error: err.Error()})
		return
	}
	if cached {
		send(sseEvent{Type: "progress", Stage: "detect", Detail: "reusing recorded decision"})
	}

	gen, err := generator.New(s.writer,
		generator.WithLogger(s.log),
		generator.WithProgress(func(stage, detail string) {
			send(sseEvent{Type: "progress", Stage: stage, Detail: detail})
		}))
	if err != nil {
		send(sseEvent{Type: "error", Stage: "generate", Error: err.Error()})
		return
	}

	res, err := gen.Generate(ctx, a.Decision, req, "")
	if err != nil {
		send(sseEvent{Type: "error", Stage: "generate", Error: err.Error(), Result: res})
		return
	}

	if s.store != nil {
		rec := &storage.ComponentRecord{
			ID:        runID,
			Root:      root,
			Name:      res.Component.ComponentName,
			Request:   req,
			Files:     res.Component.Files,
			Quality:   res.Quality.Score,
			Signals:   res.Report.SignalCodes(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.SaveComponent(ctx, rec); err != nil {
			s.log.Warn("save component failed", "root", root, "error", err)
		}
	}

	send(sseEvent{Type: "result", Result: res})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "history requires storage", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	analyses, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"analyses": analyses})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
