package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attentiond/internal/domain"
	"attentiond/internal/ingest"
	"attentiond/internal/journal"
)

// Processor runs one raw event through the attention pipeline.
type Processor interface {
	Process(ctx context.Context, raw domain.RawEvent, ambient map[string]any) (domain.PipelineResult, error)
}

// OutcomeJournal exposes the journal queries served to operators.
type OutcomeJournal interface {
	Recent(limit int) ([]journal.Record, error)
	OutcomeCounts(since time.Time) (map[string]int, error)
	GetFallbackStats(since time.Time) (journal.FallbackStats, error)
}

// Server is the HTTP intake for upstream producers. POST /v1/events takes a
// raw event and answers with the pipeline result. GET /v1/outcomes and
// GET /v1/stats serve the outcome journal.
type Server struct {
	proc    Processor
	journal OutcomeJournal
}

// New builds a server. journal may be nil; the journal endpoints then answer
// 503.
func New(proc Processor, journal OutcomeJournal) *Server {
	return &Server{proc: proc, journal: journal}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/outcomes", s.handleOutcomes)
	mux.HandleFunc("/v1/stats", s.handleStats)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw domain.RawEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed event body: " + err.Error()})
		return
	}

	result, err := s.proc.Process(r.Context(), raw, nil)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidEvent) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("process error source=%s kind=%s err=%v", raw.Source, raw.Kind, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "journal disabled"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit: " + raw})
			return
		}
		limit = parsed
	}

	records, err := s.journal.Recent(limit)
	if err != nil {
		log.Printf("journal query error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if records == nil {
		records = []journal.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

type statsResponse struct {
	Since    time.Time             `json:"since"`
	Outcomes map[string]int        `json:"outcomes"`
	Fallback journal.FallbackStats `json:"fallback"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.journal == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "journal disabled"})
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hours: " + raw})
			return
		}
		hours = parsed
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	counts, err := s.journal.OutcomeCounts(since)
	if err != nil {
		log.Printf("journal query error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	fallback, err := s.journal.GetFallbackStats(since)
	if err != nil {
		log.Printf("journal query error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Since: since, Outcomes: counts, Fallback: fallback})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode error: %v", err)
	}
}
