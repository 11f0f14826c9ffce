// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package api exposes the detector's admin HTTP surface: a JSON stats
// snapshot, a liveness probe, and a websocket stream of flagged
// records.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jaroslavh/Nemea-Modules/internal/detect"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
)

// StatsProvider supplies the counters served at /api/v1/stats.
type StatsProvider interface {
	Stats() Stats
}

// Stats is the JSON snapshot returned by /api/v1/stats.
type Stats struct {
	RecordsV4    uint64            `json:"records_v4"`
	RecordsV6    uint64            `json:"records_v6"`
	FilterHits   map[string]uint64 `json:"filter_hits"`
	AuditDropped uint64            `json:"audit_dropped"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admin API is expected behind an operator-controlled reverse
	// proxy or bound to a trusted interface; cross-origin browser
	// clients are not part of this surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server hosts the admin HTTP API and implements detect.Broadcaster
// by fanning flagged records out to every connected websocket client.
type Server struct {
	router *mux.Router
	stats  StatsProvider
	logger *logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan detect.Record
}

// NewServer builds a Server. stats may be nil, in which case
// /api/v1/stats reports zero values.
func NewServer(stats StatsProvider, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		router:  mux.NewRouter(),
		stats:   stats,
		logger:  logger,
		clients: make(map[*websocket.Conn]chan detect.Record),
	}
	s.router.HandleFunc("/api/v1/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/api/v1/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/api/v1/stream", s.handleStream).Methods("GET")
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	if s.stats != nil {
		stats = s.stats.Stats()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan detect.Record, 64)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for rec := range ch {
		if err := conn.WriteJSON(recordView(rec)); err != nil {
			return
		}
	}
}

// Broadcast implements detect.Broadcaster. It never blocks: a client
// whose buffer is full simply misses the record.
func (s *Server) Broadcast(r detect.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- r:
		default:
		}
	}
}

func recordView(r detect.Record) map[string]any {
	return map[string]any{
		"src":       r.SrcAddr.String(),
		"dst":       r.DstAddr.String(),
		"first":     r.First,
		"link":      r.LinkBitfield,
		"direction": r.DirBitfield,
	}
}
