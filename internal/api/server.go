// Package api provides the HTTP and WebSocket surface for the
// challenge dashboard. It owns recompute-on-change: every import or
// configuration update rebuilds the metrics snapshot once and pushes
// it to subscribed clients, while the engine itself stays pure.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/propdeck/challenge-backend/internal/export"
	"github.com/propdeck/challenge-backend/internal/importer"
	"github.com/propdeck/challenge-backend/internal/metrics"
	"github.com/propdeck/challenge-backend/internal/store"
	"github.com/propdeck/challenge-backend/pkg/types"
)

// Server is the HTTP/WebSocket API server.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	config     *types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader

	store    *store.Store
	engine   *metrics.Engine
	importer *importer.Importer
	hub      *Hub

	challengeCfg types.ChallengeConfig
	session      types.SessionData
	trades       []types.RawTrade
	snapshot     *metrics.Snapshot
}

// NewServer creates an API server around a store, engine, and hub.
func NewServer(
	logger *zap.Logger,
	config *types.ServerConfig,
	sessionStore *store.Store,
	engine *metrics.Engine,
	hub *Hub,
	challengeCfg types.ChallengeConfig,
) *Server {
	s := &Server{
		logger:       logger,
		config:       config,
		router:       mux.NewRouter(),
		store:        sessionStore,
		engine:       engine,
		importer:     importer.NewImporter(logger),
		hub:          hub,
		challengeCfg: challengeCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The extension popup connects from an extension origin.
				return true
			},
		},
	}

	s.recompute()
	s.setupRoutes()
	return s
}

// Router exposes the underlying router for additional handlers.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router.PathPrefix("/api/v1").Subrouter()
	r.Use(instrumentHandler)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	r.HandleFunc("/trades/enriched", s.handleGetEnriched).Methods("GET")
	r.HandleFunc("/trades/import", s.handleImportJSON).Methods("POST")
	r.HandleFunc("/trades/import/html", s.handleImportHTML).Methods("POST")

	r.HandleFunc("/metrics/snapshot", s.handleGetSnapshot).Methods("GET")
	r.HandleFunc("/metrics/daily", s.handleGetDaily).Methods("GET")
	r.HandleFunc("/metrics/equity", s.handleGetEquity).Methods("GET")
	r.HandleFunc("/metrics/drawdown", s.handleGetDrawdown).Methods("GET")
	r.HandleFunc("/metrics/objectives", s.handleGetObjectives).Methods("GET")
	r.HandleFunc("/metrics/streak", s.handleGetStreak).Methods("GET")

	r.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	r.HandleFunc("/config", s.handlePutConfig).Methods("PUT")
	r.HandleFunc("/session", s.handlePutSession).Methods("PUT")

	r.HandleFunc("/export", s.handleExport).Methods("GET")
	r.HandleFunc("/import", s.handleImportEnvelope).Methods("POST")

	r.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	r.HandleFunc("/sessions/{name}", s.handleSaveSession).Methods("POST")
	r.HandleFunc("/sessions/{name}", s.handleLoadSession).Methods("GET")

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("starting API server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// recompute rebuilds the metrics snapshot from current state and
// notifies subscribed clients. Callers must hold no lock.
func (s *Server) recompute() {
	s.mu.Lock()
	s.snapshot = s.engine.Compute(
		s.trades, s.challengeCfg,
		s.session.InitialCapital, s.session.CurrentBalance)
	snapshot := s.snapshot
	tradeCount := len(s.trades)
	s.mu.Unlock()

	recomputesTotal.Inc()
	tradesStored.Set(float64(tradeCount))

	if s.hub != nil {
		s.hub.PublishToChannel("metrics", MsgTypeMetricsUpdate, snapshot)
		s.hub.PublishToChannel("objectives", MsgTypeObjectivesUpdate, snapshot.Objectives)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"trades": s.trades,
		"count":  len(s.trades),
	})
}

func (s *Server) handleGetEnriched(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"trades": s.snapshot.Trades,
		"count":  len(s.snapshot.Trades),
	})
}

func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	var trades []types.RawTrade
	if err := json.NewDecoder(r.Body).Decode(&trades); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.trades = trades
	s.session.UpdatedAt = time.Now()
	s.mu.Unlock()

	importsTotal.WithLabelValues("json").Inc()
	s.recompute()

	writeJSON(w, map[string]interface{}{
		"imported": len(trades),
		"batchId":  uuid.New().String(),
	})
}

func (s *Server) handleImportHTML(w http.ResponseWriter, r *http.Request) {
	trades, err := s.importer.ParseTradesHTML(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.trades = trades
	s.session.UpdatedAt = time.Now()
	s.mu.Unlock()

	importsTotal.WithLabelValues("html").Inc()
	s.recompute()

	writeJSON(w, map[string]interface{}{
		"imported": len(trades),
		"batchId":  uuid.New().String(),
	})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.snapshot)
}

func (s *Server) handleGetDaily(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"days":  s.snapshot.Days,
		"order": metrics.SortedDayKeys(s.snapshot.Days),
	})
}

func (s *Server) handleGetEquity(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"points": s.snapshot.EquityCurve,
	})
}

func (s *Server) handleGetDrawdown(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]interface{}{
		"max":   s.snapshot.MaxDrawdown,
		"daily": s.snapshot.DailyDD,
	})
}

func (s *Server) handleGetObjectives(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.snapshot.Objectives)
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.snapshot.Streak)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.challengeCfg)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg types.ChallengeConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.challengeCfg = cfg
	s.mu.Unlock()

	s.recompute()
	writeJSON(w, cfg)
}

// sessionUpdate is the mutable account-level state the popup can set.
type sessionUpdate struct {
	AccountName    string          `json:"accountName"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var upd sessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.session.AccountName = upd.AccountName
	s.session.InitialCapital = upd.InitialCapital
	s.session.CurrentBalance = upd.CurrentBalance
	s.session.UpdatedAt = time.Now()
	session := s.session
	s.mu.Unlock()

	s.recompute()
	writeJSON(w, session)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	env := types.ExportEnvelope{
		ChallengeConfig: s.challengeCfg,
		SessionData:     s.session,
		TradeData:       s.trades,
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=challenge-export.json")
	if err := export.Write(w, &env); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}

func (s *Server) handleImportEnvelope(w http.ResponseWriter, r *http.Request) {
	env, err := export.Read(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.challengeCfg = env.ChallengeConfig
	s.session = env.SessionData
	s.trades = env.TradeData
	s.mu.Unlock()

	importsTotal.WithLabelValues("envelope").Inc()
	s.recompute()

	writeJSON(w, map[string]interface{}{
		"imported": len(env.TradeData),
		"source":   env.ExportMetadata.Source,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListSessions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"sessions": names})
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.RLock()
	env := types.ExportEnvelope{
		ChallengeConfig: s.challengeCfg,
		SessionData:     s.session,
		TradeData:       s.trades,
	}
	s.mu.RUnlock()

	if err := s.store.SaveSession(name, &env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]interface{}{"saved": name})
}

func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	env, err := s.store.LoadSession(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.challengeCfg = env.ChallengeConfig
	s.session = env.SessionData
	s.trades = env.TradeData
	s.mu.Unlock()

	s.recompute()
	writeJSON(w, map[string]interface{}{
		"loaded": name,
		"trades": len(env.TradeData),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), s.hub, conn)
	s.hub.register <- client

	go client.ReadPump()
	go client.WritePump()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
