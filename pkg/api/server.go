// Package api exposes the spanning-tree simulator's topology, tick, and
// convergence operations over HTTP for the daemon (pkg/daemon) and for
// direct one-shot use.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/krisarmstrong/stpsim/internal/stpcore"
	"github.com/krisarmstrong/stpsim/pkg/errors"
	"github.com/krisarmstrong/stpsim/pkg/stats"
	"github.com/krisarmstrong/stpsim/pkg/storage"
)

const (
	// MaxRequestBodySize is the maximum size for API request bodies.
	MaxRequestBodySize = 1 << 20 // 1MB

	// DefaultRateLimit and DefaultBurst bound per-IP request rate.
	DefaultRateLimit = 100
	DefaultBurst     = 200
)

// rateLimiterEntry tracks a rate limiter with its last access time.
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-IP rate limiting for API requests.
type RateLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter with the given rate and burst.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     r,
		burst:    b,
	}
}

// GetLimiter returns the rate limiter for the given IP address.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: time.Now()}
		rl.limiters[ip] = entry
	} else {
		entry.lastSeen = time.Now()
	}
	return entry.limiter
}

// CleanupStale removes limiters for IPs that haven't been seen recently.
func (rl *RateLimiter) CleanupStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	const staleThreshold = 1 * time.Hour
	now := time.Now()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > staleThreshold {
			delete(rl.limiters, ip)
		}
	}
}

func getClientIP(r *http.Request) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if isTrustedProxy(remoteIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP := xff
			if idx := strings.Index(xff, ","); idx != -1 {
				clientIP = xff[:idx]
			}
			clientIP = strings.TrimSpace(clientIP)
			if net.ParseIP(clientIP) != nil {
				return clientIP
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
			return xri
		}
	}
	return remoteIP
}

// isTrustedProxy only trusts forwarded headers from localhost/private
// networks, to avoid header spoofing bypassing rate limiting.
func isTrustedProxy(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
}

// ErrorResponse is a standardized API error body.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: code, Message: message, Timestamp: time.Now(), Path: r.URL.Path, Method: r.Method,
	})
}

// SimulationRequest asks the daemon to load and start ticking a topology.
type SimulationRequest struct {
	ConfigPath string `json:"config_path,omitempty"`
	ConfigData string `json:"config_data,omitempty"`
}

// SimulationStatus reports a daemon-managed simulation's live state.
type SimulationStatus struct {
	Running       bool      `json:"running"`
	ConfigPath    string    `json:"config_path,omitempty"`
	ConfigName    string    `json:"config_name,omitempty"`
	BridgeCount   int       `json:"bridge_count"`
	LinkCount     int       `json:"link_count"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	TickCount     int       `json:"tick_count"`
	Converged     bool      `json:"converged"`
	RootID        string    `json:"root_id,omitempty"`
}

// DaemonController lets the API start/stop/inspect a daemon-managed
// simulation without importing pkg/daemon (which imports pkg/api).
type DaemonController interface {
	StartSimulation(req SimulationRequest) error
	StopSimulation() error
	GetStatus() SimulationStatus
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Addr    string
	Token   string
	Version string
	Storage *storage.Storage
	Stats   *stats.Statistics
	Faults  *errors.StateManager
}

// Server exposes the topology/tick/convergence REST API and an optional
// daemon control surface. All topology access is serialized through
// topoMu, matching spec.md §5's single-threaded, one-mutation-at-a-time
// scheduling model even though handlers run on separate goroutines.
type Server struct {
	cfg         ServerConfig
	httpServer  *http.Server
	daemon      DaemonController
	startTime   time.Time
	rateLimiter *RateLimiter

	topoMu    sync.RWMutex
	topology  *stpcore.Topology
	topoPath  string
	tickCount int
}

// NewServer returns a configured API server.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		cfg:         cfg,
		startTime:   time.Now(),
		rateLimiter: NewRateLimiter(DefaultRateLimit, DefaultBurst),
	}
}

// SetTopology installs the live topology the API operates on.
func (s *Server) SetTopology(top *stpcore.Topology, path string) {
	s.topoMu.Lock()
	defer s.topoMu.Unlock()
	s.topology = top
	s.topoPath = path
	s.tickCount = 0
}

// ClearTopology removes the active topology (daemon-mode stop).
func (s *Server) ClearTopology() {
	s.topoMu.Lock()
	defer s.topoMu.Unlock()
	s.topology = nil
	s.topoPath = ""
}

// SetDaemonController wires a daemon for simulation start/stop/status.
func (s *Server) SetDaemonController(d DaemonController) {
	s.daemon = d
}

func (s *Server) withTopology(fn func(*stpcore.Topology) error) error {
	s.topoMu.Lock()
	defer s.topoMu.Unlock()
	if s.topology == nil {
		return fmt.Errorf("no topology loaded")
	}
	return fn(s.topology)
}

// Start boots the HTTP listener.
func (s *Server) Start() error {
	if s.cfg.Token == "" && s.cfg.Addr != "" {
		log.Println("WARNING: API server running WITHOUT authentication")
	}

	if s.cfg.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/version", s.auth(s.handleVersion))
	mux.HandleFunc("/api/v1/topology", s.auth(s.handleTopology))
	mux.HandleFunc("/api/v1/topology/graph", s.auth(s.handleTopologyGraph))
	mux.HandleFunc("/api/v1/tick", s.auth(s.handleTick))
	mux.HandleFunc("/api/v1/run", s.auth(s.handleRun))
	mux.HandleFunc("/api/v1/converged", s.auth(s.handleConverged))
	mux.HandleFunc("/api/v1/links", s.auth(s.handleLinks))
	mux.HandleFunc("/api/v1/bridges", s.auth(s.handleBridges))
	mux.HandleFunc("/api/v1/faults", s.auth(s.handleFaults))
	mux.HandleFunc("/api/v1/stats", s.auth(s.handleStats))
	mux.HandleFunc("/api/v1/history", s.auth(s.handleHistory))
	mux.HandleFunc("/api/v1/simulation", s.auth(s.handleSimulation))
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("api server stopped: %v", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			s.rateLimiter.CleanupStale()
		}
	}()

	return nil
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addSecurityHeaders(w)

		clientIP := getClientIP(r)
		if !s.rateLimiter.GetLimiter(clientIP).Allow() {
			writeError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "rate limit exceeded")
			return
		}

		if s.cfg.Token == "" {
			next(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) != 1 {
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "invalid or missing authentication token")
			return
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"version": s.cfg.Version})
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	s.topoMu.RLock()
	defer s.topoMu.RUnlock()
	if s.topology == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no_topology", "no topology loaded")
		return
	}
	s.writeJSON(w, s.topology.Snapshot())
}

func (s *Server) handleTopologyGraph(w http.ResponseWriter, r *http.Request) {
	s.topoMu.RLock()
	defer s.topoMu.RUnlock()
	s.writeJSON(w, BuildTopology(s.topology))
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Ticks int `json:"ticks"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Ticks <= 0 {
		req.Ticks = 1
	}

	err := s.withTopology(func(top *stpcore.Topology) error {
		for i := 0; i < req.Ticks; i++ {
			top.Tick()
			s.tickCount++
		}
		return nil
	})
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "no_topology", err.Error())
		return
	}
	s.handleTopology(w, r)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ran int
	err := s.withTopology(func(top *stpcore.Topology) error {
		ran = top.Run()
		s.tickCount += ran
		return nil
	})
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "no_topology", err.Error())
		return
	}
	s.writeJSON(w, map[string]int{"ticks_run": ran})
}

func (s *Server) handleConverged(w http.ResponseWriter, r *http.Request) {
	s.topoMu.RLock()
	defer s.topoMu.RUnlock()
	if s.topology == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no_topology", "no topology loaded")
		return
	}
	s.writeJSON(w, map[string]bool{"converged": s.topology.AllConverged()})
}

type linkRequest struct {
	BridgeA  string `json:"bridge_a"`
	PortA    int    `json:"port_a"`
	BridgeB  string `json:"bridge_b"`
	PortB    int    `json:"port_b"`
	PathCost uint32 `json:"path_cost,omitempty"`
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		err := s.withTopology(func(top *stpcore.Topology) error {
			return top.AddLink(req.BridgeA, req.PortA, req.BridgeB, req.PortB, req.PathCost)
		})
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "add_link_failed", err.Error())
			return
		}
	case http.MethodDelete:
		err := s.withTopology(func(top *stpcore.Topology) error {
			return top.DeleteLink(req.BridgeA, req.PortA)
		})
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "delete_link_failed", err.Error())
			return
		}
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handleTopology(w, r)
}

type bridgeRequest struct {
	MAC      string `json:"mac"`
	Priority uint16 `json:"priority,omitempty"`
}

func (s *Server) handleBridges(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req bridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		err := s.withTopology(func(top *stpcore.Topology) error {
			top.AddBridge(req.MAC, req.Priority)
			return nil
		})
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "add_bridge_failed", err.Error())
			return
		}
	case http.MethodDelete:
		err := s.withTopology(func(top *stpcore.Topology) error {
			return top.DeleteBridge(req.MAC)
		})
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "delete_bridge_failed", err.Error())
			return
		}
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handleTopology(w, r)
}

type faultRequest struct {
	BridgeMAC string           `json:"bridge_mac"`
	Port      int              `json:"port"`
	Type      errors.FaultType `json:"fault_type,omitempty"`
	Value     int              `json:"value,omitempty"`
}

func (s *Server) handleFaults(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Faults == nil {
		writeError(w, r, http.StatusServiceUnavailable, "faults_unavailable", "fault injection is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, s.cfg.Faults.GetAllStates())
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		var req faultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		s.cfg.Faults.SetFault(req.BridgeMAC, req.Port, req.Type, req.Value)
		s.writeJSON(w, s.cfg.Faults.GetAllStates())
	case http.MethodDelete:
		s.cfg.Faults.ClearAll()
		s.writeJSON(w, map[string]string{"status": "cleared"})
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Stats == nil {
		writeError(w, r, http.StatusServiceUnavailable, "stats_unavailable", "statistics are not configured")
		return
	}
	s.writeJSON(w, s.cfg.Stats.GetSnapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Storage == nil {
		s.writeJSON(w, []storage.RunRecord{})
		return
	}
	history, err := s.cfg.Storage.ListRuns(20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, history)
}

func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	if s.daemon == nil {
		http.Error(w, "simulation control is only available in daemon mode", http.StatusNotImplemented)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, s.daemon.GetStatus())
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		var req SimulationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
			return
		}
		if req.ConfigPath == "" && req.ConfigData == "" {
			writeError(w, r, http.StatusBadRequest, "missing_config", "either config_path or config_data must be provided")
			return
		}
		if err := s.daemon.StartSimulation(req); err != nil {
			writeError(w, r, http.StatusInternalServerError, "start_failed", err.Error())
			return
		}
		w.WriteHeader(http.StatusCreated)
		s.writeJSON(w, s.daemon.GetStatus())
	case http.MethodDelete:
		if err := s.daemon.StopSimulation(); err != nil {
			writeError(w, r, http.StatusInternalServerError, "stop_failed", err.Error())
			return
		}
		s.writeJSON(w, map[string]string{"status": "stopped"})
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.topoMu.RLock()
	top := s.topology
	ticks := s.tickCount
	s.topoMu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	bridgeCount, converged := 0, false
	if top != nil {
		bridgeCount = len(top.Bridges())
		converged = top.AllConverged()
	}

	fmt.Fprintf(w, "# HELP stpsim_bridges_total Number of simulated bridges\n# TYPE stpsim_bridges_total gauge\nstpsim_bridges_total %d\n", bridgeCount)
	fmt.Fprintf(w, "# HELP stpsim_ticks_total Ticks advanced since topology load\n# TYPE stpsim_ticks_total counter\nstpsim_ticks_total %d\n", ticks)
	fmt.Fprintf(w, "# HELP stpsim_converged Whether the topology has converged\n# TYPE stpsim_converged gauge\nstpsim_converged %d\n", boolToInt(converged))

	if s.cfg.Stats != nil {
		snap := s.cfg.Stats.GetSnapshot()
		var sent, received int64
		for _, v := range snap.BPDUsSent {
			sent += v
		}
		for _, v := range snap.BPDUsReceived {
			received += v
		}
		fmt.Fprintf(w, "# HELP stpsim_bpdus_sent_total Total BPDUs sent\n# TYPE stpsim_bpdus_sent_total counter\nstpsim_bpdus_sent_total %d\n", sent)
		fmt.Fprintf(w, "# HELP stpsim_bpdus_received_total Total BPDUs received\n# TYPE stpsim_bpdus_received_total counter\nstpsim_bpdus_received_total %d\n", received)
		fmt.Fprintf(w, "# HELP stpsim_topology_changes_total Topology change notifications observed\n# TYPE stpsim_topology_changes_total counter\nstpsim_topology_changes_total %d\n", snap.TopologyChangeCount)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(w, "# HELP stpsim_uptime_seconds Server uptime in seconds\n# TYPE stpsim_uptime_seconds gauge\nstpsim_uptime_seconds %d\n", int64(time.Since(s.startTime).Seconds()))
	fmt.Fprintf(w, "# HELP stpsim_goroutines Number of goroutines\n# TYPE stpsim_goroutines gauge\nstpsim_goroutines %d\n", runtime.NumGoroutine())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
