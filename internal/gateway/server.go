// Package gateway exposes the swap core over HTTP for presentation layers:
// read accessors for balances and quotes, command endpoints for selection
// and execution, and an SSE stream of settled swaps.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"swapdesk/internal/domain"
	"swapdesk/internal/ledger"
	"swapdesk/internal/services/calculator"
	"swapdesk/internal/services/swapper"
)

const settlementPollInterval = 3 * time.Second

type settlementReader interface {
	EventsAfter(index uint64) ([]domain.SettlementRecord, error)
}

// Server exposes HTTP endpoints over the ledger and executor.
type Server struct {
	Addr     string
	Ledger   *ledger.Ledger
	Executor *swapper.Executor
	Journal  settlementReader
	Logger   *zap.Logger
}

// NewServer creates a new gateway server.
func NewServer(addr string, l *ledger.Ledger, exec *swapper.Executor, journal settlementReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Ledger: l, Executor: exec, Journal: journal, Logger: logger}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/balances", s.handleBalances)
	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/select", s.handleSelect)
	mux.HandleFunc("/api/switch", s.handleSwitch)
	mux.HandleFunc("/api/swap", s.handleSwap)
	mux.HandleFunc("/api/settlements/stream", s.handleSettlementStream)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server error", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type selectionView struct {
	From *domain.Token `json:"from,omitempty"`
	To   *domain.Token `json:"to,omitempty"`
}

type balancesResponse struct {
	Balances  []domain.Token `json:"balances"`
	Selection selectionView  `json:"selection"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sel := s.Ledger.Selection()
	writeJSON(w, http.StatusOK, balancesResponse{
		Balances:  s.Ledger.Balances(),
		Selection: selectionView{From: sel.From, To: sel.To},
	})
}

type quoteResponse struct {
	ToAmount string              `json:"to_amount"`
	Summary  *domain.SwapSummary `json:"summary,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	amount, err := calculator.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, err)
		return
	}

	projection := s.Executor.Quote(amount)
	writeJSON(w, http.StatusOK, quoteResponse{
		ToAmount: calculator.FormatAmount(projection.ToAmount),
		Summary:  projection.Summary,
	})
}

type selectRequest struct {
	Side   string `json:"side"`
	Symbol string `json:"symbol"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	side, ok := domain.ParseSide(req.Side)
	if !ok {
		http.Error(w, "side must be \"from\" or \"to\"", http.StatusBadRequest)
		return
	}

	if err := s.Executor.PickToken(side, req.Symbol); err != nil {
		writeError(w, err)
		return
	}

	sel := s.Ledger.Selection()
	writeJSON(w, http.StatusOK, selectionView{From: sel.From, To: sel.To})
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.Executor.SwitchTokens()

	sel := s.Ledger.Selection()
	writeJSON(w, http.StatusOK, selectionView{From: sel.From, To: sel.To})
}

type swapRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	amount, err := calculator.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := s.Executor.ExecuteSwap(r.Context(), amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleSettlementStream(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "settlement journal not available", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// comment heartbeat every 20s so proxies keep the connection
	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(settlementPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendEvents := func() error {
		records, err := s.Journal.EventsAfter(lastIndex)
		if err != nil {
			return err
		}

		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: settlement\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendEvents(); err != nil {
		s.Logger.Warn("settlement stream send failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendEvents(); err != nil {
				s.Logger.Warn("settlement stream send failed", zap.Error(err))
				return
			}
		}
	}
}

func parseLastEventID(header, query string) uint64 {
	raw := header
	if raw == "" {
		raw = query
	}
	if raw == "" {
		return 0
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case domain.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBusy):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
