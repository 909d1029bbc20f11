package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chainguard/internal/domain"
	"chainguard/internal/ethaddr"
	"chainguard/internal/observability"
	"chainguard/internal/storage"
)

const (
	maxBatchSize     = 20
	batchConcurrency = 4

	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// routes builds the HTTP API.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("POST /api/scan/batch", s.handleScanBatch)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history", s.handleHistoryClear)
	mux.HandleFunc("GET /api/addressbook", s.handleAddressbookList)
	mux.HandleFunc("POST /api/addressbook", s.handleAddressbookUpsert)
	mux.HandleFunc("PUT /api/addressbook", s.handleAddressbookUpsert)
	mux.HandleFunc("DELETE /api/addressbook", s.handleAddressbookDelete)
	mux.HandleFunc("DELETE /api/cache", s.handleCacheInvalidate)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/sanctions/stats", s.handleSanctionsStats)
	mux.HandleFunc("GET /api/sanctions/search", s.handleSanctionsSearch)
	mux.Handle("GET /api/stream", s.hub)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}

// ScanResponse is the JSON response for /api/scan.
type ScanResponse struct {
	Address string             `json:"address"`
	Record  *domain.RiskRecord `json:"record"`
	Cached  bool               `json:"cached"`
}

// handleScan classifies one address.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	start := time.Now()
	record, cached, err := s.verdicts.ClassifyDetailed(r.Context(), address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr, _ := ethaddr.Normalize(address)
	s.afterScan(r, addr, record, cached, time.Since(start))

	writeJSON(w, ScanResponse{Address: addr, Record: record, Cached: cached})
}

// BatchRequest is the JSON body for /api/scan/batch.
type BatchRequest struct {
	Addresses []string `json:"addresses"`
}

// BatchResponse maps each input address to its verdict or error.
type BatchResponse struct {
	Results map[string]*domain.RiskRecord `json:"results"`
	Errors  map[string]string             `json:"errors,omitempty"`
	Count   int                           `json:"count"`
}

// handleScanBatch classifies up to maxBatchSize addresses.
func (s *Server) handleScanBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Addresses) == 0 {
		writeError(w, http.StatusBadRequest, "addresses is required")
		return
	}
	if len(req.Addresses) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "too many addresses")
		return
	}

	resp := BatchResponse{
		Results: make(map[string]*domain.RiskRecord),
		Errors:  make(map[string]string),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)
	for _, address := range req.Addresses {
		g.Go(func() error {
			start := time.Now()
			record, cached, err := s.verdicts.ClassifyDetailed(ctx, address)
			if err != nil {
				mu.Lock()
				resp.Errors[address] = err.Error()
				mu.Unlock()
				return nil
			}

			addr, _ := ethaddr.Normalize(address)
			mu.Lock()
			resp.Results[addr] = record
			mu.Unlock()

			s.afterScan(r, addr, record, cached, time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	resp.Count = len(resp.Results)
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	writeJSON(w, resp)
}

// afterScan records the audit trail and pushes the verdict to stream
// subscribers. Cache hits are logged as events but not re-inserted
// into history.
func (s *Server) afterScan(r *http.Request, addr string, record *domain.RiskRecord, cached bool, took time.Duration) {
	s.recordEvent(&domain.ScanEvent{
		Address:    addr,
		Type:       record.Type,
		Status:     record.Status,
		RiskLevel:  record.RiskLevel,
		Confidence: record.Confidence,
		CacheHit:   cached,
		DurationMs: took.Milliseconds(),
		Timestamp:  time.Now().UnixMilli(),
	})

	if cached {
		return
	}

	entry := &domain.ScanHistoryEntry{
		Address:   addr,
		Record:    *record,
		CreatedAt: time.Now().UnixMilli(),
	}
	if pageURL := r.URL.Query().Get("page_url"); pageURL != "" {
		entry.PageURL = &pageURL
	}
	if err := s.stores.history.Insert(r.Context(), entry); err != nil {
		s.logger.Printf("insert scan history for %s: %v", addr, err)
	}

	s.hub.Broadcast(addr, record)
}

// handleHistory returns recent scans, optionally for one address.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}
	ctx := r.Context()

	var (
		entries []*domain.ScanHistoryEntry
		err     error
	)
	if address := r.URL.Query().Get("address"); address != "" {
		addr, nerr := ethaddr.Normalize(address)
		if nerr != nil {
			writeError(w, http.StatusBadRequest, nerr.Error())
			return
		}
		entries, err = s.stores.history.GetByAddress(ctx, addr, limit)
	} else {
		entries, err = s.stores.history.GetRecent(ctx, limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*domain.ScanHistoryEntry{}
	}
	writeJSON(w, entries)
}

// handleHistoryClear wipes the scan history.
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.stores.history.DeleteOlderThan(r.Context(), math.MaxInt64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]int64{"removed": removed})
}

// AddressbookRequest is the JSON body for POST /api/addressbook.
type AddressbookRequest struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
}

func (s *Server) handleAddressbookList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.stores.addressbook.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*domain.AddressbookEntry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleAddressbookUpsert(w http.ResponseWriter, r *http.Request) {
	var req AddressbookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	addr, err := ethaddr.Normalize(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	entry := &domain.AddressbookEntry{
		Address:   addr,
		Tag:       req.Tag,
		DateAdded: time.Now().UnixMilli(),
	}
	if err := s.stores.addressbook.Upsert(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, entry)
}

func (s *Server) handleAddressbookDelete(w http.ResponseWriter, r *http.Request) {
	addr, err := ethaddr.Normalize(r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.stores.addressbook.Delete(r.Context(), addr)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "address not in addressbook")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCacheInvalidate drops one cached verdict, or all of them.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if address := r.URL.Query().Get("address"); address != "" {
		s.verdicts.Invalidate(address)
	} else {
		s.verdicts.InvalidateAll()
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatsResponse aggregates service counters for /api/stats.
type StatsResponse struct {
	Cache        interface{}      `json:"cache"`
	Sanctions    interface{}      `json:"sanctions,omitempty"`
	HistoryCount int64            `json:"historyCount"`
	ScansByDay   map[string]int64 `json:"scansByStatus24h,omitempty"`
	StreamCount  int              `json:"streamClients"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	historyCount, err := s.stores.history.Count(ctx)
	if err != nil {
		s.logger.Printf("history count: %v", err)
	}

	nowMs := time.Now().UnixMilli()
	byStatus, err := s.stores.events.CountByStatus(ctx, nowMs-24*60*60*1000, nowMs)
	if err != nil {
		s.logger.Printf("event counts: %v", err)
	}

	resp := StatsResponse{
		Cache:        s.verdicts.Stats(),
		HistoryCount: historyCount,
		ScansByDay:   byStatus,
		StreamCount:  s.hub.ClientCount(),
	}
	if s.registry != nil {
		resp.Sanctions = s.registry.Stats()
	}
	writeJSON(w, resp)
}

func (s *Server) handleSanctionsStats(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusNotFound, "sanctions registry disabled")
		return
	}
	writeJSON(w, s.registry.Stats())
}

func (s *Server) handleSanctionsSearch(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusNotFound, "sanctions registry disabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	entries := s.registry.Search(query)
	if entries == nil {
		entries = []*domain.SanctionsEntry{}
	}
	writeJSON(w, entries)
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Chain         int    `json:"chainId"`
	Tier          string `json:"tier"`
	CacheSize     int    `json:"cacheSize"`
	StreamClients int    `json:"streamClients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).String(),
		Chain:         s.chainID,
		Tier:          string(s.tier),
		CacheSize:     s.verdicts.Stats().Size,
		StreamClients: s.hub.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
