// Package http exposes the ledger's query, statistics and analytics views as
// a JSON API, plus the two ingestion calls. Visualization and export clients
// consume these endpoints; they never touch ledger internals.
package http

import (
	"net/http"
	"time"

	"bankgraph/internal/graph"
	applog "bankgraph/internal/log"
	"bankgraph/internal/query"
	"bankgraph/internal/services"
	"bankgraph/internal/stats"
)

type Server struct {
	http.Server

	ingest    *services.IngestService
	query     *query.Engine
	stats     *stats.Engine
	analytics *graph.Analytics
}

func NewServer(addr string, ingest *services.IngestService, q *query.Engine, st *stats.Engine, an *graph.Analytics) *Server {
	s := &Server{
		ingest:    ingest,
		query:     q,
		stats:     st,
		analytics: an,
	}

	s.Server = http.Server{
		Addr:           addr,
		Handler:        applog.RequestLogger(s.routes()),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/accounts", s.handleRegisterAccount)
	mux.HandleFunc("GET /api/accounts", s.handleSearchAccounts)
	mux.HandleFunc("GET /api/accounts/{id}/transactions", s.handleAccountTransactions)
	mux.HandleFunc("GET /api/accounts/{id}/netflow", s.handleNetFlow)

	mux.HandleFunc("POST /api/transactions", s.handleRecordTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleQueryTransactions)

	mux.HandleFunc("GET /api/statistics", s.handleGeneralStatistics)
	mux.HandleFunc("GET /api/statistics/period", s.handlePeriodStatistics)
	mux.HandleFunc("GET /api/statistics/categories", s.handleCategoryDistribution)
	mux.HandleFunc("GET /api/statistics/banks", s.handleBankStatistics)
	mux.HandleFunc("GET /api/statistics/top", s.handleTopAccounts)

	mux.HandleFunc("GET /api/graph/connected", s.handleConnected)
	mux.HandleFunc("GET /api/graph/path", s.handleShortestPath)
	mux.HandleFunc("GET /api/graph/components", s.handleComponents)
	mux.HandleFunc("GET /api/graph/degrees", s.handleMostConnected)

	mux.HandleFunc("GET /api/export/accounts.csv", s.handleExportAccounts)
	mux.HandleFunc("GET /api/export/transactions.csv", s.handleExportTransactions)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}
