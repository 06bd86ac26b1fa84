package main

import (
	"net/http"

	"archflow/internal/archpipe"
	"archflow/internal/report"
)

// apiServer wires the pipeline service and HTTP helpers.
type apiServer struct {
	svc   *archpipe.Service
	store *report.S3Store
}

func newAPIServer(svc *archpipe.Service, store *report.S3Store) *apiServer {
	return &apiServer{svc: svc, store: store}
}

func buildMux(s *apiServer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("POST /api/analyze-intent", s.handleAnalyzeIntent)
	mux.HandleFunc("POST /api/generate-system", s.handleGenerateSystem)
	mux.HandleFunc("POST /api/simulate-failure", s.handleSimulateFailure)
	mux.HandleFunc("POST /api/optimize-system", s.handleOptimizeSystem)
	mux.HandleFunc("POST /api/explain-system", s.handleExplainSystem)
	mux.HandleFunc("POST /api/system-graph", s.handleSystemGraph)
	mux.HandleFunc("POST /api/full-report", s.handleFullReport)

	// Websocket endpoint streaming stage events of a full-report run.
	mux.HandleFunc("/api/watch", s.handleWatchWS)

	return mux
}
