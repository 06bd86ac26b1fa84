package main

import (
	"encoding/json"
	"log"
	"net/http"

	"archflow/internal/llmtool"
	"archflow/internal/schema"
)

const appVersion = "0.1"

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "backend running",
		"app":     "archflow",
		"version": appVersion,
	})
}

func (s *apiServer) handleAnalyzeIntent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	out, sentinel := s.svc.AnalyzeIntent(r.Context(), in.Content)
	respond(w, out, sentinel)
}

func (s *apiServer) handleGenerateSystem(w http.ResponseWriter, r *http.Request) {
	var intent schema.IntentAnalysis
	if !readJSON(w, r, &intent) {
		return
	}
	out, sentinel := s.svc.GenerateSystem(r.Context(), intent)
	respond(w, out, sentinel)
}

func (s *apiServer) handleSimulateFailure(w http.ResponseWriter, r *http.Request) {
	var arch schema.SystemArchitecture
	if !readJSON(w, r, &arch) {
		return
	}
	out, sentinel := s.svc.SimulateFailure(r.Context(), arch)
	respond(w, out, sentinel)
}

func (s *apiServer) handleOptimizeSystem(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Objective          string                    `json:"objective"`
		SystemArchitecture schema.SystemArchitecture `json:"system_architecture"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	out, sentinel := s.svc.OptimizeSystem(r.Context(), in.SystemArchitecture, in.Objective)
	respond(w, out, sentinel)
}

func (s *apiServer) handleExplainSystem(w http.ResponseWriter, r *http.Request) {
	var arch schema.SystemArchitecture
	if !readJSON(w, r, &arch) {
		return
	}
	out, sentinel := s.svc.ExplainSystem(r.Context(), arch)
	respond(w, out, sentinel)
}

func (s *apiServer) handleSystemGraph(w http.ResponseWriter, r *http.Request) {
	var arch schema.SystemArchitecture
	if !readJSON(w, r, &arch) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.SystemGraph(arch))
}

func (s *apiServer) handleFullReport(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content   string `json:"content"`
		Objective string `json:"objective"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	out, sentinel := s.svc.FullReport(r.Context(), in.Content, in.Objective, nil)
	if sentinel == nil && s.store != nil {
		if key, err := s.store.Put(r.Context(), out); err != nil {
			log.Printf("report export failed: %v", err)
		} else {
			log.Printf("report exported: %s", key)
		}
	}
	respond(w, out, sentinel)
}

// respond writes the record, or the failure sentinel with 502 when the
// generation budget was exhausted. The sentinel is the body, not an error
// string, so clients branch on its shape.
func respond(w http.ResponseWriter, record any, sentinel *llmtool.FailureSentinel) {
	if sentinel != nil {
		writeJSON(w, http.StatusBadGateway, sentinel)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
