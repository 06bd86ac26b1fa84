package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"archflow/internal/archpipe"
	"archflow/internal/llmtool"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSReadWait  = 60 * time.Second
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSInbound struct {
	Content   string `json:"content"`
	Objective string `json:"objective,omitempty"`
}

type watchWSOutbound struct {
	Type     string                     `json:"type"`
	Stage    *archpipe.StageEvent       `json:"stage,omitempty"`
	Report   *archpipe.FullSystemReport `json:"report,omitempty"`
	Sentinel *llmtool.FailureSentinel   `json:"sentinel,omitempty"`
	Message  string                     `json:"message,omitempty"`
}

// handleWatchWS runs one full-report pipeline per connection, streaming
// stage events as they happen and the final report (or sentinel) at the
// end.
func (s *apiServer) handleWatchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	send := func(out watchWSOutbound) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			log.Printf("watch ws write failed: %v", err)
			return false
		}
		return true
	}

	_ = conn.SetReadDeadline(time.Now().Add(watchWSReadWait))
	var in watchWSInbound
	if err := conn.ReadJSON(&in); err != nil {
		return
	}
	if in.Content == "" {
		send(watchWSOutbound{Type: "error", Message: "content is required"})
		return
	}

	// The pipeline runs in its own goroutine; all websocket writes stay on
	// this one.
	type runResult struct {
		report   archpipe.FullSystemReport
		sentinel *llmtool.FailureSentinel
	}
	events := make(chan archpipe.StageEvent, 16)
	results := make(chan runResult, 1)
	go func() {
		report, sentinel := s.svc.FullReport(r.Context(), in.Content, in.Objective, func(ev archpipe.StageEvent) {
			events <- ev
		})
		close(events)
		results <- runResult{report: report, sentinel: sentinel}
	}()

	for ev := range events {
		ev := ev
		if !send(watchWSOutbound{Type: "stage", Stage: &ev}) {
			return
		}
	}
	res := <-results
	if res.sentinel != nil {
		send(watchWSOutbound{Type: "failed", Sentinel: res.sentinel})
		return
	}
	send(watchWSOutbound{Type: "report", Report: &res.report})
}
