package archpipe

import (
	"context"

	"archflow/internal/graph"
	"archflow/internal/llmtool"
	"archflow/internal/schema"
)

// FullSystemReport is the complete export record: one run of the whole
// pipeline over a single intent.
type FullSystemReport struct {
	Intent       schema.IntentAnalysis     `json:"intent"`
	Architecture schema.SystemArchitecture `json:"architecture"`
	Graph        graph.SystemGraph         `json:"graph"`
	Simulation   schema.FailureSimulation  `json:"simulation"`
	Optimization schema.OptimizationResult `json:"optimization"`
	Explanation  schema.SystemExplanation  `json:"explanation"`
}

// StageEvent reports pipeline progress to an observer (e.g. the watch
// websocket).
type StageEvent struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StageStarted = "started"
	StageDone    = "done"
	StageFailed  = "failed"
)

// StageObserver receives stage events during a full-report run. May be nil.
type StageObserver func(StageEvent)

func (o StageObserver) emit(stage, status, errText string) {
	if o != nil {
		o(StageEvent{Stage: stage, Status: status, Error: errText})
	}
}

// FullReport runs the whole pipeline for one intent. Stages run
// sequentially; the first terminal generation failure aborts the run and is
// returned as a sentinel.
func (s *Service) FullReport(ctx context.Context, content, objective string, observe StageObserver) (FullSystemReport, *llmtool.FailureSentinel) {
	var report FullSystemReport

	stage := func(name string, run func() *llmtool.FailureSentinel) *llmtool.FailureSentinel {
		observe.emit(name, StageStarted, "")
		if sentinel := run(); sentinel != nil {
			observe.emit(name, StageFailed, sentinel.Error)
			return sentinel
		}
		observe.emit(name, StageDone, "")
		return nil
	}

	if sentinel := stage("intent", func() *llmtool.FailureSentinel {
		out, sn := s.AnalyzeIntent(ctx, content)
		report.Intent = out
		return sn
	}); sentinel != nil {
		return report, sentinel
	}

	if sentinel := stage("architecture", func() *llmtool.FailureSentinel {
		out, sn := s.GenerateSystem(ctx, report.Intent)
		report.Architecture = out
		return sn
	}); sentinel != nil {
		return report, sentinel
	}

	// Graph synthesis cannot fail; emit events anyway so watchers see every
	// stage.
	observe.emit("graph", StageStarted, "")
	report.Graph = s.SystemGraph(report.Architecture)
	observe.emit("graph", StageDone, "")

	if sentinel := stage("simulation", func() *llmtool.FailureSentinel {
		out, sn := s.SimulateFailure(ctx, report.Architecture)
		report.Simulation = out
		return sn
	}); sentinel != nil {
		return report, sentinel
	}

	if sentinel := stage("optimization", func() *llmtool.FailureSentinel {
		out, sn := s.OptimizeSystem(ctx, report.Architecture, objective)
		report.Optimization = out
		return sn
	}); sentinel != nil {
		return report, sentinel
	}

	if sentinel := stage("explanation", func() *llmtool.FailureSentinel {
		out, sn := s.ExplainSystem(ctx, report.Architecture)
		report.Explanation = out
		return sn
	}); sentinel != nil {
		return report, sentinel
	}

	return report, nil
}
