package archpipe

import (
	"archflow/internal/llmtool"
	"archflow/internal/schema"
)

// Prompt construction is glue: the pipeline's correctness never depends on
// the model honoring these instructions. Each prompt ends with a skeleton of
// the expected object so near-miss outputs stay recoverable.

type promptResult struct {
	text string
	err  error
}

func buildPrompt(spec llmtool.PromptSpec) promptResult {
	text, err := llmtool.BuildPrompt(spec)
	return promptResult{text: text, err: err}
}

func intentPrompt(content string) promptResult {
	return buildPrompt(llmtool.PromptSpec{
		Purpose: "Decompose the intent into goals, constraints, actors, and success_metrics.",
		Input:   content,
		OutputSchema: `{
  "goals": [],
  "constraints": [],
  "actors": [],
  "success_metrics": []
}`,
	})
}

func architecturePrompt(intent schema.IntentAnalysis) promptResult {
	return buildPrompt(llmtool.PromptSpec{
		Purpose: "Design a system architecture from this intent analysis.",
		Input:   intent,
		Rules: []string{
			"Each module needs name, responsibility, inputs, outputs",
			"Each data_flow entry needs flow_name and steps like \"A -> B -> C\"",
			"Each decision_rule needs decision, justification, confidence (0-100), risk_level (LOW|MEDIUM|HIGH)",
		},
		OutputSchema: `{
  "modules": [],
  "data_flow": [],
  "decision_rules": []
}`,
	})
}

func failurePrompt(arch schema.SystemArchitecture) promptResult {
	return buildPrompt(llmtool.PromptSpec{
		Purpose: "Analyze failure modes for this system.",
		Input:   arch,
		OutputSchema: `{
  "best_case": "",
  "worst_case": "",
  "failure_points": [],
  "risk_level": "LOW"
}`,
	})
}

func optimizePrompt(arch schema.SystemArchitecture, objective string) promptResult {
	return buildPrompt(llmtool.PromptSpec{
		Purpose: "Optimize the following system for objective: " + objective,
		Input:   arch,
		OutputSchema: `{
  "optimized_architecture": {
    "modules": [],
    "data_flow": [],
    "decision_rules": []
  },
  "tradeoffs": {}
}`,
	})
}

func explainPrompt(arch schema.SystemArchitecture) promptResult {
	return buildPrompt(llmtool.PromptSpec{
		Purpose: "Explain the architectural decisions for this system.",
		Input:   arch,
		OutputSchema: `{
  "explanations": []
}`,
	})
}
