// Package schema holds the domain records produced by the pipeline and the
// normalizers that shape loosely-typed generator output into them.
package schema

// Record kinds -------------------------------------------------------------------

type RecordKind string

const (
	KindIntent            RecordKind = "intent"
	KindArchitecture      RecordKind = "architecture"
	KindFailureSimulation RecordKind = "failure_simulation"
	KindOptimization      RecordKind = "optimization"
	KindExplanations      RecordKind = "explanations"
)

// Risk levels used across decision rules and failure simulations.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Intent analysis ----------------------------------------------------------------

type IntentAnalysis struct {
	Goals          []string `json:"goals"`
	Constraints    []string `json:"constraints"`
	Actors         []string `json:"actors"`
	SuccessMetrics []string `json:"success_metrics"`
}

// System architecture ------------------------------------------------------------

type Module struct {
	Name           string   `json:"name"`
	Responsibility string   `json:"responsibility"`
	Inputs         []string `json:"inputs"`
	Outputs        []string `json:"outputs"`
}

// DataFlow is a named chain of "A -> B -> C" step strings.
type DataFlow struct {
	FlowName string   `json:"flow_name"`
	Steps    []string `json:"steps"`
}

type DecisionRule struct {
	Decision      string  `json:"decision"`
	Justification string  `json:"justification"`
	Confidence    float64 `json:"confidence"`
	RiskLevel     string  `json:"risk_level"`
}

// SystemArchitecture always carries all three fields after normalization,
// possibly empty, never absent.
type SystemArchitecture struct {
	Modules       []Module       `json:"modules"`
	DataFlow      []DataFlow     `json:"data_flow"`
	DecisionRules []DecisionRule `json:"decision_rules"`
}

// Failure simulation -------------------------------------------------------------

type FailurePoint struct {
	Point           string   `json:"point"`
	Description     string   `json:"description"`
	Impact          string   `json:"impact"`
	Mitigation      string   `json:"mitigation"`
	AffectedModules []string `json:"affected_modules"`
}

type FailureSimulation struct {
	BestCase      string         `json:"best_case"`
	WorstCase     string         `json:"worst_case"`
	FailurePoints []FailurePoint `json:"failure_points"`
	RiskLevel     string         `json:"risk_level"`
}

// Optimization -------------------------------------------------------------------

type OptimizationResult struct {
	OptimizedArchitecture SystemArchitecture `json:"optimized_architecture"`
	Tradeoffs             map[string]string  `json:"tradeoffs"`
}

// Explanations -------------------------------------------------------------------

type ExplanationItem struct {
	Decision      string  `json:"decision"`
	Justification string  `json:"justification"`
	Confidence    float64 `json:"confidence"`
	RiskLevel     string  `json:"risk_level"`
}

type SystemExplanation struct {
	Explanations []ExplanationItem `json:"explanations"`
}
