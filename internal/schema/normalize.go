package schema

import "fmt"

// Normalizers are total: any input, including nil or the wrong type, yields a
// fully-shaped record via the default policies below. Malformed entries in a
// list are dropped, never propagated as errors.
//
// Field resolution order and defaults are the contract here, not an
// implementation detail; tests pin them.

// Default policy: decision rules.
const (
	defaultDecisionConfidence  = 85.0
	conditionRuleConfidence    = 80.0
	bareStringRuleConfidence   = 75.0
	conditionRuleJustification = "Derived from system requirements"
)

// Default policy: modules.
const defaultModuleName = "Unnamed Module"

// Default policy: data flows.
const defaultFlowName = "Data Flow"

// Default policy: failure simulation.
const (
	defaultFailurePoint       = "Unknown Component"
	defaultFailureDescription = "Operational risk identified."
	defaultFailureImpact      = "Operational degradation."
	defaultFailureMitigation  = "Add monitoring and a fallback path for this component."
	defaultBestCase           = "System operates within expected parameters."
	defaultWorstCase          = "Cascading failure across dependent modules."
)

// Default policy: explanations.
const neutralConfidence = 50.0

// Normalize dispatches parsed generator output to the kind-specific
// normalizer. Unknown kinds yield an error; everything else is total.
func Normalize(kind RecordKind, parsed any) (any, error) {
	switch kind {
	case KindIntent:
		return NormalizeIntent(parsed), nil
	case KindArchitecture:
		return NormalizeArchitecture(parsed), nil
	case KindFailureSimulation:
		return NormalizeFailureSimulation(parsed), nil
	case KindOptimization:
		return NormalizeOptimization(parsed), nil
	case KindExplanations:
		return NormalizeExplanations(parsed), nil
	default:
		return nil, fmt.Errorf("schema: unknown record kind %q", kind)
	}
}

// NormalizeIntent shapes an intent-analysis object. All four lists default
// to empty.
func NormalizeIntent(parsed any) IntentAnalysis {
	obj := asMap(parsed)
	return IntentAnalysis{
		Goals:          asStringSlice(obj["goals"]),
		Constraints:    asStringSlice(obj["constraints"]),
		Actors:         asStringSlice(obj["actors"]),
		SuccessMetrics: asStringSlice(obj["success_metrics"]),
	}
}

// NormalizeArchitecture shapes a system-architecture object. All three
// top-level fields are always present afterwards, possibly empty.
func NormalizeArchitecture(parsed any) SystemArchitecture {
	obj := asMap(parsed)
	return SystemArchitecture{
		Modules:       normalizeModules(obj["modules"]),
		DataFlow:      NormalizeDataFlows(obj["data_flow"]),
		DecisionRules: NormalizeDecisionRules(obj["decision_rules"]),
	}
}

// normalizeModules keeps only mapping entries. Resolution order:
//
//	name:           name | "Unnamed Module"
//	responsibility: responsibility | description | ""
//	inputs/outputs: the field when it is a sequence | []
func normalizeModules(v any) []Module {
	out := []Module{}
	for _, item := range asSlice(v) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		mod := Module{
			Name:           firstString(m, "name"),
			Responsibility: firstString(m, "responsibility", "description"),
			Inputs:         asStringSlice(m["inputs"]),
			Outputs:        asStringSlice(m["outputs"]),
		}
		if mod.Name == "" {
			mod.Name = defaultModuleName
		}
		out = append(out, mod)
	}
	return out
}

// NormalizeDataFlows converts the three observed data-flow shapes to one:
//
//	{flow_name, steps}  kept, steps coerced to strings
//	{from, to, data}    one step "from -> to", flow named by data
//	"A -> B"            single-step flow with the default name
//
// Anything else is dropped.
func NormalizeDataFlows(v any) []DataFlow {
	out := []DataFlow{}
	for _, item := range asSlice(v) {
		switch fl := item.(type) {
		case map[string]any:
			if _, hasName := fl["flow_name"]; hasName {
				if _, hasSteps := fl["steps"]; hasSteps {
					out = append(out, DataFlow{
						FlowName: firstString(fl, "flow_name"),
						Steps:    asStringSlice(fl["steps"]),
					})
					continue
				}
			}
			from := firstString(fl, "from")
			to := firstString(fl, "to")
			if from != "" && to != "" {
				name := firstString(fl, "data")
				if name == "" {
					name = defaultFlowName
				}
				out = append(out, DataFlow{
					FlowName: name,
					Steps:    []string{from + " -> " + to},
				})
			}
		case string:
			if fl != "" {
				out = append(out, DataFlow{FlowName: defaultFlowName, Steps: []string{fl}})
			}
		}
	}
	return out
}

// NormalizeDecisionRules converts the three observed decision-rule shapes:
//
//	{decision, justification}  kept; confidence 85.0, risk MEDIUM when absent
//	{condition, action}        "IF cond THEN action", confidence 80.0
//	"free text"                the text is the decision, confidence 75.0
//
// Anything else is dropped.
func NormalizeDecisionRules(v any) []DecisionRule {
	out := []DecisionRule{}
	for _, item := range asSlice(v) {
		switch r := item.(type) {
		case map[string]any:
			_, hasDecision := r["decision"]
			_, hasJustification := r["justification"]
			if hasDecision && hasJustification {
				conf, ok := toFloat(r["confidence"])
				if !ok {
					conf = defaultDecisionConfidence
				}
				out = append(out, DecisionRule{
					Decision:      firstString(r, "decision"),
					Justification: firstString(r, "justification"),
					Confidence:    clamp(conf, 0, 100),
					RiskLevel:     riskLevel(r, "risk_level"),
				})
				continue
			}
			cond := firstString(r, "condition")
			action := firstString(r, "action")
			if cond != "" && action != "" {
				out = append(out, DecisionRule{
					Decision:      "IF " + cond + " THEN " + action,
					Justification: conditionRuleJustification,
					Confidence:    conditionRuleConfidence,
					RiskLevel:     RiskMedium,
				})
			}
		case string:
			if r != "" {
				out = append(out, DecisionRule{
					Decision:   r,
					Confidence: bareStringRuleConfidence,
					RiskLevel:  RiskMedium,
				})
			}
		}
	}
	return out
}

// NormalizeFailureSimulation shapes a failure-simulation object. The policy
// favors a non-empty, actionable record: absent top-level fields get
// conservative defaults and the risk level defaults to HIGH.
//
//	point:       point | component | "Unknown Component"
//	description: description | failure | "Operational risk identified."
func NormalizeFailureSimulation(parsed any) FailureSimulation {
	obj := asMap(parsed)

	points := []FailurePoint{}
	for _, item := range asSlice(obj["failure_points"]) {
		fp, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := FailurePoint{
			Point:           firstString(fp, "point", "component"),
			Description:     firstString(fp, "description", "failure"),
			Impact:          firstString(fp, "impact"),
			Mitigation:      firstString(fp, "mitigation"),
			AffectedModules: asStringSlice(fp["affected_modules"]),
		}
		if p.Point == "" {
			p.Point = defaultFailurePoint
		}
		if p.Description == "" {
			p.Description = defaultFailureDescription
		}
		if p.Impact == "" {
			p.Impact = defaultFailureImpact
		}
		if p.Mitigation == "" {
			p.Mitigation = defaultFailureMitigation
		}
		points = append(points, p)
	}

	sim := FailureSimulation{
		BestCase:      firstString(obj, "best_case"),
		WorstCase:     firstString(obj, "worst_case"),
		FailurePoints: points,
		RiskLevel:     riskLevelDefault(obj, "risk_level", RiskHigh),
	}
	if sim.BestCase == "" {
		sim.BestCase = defaultBestCase
	}
	if sim.WorstCase == "" {
		sim.WorstCase = defaultWorstCase
	}
	return sim
}

// NormalizeOptimization shapes an optimization result. The embedded
// architecture goes through NormalizeArchitecture; tradeoffs default to an
// empty map.
func NormalizeOptimization(parsed any) OptimizationResult {
	obj := asMap(parsed)
	tradeoffs := map[string]string{}
	for k, v := range asMap(obj["tradeoffs"]) {
		if s, ok := v.(string); ok {
			tradeoffs[k] = s
		}
	}
	return OptimizationResult{
		OptimizedArchitecture: NormalizeArchitecture(obj["optimized_architecture"]),
		Tradeoffs:             tradeoffs,
	}
}

// NormalizeExplanations shapes an explanation set.
//
//	justification: justification | rationale | reasoning | ""
//	confidence:    coerced to float, 50.0 when unparsable, clamped to [0,100]
//	risk_level:    risk_level | risk | MEDIUM
func NormalizeExplanations(parsed any) SystemExplanation {
	obj := asMap(parsed)
	items := []ExplanationItem{}
	for _, raw := range asSlice(obj["explanations"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		conf, ok := toFloat(m["confidence"])
		if !ok {
			conf = neutralConfidence
		}
		items = append(items, ExplanationItem{
			Decision:      firstString(m, "decision"),
			Justification: firstString(m, "justification", "rationale", "reasoning"),
			Confidence:    clamp(conf, 0, 100),
			RiskLevel:     riskLevel(m, "risk_level", "risk"),
		})
	}
	return SystemExplanation{Explanations: items}
}

func riskLevel(m map[string]any, keys ...string) string {
	return riskLevelDefault(m, keys[0], RiskMedium, keys[1:]...)
}

func riskLevelDefault(m map[string]any, key string, def string, more ...string) string {
	if s := firstString(m, append([]string{key}, more...)...); s != "" {
		switch s {
		case RiskLow, RiskMedium, RiskHigh:
			return s
		}
	}
	return def
}
