// Package graph derives a renderable node/edge graph from a normalized
// system architecture. Building never fails: malformed step strings are
// skipped and undeclared flow endpoints become external nodes.
package graph

import (
	"fmt"
	"strings"

	"archflow/internal/schema"
)

type NodeType string

const (
	NodeModule   NodeType = "module"
	NodeExternal NodeType = "external"
	NodeDecision NodeType = "decision"
)

type EdgeType string

const (
	EdgeDataFlow EdgeType = "data_flow"
	EdgeDecision EdgeType = "decision"
)

// idPrefix keeps every id a safe identifier for downstream rendering
// syntaxes (Mermaid, DOT) even when the label starts with a digit.
const idPrefix = "N_"

// unknownLabel is the reserved label for empty or absent names.
const unknownLabel = "unknown"

// flowDelimiter separates hops inside a data-flow step string.
const flowDelimiter = "->"

type GraphNode struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     NodeType       `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Label    string   `json:"label"`
	EdgeType EdgeType `json:"edge_type"`
}

// SystemGraph keeps nodes in first-insertion order and edges in generation
// order so renders and test comparisons are deterministic. Node ids are
// unique; parallel edges between the same pair are permitted.
type SystemGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// SanitizeID converts a label into a safe identifier: every character
// outside [A-Za-z0-9_] becomes '_', prefixed with "N_". Empty labels map to
// the reserved unknown id.
func SanitizeID(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = unknownLabel
	}
	var b strings.Builder
	b.WriteString(idPrefix)
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Build derives the visualization graph from a normalized architecture.
// Pure function of its input; two runs yield identical node id sets.
func Build(arch schema.SystemArchitecture) SystemGraph {
	b := newBuilder()

	// Module declarations are authoritative: processed first so flow
	// endpoints with the same label resolve to the module node.
	for _, mod := range arch.Modules {
		b.putNode(mod.Name, NodeModule, map[string]any{
			"responsibility": mod.Responsibility,
			"inputs":         mod.Inputs,
			"outputs":        mod.Outputs,
		})
	}

	for _, flow := range arch.DataFlow {
		for _, step := range flow.Steps {
			if !strings.Contains(step, flowDelimiter) {
				continue
			}
			parts := strings.Split(step, flowDelimiter)
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			for i := 0; i+1 < len(parts); i++ {
				src := b.ensureNode(parts[i], NodeExternal)
				dst := b.ensureNode(parts[i+1], NodeExternal)
				b.edges = append(b.edges, GraphEdge{
					Source:   src,
					Target:   dst,
					Label:    flow.FlowName,
					EdgeType: EdgeDataFlow,
				})
			}
		}
	}

	// One anchor edge per decision, to the first module only. Fanning out
	// to every module would grow edges as decisions x modules.
	for i, rule := range arch.DecisionRules {
		id := b.putNode(fmt.Sprintf("Decision %d", i+1), NodeDecision, map[string]any{
			"decision":      rule.Decision,
			"justification": rule.Justification,
			"confidence":    rule.Confidence,
			"risk_level":    rule.RiskLevel,
		})
		if len(arch.Modules) > 0 {
			b.edges = append(b.edges, GraphEdge{
				Source:   id,
				Target:   b.ensureNode(arch.Modules[0].Name, NodeExternal),
				Label:    "influences",
				EdgeType: EdgeDecision,
			})
		}
	}

	return SystemGraph{Nodes: b.nodeList(), Edges: b.edges}
}

// builder tracks nodes keyed by sanitized id. Two distinct labels that
// sanitize to the same id do not merge: the later one gets the first free
// numeric suffix (_2, _3, ...). The same label always maps to one id.
type builder struct {
	order     []string
	nodes     map[string]*GraphNode
	idByLabel map[string]string
	edges     []GraphEdge
}

func newBuilder() *builder {
	return &builder{
		nodes:     map[string]*GraphNode{},
		idByLabel: map[string]string{},
		edges:     []GraphEdge{},
	}
}

// assignID resolves a label to its node id, disambiguating collisions
// between distinct labels.
func (b *builder) assignID(label string) string {
	label = strings.TrimSpace(label)
	if id, ok := b.idByLabel[label]; ok {
		return id
	}
	id := SanitizeID(label)
	if _, taken := b.nodes[id]; taken {
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s_%d", id, n)
			if _, taken := b.nodes[candidate]; !taken {
				id = candidate
				break
			}
		}
	}
	b.idByLabel[label] = id
	return id
}

// putNode inserts or overwrites the node for label. Last write wins for
// type and metadata.
func (b *builder) putNode(label string, t NodeType, meta map[string]any) string {
	id := b.assignID(label)
	if n, ok := b.nodes[id]; ok {
		n.Type = t
		n.Metadata = meta
		return id
	}
	b.nodes[id] = &GraphNode{ID: id, Label: displayLabel(label), Type: t, Metadata: meta}
	b.order = append(b.order, id)
	return id
}

// ensureNode inserts the node for label only if absent, preserving an
// earlier (authoritative) declaration.
func (b *builder) ensureNode(label string, t NodeType) string {
	id := b.assignID(label)
	if _, ok := b.nodes[id]; !ok {
		b.nodes[id] = &GraphNode{ID: id, Label: displayLabel(label), Type: t}
		b.order = append(b.order, id)
	}
	return id
}

func (b *builder) nodeList() []GraphNode {
	out := make([]GraphNode, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.nodes[id])
	}
	return out
}

func displayLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return unknownLabel
	}
	return label
}
