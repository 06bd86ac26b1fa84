package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archflow/internal/schema"
)

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "N_Ingest", SanitizeID("Ingest"))
	assert.Equal(t, "N_Data_Store_v2", SanitizeID("Data Store/v2"))
	assert.Equal(t, "N_unknown", SanitizeID(""))
	assert.Equal(t, "N_unknown", SanitizeID("   "))
	assert.Equal(t, "N_3rd_Party", SanitizeID("3rd Party"))
}

func TestBuild_ModuleAndExternalNodes(t *testing.T) {
	arch := schema.SystemArchitecture{
		Modules: []schema.Module{{Name: "Ingest"}},
		DataFlow: []schema.DataFlow{
			{FlowName: "f1", Steps: []string{"Ingest -> Store"}},
		},
	}
	g := Build(arch)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "N_Ingest", g.Nodes[0].ID)
	assert.Equal(t, NodeModule, g.Nodes[0].Type)
	assert.Equal(t, "N_Store", g.Nodes[1].ID)
	assert.Equal(t, NodeExternal, g.Nodes[1].Type)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, GraphEdge{Source: "N_Ingest", Target: "N_Store", Label: "f1", EdgeType: EdgeDataFlow}, g.Edges[0])
}

func TestBuild_MultiHopSteps(t *testing.T) {
	arch := schema.SystemArchitecture{
		DataFlow: []schema.DataFlow{
			{FlowName: "pipeline", Steps: []string{"A -> B -> C", "no delimiter here"}},
		},
	}
	g := Build(arch)

	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "N_A", g.Edges[0].Source)
	assert.Equal(t, "N_B", g.Edges[0].Target)
	assert.Equal(t, "N_B", g.Edges[1].Source)
	assert.Equal(t, "N_C", g.Edges[1].Target)
}

func TestBuild_ModuleDeclarationAuthoritative(t *testing.T) {
	arch := schema.SystemArchitecture{
		Modules: []schema.Module{{Name: "Store", Responsibility: "persists records"}},
		DataFlow: []schema.DataFlow{
			{FlowName: "f", Steps: []string{"Ingest -> Store", "Store -> Archive"}},
		},
	}
	g := Build(arch)

	var store *GraphNode
	for i := range g.Nodes {
		if g.Nodes[i].ID == "N_Store" {
			store = &g.Nodes[i]
		}
	}
	require.NotNil(t, store)
	assert.Equal(t, NodeModule, store.Type)
	assert.Equal(t, "persists records", store.Metadata["responsibility"])

	// Repeated mentions of the same external label resolve to one node.
	count := 0
	for _, n := range g.Nodes {
		if n.ID == "N_Ingest" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuild_DecisionAnchorEdge(t *testing.T) {
	arch := schema.SystemArchitecture{
		Modules: []schema.Module{{Name: "First"}, {Name: "Second"}},
		DecisionRules: []schema.DecisionRule{
			{Decision: "d1", Justification: "j1", Confidence: 90, RiskLevel: "LOW"},
			{Decision: "d2", Justification: "j2", Confidence: 70, RiskLevel: "HIGH"},
		},
	}
	g := Build(arch)

	decisionEdges := []GraphEdge{}
	for _, e := range g.Edges {
		if e.EdgeType == EdgeDecision {
			decisionEdges = append(decisionEdges, e)
		}
	}
	// One anchor edge per decision, to the first module only.
	require.Len(t, decisionEdges, 2)
	for _, e := range decisionEdges {
		assert.Equal(t, "N_First", e.Target)
		assert.Equal(t, "influences", e.Label)
	}
	assert.Equal(t, "N_Decision_1", decisionEdges[0].Source)
	assert.Equal(t, "N_Decision_2", decisionEdges[1].Source)

	var d1 *GraphNode
	for i := range g.Nodes {
		if g.Nodes[i].ID == "N_Decision_1" {
			d1 = &g.Nodes[i]
		}
	}
	require.NotNil(t, d1)
	assert.Equal(t, NodeDecision, d1.Type)
	assert.Equal(t, "d1", d1.Metadata["decision"])
	assert.Equal(t, 90.0, d1.Metadata["confidence"])
}

func TestBuild_DecisionWithoutModules(t *testing.T) {
	arch := schema.SystemArchitecture{
		DecisionRules: []schema.DecisionRule{{Decision: "d", Justification: "j"}},
	}
	g := Build(arch)
	require.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestBuild_IdempotentNodeIDs(t *testing.T) {
	arch := schema.SystemArchitecture{
		Modules: []schema.Module{{Name: "A/B"}, {Name: "A-B"}},
		DataFlow: []schema.DataFlow{
			{FlowName: "f", Steps: []string{"A/B -> A-B"}},
		},
	}
	ids := func(g SystemGraph) []string {
		out := make([]string, len(g.Nodes))
		for i, n := range g.Nodes {
			out[i] = n.ID
		}
		return out
	}
	first := Build(arch)
	second := Build(arch)
	assert.Equal(t, ids(first), ids(second))
}

// Distinct labels that sanitize identically must stay distinct nodes: the
// later label gets a numeric suffix and both labels are preserved.
func TestBuild_CollidingLabels(t *testing.T) {
	arch := schema.SystemArchitecture{
		Modules: []schema.Module{{Name: "A-B"}, {Name: "A/B"}},
	}
	g := Build(arch)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "N_A_B", g.Nodes[0].ID)
	assert.Equal(t, "A-B", g.Nodes[0].Label)
	assert.Equal(t, "N_A_B_2", g.Nodes[1].ID)
	assert.Equal(t, "A/B", g.Nodes[1].Label)
}

func TestBuild_EmptyArchitecture(t *testing.T) {
	g := Build(schema.SystemArchitecture{})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}
