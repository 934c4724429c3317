// ABOUTME: Call flow graph generation
// ABOUTME: Renders agent-to-outcome flow from the cached call history
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/fleetcall/dispatchctl/db"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// GenerateCallFlowGraph builds a graph of agent configs flowing into the
// outcomes their calls produced, edge labels carrying counts.
func (g *GraphGenerator) GenerateCallFlowGraph() (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Call Outcomes by Agent")
	graph.SetRankDir(cgraph.LRRank)

	agents, err := db.ListAgents(g.db, "", 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch agents: %w", err)
	}

	calls, err := db.ListCalls(g.db, "", 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch calls: %w", err)
	}

	agentNames := make(map[int]string)
	for _, agent := range agents {
		agentNames[agent.ID] = agent.Name
	}

	// Count calls per (agent, outcome) pair
	type flow struct {
		agentID int
		outcome string
	}
	flows := make(map[flow]int)
	for _, call := range calls {
		if call.CallOutcome == "" {
			continue
		}
		flows[flow{call.AgentConfigID, call.CallOutcome}]++
	}

	agentNodes := make(map[int]*cgraph.Node)
	outcomeNodes := make(map[string]*cgraph.Node)
	for f, count := range flows {
		if _, exists := agentNodes[f.agentID]; !exists {
			name := agentNames[f.agentID]
			if name == "" {
				name = fmt.Sprintf("agent %d", f.agentID)
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("agent_%d", f.agentID))
			if err != nil {
				return "", fmt.Errorf("failed to create agent node: %w", err)
			}
			node.SetLabel(name)
			node.SetShape(cgraph.BoxShape)
			agentNodes[f.agentID] = node
		}

		if _, exists := outcomeNodes[f.outcome]; !exists {
			node, err := graph.CreateNodeByName(f.outcome)
			if err != nil {
				return "", fmt.Errorf("failed to create outcome node: %w", err)
			}
			outcomeNodes[f.outcome] = node
		}

		edge, err := graph.CreateEdgeByName("", agentNodes[f.agentID], outcomeNodes[f.outcome])
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(fmt.Sprintf("%d", count))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
