// Package reachability enumerates the state space induced by a set of
// grounded actions: every world state reachable from the initial state
// through any sequence of action outcomes. It builds the state graph
// only; plan search and policy computation are left to an embedding
// planner.
package reachability

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-ippddl/state"
)

// State is one node of the reachability graph.
type State struct {
	ID           int
	World        state.Set
	Enabled      []string // labels of applicable actions
	Successors   []*Edge
	Predecessors []*Edge
	IsInitial    bool
	IsTerminal   bool // no applicable actions
	IsGoal       bool
	IsDeadlock   bool // terminal but not a goal state
	Depth        int  // distance from the initial state
}

// Edge is one action outcome leading from one state to another.
type Edge struct {
	From        *State
	To          *State
	Action      string // grounded action label
	Outcome     int    // outcome index within the action
	Probability float64
}

// Graph is the reachability graph of a grounded planning problem.
// States are deduplicated by canonical digest.
type Graph struct {
	Initial state.Set
	States  map[uint256.Int]*State
	Edges   []*Edge
	Root    *State

	stateList []*State
}

// NewGraph creates an empty graph rooted at the given initial state.
func NewGraph(initial state.Set) *Graph {
	return &Graph{
		Initial: initial,
		States:  make(map[uint256.Int]*State),
	}
}

// AddState adds a world state to the graph, returning the existing node
// when the state was already seen.
func (g *Graph) AddState(world state.Set) *State {
	digest := world.Digest()
	if existing, ok := g.States[digest]; ok {
		return existing
	}

	node := &State{
		ID:        len(g.States),
		World:     world,
		IsInitial: len(g.States) == 0,
		Depth:     -1,
	}
	g.States[digest] = node
	g.stateList = append(g.stateList, node)

	if node.IsInitial {
		g.Root = node
		node.Depth = 0
	}
	return node
}

// AddEdge records an action outcome between two states.
func (g *Graph) AddEdge(from, to *State, label string, outcome int, probability float64) *Edge {
	edge := &Edge{
		From:        from,
		To:          to,
		Action:      label,
		Outcome:     outcome,
		Probability: probability,
	}
	from.Successors = append(from.Successors, edge)
	to.Predecessors = append(to.Predecessors, edge)
	g.Edges = append(g.Edges, edge)
	return edge
}

// Lookup returns the node for a world state, or nil if unexplored.
func (g *Graph) Lookup(world state.Set) *State {
	return g.States[world.Digest()]
}

// StateList returns the graph's states in discovery order.
func (g *Graph) StateList() []*State {
	return g.stateList
}
