package reachability

import (
	"strings"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/state"
)

// Analyzer explores the state space of a grounded planning problem.
type Analyzer struct {
	actions   []*action.Action
	initial   state.Set
	goal      state.Goal
	hasGoal   bool
	maxStates int
}

// NewAnalyzer creates an analyzer over grounded actions and an initial
// state. Exploration is bounded at 10000 states by default.
func NewAnalyzer(actions []*action.Action, initial state.Set) *Analyzer {
	return &Analyzer{
		actions:   actions,
		initial:   initial,
		maxStates: 10000,
	}
}

// WithGoal marks goal states during exploration.
func (a *Analyzer) WithGoal(goal state.Goal) *Analyzer {
	a.goal = goal
	a.hasGoal = true
	return a
}

// WithMaxStates sets the maximum number of states to explore.
func (a *Analyzer) WithMaxStates(max int) *Analyzer {
	a.maxStates = max
	return a
}

// Result contains the outcome of reachability analysis.
type Result struct {
	Graph       *Graph
	StateCount  int
	EdgeCount   int
	MaxDepth    int
	GoalStates  []*State
	Deadlocks   []*State
	HasDeadlock bool
	Truncated   bool
}

// Analyze explores the state space breadth-first, following every
// outcome of every applicable action, until exhaustion or the state
// bound.
func (a *Analyzer) Analyze() *Result {
	graph := NewGraph(a.initial)
	root := graph.AddState(a.initial)

	queue := []*State{root}
	truncated := false

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, act := range a.actions {
			if !act.IsApplicable(node.World) {
				continue
			}
			node.Enabled = append(node.Enabled, Label(act))

			successors, probs := act.PossibleOutcomes(node.World)
			for i, succ := range successors {
				known := graph.Lookup(succ) != nil
				if !known && len(graph.States) >= a.maxStates {
					truncated = true
					continue
				}
				next := graph.AddState(succ)
				if next.Depth < 0 {
					next.Depth = node.Depth + 1
				}
				graph.AddEdge(node, next, Label(act), i, probs[i])
				if !known {
					queue = append(queue, next)
				}
			}
		}
		node.IsTerminal = len(node.Enabled) == 0
	}

	result := &Result{
		Graph:      graph,
		StateCount: len(graph.States),
		EdgeCount:  len(graph.Edges),
		Truncated:  truncated,
	}
	for _, node := range graph.StateList() {
		if node.Depth > result.MaxDepth {
			result.MaxDepth = node.Depth
		}
		if a.hasGoal && a.goal.Satisfied(node.World) {
			node.IsGoal = true
			result.GoalStates = append(result.GoalStates, node)
		}
		if node.IsTerminal && !node.IsGoal {
			node.IsDeadlock = true
			result.Deadlocks = append(result.Deadlocks, node)
			result.HasDeadlock = true
		}
	}
	return result
}

// Label renders a grounded action as "name arg1 arg2 ...".
func Label(act *action.Action) string {
	if len(act.Arguments) == 0 {
		return act.Name
	}
	return act.Name + " " + strings.Join(act.Arguments, " ")
}
