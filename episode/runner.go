// Package episode samples execution traces from a grounded planning
// model: starting at an initial state, it repeatedly picks an
// applicable action under a policy, applies it, and records the
// resulting transitions as an event log trace.
package episode

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pflow-xyz/go-ippddl/action"
	"github.com/pflow-xyz/go-ippddl/eventlog"
	"github.com/pflow-xyz/go-ippddl/state"
)

// Policy chooses the next action among the currently applicable ones.
// Returning nil ends the episode.
type Policy func(applicable []*action.Action, world state.Set, rng *rand.Rand) *action.Action

// RandomPolicy picks uniformly among applicable actions.
func RandomPolicy(applicable []*action.Action, world state.Set, rng *rand.Rand) *action.Action {
	if len(applicable) == 0 {
		return nil
	}
	return applicable[rng.Intn(len(applicable))]
}

// Step is one recorded transition of an episode.
type Step struct {
	Index       int
	Action      *action.Action
	Probability float64
	Result      state.Set
	At          time.Time
}

// Episode is the result of one sampling run.
type Episode struct {
	ID          string
	Initial     state.Set
	Final       state.Set
	Steps       []Step
	ReachedGoal bool
}

// Runner drives sampling runs over a fixed set of grounded actions.
type Runner struct {
	actions  []*action.Action
	goal     state.Goal
	hasGoal  bool
	policy   Policy
	rng      *rand.Rand
	maxSteps int
	resettle bool
}

// NewRunner creates a runner with a random policy, a step bound of 100,
// and a time-seeded random source.
func NewRunner(actions []*action.Action) *Runner {
	return &Runner{
		actions:  actions,
		policy:   RandomPolicy,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		maxSteps: 100,
	}
}

// WithGoal stops episodes once the goal is satisfied and marks them as
// successful.
func (r *Runner) WithGoal(goal state.Goal) *Runner {
	r.goal = goal
	r.hasGoal = true
	return r
}

// WithPolicy replaces the action selection policy.
func (r *Runner) WithPolicy(policy Policy) *Runner {
	r.policy = policy
	return r
}

// WithRand replaces the random source, for deterministic replay.
func (r *Runner) WithRand(rng *rand.Rand) *Runner {
	r.rng = rng
	return r
}

// WithMaxSteps bounds episode length.
func (r *Runner) WithMaxSteps(max int) *Runner {
	r.maxSteps = max
	return r
}

// WithResettling re-settles every action's imprecise probabilities at
// the start of each episode, sampling a fresh scenario per run.
func (r *Runner) WithResettling() *Runner {
	r.resettle = true
	return r
}

// Run samples one episode from the given initial state.
func (r *Runner) Run(initial state.Set) *Episode {
	ep := &Episode{
		ID:      uuid.New().String(),
		Initial: initial,
		Final:   initial,
	}
	if r.resettle {
		for _, act := range r.actions {
			act.SettleProbabilities(r.rng)
		}
	}

	world := initial
	for step := 0; step < r.maxSteps; step++ {
		if r.hasGoal && r.goal.Satisfied(world) {
			ep.ReachedGoal = true
			break
		}
		var applicable []*action.Action
		for _, act := range r.actions {
			if act.IsApplicable(world) {
				applicable = append(applicable, act)
			}
		}
		chosen := r.policy(applicable, world, r.rng)
		if chosen == nil {
			break
		}

		next := chosen.Apply(world, r.rng)
		prob := transitionProbability(chosen, world, next)
		ep.Steps = append(ep.Steps, Step{
			Index:       step,
			Action:      chosen,
			Probability: prob,
			Result:      next,
			At:          time.Now().UTC(),
		})
		world = next
	}
	if r.hasGoal && r.goal.Satisfied(world) {
		ep.ReachedGoal = true
	}
	ep.Final = world
	return ep
}

// RunMany samples n episodes and returns them with a combined log.
func (r *Runner) RunMany(initial state.Set, n int) ([]*Episode, *eventlog.Log) {
	episodes := make([]*Episode, n)
	log := eventlog.NewLog()
	for i := 0; i < n; i++ {
		episodes[i] = r.Run(initial)
		appendTrace(log, episodes[i])
	}
	return episodes, log
}

// Trace converts an episode into an event log.
func Trace(ep *Episode) *eventlog.Log {
	log := eventlog.NewLog()
	appendTrace(log, ep)
	return log
}

func appendTrace(log *eventlog.Log, ep *Episode) {
	for _, step := range ep.Steps {
		log.AddEvent(eventlog.Event{
			EpisodeID:   ep.ID,
			Step:        step.Index,
			Action:      Label(step.Action),
			Probability: step.Probability,
			StateDigest: step.Result.DigestHex(),
			Timestamp:   step.At,
		})
	}
	if trace, ok := log.Episodes[ep.ID]; ok {
		trace.ReachedGoal = ep.ReachedGoal
	}
}

// transitionProbability looks up the settled probability of the outcome
// that produced next, or 1 when the transition was a no-op.
func transitionProbability(act *action.Action, world, next state.Set) float64 {
	states, probs := act.PossibleOutcomes(world)
	for i, s := range states {
		if s.Equal(next) {
			return probs[i]
		}
	}
	return 1.0
}

// Label renders a grounded action as "name arg1 arg2 ...".
func Label(act *action.Action) string {
	if len(act.Arguments) == 0 {
		return act.Name
	}
	return act.Name + " " + strings.Join(act.Arguments, " ")
}
