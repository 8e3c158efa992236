package sim

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
)

// Action is one effect of a reaction. Execute runs to completion; a returned
// error concerns this node only and never stops the engine.
type Action interface {
	Execute() error
}

// Reaction fires its actions at a fixed rate (events per unit of time).
type Reaction struct {
	node    *Node
	rate    float64
	actions []Action

	next  float64
	seq   int
	index int // heap index
}

// NewReaction creates a reaction owned by n and registers it on the node.
func NewReaction(n *Node, rate float64) *Reaction {
	r := &Reaction{node: n, rate: rate, index: -1}
	n.reactions = append(n.reactions, r)
	return r
}

// Node returns the owner.
func (r *Reaction) Node() *Node { return r.node }

// Rate returns the activation rate.
func (r *Reaction) Rate() float64 { return r.rate }

// Actions returns the current actions.
func (r *Reaction) Actions() []Action { return r.actions }

// AddAction appends a.
func (r *Reaction) AddAction(a Action) { r.actions = append(r.actions, a) }

// PrependAction inserts actions ahead of the existing ones, in order.
func (r *Reaction) PrependAction(as ...Action) {
	r.actions = append(append([]Action(nil), as...), r.actions...)
}

// RemoveAction drops a; remaining actions keep their order.
func (r *Reaction) RemoveAction(a Action) {
	out := r.actions[:0]
	for _, c := range r.actions {
		if c != a {
			out = append(out, c)
		}
	}
	r.actions = out
}

type reactionQueue []*Reaction

func (q reactionQueue) Len() int { return len(q) }
func (q reactionQueue) Less(i, j int) bool {
	if q[i].next != q[j].next {
		return q[i].next < q[j].next
	}
	return q[i].seq < q[j].seq
}
func (q reactionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *reactionQueue) Push(x interface{}) {
	r := x.(*Reaction)
	r.index = len(*q)
	*q = append(*q, r)
}
func (q *reactionQueue) Pop() interface{} {
	old := *q
	r := old[len(old)-1]
	old[len(old)-1] = nil
	r.index = -1
	*q = old[:len(old)-1]
	return r
}

// StepObserver is called after every engine step.
type StepObserver func(step int64, time float64)

// Engine is a deterministic discrete-event scheduler. Each reaction fires
// every 1/rate time units; ties fire in scheduling order.
type Engine struct {
	env       Environment
	queue     reactionQueue
	time      float64
	step      int64
	seq       int
	observers []StepObserver

	Log    *SimLog
	logger *slog.Logger
}

// NewEngine creates an engine over env. A nil logger uses slog.Default().
func NewEngine(env Environment, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{env: env, Log: NewSimLog(false), logger: logger}
}

// Environment returns the environment the engine drives.
func (e *Engine) Environment() Environment { return e.env }

// Time returns the current simulated time.
func (e *Engine) Time() float64 { return e.time }

// Steps returns the number of reactions fired so far.
func (e *Engine) Steps() int64 { return e.step }

// Schedule adds r; its first activation is one period from now.
func (e *Engine) Schedule(r *Reaction) error {
	if !(r.rate > 0) || math.IsInf(r.rate, 0) {
		return fmt.Errorf("schedule reaction of %s: rate must be positive and finite, got %g", r.node.Label(), r.rate)
	}
	if r.index >= 0 {
		return fmt.Errorf("schedule reaction of %s: already scheduled", r.node.Label())
	}
	r.next = e.time + 1/r.rate
	r.seq = e.seq
	e.seq++
	heap.Push(&e.queue, r)
	return nil
}

// ScheduleNode schedules every reaction of n.
func (e *Engine) ScheduleNode(n *Node) error {
	for _, r := range n.reactions {
		if err := e.Schedule(r); err != nil {
			return err
		}
	}
	return nil
}

// Observe registers fn to run after each step.
func (e *Engine) Observe(fn StepObserver) {
	e.observers = append(e.observers, fn)
}

// Step fires the earliest reaction. It returns false when nothing is
// scheduled.
func (e *Engine) Step() bool {
	if e.queue.Len() == 0 {
		return false
	}
	r := heap.Pop(&e.queue).(*Reaction)
	e.time = r.next
	e.step++
	e.Log.at(e.step, e.time)

	// Snapshot: actions may remove themselves while running.
	actions := append([]Action(nil), r.actions...)
	for _, a := range actions {
		if err := a.Execute(); err != nil {
			e.logger.Debug("action failed", "node", r.node.Label(), "step", e.step, "error", err)
			e.Log.Add(e.step, e.time, r.node.Label(), "action", "error", err.Error(), 0)
		}
	}

	r.next = e.time + 1/r.rate
	r.seq = e.seq
	e.seq++
	heap.Push(&e.queue, r)

	for _, fn := range e.observers {
		fn(e.step, e.time)
	}
	return true
}

// RunSteps fires up to n reactions.
func (e *Engine) RunSteps(n int) {
	for i := 0; i < n && e.Step(); i++ {
	}
}

// RunUntil fires reactions while the next one is due at or before t.
func (e *Engine) RunUntil(t float64) {
	for e.queue.Len() > 0 && e.queue[0].next <= t {
		e.Step()
	}
	if e.time < t {
		e.time = t
	}
}
