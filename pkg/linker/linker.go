// Package linker derives progression and regression links between catalog
// exercises from a difficulty rating and a pairwise similarity score.
//
// Links are fill-only: a record whose progression or regression list is
// already populated keeps it unless the run is forced. User-owned records
// and records without a stable ID are never linked or linked to.
package linker

import (
	"cmp"
	"slices"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// Linker computes relationship links.
type Linker struct {
	equipment         map[string]float64
	defaultDifficulty float64
	threshold         int
	topK              int
	force             bool
}

// Option configures a Linker.
type Option func(*Linker)

// WithEquipmentDifficulty replaces the equipment difficulty table.
func WithEquipmentDifficulty(table map[string]float64) Option {
	return func(l *Linker) {
		if table != nil {
			l.equipment = table
		}
	}
}

// WithThreshold sets the minimum similarity a pair needs to be linked.
func WithThreshold(threshold int) Option {
	return func(l *Linker) {
		l.threshold = threshold
	}
}

// WithTopK sets how many links each bucket keeps.
func WithTopK(k int) Option {
	return func(l *Linker) {
		if k > 0 {
			l.topK = k
		}
	}
}

// WithForce overwrites existing links instead of filling empty lists only.
func WithForce(force bool) Option {
	return func(l *Linker) {
		l.force = force
	}
}

// New creates a Linker.
func New(opts ...Option) *Linker {
	l := &Linker{
		equipment:         DefaultEquipmentDifficulty(),
		defaultDifficulty: DefaultDifficulty,
		threshold:         DefaultThreshold,
		topK:              DefaultTopK,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Update is the new link set of one exercise.
type Update struct {
	StableID     string   `json:"stable_id" yaml:"stable_id"`
	Progressions []string `json:"progressions" yaml:"progressions"`
	Regressions  []string `json:"regressions" yaml:"regressions"`
}

// Stats describes a link run.
type Stats struct {
	Considered    int `json:"considered" yaml:"considered"`
	Eligible      int `json:"eligible" yaml:"eligible"`
	Updated       int `json:"updated" yaml:"updated"`
	Progressions  int `json:"progressions" yaml:"progressions"`
	Regressions   int `json:"regressions" yaml:"regressions"`
	AlreadyLinked int `json:"already_linked" yaml:"already_linked"`
}

// Result is the outcome of Link.
type Result struct {
	Updates []Update `json:"updates" yaml:"updates"`
	Stats   Stats    `json:"stats" yaml:"stats"`
}

type node struct {
	ex         *catalogs.Exercise
	difficulty float64
}

type candidate struct {
	node  *node
	score int
	gap   float64
}

// Link computes link updates for exercises. Updates come back in input order
// and only for records whose links actually change.
func (l *Linker) Link(exercises []catalogs.Exercise) *Result {
	res := &Result{Updates: []Update{}}
	res.Stats.Considered = len(exercises)

	nodes := make([]*node, 0, len(exercises))
	for i := range exercises {
		ex := &exercises[i]
		if ex.IsUserOwned() || ex.StableID == "" {
			continue
		}
		nodes = append(nodes, &node{ex: ex, difficulty: l.Difficulty(ex)})
	}
	res.Stats.Eligible = len(nodes)

	for _, a := range nodes {
		fillProg := l.force || len(a.ex.Progressions) == 0
		fillReg := l.force || len(a.ex.Regressions) == 0
		if !fillProg && !fillReg {
			res.Stats.AlreadyLinked++
			continue
		}

		prog, reg := l.neighbors(a, nodes)
		update := Update{
			StableID:     a.ex.StableID,
			Progressions: a.ex.Progressions,
			Regressions:  a.ex.Regressions,
		}
		if fillProg {
			update.Progressions = prog
		}
		if fillReg {
			update.Regressions = reg
		}
		if slices.Equal(update.Progressions, a.ex.Progressions) && slices.Equal(update.Regressions, a.ex.Regressions) {
			continue
		}

		update.Progressions = nonNil(update.Progressions)
		update.Regressions = nonNil(update.Regressions)
		res.Updates = append(res.Updates, update)
		res.Stats.Updated++
		res.Stats.Progressions += len(update.Progressions)
		res.Stats.Regressions += len(update.Regressions)
	}
	return res
}

// neighbors returns the top-K harder and easier similar exercises of a.
func (l *Linker) neighbors(a *node, nodes []*node) (progressions, regressions []string) {
	var harder, easier []candidate
	for _, b := range nodes {
		if b == a || b.ex.StableID == a.ex.StableID {
			continue
		}
		score := Similarity(a.ex, b.ex)
		if score < l.threshold {
			continue
		}
		c := candidate{node: b, score: score, gap: b.difficulty - a.difficulty}
		switch {
		case b.difficulty > a.difficulty:
			harder = append(harder, c)
		case b.difficulty < a.difficulty:
			c.gap = -c.gap
			easier = append(easier, c)
		}
	}
	return l.top(harder), l.top(easier)
}

// top orders candidates by score, then smaller difficulty gap, then name and
// stable ID, and keeps the first K.
func (l *Linker) top(cands []candidate) []string {
	slices.SortFunc(cands, func(x, y candidate) int {
		return cmp.Or(
			cmp.Compare(y.score, x.score),
			cmp.Compare(x.gap, y.gap),
			cmp.Compare(x.node.ex.Name, y.node.ex.Name),
			cmp.Compare(x.node.ex.StableID, y.node.ex.StableID),
		)
	})
	out := make([]string, 0, min(len(cands), l.topK))
	for i := 0; i < len(cands) && i < l.topK; i++ {
		out = append(out, cands[i].node.ex.StableID)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
