// Package thinking implements the Sequential Thinking Engine: an adaptive,
// branch-aware reasoning loop producing an auditable thought DAG. Each
// branch advances through analysis, hypothesis, validation, and synthesis
// stages, occasionally forking on a competing claim or looping back for a
// revision, with an explicit confidence score driving the transitions.
package thinking

import (
	"time"
)

// Stage is a position in the per-branch state machine.
type Stage string

const (
	StageAnalysis   Stage = "ANALYSIS"
	StageHypothesis Stage = "HYPOTHESIS"
	StageValidation Stage = "VALIDATION"
	StageRevision   Stage = "REVISION"
	StageSynthesis  Stage = "SYNTHESIS"
)

// Complexity bands a query is classified into.
type Complexity string

const (
	ComplexitySimple Complexity = "simple"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
	ComplexityExpert Complexity = "expert"
)

// Budget is the thought/branch allowance for one Complexity band.
type Budget struct {
	MinThoughts int
	MaxThoughts int
	MaxBranches int
}

var budgets = map[Complexity]Budget{
	ComplexitySimple: {MinThoughts: 3, MaxThoughts: 5, MaxBranches: 1},
	ComplexityMedium: {MinThoughts: 5, MaxThoughts: 8, MaxBranches: 2},
	ComplexityHigh:   {MinThoughts: 8, MaxThoughts: 14, MaxBranches: 3},
	ComplexityExpert: {MinThoughts: 12, MaxThoughts: 20, MaxBranches: 4},
}

// BudgetFor returns the thought/branch budget for a complexity band.
func BudgetFor(c Complexity) Budget {
	return budgets[c]
}

// Thought is one node in the reasoning DAG.
type Thought struct {
	ID          int
	BranchID    int
	ParentID    int // -1 for the root thought of a branch
	Stage       Stage
	Text        string
	Confidence  float64
	CitedIDs    []string // ContextBundle source ids this thought drew on
	Degraded    bool     // true when parsing the LLM reply failed and a heuristic was substituted
	Interrupted bool
	CreatedAt   time.Time
}

// Branch tracks one line of reasoning through the state machine.
type Branch struct {
	ID            int
	ParentThought int // thought id this branch forked from, -1 for the root branch
	State         Stage
	Revisions     int
	ThoughtIDs    []int
	Abandoned     bool
	lowConfRun    int
}

// Session is the full record of one reasoning run, returned to the
// Enhanced RAG Coordinator for synthesis and tracing.
type Session struct {
	Query       string
	Complexity  Complexity
	Budget      Budget
	Thoughts    []Thought
	Branches    []Branch
	Answer      string
	CitedIDs    []string
	Interrupted bool
}

// Config exposes the tunable knobs for the reasoning loop.
type Config struct {
	MaxRevisions      int     // R
	SplitThreshold    float64
	ConfidenceFloor   float64
	AbandonAfterLowN  int // consecutive low-confidence thoughts before abandoning a branch
	PriorWindow       int // bounded window of prior thoughts fed into each prompt
	Temperature       float64
}

// DefaultConfig returns reasonable defaults for the reasoning loop.
func DefaultConfig() Config {
	return Config{
		MaxRevisions:     2,
		SplitThreshold:   0.6,
		ConfidenceFloor:  0.35,
		AbandonAfterLowN: 2,
		PriorWindow:      4,
		Temperature:      0.4,
	}
}
