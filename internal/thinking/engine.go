package thinking

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/context7"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// completer is the minimal surface Engine needs from the LLM Gateway.
type completer interface {
	Complete(ctx context.Context, messages []llm.Message, maxTokens int, temperature float64) (*llm.Result, error)
}

// Engine runs the sequential-thinking loop over a completer, producing a
// thought DAG scoped to one query.
type Engine struct {
	gw     completer
	cfg    Config
	logger *zap.Logger
}

// New builds an Engine.
func New(gw completer, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{gw: gw, cfg: cfg, logger: logger}
}

// Run executes the full reasoning loop for query against bundle, returning
// the completed session (answer, thought DAG, interruption flag). Only LLM
// transport failures propagate as errors; malformed replies are recovered
// from internally.
func (e *Engine) Run(ctx context.Context, query string, bundle context7.Bundle) (*Session, error) {
	complexity := ClassifyComplexity(query)
	budget := BudgetFor(complexity)

	session := &Session{Query: query, Complexity: complexity, Budget: budget}
	session.Branches = append(session.Branches, Branch{ID: 0, ParentThought: -1, State: StageAnalysis})

	nextThoughtID := 0
	nextBranchID := 1
	queue := []int{0}
	totalThoughts := 0

	for len(queue) > 0 && totalThoughts < budget.MaxThoughts {
		if ctx.Err() != nil {
			session.Interrupted = true
			break
		}

		bIdx := queue[0]
		queue = queue[1:]
		branch := session.Branches[bIdx]
		if branch.Abandoned {
			continue
		}

		prior := thoughtsForBranch(session, branch)
		reply, degraded, err := e.generate(ctx, query, branch.State, prior, bundle)
		if err != nil {
			return nil, voiderr.Wrap(voiderr.LLMUnavailable, err)
		}

		thought := Thought{
			ID:         nextThoughtID,
			BranchID:   branch.ID,
			ParentID:   lastThoughtID(branch),
			Stage:      branch.State,
			Text:       reply.Text,
			Confidence: reply.Confidence,
			CitedIDs:   reply.CitedIDs,
			Degraded:   degraded,
		}
		nextThoughtID++
		totalThoughts++
		session.Thoughts = append(session.Thoughts, thought)
		branch.ThoughtIDs = append(branch.ThoughtIDs, thought.ID)

		if thought.Confidence < e.cfg.ConfidenceFloor {
			branch.lowConfRun++
		} else {
			branch.lowConfRun = 0
		}
		if branch.lowConfRun >= e.cfg.AbandonAfterLowN {
			branch.Abandoned = true
			session.Branches[bIdx] = branch
			continue
		}

		switch branch.State {
		case StageAnalysis:
			branch.State = StageHypothesis
			queue = append(queue, bIdx)

		case StageHypothesis:
			if reply.Confidence >= e.cfg.SplitThreshold && len(reply.Claims) >= 2 {
				for i := 1; i < len(reply.Claims) && len(session.Branches) < budget.MaxBranches; i++ {
					session.Branches = append(session.Branches, Branch{
						ID:            nextBranchID,
						ParentThought: thought.ID,
						State:         StageValidation,
					})
					queue = append(queue, len(session.Branches)-1)
					nextBranchID++
				}
			}
			branch.State = StageValidation
			queue = append(queue, bIdx)

		case StageValidation:
			if thought.Confidence < e.cfg.ConfidenceFloor && branch.Revisions < e.cfg.MaxRevisions {
				branch.State = StageRevision
			} else {
				branch.State = StageSynthesis
			}
			queue = append(queue, bIdx)

		case StageRevision:
			branch.Revisions++
			if branch.Revisions > e.cfg.MaxRevisions {
				branch.State = StageSynthesis
			} else {
				branch.State = StageAnalysis
			}
			queue = append(queue, bIdx)

		case StageSynthesis:
			// terminal; do not requeue
		}

		session.Branches[bIdx] = branch
	}

	if ctx.Err() != nil {
		session.Interrupted = true
	}

	answer, cited, err := e.synthesize(ctx, session)
	if err != nil {
		return nil, err
	}
	session.Answer = answer
	session.CitedIDs = cited
	return session, nil
}

// generate produces one structured reply for stage, re-asking once on a
// malformed reply and falling back to a heuristic degraded thought if the
// second attempt also fails to parse.
func (e *Engine) generate(ctx context.Context, query string, stage Stage, prior []Thought, bundle context7.Bundle) (*structuredReply, bool, error) {
	msgs := buildPrompt(query, stage, prior, bundle, e.cfg.PriorWindow)

	res, err := e.gw.Complete(ctx, msgs, 700, e.cfg.Temperature)
	if err != nil {
		return nil, false, err
	}
	if reply, perr := parseReply(res.Text); perr == nil {
		return reply, false, nil
	}

	retryMsgs := append(append([]llm.Message{}, msgs...), llm.Message{
		Role:    "user",
		Content: "Your previous reply was not valid JSON matching the required schema. Reply again with only the JSON object.",
	})
	res2, err2 := e.gw.Complete(ctx, retryMsgs, 700, e.cfg.Temperature)
	if err2 == nil {
		if reply, perr := parseReply(res2.Text); perr == nil {
			return reply, false, nil
		}
	}

	fallbackText := res.Text
	if err2 == nil && res2 != nil && res2.Text != "" {
		fallbackText = res2.Text
	}
	if e.logger != nil {
		e.logger.Warn("thought reply failed to parse twice, degrading to heuristic", zap.String("stage", string(stage)))
	}
	return &structuredReply{
		Stage:      string(stage),
		Text:       strings.TrimSpace(fallbackText),
		Confidence: e.cfg.ConfidenceFloor + 0.05,
	}, true, nil
}

// synthesize merges the highest-confidence terminal thought per branch and
// issues one final LLM call that must cite the bundle entries referenced by
// any contributing thought. An LLM failure at this stage
// degrades to the concatenated branch conclusions rather than failing the
// whole session, since the thinking loop already produced a usable answer.
func (e *Engine) synthesize(ctx context.Context, session *Session) (string, []string, error) {
	var finalists []Thought
	for _, b := range session.Branches {
		if b.Abandoned {
			continue
		}
		if t := bestSynthesisThought(session, b); t != nil {
			finalists = append(finalists, *t)
		}
	}
	if len(finalists) == 0 {
		session.Interrupted = true
		return "", nil, nil
	}

	cited := map[string]bool{}
	var sb strings.Builder
	for _, t := range finalists {
		sb.WriteString(t.Text)
		sb.WriteString("\n")
		for _, id := range t.CitedIDs {
			cited[id] = true
		}
	}
	citedIDs := sortedKeys(cited)

	if ctx.Err() != nil {
		session.Interrupted = true
		return strings.TrimSpace(sb.String()), citedIDs, nil
	}

	msgs := []llm.Message{
		{Role: "system", Content: "Combine the following branch conclusions into one final answer. Cite every context source id referenced by any conclusion."},
		{Role: "user", Content: sb.String()},
	}
	res, err := e.gw.Complete(ctx, msgs, 800, e.cfg.Temperature)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("final synthesis call failed, degrading to branch conclusions", zap.Error(err))
		}
		return strings.TrimSpace(sb.String()), citedIDs, nil
	}
	return res.Text, citedIDs, nil
}

func bestSynthesisThought(session *Session, b Branch) *Thought {
	var best *Thought
	for _, id := range b.ThoughtIDs {
		t := &session.Thoughts[id]
		if t.Stage != StageSynthesis {
			continue
		}
		if best == nil || t.Confidence > best.Confidence {
			best = t
		}
	}
	return best
}

func thoughtsForBranch(session *Session, b Branch) []Thought {
	out := make([]Thought, 0, len(b.ThoughtIDs))
	for _, id := range b.ThoughtIDs {
		out = append(out, session.Thoughts[id])
	}
	return out
}

func lastThoughtID(b Branch) int {
	if len(b.ThoughtIDs) == 0 {
		return -1
	}
	return b.ThoughtIDs[len(b.ThoughtIDs)-1]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
