package thinking

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/context7"
	"github.com/voidcat-ai/reasoning-core/internal/llm"
)

type scriptedCompleter struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ []llm.Message, _ int, _ float64) (*llm.Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.replies) {
		return &llm.Result{Text: s.replies[i]}, nil
	}
	return &llm.Result{Text: `{"text":"default","confidence":0.8}`}, nil
}

func TestClassifyComplexity_Bands(t *testing.T) {
	assert.Equal(t, ComplexitySimple, ClassifyComplexity("what is go"))
	assert.Equal(t, ComplexityExpert, ClassifyComplexity(
		"compare the architecture and concurrency model of this distributed database protocol, then explain why its security performance differs"))
}

func TestEngine_SimpleQueryProducesOrderedThoughtsAndAnswer(t *testing.T) {
	fc := &scriptedCompleter{replies: []string{
		`{"text":"analysis done","confidence":0.9}`,
		`{"text":"single hypothesis","confidence":0.5,"claims":["A"]}`,
		`{"text":"validated","confidence":0.9}`,
		`{"text":"final answer","confidence":0.9,"cited_ids":["doc1"]}`,
		`{"text":"merged final answer"}`,
	}}
	e := New(fc, DefaultConfig(), zap.NewNop())

	session, err := e.Run(context.Background(), "what is go", context7.Bundle{Empty: true})
	require.NoError(t, err)

	require.NotEmpty(t, session.Thoughts)
	for i, th := range session.Thoughts {
		assert.Equal(t, i, th.ID)
		if th.ParentID >= 0 {
			assert.Less(t, th.ParentID, th.ID)
		}
	}
	assert.NotEmpty(t, session.Answer)
	assert.False(t, session.Interrupted)
}

func TestEngine_BranchesOnCompetingHypothesisClaims(t *testing.T) {
	fc := &scriptedCompleter{replies: []string{
		`{"text":"analysis","confidence":0.9}`,
		`{"text":"two claims","confidence":0.7,"claims":["A","B"]}`,
	}}
	e := New(fc, DefaultConfig(), zap.NewNop())

	session, err := e.Run(context.Background(), "compare A and B, then explain why", context7.Bundle{Empty: true})
	require.NoError(t, err)
	assert.Greater(t, len(session.Branches), 1)
}

func TestEngine_AbandonsBranchAfterConsecutiveLowConfidence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AbandonAfterLowN = 2
	cfg.ConfidenceFloor = 0.5
	fc := &scriptedCompleter{replies: []string{
		`{"text":"weak 1","confidence":0.1}`,
		`{"text":"weak 2","confidence":0.1}`,
	}}
	e := New(fc, cfg, zap.NewNop())

	session, err := e.Run(context.Background(), "simple query", context7.Bundle{Empty: true})
	require.NoError(t, err)
	require.NotEmpty(t, session.Branches)
	assert.True(t, session.Branches[0].Abandoned)
	assert.Empty(t, session.Answer)
}

func TestEngine_DegradesOnUnparsableReplyAfterRetry(t *testing.T) {
	fc := &scriptedCompleter{replies: []string{
		"not json at all",
		"still not json",
	}}
	e := New(fc, DefaultConfig(), zap.NewNop())

	session, err := e.Run(context.Background(), "simple", context7.Bundle{Empty: true})
	require.NoError(t, err)
	require.NotEmpty(t, session.Thoughts)
	assert.True(t, session.Thoughts[0].Degraded)
	assert.GreaterOrEqual(t, fc.calls, 2)
}

func TestEngine_PropagatesLLMTransportFailure(t *testing.T) {
	fc := &scriptedCompleter{errs: []error{fmt.Errorf("connection refused")}}
	e := New(fc, DefaultConfig(), zap.NewNop())

	_, err := e.Run(context.Background(), "simple", context7.Bundle{Empty: true})
	require.Error(t, err)
}

func TestEngine_CancelledContextInterruptsSession(t *testing.T) {
	fc := &scriptedCompleter{}
	e := New(fc, DefaultConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := e.Run(ctx, "simple", context7.Bundle{Empty: true})
	require.NoError(t, err)
	assert.True(t, session.Interrupted)
}
