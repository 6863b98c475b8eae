package guidance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcoach/pkg/deal"
	"dealcoach/pkg/llm"
	"dealcoach/pkg/utils"
)

// fakeChat returns canned responses in order, then repeats the last one.
type fakeChat struct {
	responses []string
	err       error
	calls     int
	prompts   [][]llm.Message
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message, jsonOutput bool) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func coachingState(t *testing.T) *deal.State {
	t.Helper()
	s := deal.New()
	deal.Apply(s, deal.SetNumbers{TargetOTD: 25000, WalkAwayOTD: 25800, AskOTD: 26500})
	s.Ladder.Locked = true
	s.AIEnabled = true
	deal.Apply(s, deal.DealerQuote{Amount: 27100})
	return s
}

func entitledReq() Request {
	return Request{SessionID: "sess-1", Situation: "Pushing add-ons", Entitled: true}
}

func TestGenerateUsesModelWhenValid(t *testing.T) {
	fake := &fakeChat{responses: []string{validResponse}}
	gen := NewGenerator(fake, utils.GetLogger())

	out, source := gen.Generate(context.Background(), coachingState(t), entitledReq())
	assert.Equal(t, SourceModel, source)
	assert.Equal(t, "I'm at $25,000 out the door.", out.SayThis)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateRetriesOnceNamingMissingFields(t *testing.T) {
	fake := &fakeChat{responses: []string{`{"sayThis": "ok"}`, validResponse}}
	gen := NewGenerator(fake, utils.GetLogger())

	_, source := gen.Generate(context.Background(), coachingState(t), entitledReq())
	assert.Equal(t, SourceModel, source)
	require.Equal(t, 2, fake.calls)

	retry := fake.prompts[1]
	last := retry[len(retry)-1].Content
	assert.Contains(t, last, "ifPushback", "retry prompt must name the missing fields")
	assert.Contains(t, last, "closingLine")
}

func TestGenerateFallsBackWhenStillInvalid(t *testing.T) {
	fake := &fakeChat{responses: []string{`not json`, `still not json`}}
	gen := NewGenerator(fake, utils.GetLogger())

	out, source := gen.Generate(context.Background(), coachingState(t), entitledReq())
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, 2, fake.calls, "exactly one retry, then fallback")
	assert.Contains(t, out.SayThis, "25,000", "fallback is personalized")
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	fake := &fakeChat{err: errors.New("timeout")}
	gen := NewGenerator(fake, utils.GetLogger())

	out, source := gen.Generate(context.Background(), coachingState(t), entitledReq())
	assert.Equal(t, SourceFallback, source)
	assert.NotEmpty(t, out.SayThis)
}

func TestGenerateGuardrailDiscardsAdversarialModelOutput(t *testing.T) {
	// Model recommends accepting $26,200 with walk locked at $25,800.
	adversarial := `{
		"sayThis": "Just take the $26,200, it is close enough.",
		"ifPushback": "x", "ifManager": "x", "stopSignal": "x",
		"closingLine": "$26,200 and done", "nextMove": "x", "ladderSummary": "x"
	}`
	fake := &fakeChat{responses: []string{adversarial}}
	gen := NewGenerator(fake, utils.GetLogger())

	state := coachingState(t)
	out, source := gen.Generate(context.Background(), state, entitledReq())
	assert.Equal(t, SourceFallback, source)
	assert.False(t, OutputViolatesLadder(out, state.Ladder),
		"substituted fallback must contain no number above walk")
}

func TestGenerateUnentitledSkipsModel(t *testing.T) {
	fake := &fakeChat{responses: []string{validResponse}}
	gen := NewGenerator(fake, utils.GetLogger())

	req := entitledReq()
	req.Entitled = false
	_, source := gen.Generate(context.Background(), coachingState(t), req)
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, 0, fake.calls)
}

func TestGenerateNilClientUsesFallback(t *testing.T) {
	gen := NewGenerator(nil, utils.GetLogger())

	out, source := gen.Generate(context.Background(), coachingState(t), entitledReq())
	assert.Equal(t, SourceFallback, source)
	assert.NotEmpty(t, out.SayThis)
}

func TestSystemPromptCarriesLiveNumbers(t *testing.T) {
	state := coachingState(t)
	fake := &fakeChat{responses: []string{validResponse}}
	gen := NewGenerator(fake, utils.GetLogger())

	gen.Generate(context.Background(), state, entitledReq())
	require.Len(t, fake.prompts, 1)
	system := fake.prompts[0][0].Content
	assert.Contains(t, system, "$25,000")
	assert.Contains(t, system, "$25,800")
	assert.Contains(t, system, "$27,100")
	assert.Contains(t, system, "LOCKED")
	assert.Contains(t, system, "Add-on shove")
}
