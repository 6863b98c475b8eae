package guidance

import (
	"context"

	"dealcoach/pkg/assess"
	"dealcoach/pkg/deal"
	"dealcoach/pkg/llm"
	"dealcoach/pkg/tactics"
	"dealcoach/pkg/utils"
)

// ChatClient is the slice of the LLM client the generator needs. Tests hand in
// a canned fake; production hands in *llm.Client.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, jsonOutput bool) (string, error)
}

// Request is one guidance ask: the situation, whatever the dealer literally
// said, and whether this user is entitled to the live-model path. The
// deterministic path never looks at Entitled; degradation, not denial.
type Request struct {
	SessionID  string
	Situation  string
	DealerText string
	Narration  string
	Entitled   bool
}

// Generator produces coaching output, preferring the live model and falling
// back to the deterministic tables on any failure.
type Generator struct {
	client ChatClient
	logger *utils.Logger
}

// NewGenerator builds a generator. A nil client is valid and forces the
// deterministic path.
func NewGenerator(client ChatClient, logger *utils.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

// Generate runs the full pipeline: classify, assess, ask the model (one
// validation retry), guardrail-check, and fall back deterministically when
// anything along the way disqualifies the model's answer. It never returns an
// error for model problems; the worst case is fallback text.
func (g *Generator) Generate(ctx context.Context, state *deal.State, req Request) (Output, Source) {
	tags := g.classify(req)
	report := assess.Confidence(state.DealerCurrentOTD, state.TargetOTD)
	trend := assess.OfferTrend(state.DealerCurrentOTD, state.LastDealerOTD)

	if g.client == nil || !req.Entitled || !state.AIEnabled {
		return Fallback(state, tags[0]), SourceFallback
	}

	out, ok := g.tryModel(ctx, state, req, report, trend, tags)
	if !ok {
		return Fallback(state, tags[0]), SourceFallback
	}

	if OutputViolatesLadder(out, state.Ladder) {
		g.logger.LogGuardrailViolation(req.SessionID, state.Ladder.Walk, out.SayThis+" | "+out.ClosingLine)
		return Fallback(state, tags[0]), SourceFallback
	}
	return out, SourceModel
}

// classify prefers the discrete situation tag when one was selected and falls
// back to free-text classification of whatever text we have.
func (g *Generator) classify(req Request) []tactics.Tactic {
	if req.Situation != "" {
		return []tactics.Tactic{tactics.ClassifySituation(req.Situation)}
	}
	text := req.DealerText
	if text == "" {
		text = req.Narration
	}
	return tactics.Classify(text)
}

// tryModel is the LLM path: one call, strict validation, one amended retry.
func (g *Generator) tryModel(ctx context.Context, state *deal.State, req Request, report assess.Report, trend assess.Trend, tags []tactics.Tactic) (Output, bool) {
	messages := []llm.Message{
		{Role: "system", Content: SystemPrompt(state, report, trend, tags, req.DealerText)},
		{Role: "user", Content: UserPrompt(req.Situation, req.Narration)},
	}

	raw, err := g.client.Chat(ctx, messages, true)
	if err != nil {
		g.logger.LogLLMFailure(req.SessionID, err)
		return Output{}, false
	}

	out, missing := Parse(raw)
	if len(missing) == 0 {
		return Normalize(out), true
	}

	messages = append(messages,
		llm.Message{Role: "assistant", Content: raw},
		llm.Message{Role: "user", Content: RetryPrompt(missing)},
	)
	raw, err = g.client.Chat(ctx, messages, true)
	if err != nil {
		g.logger.LogLLMFailure(req.SessionID, err)
		return Output{}, false
	}
	out, missing = Parse(raw)
	if len(missing) > 0 {
		g.logger.Logf("Guidance response still missing fields after retry - Session: %s, Missing: %v", req.SessionID, missing)
		return Output{}, false
	}
	return Normalize(out), true
}
