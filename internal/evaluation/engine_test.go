package evaluation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/ats-assistant/internal/extraction"
	"github.com/jonathan/ats-assistant/internal/llm/llmtest"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/schemas"
	"github.com/jonathan/ats-assistant/internal/types"
)

const stubEvaluation = `{"overall_score": 72, "score_breakdown": {"skills_match": 80, "experience_relevance": 70, "impact": 65, "communication": 75, "seniority_fit": 70}, "ai_summary": "Good fit", "strengths": ["Python"], "concerns": [], "missing_must_haves": [], "risk_flags": [], "suggested_interview_questions": []}`

func testJob() *types.JobParse {
	return &types.JobParse{
		Title:          "Data Engineer",
		MustHaveSkills: []string{"Python", "SQL"},
	}
}

func testCandidate() *types.CandidateParse {
	return &types.CandidateParse{FullName: "Ada Lovelace", Skills: []string{"Python"}}
}

func newEngine(client *llmtest.MockClient, opts ...Option) *Engine {
	return New(extraction.New(client), opts...)
}

func TestEvaluate_EndToEnd(t *testing.T) {
	client := llmtest.NewStatic(stubEvaluation)

	result, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), "Python developer, 6 years.")
	require.NoError(t, err)
	assert.Equal(t, 72, result.OverallScore)
	assert.Equal(t, 80, result.ScoreBreakdown.SkillsMatch)
	assert.Equal(t, "Good fit", result.AISummary)
	assert.Equal(t, []string{"Python"}, result.Strengths)
	assert.Empty(t, result.RiskFlags)
	assert.NotNil(t, result.RiskFlags)
	assert.Equal(t, 1, client.Calls())
}

func TestEvaluate_PromptContents(t *testing.T) {
	client := llmtest.NewStatic(stubEvaluation)

	_, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), "Built pipelines in Airflow")
	require.NoError(t, err)

	prompt := client.LastPrompt()
	assert.Contains(t, prompt, `"title": "Data Engineer"`)
	assert.Contains(t, prompt, `"full_name": "Ada Lovelace"`)
	assert.Contains(t, prompt, "Built pipelines in Airflow")
	assert.Contains(t, prompt, "skills_match")
	assert.Contains(t, prompt, "employment gaps")
	assert.Contains(t, prompt, "Return ONLY the JSON object")
}

func TestEvaluate_TruncatesResume(t *testing.T) {
	client := llmtest.NewStatic(stubEvaluation)
	resume := strings.Repeat("a", DefaultResumePrefixChars) + "TAIL-MARKER"

	_, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), resume)
	require.NoError(t, err)
	assert.NotContains(t, client.LastPrompt(), "TAIL-MARKER")
	assert.Contains(t, client.LastPrompt(), strings.Repeat("a", DefaultResumePrefixChars))
}

func TestEvaluate_CustomPrefix(t *testing.T) {
	client := llmtest.NewStatic(stubEvaluation)

	_, err := newEngine(client, WithResumePrefix(5)).Evaluate(context.Background(), testJob(), testCandidate(), "Hello World")
	require.NoError(t, err)
	assert.Contains(t, client.LastPrompt(), "Hello")
	assert.NotContains(t, client.LastPrompt(), "World")
}

func TestEvaluate_Redaction(t *testing.T) {
	resume := "Ada Lovelace, ada@example.com, (555) 123-4567, Acme 2019-2023"

	t.Run("enabled", func(t *testing.T) {
		client := llmtest.NewStatic(stubEvaluation)
		_, err := newEngine(client, WithRedaction(true)).Evaluate(context.Background(), testJob(), testCandidate(), resume)
		require.NoError(t, err)
		assert.NotContains(t, client.LastPrompt(), "ada@example.com")
		assert.NotContains(t, client.LastPrompt(), "123-4567")
		assert.Contains(t, client.LastPrompt(), "[REDACTED_EMAIL]")
		assert.Contains(t, client.LastPrompt(), "2019-2023")
	})

	t.Run("disabled", func(t *testing.T) {
		client := llmtest.NewStatic(stubEvaluation)
		_, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), resume)
		require.NoError(t, err)
		assert.Contains(t, client.LastPrompt(), "ada@example.com")
	})
}

func TestEvaluate_InputErrors(t *testing.T) {
	tests := []struct {
		name      string
		job       *types.JobParse
		candidate *types.CandidateParse
		resume    string
		field     string
	}{
		{name: "nil job", candidate: testCandidate(), resume: "x", field: "job"},
		{name: "nil candidate", job: testJob(), resume: "x", field: "candidate"},
		{name: "blank resume", job: testJob(), candidate: testCandidate(), resume: "  \n", field: "resume_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llmtest.NewStatic(stubEvaluation)
			_, err := newEngine(client).Evaluate(context.Background(), tt.job, tt.candidate, tt.resume)

			var ie *extraction.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
			assert.Equal(t, 0, client.Calls())
		})
	}
}

func TestEvaluate_OutOfRangeScoreExhaustsAttempts(t *testing.T) {
	client := llmtest.NewStatic(strings.Replace(stubEvaluation, `"overall_score": 72`, `"overall_score": 101`, 1))

	_, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), "resume")

	var xe *extraction.Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, 3, client.Calls())

	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.HasField("overall_score"))
}

func TestEvaluate_DivergentScoreAccepted(t *testing.T) {
	client := llmtest.NewStatic(strings.Replace(stubEvaluation, `"overall_score": 72`, `"overall_score": 5`, 1))

	result, err := newEngine(client).Evaluate(context.Background(), testJob(), testCandidate(), "resume")
	require.NoError(t, err)
	assert.Equal(t, 5, result.OverallScore)
	assert.Equal(t, 67, Divergence(result))
}

func TestEvaluate_DivergenceLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := llmtest.NewStatic(strings.Replace(stubEvaluation, `"overall_score": 72`, `"overall_score": 5`, 1))

	_, err := newEngine(client, WithLogger(zap.New(core).Sugar())).Evaluate(context.Background(), testJob(), testCandidate(), "resume")
	require.NoError(t, err)

	entries := logs.FilterMessage("Overall score diverges from rubric mean").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 5, fields[logging.FieldOverall])
	assert.EqualValues(t, 72, fields[logging.FieldComposite])
	assert.Contains(t, fields, logging.FieldDurationMS)
}

func TestEvaluate_NoDivergenceLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	_, err := newEngine(llmtest.NewStatic(stubEvaluation), WithLogger(zap.New(core).Sugar())).Evaluate(context.Background(), testJob(), testCandidate(), "resume")
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("Overall score diverges from rubric mean").Len())
}

func TestComposite(t *testing.T) {
	assert.Equal(t, 72, Composite(types.ScoreBreakdown{
		SkillsMatch: 80, ExperienceRelevance: 70, Impact: 65, Communication: 75, SeniorityFit: 70,
	}))
	assert.Equal(t, 0, Composite(types.ScoreBreakdown{}))
	assert.Equal(t, 100, Composite(types.ScoreBreakdown{
		SkillsMatch: 100, ExperienceRelevance: 100, Impact: 100, Communication: 100, SeniorityFit: 100,
	}))
}

func TestDivergence(t *testing.T) {
	breakdown := types.ScoreBreakdown{SkillsMatch: 80, ExperienceRelevance: 70, Impact: 65, Communication: 75, SeniorityFit: 70}

	assert.Equal(t, 0, Divergence(&types.EvaluationResult{OverallScore: 72, ScoreBreakdown: breakdown}))
	assert.Equal(t, 18, Divergence(&types.EvaluationResult{OverallScore: 90, ScoreBreakdown: breakdown}))
	assert.Equal(t, 0, Divergence(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}
