// Package evaluation scores a candidate against a job with the model and
// returns a validated EvaluationResult.
package evaluation

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jonathan/ats-assistant/internal/extraction"
	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/prompts"
	"github.com/jonathan/ats-assistant/internal/types"
)

// DefaultResumePrefixChars is how much of the résumé text is sent to the model.
const DefaultResumePrefixChars = 5000

// Engine evaluates candidates. It is safe for concurrent use.
type Engine struct {
	extractor   *extraction.Extractor
	redactPII   bool
	prefixChars int
	logger      *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRedaction replaces emails and phone numbers in the résumé before it
// is sent to the model.
func WithRedaction(enabled bool) Option {
	return func(e *Engine) { e.redactPII = enabled }
}

// WithResumePrefix sets how many characters of résumé text are kept.
func WithResumePrefix(n int) Option {
	return func(e *Engine) { e.prefixChars = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine that runs its extractions through x.
func New(x *extraction.Extractor, opts ...Option) *Engine {
	e := &Engine{extractor: x, prefixChars: DefaultResumePrefixChars}
	for _, opt := range opts {
		opt(e)
	}
	if e.prefixChars <= 0 {
		e.prefixChars = DefaultResumePrefixChars
	}
	e.logger = logging.OrNop(e.logger)
	return e
}

// Prompt builds the task text for an evaluation.
func (e *Engine) Prompt(job *types.JobParse, candidate *types.CandidateParse, resumeText string) (string, error) {
	if job == nil {
		return "", &extraction.InputError{Field: "job", Message: "is required"}
	}
	if candidate == nil {
		return "", &extraction.InputError{Field: "candidate", Message: "is required"}
	}
	if strings.TrimSpace(resumeText) == "" {
		return "", &extraction.InputError{Field: "resume_text", Message: "is empty"}
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode job")
	}
	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode candidate")
	}

	if e.redactPII {
		resumeText = ingestion.RedactPII(resumeText)
	}

	template, err := prompts.Get(prompts.RecruitingFile, prompts.KeyEvaluateCandidate)
	if err != nil {
		return "", err
	}
	return prompts.Format(template, map[string]string{
		"JobJSON":       string(jobJSON),
		"CandidateJSON": string(candidateJSON),
		"ResumeText":    Truncate(resumeText, e.prefixChars),
	}), nil
}

// Evaluate scores candidate against job using the résumé text as evidence.
// The overall score is the model's own judgment and is returned as given.
func (e *Engine) Evaluate(ctx context.Context, job *types.JobParse, candidate *types.CandidateParse, resumeText string) (*types.EvaluationResult, error) {
	task, err := e.Prompt(job, candidate, resumeText)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := extraction.ExtractAs[*types.EvaluationResult](ctx, e.extractor, task, types.SchemaEvaluation)
	if err != nil {
		return nil, err
	}

	if d := Divergence(result); d > DivergenceNotice {
		e.logger.Infow("Overall score diverges from rubric mean",
			logging.FieldOverall, result.OverallScore,
			logging.FieldComposite, Composite(result.ScoreBreakdown),
			logging.FieldDurationMS, time.Since(start).Milliseconds())
	}
	return result, nil
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// DivergenceNotice is the gap between overall and composite score above
// which Evaluate logs the result.
const DivergenceNotice = 25

// Composite is the rounded mean of the five rubric scores.
func Composite(b types.ScoreBreakdown) int {
	values := b.Values()
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// Divergence is the absolute gap between the model's overall score and the
// rubric composite. It is informational; results are never rejected on it.
func Divergence(r *types.EvaluationResult) int {
	if r == nil {
		return 0
	}
	d := r.OverallScore - Composite(r.ScoreBreakdown)
	if d < 0 {
		return -d
	}
	return d
}
