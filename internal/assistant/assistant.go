// Package assistant exposes the recruiting tasks: parsing job descriptions
// and résumés, evaluating candidates, drafting outreach and summarizing
// screening conversations.
package assistant

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/ats-assistant/internal/evaluation"
	"github.com/jonathan/ats-assistant/internal/extraction"
	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/prompts"
	"github.com/jonathan/ats-assistant/internal/types"
)

// DefaultCompanyName is used in outreach when the request names no company.
const DefaultCompanyName = "Our Company"

// InputError reports empty or missing input; no model call is made.
type InputError = extraction.InputError

// Options configures an Assistant.
type Options struct {
	Extraction     []extraction.Option
	Evaluation     []evaluation.Option
	CompanyName    string
	EvaluationTier llm.ModelTier // defaults to the extraction tier
	Logger         *zap.SugaredLogger
}

// Assistant runs recruiting tasks against one model client.
type Assistant struct {
	extractor *extraction.Extractor
	evaluator *evaluation.Engine
	company   string
}

// New creates an Assistant. A nil client yields an Assistant whose every
// task fails with *llm.UnavailableError.
func New(client llm.Client, opts Options) *Assistant {
	logger := logging.OrNop(opts.Logger)

	xopts := append([]extraction.Option{extraction.WithLogger(logger)}, opts.Extraction...)
	extractor := extraction.New(client, xopts...)

	evalExtractor := extractor
	if opts.EvaluationTier != "" {
		evalExtractor = extraction.New(client, append(xopts, extraction.WithTier(opts.EvaluationTier))...)
	}
	eopts := append([]evaluation.Option{evaluation.WithLogger(logger)}, opts.Evaluation...)

	company := strings.TrimSpace(opts.CompanyName)
	if company == "" {
		company = DefaultCompanyName
	}

	return &Assistant{
		extractor: extractor,
		evaluator: evaluation.New(evalExtractor, eopts...),
		company:   company,
	}
}

// Evaluator returns the evaluation engine.
func (a *Assistant) Evaluator() *evaluation.Engine {
	return a.evaluator
}

// ParseJobDescription extracts a JobParse from job description text. When
// the description names no interview stages the default loop is filled in.
func (a *Assistant) ParseJobDescription(ctx context.Context, text string) (*types.JobParse, error) {
	task, err := taskPrompt(prompts.KeyParseJobDescription, "text", map[string]string{"Text": text})
	if err != nil {
		return nil, err
	}

	job, err := extraction.ExtractAs[*types.JobParse](ctx, a.extractor, task, types.SchemaJobParse)
	if err != nil {
		return nil, err
	}
	if len(job.InterviewStages) == 0 {
		job.InterviewStages = types.DefaultInterviewStages()
	}
	return job, nil
}

// ParseResume extracts a CandidateParse from résumé text.
func (a *Assistant) ParseResume(ctx context.Context, text string) (*types.CandidateParse, error) {
	task, err := taskPrompt(prompts.KeyParseResume, "text", map[string]string{"Text": text})
	if err != nil {
		return nil, err
	}
	return extraction.ExtractAs[*types.CandidateParse](ctx, a.extractor, task, types.SchemaCandidateParse)
}

// EvaluateCandidate scores a parsed candidate against a parsed job.
func (a *Assistant) EvaluateCandidate(ctx context.Context, job *types.JobParse, candidate *types.CandidateParse, resumeText string) (*types.EvaluationResult, error) {
	return a.evaluator.Evaluate(ctx, job, candidate, resumeText)
}

// GenerateOutreach drafts a message to a candidate. An empty company name
// uses the configured default; the tone is passed to the model verbatim.
func (a *Assistant) GenerateOutreach(ctx context.Context, req types.OutreachRequest) (*types.OutreachMessage, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, &InputError{Field: "first_name", Message: "is empty"}
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		return nil, &InputError{Field: "job_title", Message: "is empty"}
	}

	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		company = a.company
	}
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = types.ToneFriendly
	}

	task, err := taskPrompt(prompts.KeyGenerateOutreach, "", map[string]string{
		"FirstName":   req.FirstName,
		"JobTitle":    req.JobTitle,
		"CompanyName": company,
		"Tone":        tone,
	})
	if err != nil {
		return nil, err
	}
	return extraction.ExtractAs[*types.OutreachMessage](ctx, a.extractor, task, types.SchemaOutreachMessage)
}

// SummarizeScreening summarizes a screening conversation and recommends the
// next stage.
func (a *Assistant) SummarizeScreening(ctx context.Context, transcript string) (*types.ScreeningResult, error) {
	task, err := taskPrompt(prompts.KeySummarizeScreening, "transcript", map[string]string{"Transcript": transcript})
	if err != nil {
		return nil, err
	}
	return extraction.ExtractAs[*types.ScreeningResult](ctx, a.extractor, task, types.SchemaScreeningSummary)
}

// taskPrompt formats the template at key. When field is set, the value of
// the single entry in data must be non-blank.
func taskPrompt(key, field string, data map[string]string) (string, error) {
	if field != "" {
		for _, v := range data {
			if strings.TrimSpace(v) == "" {
				return "", &InputError{Field: field, Message: "is empty"}
			}
		}
	}

	template, err := prompts.Get(prompts.RecruitingFile, key)
	if err != nil {
		return "", err
	}
	return prompts.Format(template, data), nil
}
