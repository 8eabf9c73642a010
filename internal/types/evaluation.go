package types

// ScoreBreakdown holds the five rubric dimensions, each scored 0 to 100.
type ScoreBreakdown struct {
	SkillsMatch         int `json:"skills_match" validate:"min=0,max=100"`
	ExperienceRelevance int `json:"experience_relevance" validate:"min=0,max=100"`
	Impact              int `json:"impact" validate:"min=0,max=100"`
	Communication       int `json:"communication" validate:"min=0,max=100"`
	SeniorityFit        int `json:"seniority_fit" validate:"min=0,max=100"`
}

// Values returns the sub-scores in rubric order.
func (s ScoreBreakdown) Values() []int {
	return []int{s.SkillsMatch, s.ExperienceRelevance, s.Impact, s.Communication, s.SeniorityFit}
}

// EvaluationResult is the model's assessment of a candidate against a job.
// OverallScore is an independent judgment and is not derived from the breakdown.
type EvaluationResult struct {
	OverallScore                int            `json:"overall_score" validate:"min=0,max=100"`
	ScoreBreakdown              ScoreBreakdown `json:"score_breakdown"`
	AISummary                   string         `json:"ai_summary"`
	Strengths                   []string       `json:"strengths"`
	Concerns                    []string       `json:"concerns"`
	MissingMustHaves            []string       `json:"missing_must_haves"`
	RiskFlags                   []string       `json:"risk_flags"`
	SuggestedInterviewQuestions []string       `json:"suggested_interview_questions"`
}

// SchemaID implements Record.
func (*EvaluationResult) SchemaID() SchemaID { return SchemaEvaluation }

func (e *EvaluationResult) normalize() {
	e.Strengths = emptyIfNil(e.Strengths)
	e.Concerns = emptyIfNil(e.Concerns)
	e.MissingMustHaves = emptyIfNil(e.MissingMustHaves)
	e.RiskFlags = emptyIfNil(e.RiskFlags)
	e.SuggestedInterviewQuestions = emptyIfNil(e.SuggestedInterviewQuestions)
}
