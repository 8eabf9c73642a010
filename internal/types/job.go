package types

// JobParse is the structured form of a job description.
type JobParse struct {
	Title            string           `json:"title" validate:"required"`
	Team             *string          `json:"team,omitempty"`
	Location         *string          `json:"location,omitempty"`
	EmploymentType   *string          `json:"employment_type,omitempty"`
	CompRangeMin     *float64         `json:"comp_range_min,omitempty" validate:"omitempty,gte=0"`
	CompRangeMax     *float64         `json:"comp_range_max,omitempty" validate:"omitempty,gte=0"`
	MustHaveSkills   []string         `json:"must_have_skills"`
	NiceToHaveSkills []string         `json:"nice_to_have_skills"`
	Responsibilities []string         `json:"responsibilities"`
	InterviewStages  []InterviewStage `json:"interview_stages" validate:"dive"`
}

// InterviewStage is one named step of a hiring loop.
type InterviewStage struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"` // e.g. Screening, Video Call, On-site
}

// DefaultInterviewStages is the loop used when a job description names none.
func DefaultInterviewStages() []InterviewStage {
	return []InterviewStage{
		{Name: "Initial Screening", Type: "Screening"},
		{Name: "Technical Interview", Type: "Video Call"},
		{Name: "Culture Fit", Type: "Video Call"},
		{Name: "Final Round", Type: "On-site"},
	}
}

// SchemaID implements Record.
func (*JobParse) SchemaID() SchemaID { return SchemaJobParse }

func (j *JobParse) normalize() {
	j.MustHaveSkills = emptyIfNil(j.MustHaveSkills)
	j.NiceToHaveSkills = emptyIfNil(j.NiceToHaveSkills)
	j.Responsibilities = emptyIfNil(j.Responsibilities)
	if j.InterviewStages == nil {
		j.InterviewStages = []InterviewStage{}
	}
}
