package types

// ScreeningResult summarizes a screening conversation.
type ScreeningResult struct {
	Summary            string `json:"summary"`
	RecommendedStage   Stage  `json:"recommended_stage" validate:"oneof=screened interview rejected"`
	UpdatedRubricNotes string `json:"updated_rubric_notes"`
}

// SchemaID implements Record.
func (*ScreeningResult) SchemaID() SchemaID { return SchemaScreeningSummary }

func (*ScreeningResult) normalize() {}

// OutreachMessage is a drafted message to a candidate.
type OutreachMessage struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// SchemaID implements Record.
func (*OutreachMessage) SchemaID() SchemaID { return SchemaOutreachMessage }

func (*OutreachMessage) normalize() {}
