// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/jonathan/ats-assistant/internal/evaluation"
	"github.com/jonathan/ats-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, ending in "..." when cut.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList appends up to limit items under heading.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// PrintJob outputs a human-readable summary of a parsed job description.
func (p *Printer) PrintJob(job *types.JobParse) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:     %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orDash(job.Location)))
	sb.WriteString(fmt.Sprintf("Type:      %s\n", orDash(job.EmploymentType)))
	if job.CompRangeMin != nil || job.CompRangeMax != nil {
		sb.WriteString(fmt.Sprintf("Comp:      %s - %s\n", money(job.CompRangeMin), money(job.CompRangeMax)))
	}
	sb.WriteString("\n")

	writeList(&sb, "Must-have", job.MustHaveSkills, maxItemsToShow)
	writeList(&sb, "Nice-to-have", job.NiceToHaveSkills, 3)

	if len(job.InterviewStages) > 0 {
		names := make([]string, len(job.InterviewStages))
		for i, st := range job.InterviewStages {
			names[i] = fmt.Sprintf("%s (%s)", st.Name, st.Type)
		}
		writeList(&sb, "Interview loop", names, maxItemsToShow)
	}

	p.printBox("PARSED JOB", strings.TrimSuffix(sb.String(), "\n\n"))
}

func money(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// PrintCandidate outputs a human-readable summary of a parsed résumé.
func (p *Printer) PrintCandidate(c *types.CandidateParse) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", c.FullName))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", orDash(c.Email)))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orDash(c.Location)))
	if c.ExperienceYears != nil {
		sb.WriteString(fmt.Sprintf("Years:     %s\n", strconv.FormatFloat(*c.ExperienceYears, 'f', -1, 64)))
	}
	sb.WriteString("\n")

	writeList(&sb, "Skills", c.Skills, maxItemsToShow)
	writeList(&sb, "Education", c.Education, 3)

	p.printBox("PARSED CANDIDATE", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintEvaluation renders the score breakdown as a table followed by the
// summary, strengths and concerns.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEvaluation(res *types.EvaluationResult) error {
	if res == nil {
		return nil
	}

	b := res.ScoreBreakdown
	data := pterm.TableData{
		{"Dimension", "Score"},
		{"Skills match", strconv.Itoa(b.SkillsMatch)},
		{"Experience relevance", strconv.Itoa(b.ExperienceRelevance)},
		{"Impact", strconv.Itoa(b.Impact)},
		{"Communication", strconv.Itoa(b.Communication)},
		{"Seniority fit", strconv.Itoa(b.SeniorityFit)},
		{"Overall", strconv.Itoa(res.OverallScore)},
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, table)

	if d := evaluation.Divergence(res); d > evaluation.DivergenceNotice {
		fmt.Fprintln(p.out, pterm.Yellow(fmt.Sprintf("Overall score is %d points from the sub-score mean of %d", d, evaluation.Composite(b))))
	}

	var sb strings.Builder
	if res.AISummary != "" {
		sb.WriteString(res.AISummary + "\n\n")
	}
	writeList(&sb, "Strengths", res.Strengths, maxItemsToShow)
	writeList(&sb, "Concerns", res.Concerns, maxItemsToShow)
	writeList(&sb, "Missing must-haves", res.MissingMustHaves, maxItemsToShow)
	writeList(&sb, "Risk flags", res.RiskFlags, maxItemsToShow)
	writeList(&sb, "Interview questions", res.SuggestedInterviewQuestions, 3)
	if sb.Len() > 0 {
		fmt.Fprint(p.out, sb.String())
	}
	return nil
}

// PrintScreening outputs a screening summary and the recommended stage.
func (p *Printer) PrintScreening(res *types.ScreeningResult) {
	if res == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recommended stage: %s\n\n", res.RecommendedStage))
	sb.WriteString(res.Summary)
	if res.UpdatedRubricNotes != "" {
		sb.WriteString("\n\nRubric notes:\n" + res.UpdatedRubricNotes)
	}
	p.printBox("SCREENING SUMMARY", sb.String())
}

// PrintOutreach outputs a drafted message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutreach(msg *types.OutreachMessage) {
	if msg == nil {
		return
	}
	fmt.Fprintf(p.out, "Subject: %s\n\n%s\n", msg.Subject, msg.Body)
}
