// Package export writes a job's ranked applications to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/types"
)

// Sheet names.
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
)

// CandidateHeaders are the columns of the ranked candidates sheet.
var CandidateHeaders = []string{
	"Rank", "Name", "Email", "Stage", "Overall Score",
	"Skills Match", "Experience Relevance", "Impact", "Communication", "Seniority Fit",
	"Risk Flags", "AI Summary",
}

// WriteApplications writes a workbook with a summary sheet and the job's
// applications ranked by overall score. Unevaluated applications come last.
func WriteApplications(w io.Writer, job *db.Job, rows []db.ApplicationRow) error {
	if job == nil {
		return errors.New("export: job is nil")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return errors.Wrap(err, "rename summary sheet")
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return errors.Wrap(err, "create candidates sheet")
	}

	ranked := Rank(rows)
	if err := writeSummary(f, job, ranked); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}
	if err := writeCandidates(f, ranked); err != nil {
		return errors.Wrap(err, "failed to create ranked candidates sheet")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// Rank returns rows sorted by overall score, highest first, with
// unevaluated rows last in their original order.
func Rank(rows []db.ApplicationRow) []db.ApplicationRow {
	ranked := append([]db.ApplicationRow(nil), rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].OverallScore, ranked[j].OverallScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return ranked
}

// MeanScore is the mean overall score of evaluated rows and how many there were.
func MeanScore(rows []db.ApplicationRow) (float64, int) {
	sum, n := 0, 0
	for _, r := range rows {
		if r.OverallScore != nil {
			sum += *r.OverallScore
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

func writeSummary(f *excelize.File, job *db.Job, rows []db.ApplicationRow) error {
	sheet := SummarySheet
	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	set := func(label string, value any) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}
	section := func(title string) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), title)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
		_ = f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
		row++
	}

	section("Applicant Report")
	row++
	set("Job Title:", job.Title)
	set("Location:", deref(job.Location))
	set("Status:", string(job.Status))
	set("Must-have Skills:", strings.Join(job.MustHaveSkills, ", "))
	set("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	row++

	section("Pipeline")
	set("Total Applications:", len(rows))
	counts := db.EmptyFunnel()
	for _, r := range rows {
		counts[r.Stage]++
	}
	for _, stage := range types.AllStages() {
		set(strings.ToUpper(string(stage[:1]))+string(stage[1:])+":", counts[stage])
	}
	row++

	section("Scores")
	mean, evaluated := MeanScore(rows)
	set("Evaluated:", evaluated)
	if evaluated > 0 {
		set("Mean Overall Score:", fmt.Sprintf("%.1f", mean))
	} else {
		set("Mean Overall Score:", "n/a")
	}
	return nil
}

func writeCandidates(f *excelize.File, rows []db.ApplicationRow) error {
	sheet := CandidatesSheet

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return err
	}

	for i, h := range CandidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(CandidateHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "K", "L", 60)

	for i, r := range rows {
		values := []any{i + 1, r.CandidateName, deref(r.CandidateEmail), string(r.Stage)}
		if r.OverallScore != nil {
			values = append(values, *r.OverallScore)
		} else {
			values = append(values, "")
		}
		if r.ScoreBreakdown != nil {
			for _, v := range r.ScoreBreakdown.Values() {
				values = append(values, v)
			}
		} else {
			values = append(values, "", "", "", "", "")
		}
		values = append(values, strings.Join(r.RiskFlags, "; "), deref(r.AISummary))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
