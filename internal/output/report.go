package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/dryscan/pkg/analyzer"
	"github.com/panbanda/dryscan/pkg/models"
)

// Message returns the one-line description of a finding.
func Message(f models.Finding) string {
	if f.Kind == models.EntityMethod {
		return fmt.Sprintf("DRY violation: method '%s' is the same or similar to '%s' (distance %d)", f.NameA, f.NameB, f.Distance)
	}
	return fmt.Sprintf("Types '%s' and '%s' are similar (distance %d)", f.NameA, f.NameB, f.Distance)
}

// FindingsReport renders an analysis result. Sections for passes that were
// not requested are omitted.
type FindingsReport struct {
	Result    *analyzer.Result
	ShowTypes bool
	ShowDRY   bool
	// Ref names the git revision analyzed, if any.
	Ref string
}

// NewFindingsReport creates a report showing both passes.
func NewFindingsReport(result *analyzer.Result) *FindingsReport {
	return &FindingsReport{Result: result, ShowTypes: true, ShowDRY: true}
}

type reportData struct {
	Ref           string            `json:"ref,omitempty" yaml:"ref,omitempty" toon:"ref,omitempty"`
	SimilarTypes  *[]models.Finding `json:"similar_types,omitempty" yaml:"similar_types,omitempty" toon:"similar_types,omitempty"`
	DRYViolations *[]models.Finding `json:"dry_violations,omitempty" yaml:"dry_violations,omitempty" toon:"dry_violations,omitempty"`
	Summary       analyzer.Summary  `json:"summary" yaml:"summary" toon:"summary"`
}

func (r *FindingsReport) RenderData() any {
	data := reportData{Ref: r.Ref, Summary: r.Result.Summary}
	// A requested pass always serializes its list, even when empty.
	if r.ShowTypes {
		data.SimilarTypes = nonNil(r.Result.SimilarTypes)
	}
	if r.ShowDRY {
		data.DRYViolations = nonNil(r.Result.DRYViolations)
	}
	return data
}

func nonNil(f []models.Finding) *[]models.Finding {
	if f == nil {
		f = []models.Finding{}
	}
	return &f
}

func (r *FindingsReport) RenderText(w io.Writer, colored bool) error {
	if r.ShowTypes {
		writeHeading(w, "Similar types", colored)
		r.writeFindings(w, r.Result.SimilarTypes, colored, "No similar types found.")
		fmt.Fprintln(w)
	}
	if r.ShowDRY {
		writeHeading(w, "DRY violations", colored)
		r.writeFindings(w, r.Result.DRYViolations, colored, "No DRY violations found.")
		fmt.Fprintln(w)
	}

	return r.summaryTable().RenderText(w, colored)
}

func (r *FindingsReport) writeFindings(w io.Writer, findings []models.Finding, colored bool, none string) {
	if len(findings) == 0 {
		fmt.Fprintln(w, none)
		return
	}
	for _, f := range findings {
		msg := Message(f)
		if colored {
			msg = DistanceColor(f.Distance, msg)
		}
		fmt.Fprintln(w, msg)
		if loc := locations(f); loc != "" {
			fmt.Fprintf(w, "    %s\n", loc)
		}
	}
}

func locations(f models.Finding) string {
	a, b := formatLocation(f.LocationA), formatLocation(f.LocationB)
	if a == "" && b == "" {
		return ""
	}
	return a + " <-> " + b
}

func formatLocation(l models.Location) string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return l.File + ":" + strconv.FormatUint(uint64(l.Line), 10)
}

func (r *FindingsReport) RenderMarkdown(w io.Writer) error {
	title := "dryscan report"
	if r.Ref != "" {
		title += " (" + r.Ref + ")"
	}
	fmt.Fprintf(w, "# %s\n\n", title)

	if r.ShowTypes {
		if err := findingsTable("Similar types", "Type", r.Result.SimilarTypes).RenderMarkdown(w); err != nil {
			return err
		}
	}
	if r.ShowDRY {
		if err := findingsTable("DRY violations", "Method", r.Result.DRYViolations).RenderMarkdown(w); err != nil {
			return err
		}
	}
	return r.summaryTable().RenderMarkdown(w)
}

func findingsTable(title, entity string, findings []models.Finding) *Table {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			"`" + f.NameA + "`",
			"`" + f.NameB + "`",
			strconv.Itoa(f.Distance),
			formatLocation(f.LocationA),
			formatLocation(f.LocationB),
		})
	}
	return NewTable(title,
		[]string{entity + " A", entity + " B", "Distance", "Location A", "Location B"},
		rows)
}

func (r *FindingsReport) summaryTable() *Table {
	s := r.Result.Summary
	rows := [][]string{
		{"Files scanned", strconv.Itoa(s.FilesScanned)},
		{"Types analyzed", strconv.Itoa(s.TypesAnalyzed)},
		{"Methods analyzed", strconv.Itoa(s.MethodsAnalyzed)},
	}
	if r.ShowTypes {
		rows = append(rows,
			[]string{"Similar type pairs", strconv.Itoa(s.TypePairs)},
			[]string{"Flagged types", strconv.Itoa(s.FlaggedTypes)},
		)
	}
	if r.ShowDRY {
		rows = append(rows,
			[]string{"DRY violation pairs", strconv.Itoa(s.DRYPairs)},
			[]string{"Flagged methods", strconv.Itoa(s.FlaggedMethods)},
		)
	}
	rows = append(rows,
		[]string{"Flagged files", strconv.Itoa(s.FlaggedFiles)},
		[]string{"Files flagged by both passes", strconv.Itoa(s.FilesFlaggedByBoth)},
		[]string{"Exact pairs", strconv.Itoa(s.ExactPairs)},
		[]string{"Mean distance", strconv.FormatFloat(s.MeanDistance, 'f', 2, 64)},
		[]string{"P50 / P95 distance", strconv.FormatFloat(s.P50Distance, 'f', 0, 64) + " / " + strconv.FormatFloat(s.P95Distance, 'f', 0, 64)},
	)
	if s.ParseErrors > 0 {
		rows = append(rows, []string{"Files skipped", strconv.Itoa(s.ParseErrors)})
	}
	if s.UnitsWithErrors > 0 {
		rows = append(rows, []string{"Files with syntax errors", strconv.Itoa(s.UnitsWithErrors)})
	}
	return NewTable("Summary", []string{"Metric", "Value"}, rows)
}
