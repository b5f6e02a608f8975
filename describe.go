package scoresheet

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of a planned workbook: every
// sheet, and for division sheets every round with its layout and the
// operations that render it. Useful for reviewing formulas without
// opening a spreadsheet.
func Describe(plan *WorkbookPlan) string {
	var b strings.Builder
	b.WriteString("Workbook: ")
	if plan.Title != "" {
		b.WriteString(plan.Title)
	} else {
		b.WriteString("<untitled>")
	}
	if plan.RunID != "" {
		fmt.Fprintf(&b, " (run %s)", plan.RunID)
	}
	b.WriteByte('\n')

	describeSheet(&b, plan.Teams, 1)
	for _, s := range plan.Adjustments {
		describeSheet(&b, s, 1)
	}
	for _, d := range plan.Divisions {
		DescribeReport(&b, d, 1)
	}
	return b.String()
}

func describeSheet(b *strings.Builder, s SheetPlan, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%sSheet %q: %d operation(s)\n", prefix, s.Name, len(s.Operations))
}

// DescribeReport writes the tree of one division report.
func DescribeReport(b *strings.Builder, r *DivisionReport, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%sDivision %q (sheet %q)\n", prefix, r.Division, r.Sheet)
	fmt.Fprintf(b, "%s  Columns: %s\n", prefix, strings.Join(r.Catalog.Headers(), ", "))
	for _, p := range r.Rounds {
		l := p.Layout
		mode := "counting"
		if !p.Counting {
			mode = "practice"
		}
		fmt.Fprintf(b, "%s  %s [%s]\n", prefix, p.Round.Label(), mode)
		fmt.Fprintf(b, "%s    Layout: banner row %d, games %d", prefix, l.StartRow+1, l.GameRowCount)
		if l.HasFriendlyRow {
			b.WriteString(" (last is friendly)")
		}
		fmt.Fprintf(b, ", standings %d from row %d", l.StandingsRowCount, l.StandingsStartRow+1)
		if l.HasPrevious() {
			fmt.Fprintf(b, ", carries from row %d", l.PrevStandingsStartRow+1)
		}
		b.WriteByte('\n')
		for _, op := range p.Operations {
			fmt.Fprintf(b, "%s    %s\n", prefix, DescribeOperation(op))
		}
		for _, w := range p.Warnings {
			fmt.Fprintf(b, "%s    %s\n", prefix, w)
		}
	}
}
