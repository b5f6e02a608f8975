package scoresheet

import (
	"fmt"
)

// Validate checks a planned workbook without rendering it. Every formula
// is linted and every cross-sheet reference must name a planned sheet. The
// anchor warnings collected while planning are included. The plan is
// usable only when no issue has SeverityError.
func Validate(plan *WorkbookPlan) []Issue {
	sheets := make(map[string]bool)
	for _, s := range plan.Sheets() {
		sheets[s.Name] = true
	}

	var issues []Issue
	issues = append(issues, validateOperations("", 0, plan.Teams.Operations, sheets)...)
	for _, s := range plan.Adjustments {
		issues = append(issues, validateOperations("", 0, s.Operations, sheets)...)
	}
	for _, d := range plan.Divisions {
		issues = append(issues, validateOperations(d.Division, 0, d.Setup, sheets)...)
		for _, r := range d.Rounds {
			issues = append(issues, validateOperations(d.Division, r.Round.Number, r.Operations, sheets)...)
			issues = append(issues, r.Warnings...)
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, v := range issues {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateOperations(division string, round int, ops []Operation, sheets map[string]bool) []Issue {
	var issues []Issue
	check := func(ref CellRef, formula string) {
		if issue := checkFormula(division, round, ref, formula, sheets); issue != nil {
			issues = append(issues, *issue)
		}
	}
	for _, op := range ops {
		switch o := op.(type) {
		case FillFormula:
			if o.Range.Empty() {
				issues = append(issues, Issue{
					Severity: SeverityError, Division: division, Round: round,
					Message: fmt.Sprintf("formula fill over empty range %s", o.Range),
				})
				continue
			}
			check(o.Range.First(), o.Template)
		case InsertRows:
			for i, row := range o.Rows {
				for j, c := range row {
					if c.Formula != "" {
						check(NewCellRef(o.Sheet, o.Row+i, o.Col+j), c.Formula)
					}
				}
			}
		case SetValidation:
			if !sheets[o.Source.Sheet] {
				issues = append(issues, Issue{
					Severity: SeverityError, Division: division, Round: round, CellRef: o.Range.First(),
					Message: fmt.Sprintf("dropdown source %s is on a sheet that is not generated", o.Source),
				})
			}
		}
	}
	return issues
}

// checkFormula lints one formula and its sheet references.
func checkFormula(division string, round int, ref CellRef, formula string, sheets map[string]bool) *Issue {
	if err := LintFormula(formula); err != nil {
		return &Issue{Severity: SeverityError, Division: division, Round: round, CellRef: ref, Message: err.Error()}
	}
	for _, r := range FormulaRefs(formula) {
		if sheet := RefSheet(r); sheet != "" && !sheets[sheet] {
			return &Issue{
				Severity: SeverityError, Division: division, Round: round, CellRef: ref,
				Message: fmt.Sprintf("reference %s points at sheet %q which is not generated", r, sheet),
			}
		}
	}
	return nil
}
