package scoresheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// cellRefRegex matches a cell reference at the start of the input (e.g. A1, $A$1, $F3).
var cellRefRegex = regexp.MustCompile(`^(\$?)([A-Z]{1,3})(\$?)(\d+)`)

// ShiftRows moves every relative row reference in formula down by delta
// rows. Absolute rows ($3), string literals and quoted sheet names are
// left alone. It is how a FillFormula template becomes the formula of
// each row below the first.
func ShiftRows(formula string, delta int) string {
	if delta == 0 {
		return formula
	}
	var b strings.Builder
	b.Grow(len(formula) + 8)
	for i := 0; i < len(formula); {
		ch := formula[i]
		switch {
		case ch == '"' || ch == '\'':
			end := closingQuote(formula, i)
			b.WriteString(formula[i:end])
			i = end
			continue
		case (ch == '$' || isAlpha(ch)) && !isIdentByte(prevByte(formula, i)):
			if m := cellRefRegex.FindStringSubmatchIndex(formula[i:]); m != nil && !continuesIdent(formula, i+m[1]) {
				colAbs, col := formula[i+m[2]:i+m[3]], formula[i+m[4]:i+m[5]]
				rowAbs, row := formula[i+m[6]:i+m[7]], formula[i+m[8]:i+m[9]]
				if rowAbs == "" {
					n, _ := strconv.Atoi(row)
					row = strconv.Itoa(n + delta)
				}
				b.WriteString(colAbs + col + rowAbs + row)
				i += m[1]
				continue
			}
			// a function or name: copy the whole identifier
			j := i + 1
			for j < len(formula) && isIdentByte(formula[j]) {
				j++
			}
			b.WriteString(formula[i:j])
			i = j
			continue
		}
		b.WriteByte(ch)
		i++
	}
	return b.String()
}

// closingQuote returns the index just past the literal opened at start,
// treating a doubled quote as an escaped one.
func closingQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

func prevByte(s string, i int) byte {
	if i == 0 {
		return 0
	}
	return s[i-1]
}

func isIdentByte(b byte) bool {
	return isAlpha(b) || (b >= '0' && b <= '9') || b == '_' || b == '.'
}

// continuesIdent reports whether a match ending at i is really a prefix of
// a longer name such as LOG10( or a defined name.
func continuesIdent(s string, i int) bool {
	return i < len(s) && (isIdentByte(s[i]) || s[i] == '(')
}

// FormulaRefs returns the cell and range references in a formula as
// written, e.g. "'Ref Pts'!B3" or "$A$3:$A$6".
func FormulaRefs(formula string) []string {
	ps := efp.ExcelParser()
	var refs []string
	for _, t := range ps.Parse(formula) {
		if t.TType == efp.TokenTypeOperand && t.TSubType == efp.TokenSubTypeRange {
			refs = append(refs, t.TValue)
		}
	}
	return refs
}

// RefSheet returns the sheet part of a reference, unquoted, or "" for a
// reference on the current sheet.
func RefSheet(ref string) string {
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return ""
	}
	return strings.ReplaceAll(strings.Trim(ref[:idx], "'"), "''", "'")
}

// LintFormula checks that a generated formula is well formed: it starts
// with '=', tokenizes cleanly and has balanced parentheses.
func LintFormula(formula string) error {
	if !strings.HasPrefix(formula, "=") {
		return fmt.Errorf("formula %q does not start with '='", formula)
	}
	if len(formula) == 1 {
		return fmt.Errorf("formula is empty")
	}
	if strings.Count(formula, `"`)%2 != 0 {
		return fmt.Errorf("formula %q has an unterminated string", formula)
	}
	depth := 0
	for i := 0; i < len(formula); i++ {
		switch formula[i] {
		case '"', '\'':
			i = closingQuote(formula, i) - 1
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return fmt.Errorf("formula %q closes a parenthesis it never opened", formula)
		}
	}
	if depth != 0 {
		return fmt.Errorf("formula %q has %d unclosed parenthesis(es)", formula, depth)
	}

	ps := efp.ExcelParser()
	for _, t := range ps.Parse(formula) {
		if t.TType == efp.TokenTypeUnknown {
			return fmt.Errorf("formula %q has an unrecognized token %q", formula, t.TValue)
		}
	}
	return nil
}
