package scoresheet

// TeamSheetOperations writes the roster sheet every other sheet points at:
// per division a header row directly above the first anchor, then each
// team's name in its anchor cell.
func TeamSheetOperations(sheet string, divisions []DivisionRoster, palette Palette) []Operation {
	var ops []Operation
	for _, d := range divisions {
		if len(d.Teams) == 0 {
			continue
		}
		first := d.Teams[0].Anchor
		headerRow := first.Row - 1
		ops = append(ops,
			InsertRows{Sheet: sheet, Row: headerRow, Col: first.Col, Rows: [][]Cell{{Text(d.Policy.Division)}}},
			SetCellStyle{
				Range: GridRange{Sheet: sheet, StartRow: headerRow, EndRow: headerRow + 1, StartCol: first.Col, EndCol: first.Col + 1},
				Style: Style{Bold: true, Background: palette.TeamsHeader},
			},
		)
		for _, t := range d.Teams {
			ops = append(ops, InsertRows{Sheet: sheet, Row: t.Anchor.Row, Col: t.Anchor.Col, Rows: [][]Cell{{Text(t.Name)}}})
		}
	}
	ops = append(ops, SetColumnWidth{Range: GridRange{Sheet: sheet, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1}, Width: 30})
	return ops
}
