package scoresheet

import "fmt"

// NoPreviousRound is the PrevStandingsStartRow of a first round.
const NoPreviousRound = -1

// roundHeaderRows is the banner row plus the column header row above every round.
const roundHeaderRows = 2

// TeamCounts splits a division roster by region.
type TeamCounts struct {
	Home  int
	Other int // teams from the other-region program
}

// Total is the full roster size.
func (c TeamCounts) Total() int { return c.Home + c.Other }

// CountTeams tallies a roster under the division policy.
func CountTeams(teams []Team, policy DivisionPolicy) TeamCounts {
	var c TeamCounts
	for _, t := range teams {
		if policy.IsOtherRegion(t) {
			c.Other++
		} else {
			c.Home++
		}
	}
	return c
}

// RowBlock is the computed row layout of one round. Rows are 0-based.
// The score entry block and the standings block start on the same row in
// different columns; the round reserves GameRowCount+StandingsRowCount
// data rows below its two header rows.
type RowBlock struct {
	Round             int
	StartRow          int // round banner row
	GameStartRow      int
	GameRowCount      int
	HasFriendlyRow    bool // last game row does not count
	StandingsStartRow int
	StandingsRowCount int

	// PrevStandingsStartRow is the previous round's StandingsStartRow, or
	// NoPreviousRound. Carry-forward formulas read it and nothing else.
	PrevStandingsStartRow int
}

// HeaderRow is the row holding the column headers.
func (b RowBlock) HeaderRow() int { return b.StartRow + 1 }

// CountingGameRows is the number of game rows that feed the standings.
func (b RowBlock) CountingGameRows() int {
	if b.HasFriendlyRow {
		return b.GameRowCount - 1
	}
	return b.GameRowCount
}

// FriendlyRow returns the friendly game row, or -1.
func (b RowBlock) FriendlyRow() int {
	if !b.HasFriendlyRow {
		return -1
	}
	return b.GameStartRow + b.GameRowCount - 1
}

// HasPrevious reports whether a previous round exists to carry from.
func (b RowBlock) HasPrevious() bool { return b.PrevStandingsStartRow != NoPreviousRound }

// NextStartRow is where the following round's banner goes.
func (b RowBlock) NextStartRow() int {
	return b.GameStartRow + b.GameRowCount + b.StandingsRowCount
}

// EndRow is the exclusive last row used by the round.
func (b RowBlock) EndRow() int { return b.NextStartRow() }

func (b RowBlock) String() string {
	return fmt.Sprintf("round %d: start=%d games=%d@%d friendly=%t standings=%d@%d prev=%d",
		b.Round, b.StartRow, b.GameRowCount, b.GameStartRow, b.HasFriendlyRow,
		b.StandingsRowCount, b.StandingsStartRow, b.PrevStandingsStartRow)
}

// GameRowCount computes how many score entry rows a round gets and whether
// the last one is a friendly.
func GameRowCount(counts TeamCounts, policy DivisionPolicy) (rows int, friendly bool) {
	n := counts.Total()
	rows = n / 2
	if policy.Interregional() && !policy.IncludeOtherRegions && counts.Other > 0 && counts.Other >= counts.Home {
		// every home team plays an other-region team
		return counts.Home, false
	}
	if n%2 == 1 && policy.FriendlyGames {
		rows++
		friendly = true
	}
	return rows, friendly
}

// StandingsRowCount is the number of teams listed in the standings table.
func StandingsRowCount(counts TeamCounts, policy DivisionPolicy) int {
	if policy.Interregional() && !policy.IncludeOtherRegions {
		return counts.Home
	}
	return counts.Total()
}

// ComputeLayout lays out the round following prev, or the first round when
// prev is nil. Both the new round's rows and the previous standings start
// come from the same call so they cannot drift apart.
func ComputeLayout(counts TeamCounts, policy DivisionPolicy, prev *RowBlock) (RowBlock, error) {
	block := RowBlock{Round: 1, PrevStandingsStartRow: NoPreviousRound}
	if prev != nil {
		block.Round = prev.Round + 1
		block.StartRow = prev.NextStartRow()
		block.PrevStandingsStartRow = prev.StandingsStartRow
	}
	if counts.Home < 0 || counts.Other < 0 {
		return RowBlock{}, &LayoutError{Division: policy.Division, Round: block.Round, Err: ErrNegativeGameRows}
	}

	block.GameStartRow = block.StartRow + roundHeaderRows
	block.StandingsStartRow = block.GameStartRow
	block.GameRowCount, block.HasFriendlyRow = GameRowCount(counts, policy)
	block.StandingsRowCount = StandingsRowCount(counts, policy)

	switch {
	case block.GameRowCount < 0:
		return RowBlock{}, &LayoutError{Division: policy.Division, Round: block.Round, Err: ErrNegativeGameRows}
	case block.GameRowCount > counts.Total():
		return RowBlock{}, &LayoutError{Division: policy.Division, Round: block.Round,
			Err: fmt.Errorf("%w: %d rows for %d teams", ErrTooManyGameRows, block.GameRowCount, counts.Total())}
	}
	return block, nil
}

// ComputeSeasonLayout lays out every round in order.
func ComputeSeasonLayout(counts TeamCounts, policy DivisionPolicy, rounds int) ([]RowBlock, error) {
	blocks := make([]RowBlock, 0, rounds)
	var prev *RowBlock
	for r := 0; r < rounds; r++ {
		b, err := ComputeLayout(counts, policy, prev)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
		prev = &blocks[len(blocks)-1]
	}
	return blocks, nil
}
