/*
stats.go - Attendance and shift-mix summary over a reconciled range

Summarizes a combined snapshot into per-person and aggregate counts. Ratios
use decimal arithmetic so 1/3 of a week doesn't accumulate float dust when
aggregated across a team.
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// ratioPlaces is the rounding applied to attendance ratios.
const ratioPlaces = 4

// PersonSummary aggregates one person's resolved cells.
type PersonSummary struct {
	Email       string
	WorkingDays int
	OfficeDays  int
	HomeDays    int
	// OfficeRatio is OfficeDays / days with a concrete roster value.
	OfficeRatio decimal.Decimal
	ShiftCounts map[ShiftLabel]int
}

// RangeSummary aggregates a whole snapshot.
type RangeSummary struct {
	People      []PersonSummary
	OfficeRatio decimal.Decimal
}

// Summarize computes attendance stats from a combined snapshot. Cells whose
// roster half is "N/A" do not count toward the ratio denominator.
func Summarize(records []CombinedRecord) RangeSummary {
	summary := RangeSummary{People: make([]PersonSummary, 0, len(records))}
	totalOffice, totalConcrete := 0, 0

	for _, rec := range records {
		ps := PersonSummary{
			Email:       rec.Email,
			ShiftCounts: make(map[ShiftLabel]int),
		}
		for _, cell := range rec.Cells {
			ps.WorkingDays++
			roster, shift := SplitCell(cell)
			switch RosterValue(roster) {
			case WFO:
				ps.OfficeDays++
			case WFH:
				ps.HomeDays++
			}
			ps.ShiftCounts[ShiftLabel(shift)]++
		}

		concrete := ps.OfficeDays + ps.HomeDays
		ps.OfficeRatio = ratio(ps.OfficeDays, concrete)
		totalOffice += ps.OfficeDays
		totalConcrete += concrete

		summary.People = append(summary.People, ps)
	}

	summary.OfficeRatio = ratio(totalOffice, totalConcrete)
	return summary
}

func ratio(numerator, denominator int) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(numerator)).
		Div(decimal.NewFromInt(int64(denominator))).
		Round(ratioPlaces)
}
