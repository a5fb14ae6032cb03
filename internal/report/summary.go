package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"btax/internal/tax"
)

type yearTotals struct {
	short decimal.Decimal
	long  decimal.Decimal
}

func totalsByYear(gains []tax.CapitalGain) (map[int]*yearTotals, []int) {
	totals := make(map[int]*yearTotals)
	for _, g := range gains {
		yt, ok := totals[g.Year()]
		if !ok {
			yt = &yearTotals{short: decimal.Zero, long: decimal.Zero}
			totals[g.Year()] = yt
		}

		if g.Duration() == tax.Long {
			yt.long = yt.long.Add(g.Gain())
		} else {
			yt.short = yt.short.Add(g.Gain())
		}
	}

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	return totals, years
}

// WriteSummary renders a per-year table of short, long and total gains.
func WriteSummary(w io.Writer, gains []tax.CapitalGain) error {
	totals, years := totalsByYear(gains)

	table := tablewriter.NewWriter(w)
	table.Header("Year", "Short-term", "Long-term", "Total")

	for _, y := range years {
		yt := totals[y]
		table.Append(
			strconv.Itoa(y),
			yt.short.StringFixed(2),
			yt.long.StringFixed(2),
			yt.short.Add(yt.long).StringFixed(2),
		)
	}

	return table.Render()
}
