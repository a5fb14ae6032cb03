package report

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"btax/internal/tax"
)

const (
	chartWidth       = 640
	chartPanelHeight = 240
	chartBarWidth    = 24
)

// WriteChart renders per-year short-term and long-term gain totals as two
// stacked bar chart panels and saves them as a PNG at path.
func WriteChart(path string, gains []tax.CapitalGain) (err error) {
	totals, years := totalsByYear(gains)

	labels := make([]string, len(years))
	short := make(plotter.Values, len(years))
	long := make(plotter.Values, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
		short[i], _ = totals[y].short.Float64()
		long[i], _ = totals[y].long.Float64()
	}

	shortPanel, err := gainPanel("Short-term gains", labels, short)
	if err != nil {
		return err
	}
	longPanel, err := gainPanel("Long-term gains", labels, long)
	if err != nil {
		return err
	}

	panels := []*plot.Plot{shortPanel, longPanel}
	plotext.UniteAxisRanges([]*plot.Axis{&shortPanel.Y, &longPanel.Y})

	tbl := plotext.Table{
		RowHeights: []float64{1, 1},
		ColWidths:  []float64{1},
	}

	img := vgimg.New(vg.Points(chartWidth), vg.Points(2*chartPanelHeight))
	dc := draw.New(img)

	canvases := tbl.Align([][]*plot.Plot{{shortPanel}, {longPanel}}, dc)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close chart file: %w", cerr))
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write chart to file: %w", err)
	}

	return nil
}

func gainPanel(title string, labels []string, vals plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "USD"

	bars, err := plotter.NewBarChart(vals, vg.Points(chartBarWidth))
	if err != nil {
		return nil, fmt.Errorf("failed to create %q chart: %w", title, err)
	}

	p.Add(bars)
	p.NominalX(labels...)

	return p, nil
}
