package dashboard

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"SignalDesk/internal/model"
)

var (
	closeColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	maColor    = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// RenderChart writes a Close vs MA20 line chart of table as SVG.
func RenderChart(w io.Writer, table *model.Table) error {
	if table == nil || table.Len() == 0 {
		return fmt.Errorf("chart: empty table")
	}

	closes := make(plotter.XYs, table.Len())
	mas := make(plotter.XYs, table.Len())
	for i, row := range table.Rows {
		x := float64(row.Time.Unix())
		closes[i] = plotter.XY{X: x, Y: row.Close}
		mas[i] = plotter.XY{X: x, Y: row.MA20}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Close & MA20", table.Symbol)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Y.Label.Text = "Price"
	p.Add(plotter.NewGrid())

	closeLine, err := plotter.NewLine(closes)
	if err != nil {
		return fmt.Errorf("chart close line: %w", err)
	}
	closeLine.Color = closeColor
	closeLine.Width = vg.Points(1.2)

	maLine, err := plotter.NewLine(mas)
	if err != nil {
		return fmt.Errorf("chart ma line: %w", err)
	}
	maLine.Color = maColor
	maLine.Width = vg.Points(1.2)

	p.Add(closeLine, maLine)
	p.Legend.Add("Close", closeLine)
	p.Legend.Add("MA20", maLine)
	p.Legend.Top = true
	p.Legend.Left = true

	wt, err := p.WriterTo(9*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return fmt.Errorf("chart render: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart write: %w", err)
	}
	return nil
}
