package report

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// WriteChart renders the burning count over time as a PNG line chart.
func (r Report) WriteChart(w io.Writer, width, height int) error {
	if len(r.Burning) == 0 {
		return fmt.Errorf("render chart: empty series")
	}
	xs := make([]float64, len(r.Burning))
	ys := make([]float64, len(r.Burning))
	maxY := 0.0
	for i, v := range r.Burning {
		xs[i] = float64(i)
		ys[i] = float64(v)
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

	xAxis := chart.XAxis{
		Name: "Time",
		ValueFormatter: func(v interface{}) string {
			return fmt.Sprintf("%d", int(v.(float64)))
		},
	}
	if len(xs) < 2 {
		xAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}
	yAxis := chart.YAxis{
		Name: "Number of Burning Trees",
		ValueFormatter: func(v interface{}) string {
			return fmt.Sprintf("%d", int(v.(float64)))
		},
		Range: &chart.ContinuousRange{Min: 0, Max: maxY},
	}
	if maxY == 0 {
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	graph := chart.Chart{
		Title:  r.Title(),
		Width:  width,
		Height: height,
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "burning",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
