// Package charts renders ledger statistics as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("charts: no data to render")

// Point is one sample of a time series.
type Point struct {
	Date  time.Time
	Value float64
}

// Renderer draws bar and line charts.
type Renderer interface {
	RenderBar(title string, labels []string, values []float64) ([]byte, error)
	RenderLine(title string, points []Point) ([]byte, error)
}

// PNGRenderer renders charts with go-chart.
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer with the default image size.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 1024, Height: 512}
}

// RenderBar draws one bar per label.
func (r *PNGRenderer) RenderBar(title string, labels []string, values []float64) ([]byte, error) {
	if len(labels) == 0 || len(labels) != len(values) {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, len(labels))
	maxValue := 0.0
	for i, label := range labels {
		bars[i] = chart.Value{Label: label, Value: values[i]}
		if values[i] > maxValue {
			maxValue = values[i]
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderLine draws a single time series.
func (r *PNGRenderer) RenderLine(title string, points []Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	minY, maxY := points[0].Value, points[0].Value
	for i, p := range points {
		xs[i] = p.Date
		ys[i] = p.Value
		if p.Value < minY {
			minY = p.Value
		}
		if p.Value > maxY {
			maxY = p.Value
		}
	}

	// go-chart refuses ranges with zero width.
	if minY == maxY {
		minY, maxY = minY-1, maxY+1
	}
	minX, maxX := xs[0], xs[len(xs)-1]
	if !maxX.After(minX) {
		minX, maxX = minX.Add(-12*time.Hour), maxX.Add(12*time.Hour)
	}

	graph := chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minX), Max: chart.TimeToFloat64(maxX)},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: []chart.Series{
			chart.TimeSeries{XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering line chart: %w", err)
	}
	return buf.Bytes(), nil
}
