package chart

import (
	"fmt"
	"html"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	width      = "400px"
	height     = "400px"
	symbolSize = 8
)

// value indexes of a point within the chart data.
const (
	xIdx = iota
	yIdx
	colorIdx
	imageIdx
	valueIdx
)

// pointColor colors every point with the color carried in its data.
var pointColor = opts.FuncOpts(fmt.Sprintf(`function (p) { return p.value[%d]; }`, colorIdx))

// tooltip shows the image of the point floated left of its label.
var tooltip = opts.FuncOpts(fmt.Sprintf(`function (p) {
  var img = p.value[%d], label = '<span style="float:right;font-size:16px;font-weight:bold">' + p.value[%d] + '</span>';
  if (!img) { return label; }
  return '<img src="' + img + '" height="16" width="16" style="float:left;margin:0 15px 15px 0;border:2px solid #fff;image-rendering:pixelated">' + label;
}`, imageIdx, valueIdx))

// data converts the points into chart data.
// The chart options are written unescaped into the page script, so strings are escaped here.
func (s *Scatter) data() []opts.ScatterData {
	data := make([]opts.ScatterData, len(s.Points))
	for i, p := range s.Points {
		data[i] = opts.ScatterData{
			Value:      []interface{}{p.X, p.Y, p.Color, html.EscapeString(p.Image), html.EscapeString(p.Value())},
			SymbolSize: symbolSize,
		}
	}
	return data
}

// chart creates the interactive chart of the scatter.
// Wheel and drag zoom and pan the axes, the toolbox restores the initial view.
func (s *Scatter) chart() *charts.Scatter {
	title := html.EscapeString(s.Title)
	c := charts.NewScatter()
	c.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: s.Title,
			Width:     width,
			Height:    height,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: false}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      true,
			Trigger:   "item",
			Formatter: tooltip,
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: true}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "inside", YAxisIndex: []int{0}},
		),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				Restore: &opts.ToolBoxFeatureRestore{Show: true, Title: "reset"},
			},
		}),
	)
	c.AddSeries(title, s.data(), charts.WithItemStyleOpts(opts.ItemStyle{Color: pointColor}))
	return c
}

// HTML writes the interactive page of the scatter.
func (s *Scatter) HTML(w io.Writer) error {
	return WriteHTML(w, s.Title, []*Scatter{s})
}

// WriteHTML writes an interactive page with the scatters side by side.
// Hovering a point shows its image and label.
func WriteHTML(w io.Writer, title string, scatters []*Scatter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	for _, s := range scatters {
		page.AddCharts(s.chart())
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("could not render page '%s': %w", title, err)
	}
	return nil
}

// SaveHTML writes the page of the scatters into the given file.
func SaveHTML(file, title string, scatters []*Scatter) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", file, err)
	}
	defer f.Close()
	return WriteHTML(f, title, scatters)
}
