package chart

import (
	"fmt"
	"image/color"
	"os"

	embedcolor "github.com/drakos74/digits-embed/internal/color"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// Size is the edge length of a single static plot.
	Size = 6 * vg.Inch

	radius = 2
)

// Plot creates the static plot of the scatter.
func (s *Scatter) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title

	xys := make(plotter.XYs, len(s.Points))
	colors := make([]color.Color, len(s.Points))
	for i, pt := range s.Points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
		c, err := embedcolor.ParseHex(pt.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid color for point %d: %w", i, err)
		}
		colors[i] = c
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("could not create scatter for '%s': %w", s.Title, err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  colors[i],
			Radius: vg.Points(radius),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(sc)
	return p, nil
}

// SavePNG renders the scatter into the given png file.
func (s *Scatter) SavePNG(file string) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	if err := p.Save(Size, Size, file); err != nil {
		return fmt.Errorf("could not save plot '%s': %w", file, err)
	}
	return nil
}

// SaveGridPNG renders the scatters side by side into the given png file.
func SaveGridPNG(file string, scatters []*Scatter) error {
	if len(scatters) == 0 {
		return fmt.Errorf("no plots for grid")
	}
	row := make([]*plot.Plot, len(scatters))
	for i, s := range scatters {
		p, err := s.Plot()
		if err != nil {
			return err
		}
		row[i] = p
	}

	img := vgimg.New(Size*vg.Length(len(row)), Size)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(row),
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, dc)
	for j, p := range row {
		p.Draw(canvases[0][j])
	}

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", file, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("could not write grid '%s': %w", file, err)
	}
	return nil
}
