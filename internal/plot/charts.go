package plot

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/storage"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const dpi = 150

var ErrNoData = errors.New("plot: no data")

var peakColor = color.RGBA{R: 220, A: 255}

type series struct {
	title  string
	ylabel string
	value  func(storage.TrajectoryRow) float64
	color  color.Color
}

var trajectoryPanels = []series{
	{"Buoy Displacement", "z (m)", func(r storage.TrajectoryRow) float64 { return r.Displacement }, color.RGBA{R: 200, G: 40, B: 40, A: 255}},
	{"Buoy Velocity", "v (m/s)", func(r storage.TrajectoryRow) float64 { return r.Velocity }, color.RGBA{R: 130, G: 40, B: 160, A: 255}},
	{"Wave Forcing", "force (kN)", func(r storage.TrajectoryRow) float64 { return r.Forcing / 1000 }, color.RGBA{G: 90, B: 200, A: 255}},
	{"Buoy Acceleration", "accel (m/s²)", func(r storage.TrajectoryRow) float64 { return r.Acceleration }, color.RGBA{R: 230, G: 120, A: 255}},
}

// Trajectory stacks displacement, velocity, forcing and acceleration of
// rows into one PNG. A non-nil peak is marked on the acceleration panel.
func Trajectory(path string, rows []storage.TrajectoryRow, peak *analysis.Peak) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	plots := make([][]*plot.Plot, len(trajectoryPanels))
	for i, s := range trajectoryPanels {
		p := plot.New()
		p.Title.Text = s.title
		p.Y.Label.Text = s.ylabel
		if i == len(trajectoryPanels)-1 {
			p.X.Label.Text = "time (s)"
		}
		stylePlot(p)
		p.Add(plotter.NewGrid())

		pts := make(plotter.XYs, len(rows))
		for j, r := range rows {
			pts[j].X = r.Time
			pts[j].Y = s.value(r)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot: %s: %w", s.title, err)
		}
		line.LineStyle.Width = vg.Points(1.2)
		line.LineStyle.Color = s.color
		p.Add(line)
		plots[i] = []*plot.Plot{p}
	}

	if peak != nil {
		marker, err := plotter.NewScatter(plotter.XYs{{X: peak.Time, Y: peak.Accel}})
		if err != nil {
			return fmt.Errorf("plot: peak marker: %w", err)
		}
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Color = peakColor
		marker.GlyphStyle.Radius = vg.Points(4)
		p := plots[len(plots)-1][0]
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("peak %.3f m/s² (%.2f g) at %.2f s", peak.Accel, peak.G, peak.Time), marker)
		p.Legend.Top = true
	}

	return saveTiles(plots, 10, 3*float64(len(plots)), path)
}

// ScanCurves draws mean power against buoy mass, one curve per damping.
func ScanCurves(path string, scan []storage.ScanRow) error {
	if len(scan) == 0 {
		return ErrNoData
	}

	byDamping := make(map[float64]plotter.XYs)
	for _, r := range scan {
		byDamping[r.Damping] = append(byDamping[r.Damping], plotter.XY{X: r.Mass / 1000, Y: r.PowerW / 1000})
	}
	dampings := make([]float64, 0, len(byDamping))
	for c := range byDamping {
		dampings = append(dampings, c)
	}
	sort.Float64s(dampings)

	p := plot.New()
	p.Title.Text = "Mean Power vs Buoy Mass"
	p.X.Label.Text = "mass (t)"
	p.Y.Label.Text = "power (kW)"
	stylePlot(p)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, c := range dampings {
		pts := byDamping[c]
		sort.Slice(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("plot: damping %g: %w", c, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("c = %.0f kN·s/m", c/1000), line, points)
	}

	return saveTiles([][]*plot.Plot{{p}}, 10, 6, path)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(6)

	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.X.Tick.Label.Font.Size = vg.Points(9)
	p.Y.Tick.Label.Font.Size = vg.Points(9)

	p.X.LineStyle.Width = vg.Points(1)
	p.Y.LineStyle.Width = vg.Points(1)
}

func saveTiles(plots [][]*plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("plot: cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	dc := draw.New(c)

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("plot: cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("plot: cannot write png: %w", err)
	}
	return bw.Flush()
}
