package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/adexsim/internal/recorder"
)

// Point is one vertex of a plotted curve.
type Point struct{ X, Y float64 }

// TraceOptions controls the SVG rendering of a trace.
type TraceOptions struct {
	Width, Height int
	Stroke        string
	SpikeStroke   string
}

func DefaultTraceOptions() TraceOptions {
	return TraceOptions{Width: 800, Height: 300, Stroke: "#00ccff", SpikeStroke: "#ff4444"}
}

// bounds of points padded by 10% on each side
type bounds struct {
	minX, minY     float64
	rangeX, rangeY float64
}

func boundsOf(points []Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}

func writeHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func writePath(sb *strings.Builder, points []Point, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.project(p, width, height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TraceToSVG plots the membrane potential in mV over time in ms and marks
// each output spike (seconds) with a vertical line.
func TraceToSVG(rows []recorder.Row, outputSpikes []float64, opts TraceOptions) string {
	if len(rows) < 2 {
		return ""
	}

	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{X: r.T.Sec() * 1e3, Y: r.V * 1e3}
	}
	b := boundsOf(points)

	var sb strings.Builder
	writeHeader(&sb, opts.Width, opts.Height)
	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1\" stroke-dasharray=\"4 3\">\n", opts.SpikeStroke)
	for _, t := range outputSpikes {
		x, _ := b.project(Point{X: t * 1e3}, opts.Width, opts.Height)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"0\" x2=\"%.1f\" y2=\"%d\"/>\n", x, x, opts.Height)
	}
	sb.WriteString("</g>\n")
	writePath(&sb, points, b, opts.Width, opts.Height, opts.Stroke)
	sb.WriteString("</svg>")
	return sb.String()
}
