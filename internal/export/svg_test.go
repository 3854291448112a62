package export

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/recorder"
)

func wellFormed(t *testing.T, svg string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("malformed svg: %v\n%s", err, svg)
		}
	}
}

func TestTraceToSVG(t *testing.T) {
	rows := []recorder.Row{
		{T: dynamo.FromSec(0), V: -0.070},
		{T: dynamo.FromSec(0.005), V: -0.060},
		{T: dynamo.FromSec(0.010), V: 0.020},
		{T: dynamo.FromSec(0.010) + dynamo.Tick, V: -0.080},
	}
	opts := DefaultTraceOptions()

	svg := TraceToSVG(rows, []float64{0.010}, opts)
	wellFormed(t, svg)
	if strings.Count(svg, "<line ") != 1 {
		t.Errorf("want one spike marker:\n%s", svg)
	}
	if !strings.Contains(svg, opts.Stroke) || !strings.Contains(svg, opts.SpikeStroke) {
		t.Error("colors missing")
	}
	// 10% padding keeps the first vertex off the edges
	if !strings.Contains(svg, `d="M66.7,250.0`) {
		t.Errorf("first vertex not padded:\n%s", svg)
	}
	if strings.Count(svg, " L") != len(rows)-1 {
		t.Errorf("want %d segments:\n%s", len(rows)-1, svg)
	}
	if TraceToSVG(rows[:1], nil, opts) != "" {
		t.Error("single row rendered")
	}
}
