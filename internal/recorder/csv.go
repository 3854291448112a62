package recorder

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Header is the column layout written by CSV.
var Header = []string{"t", "v", "gE", "gI", "w", "iL", "iE", "iI", "iTh"}

// CSV streams rows to a writer. Write errors are sticky and reported by
// Flush.
type CSV struct {
	Base
	units Units
	w     *csv.Writer
	err   error
	wrote bool
}

func NewCSV(w io.Writer, units Units, interval dynamo.Time) *CSV {
	return &CSV{Base: NewBase(interval), units: units, w: csv.NewWriter(w)}
}

func (c *CSV) Record(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState, forced bool) {
	if c.err != nil {
		return
	}
	t, ok := c.Accept(t, forced)
	if !ok {
		return
	}
	if !c.wrote {
		c.wrote = true
		if c.err = c.w.Write(Header); c.err != nil {
			return
		}
	}
	c.err = c.w.Write(FormatRow(c.units.Row(t, s, as)))
}

func (c *CSV) InputSpike(dynamo.Time, adexp.State)  {}
func (c *CSV) OutputSpike(dynamo.Time, adexp.State) {}

func (c *CSV) Flush() error {
	if c.err != nil {
		return c.err
	}
	c.w.Flush()
	return c.w.Error()
}

// FormatRow renders r in the column order of Header.
func FormatRow(r Row) []string {
	vals := []float64{r.T.Sec(), r.V, r.GE, r.GI, r.W, r.IL, r.IE, r.II, r.ITh}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}
