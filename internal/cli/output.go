package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/valyala/fastjson"
	"github.com/viant/swarmdb/logdb"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type printer interface {
	Print(p logdb.Pair) error
	Flush() error
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case formatText, "":
		return &textPrinter{w: bufio.NewWriter(w)}, nil
	case formatJSON:
		return &jsonPrinter{w: bufio.NewWriter(w)}, nil
	}
	return nil, fmt.Errorf("unsupported format %q (want %s or %s)", format, formatText, formatJSON)
}

// textPrinter writes one line per body:
//
//	event time system body mass x y z vx vy vz flags
type textPrinter struct {
	w *bufio.Writer
}

func (p *textPrinter) Print(pair logdb.Pair) error {
	r := &pair.Record
	for i, b := range r.Bodies {
		_, err := fmt.Fprintf(p.w, "%10d %g  %5d %5d  %g  %9.5g %9.5g %9.5g  %9.5g %9.5g %9.5g  %d\n",
			r.EventID, r.Time, pair.SystemID, i, b.Mass,
			b.Pos[0], b.Pos[1], b.Pos[2], b.Vel[0], b.Vel[1], b.Vel[2], r.Flags)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *textPrinter) Flush() error { return p.w.Flush() }

// jsonPrinter writes one JSON object per record.
type jsonPrinter struct {
	w     *bufio.Writer
	arena fastjson.Arena
	buf   []byte
}

func (p *jsonPrinter) Print(pair logdb.Pair) error {
	a := &p.arena
	defer a.Reset()
	r := &pair.Record
	obj := a.NewObject()
	obj.Set("sys", a.NewNumberInt(pair.SystemID))
	obj.Set("time", p.number(r.Time))
	obj.Set("event", a.NewString(r.EventID.String()))
	obj.Set("eventId", a.NewNumberInt(int(r.EventID)))
	obj.Set("flags", a.NewNumberInt(int(r.Flags)))
	bodies := a.NewArray()
	for i, b := range r.Bodies {
		body := a.NewObject()
		body.Set("mass", p.number(b.Mass))
		body.Set("pos", p.vector(b.Pos))
		body.Set("vel", p.vector(b.Vel))
		bodies.SetArrayItem(i, body)
	}
	obj.Set("bodies", bodies)
	p.buf = obj.MarshalTo(p.buf[:0])
	p.buf = append(p.buf, '\n')
	_, err := p.w.Write(p.buf)
	return err
}

// number maps non-finite values, which JSON cannot carry, to null.
func (p *jsonPrinter) number(v float64) *fastjson.Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return p.arena.NewNull()
	}
	return p.arena.NewNumberFloat64(v)
}

func (p *jsonPrinter) vector(v [3]float64) *fastjson.Value {
	ret := p.arena.NewArray()
	for i, c := range v {
		ret.SetArrayItem(i, p.number(c))
	}
	return ret
}

func (p *jsonPrinter) Flush() error { return p.w.Flush() }
