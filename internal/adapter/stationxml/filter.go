// Package stationxml trims an FDSN StationXML inventory down to a set of
// stations.
//
// The document is streamed token by token and written back without
// namespace rewriting, so prefixes, attribute order, comments and the
// elements the filter does not care about come out as they went in.
// Only two things change: Station elements whose code is not kept are
// removed (along with any Network left without stations), and the
// Elevation values of kept stations and their channels are rescaled.
package stationxml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/seismic-netprep/internal/domain"
)

// DefaultElevationScale converts metres to a kilometre value. The unit
// attribute is left as is.
const DefaultElevationScale = 0.001

// ErrNoStations is returned when none of the requested stations occur in
// the inventory.
var ErrNoStations = errors.New("no listed station found in inventory")

// Summary reports the outcome of a [Filter] run.
type Summary struct {
	// Kept counts the Station elements written. A code listed under
	// several networks is counted once per network.
	Kept int
	// Missing holds the requested codes with no Station in the inventory,
	// in request order.
	Missing []string
}

// Filter copies the inventory read from r to w, keeping only stations
// whose code is in codes and multiplying their elevations by scale.
//
// Output is written as the input is consumed; callers that must not leave
// a partial file behind on error should filter into a buffer first.
func Filter(r io.Reader, w io.Writer, codes []string, scale float64) (Summary, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return Summary{}, fmt.Errorf("%w: elevation scale must be positive, got %v", domain.ErrInvalidParameter, scale)
	}
	keep := make(map[string]bool, len(codes))
	for _, c := range codes {
		keep[c] = true
	}

	bw := bufio.NewWriter(w)
	f := &filter{
		dec:     xml.NewDecoder(r),
		out:     bw,
		keep:    keep,
		matched: make(map[string]bool, len(keep)),
		divisor: 1 / scale,
	}
	if err := f.run(); err != nil {
		return f.summary(codes), err
	}
	if err := bw.Flush(); err != nil {
		return f.summary(codes), fmt.Errorf("write inventory: %w", err)
	}
	sum := f.summary(codes)
	if sum.Kept == 0 {
		return sum, ErrNoStations
	}
	return sum, nil
}

type filter struct {
	dec *xml.Decoder
	out *bufio.Writer

	keep    map[string]bool
	matched map[string]bool
	// Elevations are divided by the reciprocal of the scale so that the
	// usual 0.001 gives the same digits as dividing by 1000.
	divisor float64

	stack   []string
	pending []byte // whitespace held until the next sibling is known

	network     *bytes.Buffer
	networkKept int
	station     *bytes.Buffer
	stationCode string

	kept int
}

func (f *filter) summary(codes []string) Summary {
	sum := Summary{Kept: f.kept}
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if !f.matched[c] && !seen[c] {
			sum.Missing = append(sum.Missing, c)
		}
		seen[c] = true
	}
	return sum
}

func (f *filter) run() error {
	for {
		tok, err := f.dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return f.malformed(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f.start(t)
		case xml.EndElement:
			if len(f.stack) == 0 {
				return f.malformed(fmt.Errorf("unexpected </%s>", qname(t.Name)))
			}
			f.end(t)
		case xml.CharData:
			if err := f.text(t); err != nil {
				return err
			}
		case xml.Comment:
			f.flushPending()
			f.sink().WriteString("<!--")
			f.sink().Write(t)
			f.sink().WriteString("-->")
		case xml.ProcInst:
			f.flushPending()
			f.sink().WriteString("<?" + t.Target)
			if len(t.Inst) > 0 {
				f.sink().WriteByte(' ')
				f.sink().Write(t.Inst)
			}
			f.sink().WriteString("?>")
		case xml.Directive:
			f.flushPending()
			f.sink().WriteString("<!")
			f.sink().Write(t)
			f.sink().WriteByte('>')
		}
	}
	if len(f.stack) > 0 {
		return f.malformed(fmt.Errorf("unclosed <%s>", f.stack[len(f.stack)-1]))
	}
	f.flushPending()
	return nil
}

func (f *filter) start(t xml.StartElement) {
	parent := f.parent(0)
	f.stack = append(f.stack, t.Name.Local)

	switch {
	case t.Name.Local == "Network" && parent == "FDSNStationXML":
		f.network = new(bytes.Buffer)
		f.networkKept = 0
		f.takePending(f.network)
	case t.Name.Local == "Station" && parent == "Network" && f.network != nil:
		f.station = new(bytes.Buffer)
		f.stationCode = attr(t, "code")
		f.takePending(f.station)
	default:
		f.flushPending()
	}

	s := f.sink()
	s.WriteByte('<')
	s.WriteString(qname(t.Name))
	for _, a := range t.Attr {
		s.WriteByte(' ')
		s.WriteString(qname(a.Name))
		s.WriteString(`="`)
		s.WriteString(attrEscaper.Replace(a.Value))
		s.WriteByte('"')
	}
	s.WriteByte('>')
}

func (f *filter) end(t xml.EndElement) {
	f.flushPending()
	s := f.sink()
	s.WriteString("</")
	s.WriteString(qname(t.Name))
	s.WriteByte('>')

	name := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	parent := f.parent(0)

	switch {
	case name == "Station" && parent == "Network" && f.station != nil:
		if f.keep[f.stationCode] {
			f.network.Write(f.station.Bytes())
			f.networkKept++
			f.kept++
			f.matched[f.stationCode] = true
		}
		f.station = nil
	case name == "Network" && parent == "FDSNStationXML" && f.network != nil:
		if f.networkKept > 0 {
			f.out.Write(f.network.Bytes())
		}
		f.network = nil
	}
}

func (f *filter) text(t xml.CharData) error {
	top := f.parent(0)
	if (top == "FDSNStationXML" || top == "Network") && len(bytes.TrimSpace(t)) == 0 {
		f.pending = append(f.pending, t...)
		return nil
	}
	f.flushPending()

	if top == "Elevation" && f.station != nil {
		if owner := f.parent(1); owner == "Station" || owner == "Channel" {
			v, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
			if err != nil {
				return f.malformed(fmt.Errorf("station %s elevation %q: %w", f.stationCode, string(t), err))
			}
			f.sink().WriteString(strconv.FormatFloat(v/f.divisor, 'f', -1, 64))
			return nil
		}
	}
	f.sink().WriteString(textEscaper.Replace(string(t)))
	return nil
}

// sink is the buffer of the innermost element still awaiting a keep or
// drop decision, or the output itself.
func (f *filter) sink() interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
} {
	switch {
	case f.station != nil:
		return f.station
	case f.network != nil:
		return f.network
	default:
		return f.out
	}
}

func (f *filter) flushPending() {
	if len(f.pending) > 0 {
		f.sink().Write(f.pending)
		f.pending = f.pending[:0]
	}
}

// takePending moves held whitespace into buf so it is dropped together
// with the element that follows it.
func (f *filter) takePending(buf *bytes.Buffer) {
	buf.Write(f.pending)
	f.pending = f.pending[:0]
}

// parent returns the element name up levels above the innermost open
// element, or "" at the document level.
func (f *filter) parent(up int) string {
	i := len(f.stack) - 1 - up
	if i < 0 {
		return ""
	}
	return f.stack[i]
}

func (f *filter) malformed(err error) error {
	line, _ := f.dec.InputPos()
	return &domain.MalformedInputError{Line: line, Err: err}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
)
