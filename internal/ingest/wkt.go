package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseWKT reads POINT, MULTIPOINT, LINESTRING, MULTILINESTRING, POLYGON,
// MULTIPOLYGON and GEOMETRYCOLLECTION text. Z and M ordinates are accepted
// and dropped; EMPTY geometries contribute nothing.
func ParseWKT(s string) (*Features, error) {
	p := &wktParser{s: s}
	f := &Features{}
	for {
		p.skip()
		if p.eof() {
			break
		}
		if err := p.geometry(f); err != nil {
			return nil, err
		}
		// several geometries may be separated by ';' or newlines
		p.skip()
		if p.peek() == ';' {
			p.pos++
		}
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("wkt: %w", ErrNoFeatures)
	}
	return f, nil
}

type wktParser struct {
	s   string
	pos int
}

func (p *wktParser) eof() bool { return p.pos >= len(p.s) }

func (p *wktParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *wktParser) skip() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *wktParser) errorf(format string, args ...any) error {
	return fmt.Errorf("wkt at %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *wktParser) word() string {
	p.skip()
	start := p.pos
	for !p.eof() {
		c := p.s[p.pos]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		p.pos++
	}
	return strings.ToUpper(p.s[start:p.pos])
}

func (p *wktParser) expect(c byte) error {
	p.skip()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

// open consumes '(' and reports false for EMPTY.
func (p *wktParser) open() (bool, error) {
	p.skip()
	if p.peek() != '(' {
		if w := p.word(); w == "EMPTY" {
			return false, nil
		}
		return false, p.errorf("expected '(' or EMPTY")
	}
	p.pos++
	return true, nil
}

// more consumes ',' and reports true, or ')' and reports false.
func (p *wktParser) more() (bool, error) {
	p.skip()
	switch p.peek() {
	case ',':
		p.pos++
		return true, nil
	case ')':
		p.pos++
		return false, nil
	}
	return false, p.errorf("expected ',' or ')'")
}

func (p *wktParser) number() (float64, error) {
	p.skip()
	start := p.pos
	for !p.eof() && strings.IndexByte("+-.0123456789eE", p.s[p.pos]) >= 0 {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected number")
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("%v", err)
	}
	return v, nil
}

// coord reads "x y [z [m]]".
func (p *wktParser) coord() ([2]float64, error) {
	x, err := p.number()
	if err != nil {
		return [2]float64{}, err
	}
	y, err := p.number()
	if err != nil {
		return [2]float64{}, err
	}
	for {
		p.skip()
		if c := p.peek(); c == ',' || c == ')' || c == 0 {
			break
		}
		if _, err := p.number(); err != nil {
			return [2]float64{}, err
		}
	}
	return [2]float64{x, y}, nil
}

// coords reads "(x y, x y, ...)". MULTIPOINT members may be parenthesized.
func (p *wktParser) coords() ([][2]float64, error) {
	ok, err := p.open()
	if !ok {
		return nil, err
	}
	var out [][2]float64
	for {
		p.skip()
		wrapped := p.peek() == '('
		if wrapped {
			p.pos++
		}
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		if wrapped {
			if err := p.expect(')'); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
		more, err := p.more()
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
	}
}

func (p *wktParser) rings() ([][][2]float64, error) {
	ok, err := p.open()
	if !ok {
		return nil, err
	}
	var out [][][2]float64
	for {
		r, err := p.coords()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		more, err := p.more()
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
	}
}

// list runs item once per member of "(a, b, ...)".
func (p *wktParser) list(item func() error) error {
	ok, err := p.open()
	if !ok {
		return err
	}
	for {
		if err := item(); err != nil {
			return err
		}
		more, err := p.more()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (p *wktParser) geometry(f *Features) error {
	kind := p.word()
	// dimension tag
	save := p.pos
	switch p.word() {
	case "Z", "M", "ZM":
	default:
		p.pos = save
	}
	switch kind {
	case "POINT", "MULTIPOINT":
		pts, err := p.coords()
		if err != nil {
			return err
		}
		for _, c := range pts {
			f.addPoint(c[0], c[1], "", 0)
		}
	case "LINESTRING":
		pts, err := p.coords()
		if err != nil {
			return err
		}
		f.addLine("", pts)
	case "MULTILINESTRING":
		rs, err := p.rings()
		if err != nil {
			return err
		}
		for _, r := range rs {
			f.addLine("", r)
		}
	case "POLYGON":
		rs, err := p.rings()
		if err != nil {
			return err
		}
		f.addPolygon("", rs)
	case "MULTIPOLYGON":
		return p.list(func() error {
			rs, err := p.rings()
			if err != nil {
				return err
			}
			f.addPolygon("", rs)
			return nil
		})
	case "GEOMETRYCOLLECTION":
		return p.list(func() error { return p.geometry(f) })
	case "":
		return p.errorf("expected geometry type")
	default:
		return fmt.Errorf("wkt %s: %w", kind, ErrUnsupported)
	}
	return nil
}
