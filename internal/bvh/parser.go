package bvh

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Load reads and parses a BVH file.
func Load(path string) (*Motion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bvh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseString parses BVH text held in memory.
func ParseString(s string) (*Motion, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads a HIERARCHY block with exactly one ROOT followed by a MOTION
// block. Channel indices are assigned by a running counter in declaration
// order, so they address the values of each frame line directly.
func Parse(r io.Reader) (*Motion, error) {
	lx, err := newLexer(r)
	if err != nil {
		return nil, err
	}
	p := &parser{lx: lx}
	m, perr := p.parse()
	if perr != nil {
		return nil, perr
	}
	return m, nil
}

type parser struct {
	lx       *lexer
	channels int
}

func (p *parser) parse() (*Motion, *ParseError) {
	if err := p.expect("HIERARCHY"); err != nil {
		return nil, err
	}
	if err := p.expect("ROOT"); err != nil {
		return nil, err
	}
	root, err := p.parseJoint()
	if err != nil {
		return nil, err
	}

	tok, ok := p.lx.peek()
	switch {
	case !ok:
		return nil, errorf(p.lx.line(), ErrSyntax, "missing MOTION section")
	case tok.text == "}":
		return nil, errorf(tok.line, ErrBraceNesting, "unexpected '}' after ROOT block")
	case tok.text == "ROOT":
		return nil, errorf(tok.line, ErrSyntax, "more than one ROOT")
	}

	m := &Motion{Root: root, ChannelCount: p.channels}
	if err := p.parseMotion(m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseJoint parses "<name> { OFFSET ... CHANNELS ... children }"; the
// ROOT/JOINT keyword is already consumed.
func (p *parser) parseJoint() (*Joint, *ParseError) {
	line := p.lx.line()
	name := strings.Join(p.lx.restOfLine("{"), " ")
	if name == "" {
		return nil, errorf(line, ErrSyntax, "joint without a name")
	}
	if err := p.open(); err != nil {
		return nil, err
	}

	j := newJoint(name)
	if err := p.expect("OFFSET"); err != nil {
		return nil, err
	}
	off, err := p.vec3()
	if err != nil {
		return nil, err
	}
	j.Offset = off

	seenChannels := false
	for {
		tok, ok := p.lx.next()
		if !ok {
			return nil, errorf(p.lx.line(), ErrBraceNesting, "joint %q is never closed", name)
		}
		switch tok.text {
		case "CHANNELS":
			if seenChannels {
				return nil, errorf(tok.line, ErrSyntax, "joint %q declares CHANNELS twice", name)
			}
			seenChannels = true
			if err := p.parseChannels(j); err != nil {
				return nil, err
			}
		case "JOINT":
			child, err := p.parseJoint()
			if err != nil {
				return nil, err
			}
			j.Children = append(j.Children, child)
		case "End":
			if err := p.expect("Site"); err != nil {
				return nil, err
			}
			site, err := p.parseEndSite(name)
			if err != nil {
				return nil, err
			}
			j.Children = append(j.Children, site)
		case "}":
			for axis, idx := range j.RotationChannels {
				if idx < 0 {
					return nil, errorf(tok.line, ErrRotationChannels, "joint %q has no %s rotation", name, Axis(axis))
				}
			}
			return j, nil
		case "ROOT", "MOTION", "HIERARCHY":
			return nil, errorf(tok.line, ErrBraceNesting, "%s inside joint %q", tok.text, name)
		case "{":
			return nil, errorf(tok.line, ErrBraceNesting, "unexpected '{' in joint %q", name)
		default:
			return nil, errorf(tok.line, ErrSyntax, "unexpected %q in joint %q", tok.text, name)
		}
	}
}

func (p *parser) parseChannels(j *Joint) *ParseError {
	tok, ok := p.lx.next()
	if !ok {
		return errorf(p.lx.line(), ErrSyntax, "missing channel count")
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil || n < 0 || n > 6 {
		return errorf(tok.line, ErrSyntax, "bad channel count %q", tok.text)
	}

	j.ChannelStart = p.channels
	rotations := 0
	for i := 0; i < n; i++ {
		tok, ok := p.lx.next()
		if !ok {
			return errorf(p.lx.line(), ErrSyntax, "joint %q: expected %d channels", j.Name, n)
		}
		ch, known := lookupChannel(tok.text)
		if !known {
			return errorf(tok.line, ErrUnknownChannel, "%q", tok.text)
		}
		axis := ch.Axis()
		idx := p.channels
		p.channels++

		if ch.IsRotation() {
			if j.RotationChannels[axis] >= 0 {
				return errorf(tok.line, ErrRotationChannels, "joint %q repeats %s", j.Name, ch)
			}
			j.RotationChannels[axis] = idx
			j.RotationOrder[rotations] = axis
			rotations++
		} else {
			if j.PositionChannels[axis] >= 0 {
				return errorf(tok.line, ErrSyntax, "joint %q repeats %s", j.Name, ch)
			}
			j.PositionChannels[axis] = idx
		}
		j.Channels = append(j.Channels, ch)
	}
	return nil
}

func (p *parser) parseEndSite(parent string) (*Joint, *ParseError) {
	if err := p.open(); err != nil {
		return nil, err
	}
	if err := p.expect("OFFSET"); err != nil {
		return nil, err
	}
	off, err := p.vec3()
	if err != nil {
		return nil, err
	}
	tok, ok := p.lx.next()
	if !ok {
		return nil, errorf(p.lx.line(), ErrBraceNesting, "End Site of %q is never closed", parent)
	}
	if tok.text != "}" {
		return nil, errorf(tok.line, ErrSyntax, "End Site of %q: unexpected %q", parent, tok.text)
	}

	site := newJoint(parent + "End")
	site.Offset = off
	site.IsEndSite = true
	site.ChannelStart = p.channels
	return site, nil
}

func (p *parser) parseMotion(m *Motion) *ParseError {
	if err := p.expect("MOTION"); err != nil {
		return err
	}
	if err := p.expect("Frames:"); err != nil {
		return err
	}
	tok, ok := p.lx.next()
	if !ok {
		return errorf(p.lx.line(), ErrSyntax, "missing frame count")
	}
	frames, err := strconv.Atoi(tok.text)
	if err != nil || frames < 0 {
		return errorf(tok.line, ErrFrameCount, "bad frame count %q", tok.text)
	}

	if err := p.expect("Frame"); err != nil {
		return err
	}
	if err := p.expect("Time:"); err != nil {
		return err
	}
	ft, perr := p.float()
	if perr != nil {
		return perr
	}
	if ft < 0 {
		return errorf(p.lx.line(), ErrSyntax, "negative frame time %g", ft)
	}
	if !p.lx.atLineStart() {
		return errorf(p.lx.line(), ErrSyntax, "trailing data after Frame Time")
	}

	// Every frame is one line, so a count beyond the lines left is short.
	if remaining := len(p.lx.lines) - p.lx.li; frames > remaining {
		return errorf(p.lx.line(), ErrFrameCount, "declared %d frames, found %d", frames, remaining)
	}

	m.NumFrames = frames
	m.FrameTime = ft
	m.Keyframes = make([][]float64, frames)
	values := make([]float64, frames*m.ChannelCount)
	for i := 0; i < frames; i++ {
		l, ok := p.lx.takeLine()
		if !ok {
			return errorf(p.lx.line(), ErrFrameCount, "declared %d frames, found %d", frames, i)
		}
		if len(l.fields) != m.ChannelCount {
			return errorf(l.no, ErrChannelCount, "frame %d has %d values, skeleton declares %d channels", i, len(l.fields), m.ChannelCount)
		}
		kf := values[i*m.ChannelCount : (i+1)*m.ChannelCount : (i+1)*m.ChannelCount]
		for c, s := range l.fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return errorf(l.no, ErrSyntax, "frame %d: bad value %q", i, s)
			}
			kf[c] = v
		}
		m.Keyframes[i] = kf
	}
	if !p.lx.eof() {
		return errorf(p.lx.line(), ErrFrameCount, "more than %d frames", frames)
	}
	return nil
}

func (p *parser) open() *ParseError {
	tok, ok := p.lx.next()
	if !ok {
		return errorf(p.lx.line(), ErrBraceNesting, "expected '{', got end of input")
	}
	if tok.text != "{" {
		return errorf(tok.line, ErrBraceNesting, "expected '{', got %q", tok.text)
	}
	return nil
}

func (p *parser) expect(word string) *ParseError {
	tok, ok := p.lx.next()
	if !ok {
		return errorf(p.lx.line(), ErrSyntax, "expected %s, got end of input", word)
	}
	if tok.text != word {
		if tok.text == "}" || tok.text == "{" {
			return errorf(tok.line, ErrBraceNesting, "expected %s, got %q", word, tok.text)
		}
		return errorf(tok.line, ErrSyntax, "expected %s, got %q", word, tok.text)
	}
	return nil
}

func (p *parser) float() (float64, *ParseError) {
	tok, ok := p.lx.next()
	if !ok {
		return 0, errorf(p.lx.line(), ErrSyntax, "expected number, got end of input")
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return 0, errorf(tok.line, ErrSyntax, "expected number, got %q", tok.text)
	}
	return v, nil
}

func (p *parser) vec3() (mgl64.Vec3, *ParseError) {
	var v mgl64.Vec3
	for i := range v {
		f, err := p.float()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}
