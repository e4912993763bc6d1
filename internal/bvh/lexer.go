package bvh

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type token struct {
	text string
	line int
}

type sourceLine struct {
	no     int
	fields []string
}

// lexer splits the input into whitespace-separated tokens while keeping line
// boundaries, which the motion block depends on.
type lexer struct {
	lines []sourceLine
	li    int // current line
	fi    int // next field within the current line
}

func newLexer(r io.Reader) (*lexer, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lx := &lexer{}
	no := 0
	for sc.Scan() {
		no++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		lx.lines = append(lx.lines, sourceLine{no: no, fields: fields})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bvh: read: %w", err)
	}
	return lx, nil
}

func (lx *lexer) eof() bool {
	return lx.li >= len(lx.lines)
}

// line returns the current line number, or the last line at EOF.
func (lx *lexer) line() int {
	if lx.eof() {
		if len(lx.lines) == 0 {
			return 0
		}
		return lx.lines[len(lx.lines)-1].no
	}
	return lx.lines[lx.li].no
}

func (lx *lexer) peek() (token, bool) {
	if lx.eof() {
		return token{}, false
	}
	l := lx.lines[lx.li]
	return token{text: l.fields[lx.fi], line: l.no}, true
}

func (lx *lexer) next() (token, bool) {
	tok, ok := lx.peek()
	if !ok {
		return tok, false
	}
	lx.fi++
	if lx.fi >= len(lx.lines[lx.li].fields) {
		lx.li++
		lx.fi = 0
	}
	return tok, true
}

// atLineStart reports whether no token of the current line was consumed yet.
func (lx *lexer) atLineStart() bool {
	return lx.fi == 0
}

// takeLine consumes the whole current line. Callers must be at a line start.
func (lx *lexer) takeLine() (sourceLine, bool) {
	if lx.eof() {
		return sourceLine{}, false
	}
	l := lx.lines[lx.li]
	lx.li++
	lx.fi = 0
	return l, true
}

// restOfLine consumes the tokens left on the current line up to (not
// including) stop, returning them.
func (lx *lexer) restOfLine(stop string) []string {
	if lx.eof() {
		return nil
	}
	cur := lx.li
	var out []string
	for !lx.eof() && lx.li == cur {
		tok, _ := lx.peek()
		if tok.text == stop {
			break
		}
		lx.next()
		out = append(out, tok.text)
	}
	return out
}
