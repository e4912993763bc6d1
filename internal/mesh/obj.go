package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadOBJ reads a Wavefront OBJ file made of quads.
func LoadOBJ(path string) (*QuadMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseOBJ reads "v" and "f" records. Face corners may use the v, v/t, v/t/n
// and v//n forms and negative (relative) indices. Every other record is
// ignored. Faces must have exactly four corners.
func ParseOBJ(r io.Reader) (*QuadMesh, error) {
	m := &QuadMesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("mesh: obj line %d: vertex needs 3 coordinates", lineNo)
			}
			var v mgl64.Vec3
			for k := 0; k < 3; k++ {
				f, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("mesh: obj line %d: %w", lineNo, err)
				}
				v[k] = f
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			corners := fields[1:]
			if len(corners) != 4 {
				return nil, fmt.Errorf("mesh: obj line %d: face has %d corners: %w", lineNo, len(corners), ErrNotQuad)
			}
			var q Quad
			for k, c := range corners {
				idx, err := objIndex(c, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("mesh: obj line %d: %w", lineNo, err)
				}
				q[k] = idx
			}
			m.Faces = append(m.Faces, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: obj read: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// objIndex converts a 1-based (or negative, relative) OBJ corner to a 0-based
// vertex index.
func objIndex(corner string, nverts int) (int, error) {
	if i := strings.IndexByte(corner, '/'); i >= 0 {
		corner = corner[:i]
	}
	n, err := strconv.Atoi(corner)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", corner)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return nverts + n, nil
	}
	return 0, fmt.Errorf("face index 0: %w", ErrIndexRange)
}
