package main

import (
	"flag"
	"fmt"
	"os"

	"rigmesh/internal/mesh"
	"rigmesh/internal/subdiv"
)

func main() {
	levels := flag.Int("levels", 2, "Subdivision levels to report")
	primitive := flag.String("primitive", "", "Inspect a built-in mesh instead of files: cube or grid")
	flag.Parse()

	var sources []string
	switch *primitive {
	case "":
		sources = flag.Args()
	case "cube", "grid":
		sources = []string{*primitive}
	default:
		fmt.Fprintf(os.Stderr, "unknown primitive %q\n", *primitive)
		os.Exit(2)
	}

	status := 0
	for _, src := range sources {
		m, err := load(src, *primitive != "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			status = 1
			continue
		}
		if err := report(src, m, *levels); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", src, err)
			status = 1
		}
	}
	os.Exit(status)
}

func load(src string, builtin bool) (*mesh.QuadMesh, error) {
	if !builtin {
		return mesh.LoadOBJ(src)
	}
	if src == "cube" {
		return mesh.Cube(2), nil
	}
	return mesh.Grid(4, 4, 1), nil
}

func report(name string, m *mesh.QuadMesh, levels int) error {
	fmt.Printf("\n=== %s ===\n", name)
	boundary := 0
	for _, e := range subdiv.Edges(m) {
		if e.IsBoundary() {
			boundary++
		}
	}
	lo, hi := m.Bounds()
	fmt.Printf("  level 0: %s boundary_edges=%d bbox=(%.3f,%.3f,%.3f)..(%.3f,%.3f,%.3f)\n",
		subdiv.Count(m), boundary, lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])

	cur := m
	for l := 1; l <= levels; l++ {
		next, err := subdiv.Subdivide(cur)
		if err != nil {
			return fmt.Errorf("level %d: %w", l, err)
		}
		s := subdiv.Count(cur)
		want := s.V + s.E + s.F
		got := subdiv.Count(next)
		check := "ok"
		if got.V != want || got.F != 4*s.F {
			check = fmt.Sprintf("MISMATCH want V=%d F=%d", want, 4*s.F)
		}
		lo, hi := next.Bounds()
		fmt.Printf("  level %d: %s %s bbox=(%.3f,%.3f,%.3f)..(%.3f,%.3f,%.3f)\n",
			l, got, check, lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
		cur = next
	}
	return nil
}
