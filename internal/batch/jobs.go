package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the type of source a job renders.
type Kind int

const (
	KindMesh   Kind = iota // quad mesh (.obj), subdivided before rendering
	KindMotion             // motion capture (.bvh), posed and drawn as a rig
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindMotion:
		return "motion"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Job is one source file to preview.
type Job struct {
	Name   string // output stem, relative to the input directory
	Path   string
	Kind   Kind
	Matcap string // matcap next to the source; empty uses the run's matcap
}

var matcapExts = []string{".tga", ".png", ".jpg", ".jpeg"}

// findMatcap looks for <stem>.matcap.<ext> beside path, then for
// matcap.<ext> in the same directory.
func findMatcap(path string) string {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, base := range []string{stem + ".matcap", "matcap"} {
		for _, ext := range matcapExts {
			p := filepath.Join(dir, base+ext)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}

// KindOf maps a file extension to a job kind.
func KindOf(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return KindMesh, true
	case ".bvh":
		return KindMotion, true
	}
	return 0, false
}

// Discover walks dir for .obj and .bvh files, sorted by name. Each job picks
// up a matcap image found beside its source.
func Discover(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		kind, ok := KindOf(path)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		jobs = append(jobs, Job{
			Name:   filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))),
			Path:   path,
			Kind:   kind,
			Matcap: findMatcap(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}
