package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered job in the output manifest.
type ManifestEntry struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	Image    string `json:"image"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
	Faces    int    `json:"faces"`
	Frames   int    `json:"frames,omitempty"`
}

// WriteManifest writes the successful results as a JSON array to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:     r.Job.Name,
			Kind:     r.Job.Kind.String(),
			Source:   r.Job.Path,
			Image:    r.Image,
			Vertices: r.Stats.V,
			Edges:    r.Stats.E,
			Faces:    r.Stats.F,
			Frames:   r.Frames,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
