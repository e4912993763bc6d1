package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"rigmesh/internal/batch"
	"rigmesh/internal/config"
	"rigmesh/internal/logging"
	"rigmesh/internal/raster"
	"rigmesh/internal/skeleton"
	"rigmesh/internal/texture"
	"rigmesh/internal/viewmatrix"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	inputDir := flag.String("input", "", "Directory scanned for .obj and .bvh files (default: .)")
	outputDir := flag.String("output", "", "Output directory (default: <input>/previews)")
	matcap := flag.String("matcap", "", "Matcap image (TGA/PNG/JPEG); a built-in clay sphere when empty")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	size := flag.Int("size", 0, "Output image size in pixels (default: 256)")
	levels := flag.Int("levels", -1, "Catmull-Clark levels for meshes (default: 1)")
	frame := flag.Int("frame", -1, "Motion frame to pose (default: 0)")
	flat := flag.Bool("flat", false, "Flat-shade meshes")
	testN := flag.Int("test", 0, "Render only the first N jobs")
	debug := flag.Bool("debug", false, "Verbose logging")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Matcap:    *matcap,
		Workers:   *workers,
		Size:      *size,
		Flat:      *flat,
		Debug:     *debug,
	}
	if *levels >= 0 {
		flags.Levels = levels
	}
	if *frame >= 0 {
		flags.Frame = frame
	}
	cfg.Resolve(flags)

	log := logging.New("render", cfg.Debug)

	jobs, err := batch.Discover(cfg.InputDir)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}
	if len(jobs) == 0 {
		log.Infof("No .obj or .bvh files under %s", cfg.InputDir)
		os.Exit(0)
	}

	clay := color.NRGBA{R: 196, G: 180, B: 160, A: 255}
	opts := raster.DefaultOptions()
	opts.Size = cfg.RenderSize
	opts.Supersample = cfg.Supersample
	opts.Camera = viewmatrix.Camera{Yaw: cfg.Yaw, Pitch: cfg.Pitch}
	opts.Color = clay
	matcaps := texture.NewCache()
	if cfg.Matcap != "" {
		opts.Matcap, err = matcaps.Get(cfg.Matcap)
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	} else {
		opts.Matcap = texture.DefaultMatcap(128, clay)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Errorf("create output dir: %v", err)
		os.Exit(1)
	}

	log.Infof("Jobs: %d, Workers: %d, Levels: %d", len(jobs), cfg.Workers, cfg.Levels)
	log.Infof("Output: %s", cfg.OutputDir)
	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir:  cfg.OutputDir,
		Render:     opts,
		Fill:       cfg.Fill,
		Levels:     cfg.Levels,
		Frame:      cfg.Frame,
		FlatShaded: cfg.FlatShaded,
		Rig:        skeleton.DefaultRigOptions(),
		Workers:    cfg.Workers,
		Log:        log,
		Matcaps:    matcaps,
	}, jobs)
	log.Debugf("Matcaps loaded: %d", matcaps.Len())

	success := 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			log.Debugf("%s: %s in %s", r.Job.Name, r.Stats, r.Elapsed.Round(time.Millisecond))
		} else {
			failed = append(failed, r)
		}
	}
	log.Infof("Rendered %d/%d in %.1fs", success, len(jobs), time.Since(start).Seconds())
	for i, r := range failed {
		if i == 20 {
			log.Warnf("... and %d more", len(failed)-i)
			break
		}
		log.Warnf("  %s: %s", r.Job.Name, r.Error)
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		log.Warnf("manifest write failed: %v", err)
	} else {
		log.Infof("Manifest: %s", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
