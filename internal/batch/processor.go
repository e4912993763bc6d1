package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/HugoSmits86/nativewebp"

	"rigmesh/internal/bvh"
	"rigmesh/internal/logging"
	"rigmesh/internal/mesh"
	"rigmesh/internal/postprocess"
	"rigmesh/internal/raster"
	"rigmesh/internal/skeleton"
	"rigmesh/internal/subdiv"
	"rigmesh/internal/texture"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir  string
	Render     raster.Options
	Fill       float64 // fraction of the canvas the model spans
	Levels     int     // subdivision levels for meshes
	Frame      int     // pose shown for motions, wrapped to the clip
	FlatShaded bool
	Rig        skeleton.RigOptions
	Workers    int
	Log        logging.Logger
	Matcaps    *texture.Cache // per-job matcaps; created by Run when nil
}

// Result holds the outcome of processing one job.
type Result struct {
	Job     Job
	Image   string // path relative to OutputDir
	Stats   subdiv.Stats
	Frames  int
	Elapsed time.Duration
	Success bool
	Error   string
}

// Run processes jobs on a worker pool and returns one result per job, in job
// order.
func Run(cfg Config, jobs []Job) []Result {
	log := cfg.Log
	if log == nil {
		log = logging.Nop()
	}
	if cfg.Matcaps == nil {
		cfg.Matcaps = texture.NewCache()
	}
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Infof("[%d/%d] %.1f jobs/sec", p, total, rate)
				}
			}
		}
	}()

	workers := max(cfg.Workers, 1)
	pool := worker.NewDynamicWorkerPool(workers, total, time.Second)
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				r := Process(cfg, jobs[idx])
				if !r.Success {
					log.Warnf("%s: %s", r.Job.Name, r.Error)
				}
				results[idx] = r
				processed.Add(1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	close(done)
	return results
}

// Process renders one job to OutputDir/<name>.webp.
func Process(cfg Config, job Job) Result {
	start := time.Now()
	res := Result{Job: job}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	matcap, err := jobMatcap(cfg, job)
	if err != nil {
		return fail(err)
	}
	cfg.Render.Matcap = matcap

	m, frames, err := BuildMesh(cfg, job)
	if err != nil {
		return fail(err)
	}
	res.Stats = subdiv.Count(m)
	res.Frames = frames

	img := Render(cfg, m)
	res.Image = job.Name + ".webp"
	if err := writeWebP(filepath.Join(cfg.OutputDir, filepath.FromSlash(res.Image)), img); err != nil {
		return fail(err)
	}
	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}

// jobMatcap returns the job's own matcap, or the run's when it has none.
func jobMatcap(cfg Config, job Job) (*image.NRGBA, error) {
	if job.Matcap == "" {
		return cfg.Render.Matcap, nil
	}
	var (
		img *image.NRGBA
		err error
	)
	if cfg.Matcaps != nil {
		img, err = cfg.Matcaps.Get(job.Matcap)
	} else {
		img, err = texture.Load(job.Matcap)
	}
	if err != nil {
		return nil, fmt.Errorf("matcap: %w", err)
	}
	return img, nil
}

// BuildMesh loads the job's source and turns it into the mesh that gets
// rendered. For motions it also returns the clip's frame count.
func BuildMesh(cfg Config, job Job) (*mesh.QuadMesh, int, error) {
	switch job.Kind {
	case KindMesh:
		src, err := mesh.LoadOBJ(job.Path)
		if err != nil {
			return nil, 0, err
		}
		m, err := subdiv.SubdivideN(src, cfg.Levels)
		if err != nil {
			return nil, 0, err
		}
		if cfg.FlatShaded {
			m.MakeFlatShaded()
		}
		m.CalculateNormals()
		return m, 0, nil

	case KindMotion:
		motion, err := bvh.Load(job.Path)
		if err != nil {
			return nil, 0, err
		}
		anim, err := skeleton.NewAnimator(motion, skeleton.WithLogger(cfg.Log))
		if err != nil {
			return nil, 0, err
		}
		if motion.NumFrames > 0 {
			if err := anim.Seek(cfg.Frame % motion.NumFrames); err != nil {
				return nil, 0, err
			}
		}
		m := skeleton.BuildRigMesh(anim.Root(), cfg.Rig)
		// Boxes read best with hard edges.
		m.MakeFlatShaded()
		m.CalculateNormals()
		return m, motion.NumFrames, nil
	}
	return nil, 0, fmt.Errorf("batch: unknown job kind %v", job.Kind)
}

// Render rasterizes m, downsamples the supersampled frame and centers the
// model on the canvas.
func Render(cfg Config, m *mesh.QuadMesh) *image.NRGBA {
	img := raster.RenderMesh(m, cfg.Render)
	img = postprocess.DownsampleBy(img, cfg.Render.Supersample)
	img = postprocess.RemoveSpecks(img, 0.001)
	if cfg.Fill > 0 {
		img = postprocess.Frame(img, cfg.Render.Size, cfg.Fill)
	}
	return img
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("webp encode: %w", err)
	}
	return f.Close()
}
