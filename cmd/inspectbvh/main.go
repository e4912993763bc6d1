package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"rigmesh/internal/bvh"
	"rigmesh/internal/logging"
	"rigmesh/internal/skeleton"
)

func main() {
	ticks := flag.Int("ticks", 0, "Play the animator for N ticks of one frame each and print the root path")
	joint := flag.String("joint", "", "Joint whose world position is printed while playing (default: root)")
	frame := flag.Int("frame", -1, "Print every joint's world position at this frame")
	debug := flag.Bool("debug", false, "Log animator events")
	flag.Parse()

	log := logging.New("inspectbvh", *debug)
	status := 0
	for _, path := range flag.Args() {
		if err := inspect(path, *ticks, *joint, *frame, log); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			status = 1
		}
	}
	os.Exit(status)
}

func inspect(path string, ticks int, joint string, frame int, log logging.Logger) error {
	m, err := bvh.Load(path)
	if err != nil {
		return err
	}
	joints := m.Joints()
	fmt.Printf("\n=== %s (joints=%d channels=%d frames=%d frame_time=%gs duration=%s) ===\n",
		path, len(joints), m.ChannelCount, m.NumFrames, m.FrameTime, m.Duration().Round(time.Millisecond))

	m.Root.Walk(func(j *bvh.Joint, depth int) {
		indent := strings.Repeat("  ", depth)
		if j.IsEndSite {
			fmt.Printf("%s%s offset=%v\n", indent, j.Name, j.Offset)
			return
		}
		names := make([]string, len(j.Channels))
		for i, c := range j.Channels {
			names[i] = c.String()
		}
		order := fmt.Sprintf("%v%v%v", j.RotationOrder[0], j.RotationOrder[1], j.RotationOrder[2])
		fmt.Printf("%s%s offset=%v channels=[%s]@%d rot=%s idx=%v\n",
			indent, j.Name, j.Offset, strings.Join(names, " "), j.ChannelStart, order, j.RotationChannels)
	})

	if frame >= 0 {
		if frame >= m.NumFrames {
			return fmt.Errorf("%s: frame %d out of range [0, %d)", path, frame, m.NumFrames)
		}
		fmt.Printf("  frame %d:\n", frame)
		for i, w := range skeleton.EvaluatePose(m.Root, m.Keyframe(frame)) {
			fmt.Printf("    %-20s (%.3f, %.3f, %.3f)\n", joints[i].Name, w[12], w[13], w[14])
		}
	}

	if ticks <= 0 {
		return nil
	}
	anim, err := skeleton.NewAnimator(m, skeleton.WithLogger(log))
	if err != nil {
		return err
	}
	name := joint
	if name == "" {
		name = m.Root.Name
	}
	bone, ok := anim.Bone(name)
	if !ok {
		return fmt.Errorf("%s: no joint %q", path, name)
	}
	step := m.FrameDuration()
	for i := 0; i < ticks; i++ {
		anim.Update(step, true)
		p := bone.Position()
		fmt.Printf("  tick %4d frame %4d %s=(%.3f, %.3f, %.3f)\n", i+1, anim.Frame(), name, p[0], p[1], p[2])
	}
	return nil
}
