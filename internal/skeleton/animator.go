package skeleton

import (
	"errors"
	"fmt"
	"time"

	"rigmesh/internal/bvh"
	"rigmesh/internal/logging"
)

// State is the playback state of an Animator.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Option configures an Animator.
type Option func(*Animator)

// WithLogger routes the animator's debug output to l.
func WithLogger(l logging.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.log = l
		}
	}
}

// Animator replays a Motion on its bone tree with a fixed frame step. It is
// driven by the host's clock through Update or Tick and is not safe for
// concurrent use.
type Animator struct {
	motion   *bvh.Motion
	root     *Bone
	bones    []*Bone
	byName   map[string]*Bone
	state    State
	frame    int
	elapsed  time.Duration
	frameLen time.Duration
	log      logging.Logger
}

// NewAnimator builds the bone tree for m at its rest pose, idle on frame 0.
func NewAnimator(m *bvh.Motion, opts ...Option) (*Animator, error) {
	if m == nil || m.Root == nil {
		return nil, errors.New("skeleton: motion has no root joint")
	}
	if len(m.Keyframes) != m.NumFrames {
		return nil, fmt.Errorf("skeleton: %d keyframes for %d frames", len(m.Keyframes), m.NumFrames)
	}
	a := &Animator{
		motion:   m,
		root:     BuildBones(m.Root),
		byName:   make(map[string]*Bone),
		frameLen: m.FrameDuration(),
		log:      logging.Nop(),
	}
	a.root.Walk(func(b *Bone) {
		a.bones = append(a.bones, b)
		if _, dup := a.byName[b.Joint.Name]; !dup {
			a.byName[b.Joint.Name] = b
		}
	})
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Animator) Motion() *bvh.Motion { return a.motion }
func (a *Animator) Root() *Bone         { return a.root }
func (a *Animator) State() State        { return a.state }
func (a *Animator) Frame() int          { return a.frame }

// Bones returns every bone depth-first, end sites included.
func (a *Animator) Bones() []*Bone { return a.bones }

// Bone finds a bone by joint name.
func (a *Animator) Bone(name string) (*Bone, bool) {
	b, ok := a.byName[name]
	return b, ok
}

// SetPlaying switches between Idle and Playing. The accumulated time is kept.
func (a *Animator) SetPlaying(playing bool) {
	if playing {
		a.state = Playing
	} else {
		a.state = Idle
	}
}

// Toggle flips the playback state and returns the new one.
func (a *Animator) Toggle() State {
	a.SetPlaying(a.state == Idle)
	return a.state
}

// Update applies the host's play toggle for this tick, then advances by dt.
func (a *Animator) Update(dt time.Duration, playing bool) bool {
	a.SetPlaying(playing)
	return a.Tick(dt)
}

// Tick accumulates dt while playing. Once a full frame has elapsed it moves to
// the next frame (looping), clears the accumulator and reposes the skeleton.
// It reports whether the frame changed.
func (a *Animator) Tick(dt time.Duration) bool {
	if a.state != Playing || a.motion.NumFrames == 0 {
		return false
	}
	a.elapsed += dt
	if a.elapsed < a.frameLen {
		return false
	}
	a.elapsed = 0
	a.frame = (a.frame + 1) % a.motion.NumFrames
	if a.frame == 0 {
		a.log.Debugf("animation looped after %d frames", a.motion.NumFrames)
	}
	a.Apply()
	return true
}

// Seek jumps to frame and poses the skeleton there.
func (a *Animator) Seek(frame int) error {
	if frame < 0 || frame >= a.motion.NumFrames {
		return fmt.Errorf("skeleton: frame %d out of range [0, %d)", frame, a.motion.NumFrames)
	}
	a.frame = frame
	a.elapsed = 0
	a.Apply()
	return nil
}

// Apply poses the skeleton at the current frame.
func (a *Animator) Apply() {
	kf := a.motion.Keyframe(a.frame)
	if kf == nil {
		return
	}
	Pose(a.root, kf)
}
