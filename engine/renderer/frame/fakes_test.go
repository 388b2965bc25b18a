package frame

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) indexOf(event string) int {
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

func (l *eventLog) count(event string) int {
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

type fakeHost struct {
	log    *eventLog
	window Extent
	lo, hi Extent
	onIdle func()
}

func newFakeHost(log *eventLog) *fakeHost {
	return &fakeHost{
		log:    log,
		window: Extent{800, 600},
		lo:     Extent{1, 1},
		hi:     Extent{4096, 4096},
	}
}

func (h *fakeHost) WaitIdle() error {
	h.log.add("wait-idle")
	if h.onIdle != nil {
		h.onIdle()
	}
	return nil
}

func (h *fakeHost) FramebufferExtent() Extent { return h.window }

func (h *fakeHost) SurfaceLimits() (Extent, Extent, error) {
	return h.lo, h.hi, nil
}

// fakeStage tracks how many times it is live and sizes its per-image
// objects from imageCount at creation time.
type fakeStage struct {
	name       string
	log        *eventLog
	imageCount *uint32
	perImage   bool

	creates  int
	destroys int
	objects  []int
	extent   Extent
	failWith error
}

func (s *fakeStage) live() int { return s.creates - s.destroys }

func (s *fakeStage) stage() Stage {
	return Stage{
		Name: s.name,
		Create: func(extent Extent) error {
			if s.failWith != nil {
				return s.failWith
			}
			s.log.add("create %s", s.name)
			s.creates++
			s.extent = extent
			if s.perImage {
				s.objects = make([]int, *s.imageCount)
			}
			return nil
		},
		Destroy: func() {
			s.log.add("destroy %s", s.name)
			s.destroys++
			s.objects = nil
		},
	}
}

var stageNames = []string{
	"swapchain", "views", "renderpass", "pipeline", "color", "depth",
	"framebuffers", "uniforms", "commands",
}

func newFakeStages(log *eventLog, imageCount *uint32) ([]*fakeStage, []Stage) {
	fakes := make([]*fakeStage, 0, len(stageNames))
	stages := make([]Stage, 0, len(stageNames))
	for _, n := range stageNames {
		fs := &fakeStage{
			name:       n,
			log:        log,
			imageCount: imageCount,
			perImage:   n == "framebuffers" || n == "uniforms" || n == "commands",
		}
		fakes = append(fakes, fs)
		stages = append(stages, fs.stage())
	}
	return fakes, stages
}

// fakePresenter models fences as pending until waited on, and flags any
// rewrite of an image whose guarding fence is still pending.
type fakePresenter struct {
	log    *eventLog
	frames uint32
	images uint32

	acquireOrder  []uint32
	acquireStatus map[int]Status
	presentStatus map[int]Status
	acquireErr    error

	acquireCalls int
	presentCalls int
	next         int

	pending    []bool
	owner      map[uint32]uint32
	violations []string
}

func newFakePresenter(log *eventLog, frames, images uint32) *fakePresenter {
	order := make([]uint32, images)
	for i := range order {
		order[i] = uint32(i)
	}
	return &fakePresenter{
		log:           log,
		frames:        frames,
		images:        images,
		acquireOrder:  order,
		acquireStatus: map[int]Status{},
		presentStatus: map[int]Status{},
		pending:       make([]bool, frames),
		owner:         map[uint32]uint32{},
	}
}

// idle is what a device wait-idle does to every fence.
func (p *fakePresenter) idle() {
	for i := range p.pending {
		p.pending[i] = false
	}
}

func (p *fakePresenter) FramesInFlight() uint32 { return p.frames }

func (p *fakePresenter) ImageCount() uint32 { return p.images }

func (p *fakePresenter) WaitFence(slot uint32) error {
	p.log.add("wait %d", slot)
	p.pending[slot] = false
	return nil
}

func (p *fakePresenter) Acquire(slot uint32) (uint32, Status, error) {
	p.acquireCalls++
	if p.acquireErr != nil {
		return 0, StatusSuccess, p.acquireErr
	}
	if st, ok := p.acquireStatus[p.acquireCalls]; ok && st == StatusOutOfDate {
		p.log.add("acquire %d out-of-date", slot)
		return 0, st, nil
	}
	image := p.acquireOrder[p.next%len(p.acquireOrder)]
	p.next++
	p.log.add("acquire %d", slot)
	return image, p.acquireStatus[p.acquireCalls], nil
}

func (p *fakePresenter) ResetFence(slot uint32) error {
	if p.pending[slot] {
		p.violations = append(p.violations, fmt.Sprintf("reset of pending fence %d", slot))
	}
	p.log.add("reset %d", slot)
	return nil
}

func (p *fakePresenter) Record(image uint32, _ *metadata.RenderPacket) error {
	if o, ok := p.owner[image]; ok && p.pending[o] {
		p.violations = append(p.violations, fmt.Sprintf("image %d rewritten while frame %d pending", image, o))
	}
	p.log.add("record %d", image)
	return nil
}

func (p *fakePresenter) Submit(slot, image uint32) error {
	p.pending[slot] = true
	p.owner[image] = slot
	p.log.add("submit %d", slot)
	return nil
}

func (p *fakePresenter) Present(slot, image uint32) (Status, error) {
	p.presentCalls++
	p.log.add("present %d", slot)
	return p.presentStatus[p.presentCalls], nil
}

var errDeviceLost = errors.New("device lost")
