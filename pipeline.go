// Package edgeoverlay computes edge overlays for a live camera preview. A
// Pipeline receives raw YUV frames at the camera's rate, processes only the
// most recent one, and keeps the newest edge map ready to be composited over
// the preview with video.Overlay.
package edgeoverlay

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/edgeoverlay/internal/logging"
	"github.com/pion/edgeoverlay/pkg/edge"
	"github.com/pion/edgeoverlay/pkg/frame"
	"github.com/pion/edgeoverlay/pkg/io/video"
	pionlogging "github.com/pion/logging"
)

var ErrPipelineRunning = errors.New("pipeline is already running")

// OverlayHandler is called by the worker with every completed edge map.
type OverlayHandler func(overlay *image.RGBA, seq uint64)

// PipelineOptions stores parameters used by Pipeline.
type PipelineOptions struct {
	processor        *edge.Processor
	processorOptions []edge.Option
	loggerFactory    pionlogging.LoggerFactory
	onOverlay        OverlayHandler
}

// PipelineOption is a type of Pipeline functional option.
type PipelineOption func(*PipelineOptions)

// WithProcessor makes the pipeline use p instead of creating its own
// processor. Processor options are ignored when it's set.
func WithProcessor(p *edge.Processor) PipelineOption {
	return func(o *PipelineOptions) {
		o.processor = p
	}
}

// WithProcessorOptions configures the processor created by the pipeline.
func WithProcessorOptions(opts ...edge.Option) PipelineOption {
	return func(o *PipelineOptions) {
		o.processorOptions = append(o.processorOptions, opts...)
	}
}

// WithLoggerFactory sets the factory of the pipeline's logger.
func WithLoggerFactory(f pionlogging.LoggerFactory) PipelineOption {
	return func(o *PipelineOptions) {
		o.loggerFactory = f
	}
}

// WithOverlayHandler registers h to be notified of every new edge map, the
// way a UI would get its state updated. h runs on the worker goroutine and
// delays the next frame while it runs.
func WithOverlayHandler(h OverlayHandler) PipelineOption {
	return func(o *PipelineOptions) {
		o.onOverlay = h
	}
}

// Stats are counters of a Pipeline since its creation.
type Stats struct {
	// Published counts calls to Publish.
	Published uint64
	// Dropped counts frames replaced by a newer one before being processed.
	Dropped uint64
	// Processed counts frames turned into an edge map.
	Processed uint64
	// Failed counts frames rejected by the processor.
	Failed uint64
	// Pending is 1 while a published frame waits for the worker, including
	// when no Run is active.
	Pending uint64
}

type pendingFrame struct {
	raw     *frame.Raw
	release func()
}

// Pipeline hands frames from a camera callback to a single processing
// worker. The inbox holds at most one frame: publishing replaces the pending
// frame, so the worker never falls behind the camera.
type Pipeline struct {
	PipelineOptions
	log pionlogging.LeveledLogger

	mu      sync.Mutex
	pending *pendingFrame
	notify  chan struct{}
	running atomic.Bool

	latest video.Latest[*image.RGBA]

	published, dropped, processed, failed atomic.Uint64
}

// NewPipeline creates a Pipeline. Run must be called for frames to be
// processed.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	var po PipelineOptions
	for _, o := range opts {
		o(&po)
	}

	if po.processor == nil {
		p, err := edge.NewProcessor(po.processorOptions...)
		if err != nil {
			return nil, err
		}
		po.processor = p
	}

	var log pionlogging.LeveledLogger
	if po.loggerFactory != nil {
		log = po.loggerFactory.NewLogger("edgeoverlay/pipeline")
	} else {
		log = logging.NewLogger("edgeoverlay/pipeline")
	}

	return &Pipeline{
		PipelineOptions: po,
		log:             log,
		notify:          make(chan struct{}, 1),
	}, nil
}

// Publish hands raw to the worker without blocking. release is called
// exactly once when the pipeline is done with raw: right after processing,
// or as soon as a newer frame replaces it. A nil release is allowed.
//
// A frame published while Run isn't active stays pending, neither released
// nor counted as dropped, until a newer frame replaces it or the next Run
// takes it. Stats reports it as Pending.
func (p *Pipeline) Publish(raw *frame.Raw, release func()) {
	if release == nil {
		release = func() {}
	}
	p.published.Add(1)

	p.mu.Lock()
	old := p.pending
	p.pending = &pendingFrame{raw: raw, release: release}
	p.mu.Unlock()

	if old != nil {
		p.dropped.Add(1)
		old.release()
	}

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Pipeline) take() *pendingFrame {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.pending
	p.pending = nil
	return f
}

// Run processes published frames until ctx is done and returns ctx.Err().
// A frame being processed when ctx is cancelled is finished first, and a
// frame still pending is released. Frames the processor rejects are logged
// and skipped. Only one Run may be active at a time.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPipelineRunning
	}
	defer p.running.Store(false)

	defer func() {
		if f := p.take(); f != nil {
			p.dropped.Add(1)
			f.release()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.notify:
		}

		if f := p.take(); f != nil {
			p.handle(f)
		}
	}
}

func (p *Pipeline) handle(f *pendingFrame) {
	start := time.Now()
	out, err := p.processor.Process(f.raw)
	f.release()

	if err != nil {
		p.failed.Add(1)
		p.log.Warnf("skipping frame: %v", err)
		return
	}

	seq := p.latest.Store(out)
	p.processed.Add(1)
	p.log.Debugf("frame %d processed in %v", seq, time.Since(start))

	if p.onOverlay != nil {
		p.onOverlay(out, seq)
	}
}

// Overlay returns the most recent edge map and its sequence number, which
// grows with every processed frame. It returns nil and 0 until a frame has
// been processed. The edge map must not be modified.
func (p *Pipeline) Overlay() (*image.RGBA, uint64) {
	img, seq, _ := p.latest.Load()
	return img, seq
}

// Stats returns a snapshot of the pipeline's counters. Once the worker is
// idle, Published equals Dropped + Processed + Failed + Pending.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	var pending uint64
	if p.pending != nil {
		pending = 1
	}
	stats := Stats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Pending:   pending,
	}
	p.mu.Unlock()
	return stats
}
