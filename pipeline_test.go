package edgeoverlay

import (
	"bytes"
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pion/edgeoverlay/pkg/edge"
	"github.com/pion/edgeoverlay/pkg/frame"
	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayNV21(t *testing.T, width, height, rotation int) *frame.Raw {
	t.Helper()
	buf := make([]byte, width*height*3/2)
	for i := range buf {
		buf[i] = 128
	}
	raw, err := frame.FromNV21(buf, width, height, rotation)
	require.NoError(t, err)
	return raw
}

type releaseCounter struct {
	counts []atomic.Int32
}

func newReleaseCounter(n int) *releaseCounter {
	return &releaseCounter{counts: make([]atomic.Int32, n)}
}

func (c *releaseCounter) release(i int) func() {
	return func() { c.counts[i].Add(1) }
}

func (c *releaseCounter) assertOnce(t *testing.T) {
	t.Helper()
	for i := range c.counts {
		assert.Equal(t, int32(1), c.counts[i].Load(), "frame %d", i)
	}
}

// runPipeline starts p.Run and returns a function stopping it and returning
// Run's error.
func runPipeline(t *testing.T, p *Pipeline) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()
	require.Eventually(t, p.running.Load, time.Second, time.Millisecond)

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run didn't return after cancellation")
		}
		return nil
	}
}

func TestPipelineProcessesLatestFrame(t *testing.T) {
	overlays := make(chan uint64, 16)
	p, err := NewPipeline(WithOverlayHandler(func(img *image.RGBA, seq uint64) {
		overlays <- seq
	}))
	require.NoError(t, err)

	img, seq := p.Overlay()
	assert.Nil(t, img)
	assert.Zero(t, seq)

	// the worker isn't running yet, so only the last frame survives
	counter := newReleaseCounter(3)
	p.Publish(grayNV21(t, 64, 48, 0), counter.release(0))
	p.Publish(grayNV21(t, 64, 48, 0), counter.release(1))
	p.Publish(grayNV21(t, 64, 48, 90), counter.release(2))
	assert.Equal(t, int32(1), counter.counts[0].Load())
	assert.Equal(t, int32(1), counter.counts[1].Load())
	assert.Equal(t, int32(0), counter.counts[2].Load())

	stop := runPipeline(t, p)

	select {
	case seq = <-overlays:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an overlay")
	}
	assert.ErrorIs(t, stop(), context.Canceled)

	img, latestSeq := p.Overlay()
	require.NotNil(t, img)
	assert.Equal(t, seq, latestSeq)
	assert.Equal(t, image.Rect(0, 0, 48, 64), img.Bounds())

	counter.assertOnce(t)
	assert.Equal(t, Stats{Published: 3, Dropped: 2, Processed: 1}, p.Stats())
}

func TestPipelineSkipsInvalidFrames(t *testing.T) {
	var logs bytes.Buffer
	overlays := make(chan uint64, 16)
	p, err := NewPipeline(
		WithLoggerFactory(&logging.DefaultLoggerFactory{
			Writer:          &logs,
			DefaultLogLevel: logging.LogLevelWarn,
		}),
		WithOverlayHandler(func(img *image.RGBA, seq uint64) {
			overlays <- seq
		}),
	)
	require.NoError(t, err)

	stop := runPipeline(t, p)

	counter := newReleaseCounter(2)
	invalid := grayNV21(t, 64, 48, 45)
	p.Publish(invalid, counter.release(0))
	require.Eventually(t, func() bool {
		return p.Stats().Failed == 1
	}, 5*time.Second, time.Millisecond)

	p.Publish(grayNV21(t, 64, 48, 0), counter.release(1))
	select {
	case <-overlays:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an overlay")
	}
	assert.ErrorIs(t, stop(), context.Canceled)

	counter.assertOnce(t)
	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Equal(t, uint64(1), stats.Processed)
	assert.Contains(t, logs.String(), "skipping frame")
	assert.Contains(t, logs.String(), "unsupported rotation")
}

func TestPipelineReleasesEveryFrameOnce(t *testing.T) {
	p, err := NewPipeline(WithProcessorOptions(edge.WithBlurKernel(3)))
	require.NoError(t, err)

	stop := runPipeline(t, p)

	const producers, perProducer = 4, 25
	counter := newReleaseCounter(producers * perProducer)
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < perProducer; n++ {
				p.Publish(grayNV21(t, 32, 24, 0), counter.release(i*perProducer+n))
			}
		}(i)
	}
	wg.Wait()

	assert.ErrorIs(t, stop(), context.Canceled)

	counter.assertOnce(t)
	stats := p.Stats()
	assert.Equal(t, uint64(producers*perProducer), stats.Published)
	assert.Equal(t, stats.Published, stats.Dropped+stats.Processed+stats.Failed)
	assert.Zero(t, stats.Failed)
}

func TestPipelineRunOnce(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)

	stop := runPipeline(t, p)
	assert.ErrorIs(t, p.Run(context.Background()), ErrPipelineRunning)
	assert.ErrorIs(t, stop(), context.Canceled)

	// a stopped pipeline can be run again
	stop = runPipeline(t, p)
	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestPipelineReleasesPendingFrameOnStop(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)

	counter := newReleaseCounter(1)
	p.Publish(grayNV21(t, 64, 48, 0), counter.release(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)

	// processed or drained, the frame is released either way
	counter.assertOnce(t)
	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Dropped+stats.Processed)
}

func TestNewPipeline(t *testing.T) {
	_, err := NewPipeline(WithProcessorOptions(edge.WithBlurKernel(4)))
	assert.ErrorIs(t, err, edge.ErrInvalidKernel)

	proc, err := edge.NewProcessor(edge.WithThresholds(50, 150))
	require.NoError(t, err)
	p, err := NewPipeline(WithProcessor(proc), WithProcessorOptions(edge.WithBlurKernel(4)))
	require.NoError(t, err)
	assert.Same(t, proc, p.processor)
}

func TestPipelineStatsCountFramesWaitingForRun(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)

	stop := runPipeline(t, p)
	assert.ErrorIs(t, stop(), context.Canceled)

	// no worker is running, the frame waits for the next Run
	counter := newReleaseCounter(1)
	p.Publish(grayNV21(t, 64, 48, 0), counter.release(0))
	assert.Equal(t, Stats{Published: 1, Pending: 1}, p.Stats())
	assert.Equal(t, int32(0), counter.counts[0].Load())

	stop = runPipeline(t, p)
	require.Eventually(t, func() bool {
		return p.Stats().Processed == 1
	}, 5*time.Second, time.Millisecond)
	assert.ErrorIs(t, stop(), context.Canceled)

	counter.assertOnce(t)
	assert.Equal(t, Stats{Published: 1, Processed: 1}, p.Stats())
}
