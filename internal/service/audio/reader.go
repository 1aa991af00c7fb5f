package audio

import (
	"context"
	"io"
	"sync"
	"time"
)

// ReaderDevice is a Device backed by an io.Reader of raw PCM16
// little-endian mono samples at a declared rate. It stands in for a
// microphone in the CLI client and in tests.
type ReaderDevice struct {
	r        io.Reader
	rate     int
	realtime bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewReaderDevice creates a device reading PCM16LE samples from r at
// sampleRate Hz. When realtime is set, delivery is paced to match the
// wall-clock duration of each chunk.
func NewReaderDevice(r io.Reader, sampleRate int, realtime bool) *ReaderDevice {
	return &ReaderDevice{
		r:        r,
		rate:     sampleRate,
		realtime: realtime,
	}
}

// SampleRate reports the declared capture rate.
func (d *ReaderDevice) SampleRate() int {
	return d.rate
}

// Start begins delivering chunks in a background goroutine. Delivery
// ends at EOF, read error, Stop or context cancellation.
func (d *ReaderDevice) Start(ctx context.Context, chunkSize int, deliver DeliverFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.r == nil {
		return ErrDeviceUnavailable
	}
	if d.started {
		return nil
	}
	d.started = true

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	chunkDur := time.Duration(chunkSize) * time.Second / time.Duration(d.rate)

	go func() {
		defer close(d.done)
		buf := make([]byte, chunkSize*2)
		for {
			if ctx.Err() != nil {
				return
			}
			n, err := io.ReadFull(d.r, buf)
			if n > 0 {
				deliver(DecodePCM16LE(buf[:n]))
			}
			if err != nil {
				// EOF or read error both end delivery; the stream is not
				// restartable.
				return
			}
			if d.realtime {
				select {
				case <-time.After(chunkDur):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// Stop ends delivery and waits for the reader goroutine to exit.
// Idempotent.
func (d *ReaderDevice) Stop() error {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.started = false
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}

// Wait blocks until the device has delivered its whole stream or was
// stopped. Returns immediately if the device never started.
func (d *ReaderDevice) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}
