package audio

import (
	"context"
	"errors"
	"testing"
)

// fakeDevice implements Device for testing.
type fakeDevice struct {
	rate     int
	startErr error
	deliver  DeliverFunc
	started  bool
	stopped  int
}

func (d *fakeDevice) Start(ctx context.Context, chunkSize int, deliver DeliverFunc) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	d.deliver = deliver
	return nil
}

func (d *fakeDevice) Stop() error {
	d.stopped++
	return nil
}

func (d *fakeDevice) SampleRate() int {
	return d.rate
}

func TestSource_EmitsResampledPCMFrames(t *testing.T) {
	device := &fakeDevice{rate: 48000}

	var frames [][]byte
	src := NewSource(device, 16000, 4096, func(frame []byte) {
		frames = append(frames, frame)
	})

	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	device.deliver(make([]float32, 4096))

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	// floor(4096/3) samples, 2 bytes each.
	if len(frames[0]) != 1365*2 {
		t.Errorf("expected %d bytes, got %d", 1365*2, len(frames[0]))
	}
}

func TestSource_StartFailureReleasesDevice(t *testing.T) {
	device := &fakeDevice{rate: 48000, startErr: ErrPermissionDenied}
	src := NewSource(device, 16000, 4096, func([]byte) {})

	err := src.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if device.stopped != 1 {
		t.Errorf("expected device released once on failed start, got %d", device.stopped)
	}
	if src.Capturing() {
		t.Error("expected source not capturing after failed start")
	}
}

func TestSource_StopReleasesDevice(t *testing.T) {
	device := &fakeDevice{rate: 48000}
	src := NewSource(device, 16000, 4096, func([]byte) {})

	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	src.Stop()

	if device.stopped != 1 {
		t.Errorf("expected device stopped once, got %d", device.stopped)
	}

	// Stop is idempotent.
	src.Stop()
	if device.stopped != 1 {
		t.Errorf("expected no second device stop, got %d", device.stopped)
	}
}

func TestSource_NoEmitAfterStop(t *testing.T) {
	device := &fakeDevice{rate: 48000}

	var frames int
	src := NewSource(device, 16000, 4096, func([]byte) {
		frames++
	})

	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	src.Stop()

	// A chunk delivered after Stop (callback still racing) is discarded.
	device.deliver(make([]float32, 4096))

	if frames != 0 {
		t.Errorf("expected no frames after stop, got %d", frames)
	}
}
