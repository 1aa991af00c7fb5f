// Package audio provides the resampling capture source that turns raw
// device samples into fixed-format PCM16 frames for the transcription
// transport.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tolk/internal/observability/logging"
)

// Capture error taxonomy. Devices report acquisition failures as one of
// these so the consumer can distinguish a denied microphone from a
// missing one.
var (
	ErrPermissionDenied  = errors.New("audio: permission denied")
	ErrDeviceUnavailable = errors.New("audio: device unavailable")
)

// DeliverFunc receives one chunk of native-rate float32 samples.
type DeliverFunc func(samples []float32)

// Device is a capture backend. It delivers raw float32 samples at its
// native rate; the Source owns resampling and PCM conversion.
type Device interface {
	// Start begins capture, invoking deliver for each chunk of samples.
	// Acquisition failures are reported as ErrPermissionDenied or
	// ErrDeviceUnavailable (possibly wrapped).
	Start(ctx context.Context, chunkSize int, deliver DeliverFunc) error

	// Stop ends capture and releases the device. Idempotent.
	Stop() error

	// SampleRate reports the native capture rate in Hz.
	SampleRate() int
}

// FrameFunc receives one emitted PCM16 little-endian frame at the
// target rate. Ownership of the slice transfers to the callee.
type FrameFunc func(frame []byte)

// Source captures audio from a Device, downsamples it to the target
// rate and emits PCM16 frames via a push callback.
//
// A Source owns its device exclusively while capturing. Capture does
// not auto-retry: an acquisition failure is returned once from Start
// and the device is released.
type Source struct {
	device     Device
	targetRate int
	chunkSize  int
	emit       FrameFunc

	mu        sync.Mutex
	capturing bool
}

// NewSource creates a capture source emitting frames at targetRate.
// chunkSize is the number of native-rate samples requested per capture
// callback.
func NewSource(device Device, targetRate, chunkSize int, emit FrameFunc) *Source {
	return &Source{
		device:     device,
		targetRate: targetRate,
		chunkSize:  chunkSize,
		emit:       emit,
	}
}

// Start acquires the device and begins frame delivery. Returns
// ErrPermissionDenied or ErrDeviceUnavailable (wrapped) when the device
// cannot be acquired; the device is released on every error path.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.capturing {
		s.mu.Unlock()
		return nil
	}
	s.capturing = true
	s.mu.Unlock()

	if err := s.device.Start(ctx, s.chunkSize, s.process); err != nil {
		// Release whatever the device acquired before failing.
		if stopErr := s.device.Stop(); stopErr != nil {
			logger := logging.WithComponent("audio")
			logger.Warn().Err(stopErr).Msg("device release after failed start")
		}
		s.mu.Lock()
		s.capturing = false
		s.mu.Unlock()
		return fmt.Errorf("start capture: %w", err)
	}
	return nil
}

// Stop ends capture and releases the device. Safe to call on every exit
// path, including after a failed Start.
func (s *Source) Stop() {
	s.mu.Lock()
	if !s.capturing {
		s.mu.Unlock()
		return
	}
	s.capturing = false
	s.mu.Unlock()

	if err := s.device.Stop(); err != nil {
		logger := logging.WithComponent("audio")
		logger.Warn().Err(err).Msg("device stop")
	}
}

// Capturing reports whether the source is currently capturing.
func (s *Source) Capturing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturing
}

func (s *Source) process(samples []float32) {
	s.mu.Lock()
	active := s.capturing
	s.mu.Unlock()
	if !active {
		return
	}

	resampled := Downsample(samples, s.device.SampleRate(), s.targetRate)
	s.emit(EncodePCM16LE(ToPCM16(resampled)))
}
