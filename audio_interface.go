// audio_interface.go - Audio output abstraction and streaming configuration.

package ym2149

import "fmt"

const (
	AUDIO_BACKEND_AUTO = iota
	AUDIO_BACKEND_OTO
	AUDIO_BACKEND_HEADLESS
)

// StreamConfig sizes the transport between sample generation and the
// audio backend.
type StreamConfig struct {
	RingBufferSize int // samples; rounded up to a power of two
	SampleRate     int
	ChannelCount   int
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.RingBufferSize <= 0 {
		c.RingBufferSize = 8192
	}
	if c.SampleRate <= 0 {
		c.SampleRate = SAMPLE_RATE
	}
	if c.ChannelCount <= 0 {
		c.ChannelCount = 1
	}
	return c
}

// AudioOutput is the consumer side of the ring buffer: a backend that drains
// samples towards an audio device (or nowhere, for the headless backend).
type AudioOutput interface {
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// NewAudioOutput creates the selected backend reading from ring. The AUTO
// backend tries the platform audio device and falls back to headless when
// no device is available.
func NewAudioOutput(backend int, cfg StreamConfig, ring *RingBuffer) (AudioOutput, error) {
	cfg = cfg.withDefaults()
	switch backend {
	case AUDIO_BACKEND_HEADLESS:
		return NewHeadlessOutput(cfg, ring), nil
	case AUDIO_BACKEND_OTO:
		return NewOtoOutput(cfg, ring)
	case AUDIO_BACKEND_AUTO:
		out, err := NewOtoOutput(cfg, ring)
		if err != nil {
			return NewHeadlessOutput(cfg, ring), nil
		}
		return out, nil
	default:
		return nil, fmt.Errorf("audio: unknown backend %d", backend)
	}
}
