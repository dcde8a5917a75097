// audio_backend_headless.go - Null audio backend for CI and offline use.
// Drains the ring buffer at wall-clock sample-rate pace and discards it.

package ym2149

import (
	"sync"
	"time"
)

type HeadlessOutput struct {
	ring  *RingBuffer
	cfg   StreamConfig
	mutex sync.Mutex

	started bool
	done    chan struct{}
}

func NewHeadlessOutput(cfg StreamConfig, ring *RingBuffer) *HeadlessOutput {
	return &HeadlessOutput{ring: ring, cfg: cfg.withDefaults()}
}

func (h *HeadlessOutput) Start() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.started {
		return
	}
	h.started = true
	h.done = make(chan struct{})

	go h.drain(h.done)
}

func (h *HeadlessOutput) drain(done chan struct{}) {
	const interval = 10 * time.Millisecond
	chunk := make([]float32, h.cfg.SampleRate*h.cfg.ChannelCount/100)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.ring.Read(chunk)
		}
	}
}

func (h *HeadlessOutput) Stop() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.started {
		return
	}
	close(h.done)
	h.started = false
}

func (h *HeadlessOutput) Close() {
	h.Stop()
}

func (h *HeadlessOutput) IsStarted() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.started
}
