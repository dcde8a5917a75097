// audio_backend_oto.go - OTO v3 audio output. Pull model: oto's mixer calls
// Read, which drains the ring buffer and pads silence on underrun.

package ym2149

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *RingBuffer

	sampleBuf []float32 // pre-allocated pull buffer
	started   bool
	mutex     sync.Mutex // setup/control only, never on the sample path
}

func NewOtoOutput(cfg StreamConfig, ring *RingBuffer) (*OtoOutput, error) {
	cfg = cfg.withDefaults()
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.ChannelCount,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	out := &OtoOutput{
		ctx:       ctx,
		ring:      ring,
		sampleBuf: make([]float32, 4096),
	}
	out.player = ctx.NewPlayer(out)
	return out, nil
}

func (o *OtoOutput) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if len(o.sampleBuf) < numSamples {
		// Should not happen after construction; oto buffers are stable.
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	got := o.ring.Read(samples)
	for i := got; i < numSamples; i++ {
		samples[i] = 0
	}

	for i, s := range samples {
		bits := math.Float32bits(s)
		p[i*4] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}
	return numSamples * 4, nil
}

func (o *OtoOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

func (o *OtoOutput) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.started && o.player != nil {
		o.player.Pause()
		o.started = false
	}
}

func (o *OtoOutput) Close() {
	o.Stop()
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
}

func (o *OtoOutput) IsStarted() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.started
}
