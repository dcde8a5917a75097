// psg_generators.go - Tone, noise and envelope generators.

package ym2149

import "math/rand/v2"

// Fallback seed for an all-zero LFSR, which the hardware can never reach.
const noiseReseed = 0x1FFFF

// toneGenerator is one 12-bit square voice. The counter advances once per
// internal tick (master clock / 8) and the output bit flips when it reaches
// the period, so a full cycle spans 2*period ticks.
type toneGenerator struct {
	period  uint32
	counter uint32
	output  uint32 // 0 or 1
}

func (g *toneGenerator) setPeriod(lo, hi uint8) {
	p := uint32(hi&0x0F)<<8 | uint32(lo)
	if p == 0 {
		p = 1
	}
	g.period = p
	if g.counter >= p {
		g.counter = 0
	}
}

func (g *toneGenerator) tick() {
	g.counter++
	if g.counter >= g.period {
		g.counter = 0
		g.output ^= 1
	}
}

// noiseGenerator is the shared 17-bit LFSR with taps at bits 0 and 3.
// The register shifts at half the tone tick rate, divided by the 5-bit period.
type noiseGenerator struct {
	period  uint32
	counter uint32
	lfsr    uint32
}

func (g *noiseGenerator) setPeriod(r uint8) {
	p := uint32(r & 0x1F)
	if p == 0 {
		p = 1
	}
	g.period = p
	if g.counter >= p*2 {
		g.counter = 0
	}
}

func (g *noiseGenerator) shift() {
	bit := (g.lfsr ^ (g.lfsr >> 3)) & 1
	g.lfsr = (g.lfsr >> 1) | (bit << 16)
	if g.lfsr == 0 {
		// All-zero is a dead state the silicon cannot enter.
		g.lfsr = noiseReseed
	}
}

func (g *noiseGenerator) tick() {
	g.counter++
	if g.counter >= g.period*2 {
		g.counter = 0
		g.shift()
	}
}

func (g *noiseGenerator) output() uint32 {
	return g.lfsr & 1
}

// envelopeGenerator walks the 32-level shape ladder. One ladder step every
// `period` internal ticks, giving the hardware's clock/(256*period) ramp rate
// over a 32-step ramp.
type envelopeGenerator struct {
	period  uint32
	counter uint32
	shape   uint8
	phase   int // 0 = one-shot phase, 1 = repeating phase
	step    int
}

func (g *envelopeGenerator) setPeriod(lo, hi uint8) {
	p := uint32(hi)<<8 | uint32(lo)
	if p == 0 {
		p = 1
	}
	g.period = p
}

func (g *envelopeGenerator) setShape(shape uint8) {
	g.shape = shape & 0x0F
	g.retrigger()
}

// retrigger restarts the ladder without altering the configured shape.
// Sync-buzzer emulation calls this at audio rate.
func (g *envelopeGenerator) retrigger() {
	g.step = 0
	g.phase = 0
	g.counter = 0
}

func (g *envelopeGenerator) tick() {
	g.counter++
	if g.counter < g.period {
		return
	}
	g.counter = 0
	g.step++
	if g.step >= envPhaseLen {
		g.step = 0
		g.phase = 1
	}
}

// level returns the current ladder value in [0,31].
func (g *envelopeGenerator) level() uint8 {
	return envShapeTable[g.shape][g.phase][g.step]
}

// randomizePowerOn scatters generator state the way real silicon comes up:
// tone phases, output bits and the noise register hold arbitrary junk until
// the first register writes. A nil rng leaves the deterministic reset state.
func randomizePowerOn(rng *rand.Rand, tones *[PSG_CHANNELS]toneGenerator, noise *noiseGenerator) {
	if rng == nil {
		return
	}
	for i := range tones {
		tones[i].counter = rng.Uint32N(tones[i].period)
		tones[i].output = rng.Uint32N(2)
	}
	noise.lfsr = rng.Uint32N(1<<17-1) + 1
}
