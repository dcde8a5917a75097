// psg_chip.go - Cycle-accurate YM2149 chip core: register file, mixer,
// DC adjustment and the sub-clock to sample-rate converter.

package ym2149

import "math/rand/v2"

const dcAdjustLen = 512 // power of two

// dcAdjuster removes the DC offset of the summed voices with a moving average.
type dcAdjuster struct {
	buffer [dcAdjustLen]float32
	pos    int
	sum    float64
}

func (d *dcAdjuster) reset() {
	*d = dcAdjuster{}
}

func (d *dcAdjuster) add(sample float32) {
	d.sum -= float64(d.buffer[d.pos])
	d.sum += float64(sample)
	d.buffer[d.pos] = sample
	d.pos = (d.pos + 1) & (dcAdjustLen - 1)
}

func (d *dcAdjuster) level() float32 {
	return float32(d.sum / dcAdjustLen)
}

// PSG is the hardware-accurate YM2149 model. One logical owner mutates it at a
// time; there is no internal locking so the per-sample path stays free of
// locks and allocation.
type PSG struct {
	regs [PSG_REG_COUNT]uint8

	tone  [PSG_CHANNELS]toneGenerator
	noise noiseGenerator
	env   envelopeGenerator

	// Mixer state decoded from register 7 and the volume registers.
	toneDisabled  [PSG_CHANNELS]bool
	noiseDisabled [PSG_CHANNELS]bool
	useEnvelope   [PSG_CHANNELS]bool
	volume        [PSG_CHANNELS]float32

	mute [PSG_CHANNELS]bool

	// Hardware-effect overrides, driven through the EffectChip hooks.
	forceTone  [PSG_CHANNELS]bool
	forceNoise [PSG_CHANNELS]bool
	drumLevel  [PSG_CHANNELS]float32
	drumActive [PSG_CHANNELS]bool

	dc dcAdjuster

	// Fixed-point count of internal ticks (master clock / 8) per output sample.
	ticksPerSample uint64
	tickAcc        uint64

	clockHz    uint32
	sampleRate int
	rng        *rand.Rand

	sample float32
}

// NewPSG returns a chip with randomized power-on generator state, matching the
// documented non-determinism of real hardware.
func NewPSG(clockHz uint32, sampleRate int) *PSG {
	seed := rand.Uint64()
	return newPSG(clockHz, sampleRate, rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
}

// NewPSGSeeded returns a chip whose power-on state is derived from seed.
// Test harnesses use this to get reproducible output.
func NewPSGSeeded(clockHz uint32, sampleRate int, seed uint64) *PSG {
	return newPSG(clockHz, sampleRate, rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
}

func newPSG(clockHz uint32, sampleRate int, rng *rand.Rand) *PSG {
	if clockHz == 0 {
		clockHz = PSG_CLOCK_ATARI_ST
	}
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}
	chip := &PSG{
		clockHz:        clockHz,
		sampleRate:     sampleRate,
		rng:            rng,
		ticksPerSample: (uint64(clockHz/8) << 32) / uint64(sampleRate),
	}
	chip.Reset()
	return chip
}

// SetClockHz switches the emulated master clock (Atari ST, Spectrum, CPC...).
func (c *PSG) SetClockHz(clockHz uint32) {
	if clockHz == 0 {
		return
	}
	c.clockHz = clockHz
	c.ticksPerSample = (uint64(clockHz/8) << 32) / uint64(c.sampleRate)
}

// ClockHz returns the emulated master clock.
func (c *PSG) ClockHz() uint32 { return c.clockHz }

// SampleRate returns the output sample rate.
func (c *PSG) SampleRate() int { return c.sampleRate }

// Reset restores register defaults (all voices off) and re-scatters the
// generator phases from the chip's random source.
func (c *PSG) Reset() {
	for reg := uint8(0); reg < PSG_REG_COUNT; reg++ {
		c.WriteRegister(reg, 0)
	}
	c.WriteRegister(PSG_REG_MIXER, 0xFF)

	c.tone = [PSG_CHANNELS]toneGenerator{{period: 1}, {period: 1}, {period: 1}}
	c.noise = noiseGenerator{period: 1, lfsr: noiseReseed}
	c.env = envelopeGenerator{period: 1}

	for ch := 0; ch < PSG_CHANNELS; ch++ {
		c.forceTone[ch] = false
		c.forceNoise[ch] = false
		c.drumActive[ch] = false
		c.drumLevel[ch] = 0
	}

	c.dc.reset()
	c.tickAcc = 0
	c.sample = 0

	randomizePowerOn(c.rng, &c.tone, &c.noise)
}

// WriteRegister stores value (masked to the register's significant bits) and
// updates the derived generator state. Every value is legal for every register.
func (c *PSG) WriteRegister(reg uint8, value uint8) {
	if reg >= PSG_REG_COUNT {
		return
	}
	value &= psgRegisterMask[reg]
	c.regs[reg] = value

	switch reg {
	case PSG_REG_TONE_A_LO, PSG_REG_TONE_A_HI:
		c.tone[0].setPeriod(c.regs[PSG_REG_TONE_A_LO], c.regs[PSG_REG_TONE_A_HI])
	case PSG_REG_TONE_B_LO, PSG_REG_TONE_B_HI:
		c.tone[1].setPeriod(c.regs[PSG_REG_TONE_B_LO], c.regs[PSG_REG_TONE_B_HI])
	case PSG_REG_TONE_C_LO, PSG_REG_TONE_C_HI:
		c.tone[2].setPeriod(c.regs[PSG_REG_TONE_C_LO], c.regs[PSG_REG_TONE_C_HI])
	case PSG_REG_NOISE:
		c.noise.setPeriod(value)
	case PSG_REG_MIXER:
		for ch := 0; ch < PSG_CHANNELS; ch++ {
			c.toneDisabled[ch] = value&(1<<ch) != 0
			c.noiseDisabled[ch] = value&(1<<(ch+3)) != 0
		}
	case PSG_REG_VOL_A, PSG_REG_VOL_B, PSG_REG_VOL_C:
		ch := int(reg - PSG_REG_VOL_A)
		c.useEnvelope[ch] = value&0x10 != 0
		c.volume[ch] = volumeLevel(value)
	case PSG_REG_ENV_LO, PSG_REG_ENV_HI:
		c.env.setPeriod(c.regs[PSG_REG_ENV_LO], c.regs[PSG_REG_ENV_HI])
	case PSG_REG_ENV_SHAPE:
		// Writing the shape always restarts the envelope, as on hardware.
		c.env.setShape(value)
	}
}

// ReadRegister returns the last written (masked) byte. Write-only hardware
// registers read back their stored value for emulator convenience.
func (c *PSG) ReadRegister(reg uint8) uint8 {
	if reg >= PSG_REG_COUNT {
		return 0
	}
	return c.regs[reg]
}

// LoadRegisters writes all 16 registers as one atomic snapshot: the generators
// observe a fully consistent register set starting with the next Clock.
func (c *PSG) LoadRegisters(frame [PSG_REG_COUNT]uint8) {
	for reg := uint8(0); reg < PSG_REG_COUNT; reg++ {
		c.WriteRegister(reg, frame[reg])
	}
}

// DumpRegisters snapshots the register file.
func (c *PSG) DumpRegisters() [PSG_REG_COUNT]uint8 {
	return c.regs
}

// SetChannelMute silences one voice without touching its registers.
func (c *PSG) SetChannelMute(ch int, mute bool) {
	if ch >= 0 && ch < PSG_CHANNELS {
		c.mute[ch] = mute
	}
}

// SetMixerOverrides forces a channel's tone/noise enable lines open
// independent of register 7. Used by digidrum emulation.
func (c *PSG) SetMixerOverrides(ch int, forceTone, forceNoise bool) {
	if ch >= 0 && ch < PSG_CHANNELS {
		c.forceTone[ch] = forceTone
		c.forceNoise[ch] = forceNoise
	}
}

// SetDrumSampleOverride substitutes a channel's mixed output with an external
// PCM level while active; normal mixing resumes when cleared.
func (c *PSG) SetDrumSampleOverride(ch int, sample float32, active bool) {
	if ch >= 0 && ch < PSG_CHANNELS {
		c.drumLevel[ch] = sample
		c.drumActive[ch] = active
	}
}

// TriggerEnvelope restarts the envelope ladder without changing its shape.
func (c *PSG) TriggerEnvelope() {
	c.env.retrigger()
}

// Clock advances the chip by one output sample: the sub-clock accumulator
// converts the master-clock/8 tick stream to the sample rate, the due ticks
// run the generators, and the new 3-voice mix is latched for Sample.
// No allocation, O(1) over fixed-size state.
func (c *PSG) Clock() {
	c.tickAcc += c.ticksPerSample
	ticks := c.tickAcc >> 32
	c.tickAcc &= 0xFFFFFFFF

	for ; ticks > 0; ticks-- {
		c.tone[0].tick()
		c.tone[1].tick()
		c.tone[2].tick()
		c.noise.tick()
		c.env.tick()
	}

	noiseBit := c.noise.output() != 0
	envLevel := psgVolume[c.env.level()]

	var sum float32
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		if c.mute[ch] {
			continue
		}
		if c.drumActive[ch] {
			sum += c.drumLevel[ch]
			continue
		}
		toneBit := c.tone[ch].output != 0
		gate := (toneBit || c.toneDisabled[ch] || c.forceTone[ch]) &&
			(noiseBit || c.noiseDisabled[ch] || c.forceNoise[ch])
		if !gate {
			continue
		}
		if c.useEnvelope[ch] {
			sum += envLevel
		} else {
			sum += c.volume[ch]
		}
	}

	sum *= 1.0 / PSG_CHANNELS
	c.dc.add(sum)
	c.sample = sum - c.dc.level()
}

// Sample returns the output latched by the last Clock, in roughly [-1,1].
func (c *PSG) Sample() float32 {
	return c.sample
}

// GenerateSamples clocks the chip once per buffer slot and fills buf.
func (c *PSG) GenerateSamples(buf []float32) {
	for i := range buf {
		c.Clock()
		buf[i] = c.sample
	}
}
