// psg_synth.go - Lightweight approximate synth backend. Renders the register
// contract with float32 phase-accumulator oscillators instead of the
// cycle-accurate core; it trades hardware effects for cheap per-sample cost.

package ym2149

const (
	synthNoiseSeed = 0x7FFFFF // 23-bit LFSR seed
	synthNoiseMask = 0x7FFFFF
)

// Synth implements Chip but not EffectChip: the playback engine runs it with
// the effects pipeline degraded to a no-op.
type Synth struct {
	regs [PSG_REG_COUNT]uint8

	sampleRate int
	clockHz    uint32

	freq  [PSG_CHANNELS]float32
	phase [PSG_CHANNELS]float32

	toneDisabled  [PSG_CHANNELS]bool
	noiseDisabled [PSG_CHANNELS]bool
	useEnvelope   [PSG_CHANNELS]bool
	volume        [PSG_CHANNELS]float32
	mute          [PSG_CHANNELS]bool

	noiseFreq   float32
	noisePhase  float32
	noiseSR     uint32
	noiseFilter float32

	// Software envelope walked once per sample, 16 levels.
	envPeriodSamples float64
	envCounter       float64
	envLevel         int
	envDirection     int
	envHold          bool

	sample float32
}

// NewSynth returns the lightweight backend at the given clock and sample rate.
func NewSynth(clockHz uint32, sampleRate int) *Synth {
	if clockHz == 0 {
		clockHz = PSG_CLOCK_ATARI_ST
	}
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}
	s := &Synth{
		clockHz:    clockHz,
		sampleRate: sampleRate,
	}
	s.Reset()
	return s
}

func (s *Synth) Reset() {
	for reg := uint8(0); reg < PSG_REG_COUNT; reg++ {
		s.WriteRegister(reg, 0)
	}
	s.WriteRegister(PSG_REG_MIXER, 0xFF)
	s.phase = [PSG_CHANNELS]float32{}
	s.noisePhase = 0
	s.noiseSR = synthNoiseSeed
	s.noiseFilter = 0
	s.envLevel = 15
	s.envDirection = -1
	s.envHold = false
	s.envCounter = 0
	s.sample = 0
}

func (s *Synth) WriteRegister(reg uint8, value uint8) {
	if reg >= PSG_REG_COUNT {
		return
	}
	value &= psgRegisterMask[reg]
	s.regs[reg] = value

	switch reg {
	case PSG_REG_TONE_A_LO, PSG_REG_TONE_A_HI,
		PSG_REG_TONE_B_LO, PSG_REG_TONE_B_HI,
		PSG_REG_TONE_C_LO, PSG_REG_TONE_C_HI:
		ch := int(reg) / 2
		period := uint32(s.regs[ch*2+1]&0x0F)<<8 | uint32(s.regs[ch*2])
		if period == 0 {
			// Sub-audible carrier on hardware; the cheap model just mutes it.
			s.freq[ch] = 0
		} else {
			s.freq[ch] = float32(s.clockHz) / (16.0 * float32(period))
		}
	case PSG_REG_NOISE:
		period := uint32(value & 0x1F)
		if period == 0 {
			period = 1
		}
		s.noiseFreq = float32(s.clockHz) / (16.0 * float32(period))
	case PSG_REG_MIXER:
		for ch := 0; ch < PSG_CHANNELS; ch++ {
			s.toneDisabled[ch] = value&(1<<ch) != 0
			s.noiseDisabled[ch] = value&(1<<(ch+3)) != 0
		}
	case PSG_REG_VOL_A, PSG_REG_VOL_B, PSG_REG_VOL_C:
		ch := int(reg - PSG_REG_VOL_A)
		s.useEnvelope[ch] = value&0x10 != 0
		s.volume[ch] = volumeLevel(value)
	case PSG_REG_ENV_LO, PSG_REG_ENV_HI:
		s.updateEnvPeriod()
	case PSG_REG_ENV_SHAPE:
		s.resetEnvelope()
	}
}

func (s *Synth) ReadRegister(reg uint8) uint8 {
	if reg >= PSG_REG_COUNT {
		return 0
	}
	return s.regs[reg]
}

func (s *Synth) LoadRegisters(frame [PSG_REG_COUNT]uint8) {
	for reg := uint8(0); reg < PSG_REG_COUNT; reg++ {
		s.WriteRegister(reg, frame[reg])
	}
}

func (s *Synth) DumpRegisters() [PSG_REG_COUNT]uint8 {
	return s.regs
}

func (s *Synth) SetChannelMute(ch int, mute bool) {
	if ch >= 0 && ch < PSG_CHANNELS {
		s.mute[ch] = mute
	}
}

func (s *Synth) updateEnvPeriod() {
	period := uint16(s.regs[PSG_REG_ENV_LO]) | uint16(s.regs[PSG_REG_ENV_HI])<<8
	if period == 0 {
		period = 1
	}
	s.envPeriodSamples = float64(s.sampleRate) * 256.0 * float64(period) / float64(s.clockHz)
	if s.envPeriodSamples <= 0 {
		s.envPeriodSamples = 1
	}
}

func (s *Synth) resetEnvelope() {
	if s.regs[PSG_REG_ENV_SHAPE]&0x04 != 0 {
		s.envLevel = 0
		s.envDirection = 1
	} else {
		s.envLevel = 15
		s.envDirection = -1
	}
	s.envHold = false
	s.envCounter = 0
}

func (s *Synth) advanceEnvelope() {
	s.envCounter++
	if s.envCounter < s.envPeriodSamples {
		return
	}
	steps := int(s.envCounter / s.envPeriodSamples)
	s.envCounter -= float64(steps) * s.envPeriodSamples

	shape := s.regs[PSG_REG_ENV_SHAPE]
	for i := 0; i < steps && !s.envHold; i++ {
		s.envLevel += s.envDirection
		if s.envLevel > 15 {
			s.envLevel = 15
		}
		if s.envLevel < 0 {
			s.envLevel = 0
		}
		if s.envLevel != 0 && s.envLevel != 15 {
			continue
		}
		switch {
		case shape&0x08 == 0: // continue off
			s.envLevel = 0
			s.envHold = true
		case shape&0x01 != 0: // hold
			s.envHold = true
		case shape&0x02 != 0: // alternate
			s.envDirection = -s.envDirection
		}
	}
}

func (s *Synth) Clock() {
	s.advanceEnvelope()

	// Shared noise generator, filtered like a cheap analog stage.
	s.noisePhase += s.noiseFreq / float32(s.sampleRate)
	steps := int(s.noisePhase)
	s.noisePhase -= float32(steps)
	for i := 0; i < steps; i++ {
		bit := ((s.noiseSR >> 22) ^ (s.noiseSR >> 17)) & 1
		s.noiseSR = ((s.noiseSR << 1) | bit) & synthNoiseMask
	}
	noiseValue := float32(s.noiseSR&1)*2 - 1
	s.noiseFilter = 0.95*s.noiseFilter + 0.05*noiseValue
	noiseHigh := s.noiseSR&1 != 0

	var sum float32
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		high := true
		if s.freq[ch] > 0 {
			s.phase[ch] += s.freq[ch] / float32(s.sampleRate)
			if s.phase[ch] >= 1 {
				s.phase[ch] -= 1
			}
			high = s.phase[ch] < 0.5
		} else if !s.toneDisabled[ch] {
			// Period 0 with tone enabled: carrier above hearing, emit nothing.
			continue
		}
		if s.mute[ch] {
			continue
		}
		gate := (high || s.toneDisabled[ch]) && (noiseHigh || s.noiseDisabled[ch])
		level := s.volume[ch]
		if s.useEnvelope[ch] {
			level = volumeLevel(uint8(s.envLevel))
		}
		if !s.noiseDisabled[ch] {
			// Soften pure noise voices with the filtered generator.
			if gate {
				sum += level * (0.5 + 0.5*s.noiseFilter)
			}
			continue
		}
		if gate {
			sum += level
		} else {
			sum -= level
		}
	}

	s.sample = sum * (1.0 / PSG_CHANNELS)
}

func (s *Synth) Sample() float32 {
	return s.sample
}

func (s *Synth) GenerateSamples(buf []float32) {
	for i := range buf {
		s.Clock()
		buf[i] = s.sample
	}
}
