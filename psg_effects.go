// psg_effects.go - Hardware-effect pipeline: digidrum, SID voice, sync buzzer.
// Decodes per-frame effect commands into chip hook calls and advances the
// active effects once per sample.

package ym2149

// MFP timer predivisors indexed by the 3-bit field in the effect command.
var mfpPrediv = [8]uint32{0, 4, 10, 16, 50, 64, 100, 200}

const drumPrec = 15 // fixed-point bits for digidrum position stepping

type drumVoice struct {
	active bool
	data   []uint8
	pos    uint32
	step   uint32
}

type sidVoice struct {
	active bool
	pos    uint32
	step   uint32
	vol    uint8
	high   bool
}

type syncBuzzer struct {
	active bool
	phase  uint32
	step   uint32
}

// effectsPipeline owns all per-channel effect state. With a backend that does
// not implement EffectChip the pipeline is inert and every call is a no-op.
type effectsPipeline struct {
	chip       EffectChip
	regs       Chip // register writes for SID volume and buzzer shape
	sampleRate int
	drums      [][]uint8

	drum   [PSG_CHANNELS]drumVoice
	sid    [PSG_CHANNELS]sidVoice
	buzzer syncBuzzer
}

func newEffectsPipeline(chip Chip, drums [][]uint8, sampleRate int) *effectsPipeline {
	return &effectsPipeline{
		chip:       effectHooks(chip),
		regs:       chip,
		sampleRate: sampleRate,
		drums:      drums,
	}
}

// reset releases every override and drops all effect state.
func (p *effectsPipeline) reset() {
	if p.chip == nil {
		return
	}
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		p.drum[ch] = drumVoice{}
		p.sid[ch] = sidVoice{}
		p.chip.SetDrumSampleOverride(ch, 0, false)
		p.chip.SetMixerOverrides(ch, false, false)
	}
	p.buzzer = syncBuzzer{}
}

// decodeFrame handles the frame's effect command annotations. YM6-style
// streams carry two command slots: bytes 1/6/14 and 3/8/15. Timed effects
// (SID voice, sync buzzer) stop unless the new frame re-asserts them;
// a running digidrum keeps playing until its sample is exhausted.
func (p *effectsPipeline) decodeFrame(f Frame) {
	if p.chip == nil {
		return
	}
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		p.sidStop(ch)
	}
	p.buzzerStop()

	p.decodeSlot(f, 1, 6, 14)
	p.decodeSlot(f, 3, 8, 15)
}

func (p *effectsPipeline) decodeSlot(f Frame, code, prediv, count int) {
	effect := f[code] & 0xF0
	if effect&0x30 == 0 {
		return
	}
	voice := int((effect&0x30)>>4) - 1

	div := mfpPrediv[(f[prediv]>>5)&7] * uint32(f[count])
	if div == 0 {
		return
	}
	timerFreq := uint32(MFP_CLOCK) / div

	switch effect & 0xC0 {
	case 0x00:
		p.sidStart(voice, timerFreq, f[8+voice]&0x0F)
	case 0x40:
		p.drumStart(voice, int(f[8+voice]&0x1F), timerFreq)
	case 0xC0:
		p.buzzerStart(timerFreq, f[8+voice]&0x0F)
	}
	// 0x80 is the sinus-SID variant, which no stream in the wild uses.
}

func (p *effectsPipeline) drumStart(voice int, drum int, freq uint32) {
	if drum >= len(p.drums) || len(p.drums[drum]) == 0 {
		return
	}
	p.drum[voice] = drumVoice{
		active: true,
		data:   p.drums[drum],
		step:   uint32((uint64(freq) << drumPrec) / uint64(p.sampleRate)),
	}
	p.chip.SetMixerOverrides(voice, true, true)
}

// sidStart takes over the voice's volume: the timer square toggles it between
// the command's level and 0 while register 7 gating keeps running, so the
// voice's tone still amplitude-modulates the output.
func (p *effectsPipeline) sidStart(voice int, timerFreq uint32, vol uint8) {
	p.sid[voice] = sidVoice{
		active: true,
		step:   uint32((uint64(timerFreq) << 31) / uint64(p.sampleRate)),
		vol:    vol,
		high:   true,
	}
	p.regs.WriteRegister(uint8(PSG_REG_VOL_A+voice), vol)
}

// sidStop only drops the effect state. The frame that stopped the effect has
// already rewritten the volume registers, so nothing needs restoring.
func (p *effectsPipeline) sidStop(voice int) {
	p.sid[voice] = sidVoice{}
}

// buzzerStart applies the command's envelope shape, then retriggers the
// envelope on every timer period wrap.
func (p *effectsPipeline) buzzerStart(timerFreq uint32, shape uint8) {
	p.regs.WriteRegister(PSG_REG_ENV_SHAPE, shape)
	p.buzzer = syncBuzzer{
		active: true,
		step:   uint32((uint64(timerFreq) << 31) / uint64(p.sampleRate)),
	}
}

func (p *effectsPipeline) buzzerStop() {
	p.buzzer = syncBuzzer{}
}

// advance runs every active effect for one sample. Called before the chip is
// clocked so the sample reflects this sample's override state.
func (p *effectsPipeline) advance() {
	if p.chip == nil {
		return
	}
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		if sid := &p.sid[ch]; sid.active {
			sid.pos += sid.step
			high := sid.pos&(1<<31) == 0
			if high != sid.high {
				vol := uint8(0)
				if high {
					vol = sid.vol
				}
				p.regs.WriteRegister(uint8(PSG_REG_VOL_A+ch), vol)
				sid.high = high
			}
			continue
		}
		if drum := &p.drum[ch]; drum.active {
			idx := drum.pos >> drumPrec
			if int(idx) >= len(drum.data) {
				drum.active = false
				drum.data = nil
				p.chip.SetDrumSampleOverride(ch, 0, false)
				p.chip.SetMixerOverrides(ch, false, false)
				continue
			}
			p.chip.SetDrumSampleOverride(ch, float32(drum.data[idx])/255.0, true)
			drum.pos += drum.step
		}
	}
	if p.buzzer.active {
		p.buzzer.phase += p.buzzer.step
		if p.buzzer.phase&(1<<31) != 0 {
			p.chip.TriggerEnvelope()
			p.buzzer.phase &^= 1 << 31
		}
	}
}
