// psg_effects_test.go - Effect command decoding and the digidrum, SID voice
// and sync buzzer lifecycles.

package ym2149

import "testing"

// effectFrame builds a frame carrying one effect command in the first slot
// (command byte 1, predivisor byte 6, counter byte 14).
func effectFrame(effect uint8, prediv uint8, count uint8) Frame {
	f := silentFrame()
	f[1] = effect
	f[6] = prediv << 5
	f[14] = count
	return f
}

func newTestPipeline() (*effectsPipeline, *PSG) {
	chip := newTestChip()
	drums := [][]uint8{
		{0x80, 0xFF, 0x40, 0x00},
	}
	return newEffectsPipeline(chip, drums, SAMPLE_RATE), chip
}

func TestDecodeFrameNoEffects(t *testing.T) {
	p, _ := newTestPipeline()
	p.decodeFrame(silentFrame())
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		if p.sid[ch].active || p.drum[ch].active {
			t.Fatalf("channel %d active after empty frame", ch)
		}
	}
	if p.buzzer.active {
		t.Fatalf("buzzer active after empty frame")
	}
}

func TestDecodeDigidrumStart(t *testing.T) {
	p, chip := newTestPipeline()
	// 0x40|0x10: digidrum on voice A. Predivisor 4 (field 2), counter 10.
	f := effectFrame(0x50, 2, 10)
	f[8] = 0 // drum index in the voice's volume byte
	p.decodeFrame(f)

	if !p.drum[0].active {
		t.Fatalf("drum not active on voice A")
	}
	if !chip.forceTone[0] || !chip.forceNoise[0] {
		t.Fatalf("drum did not force the mixer gate open")
	}
	// MFP timer: 2457600 / (10 * 10) = 24576 Hz.
	wantStep := uint32((uint64(24576) << drumPrec) / SAMPLE_RATE)
	if p.drum[0].step != wantStep {
		t.Fatalf("drum step = %d, want %d", p.drum[0].step, wantStep)
	}
}

func TestDigidrumPlaysAndReleases(t *testing.T) {
	p, chip := newTestPipeline()
	f := effectFrame(0x50, 2, 10)
	p.decodeFrame(f)

	p.advance()
	if !chip.drumActive[0] {
		t.Fatalf("first advance did not assert the drum override")
	}
	if want := float32(0x80) / 255.0; chip.drumLevel[0] != want {
		t.Fatalf("drum level = %v, want first PCM byte %v", chip.drumLevel[0], want)
	}

	// 4 PCM bytes at 24576 Hz are gone within a handful of output samples.
	for i := 0; i < 100 && p.drum[0].active; i++ {
		p.advance()
	}
	if p.drum[0].active {
		t.Fatalf("drum still active after sample exhausted")
	}
	if chip.drumActive[0] || chip.forceTone[0] {
		t.Fatalf("drum exhaustion did not release the overrides")
	}
}

func TestDigidrumSurvivesFramesUntilDone(t *testing.T) {
	p, _ := newTestPipeline()
	// Slow drum: predivisor 200 (field 7), counter 255.
	p.decodeFrame(effectFrame(0x50, 7, 255))
	p.advance()
	if !p.drum[0].active {
		t.Fatalf("slow drum not active")
	}
	// A following frame with no commands must not cut the drum short.
	p.decodeFrame(silentFrame())
	if !p.drum[0].active {
		t.Fatalf("frame without commands stopped a running digidrum")
	}
}

func TestDecodeUnknownDrumIndexIgnored(t *testing.T) {
	p, _ := newTestPipeline()
	f := effectFrame(0x50, 2, 10)
	f[8] = 9 // only drum 0 exists
	p.decodeFrame(f)
	if p.drum[0].active {
		t.Fatalf("out-of-range drum index started a drum")
	}
}

func TestSidVoiceTogglesVolume(t *testing.T) {
	p, chip := newTestPipeline()
	// 0x00|0x10: SID on voice A. High LFO rate so both half-cycles appear
	// within a short run: 2457600 / (4 * 16) = 38400 Hz.
	f := effectFrame(0x10, 1, 16)
	f[8] = 0x0F // SID level from the voice volume byte
	p.decodeFrame(f)

	if !p.sid[0].active {
		t.Fatalf("SID voice not active")
	}
	if got := chip.ReadRegister(PSG_REG_VOL_A); got != 0x0F {
		t.Fatalf("SID start left volume %#02x, want 0x0F", got)
	}

	sawHigh, sawLow := false, false
	for i := 0; i < 64; i++ {
		p.advance()
		switch chip.ReadRegister(PSG_REG_VOL_A) {
		case 0x0F:
			sawHigh = true
		case 0x00:
			sawLow = true
		default:
			t.Fatalf("SID wrote volume %#02x", chip.ReadRegister(PSG_REG_VOL_A))
		}
	}
	if !sawHigh || !sawLow {
		t.Fatalf("SID LFO never toggled the volume (high:%v low:%v)", sawHigh, sawLow)
	}
}

func TestSidVoiceLeavesMixerGatingActive(t *testing.T) {
	// The SID square modulates the volume only: register 7 gating and the
	// running tone stay in effect, nothing replaces the mixed output.
	p, chip := newTestPipeline()
	chip.LoadRegisters(toneFrame(100, 15))

	f := effectFrame(0x10, 1, 16)
	f[8] = 0x0F
	p.decodeFrame(f)

	for i := 0; i < 64; i++ {
		p.advance()
		if chip.drumActive[0] {
			t.Fatalf("SID asserted the output-replacing drum override")
		}
		if chip.forceTone[0] || chip.forceNoise[0] {
			t.Fatalf("SID forced the mixer gate open")
		}
	}
	if !chip.toneDisabled[1] || chip.toneDisabled[0] {
		t.Fatalf("register 7 gating disturbed during SID effect")
	}
}

func TestSidVoiceStopsUnlessReasserted(t *testing.T) {
	p, chip := newTestPipeline()
	p.decodeFrame(effectFrame(0x10, 1, 16))
	if !p.sid[0].active {
		t.Fatalf("SID voice not active")
	}

	p.decodeFrame(silentFrame())
	if p.sid[0].active {
		t.Fatalf("SID voice survived a frame that did not re-assert it")
	}
	if chip.drumActive[0] || chip.forceTone[0] {
		t.Fatalf("SID left chip overrides asserted")
	}
}

func TestSyncBuzzerRetriggersEnvelope(t *testing.T) {
	p, chip := newTestPipeline()
	chip.WriteRegister(PSG_REG_ENV_LO, 0x01)

	// 0xC0|0x10: sync buzzer. 2457600 / (4 * 8) = 76800 Hz, above the
	// sample rate, so every advance wraps the LFO phase. The shape comes
	// from the voice's volume byte.
	f := effectFrame(0xD0, 1, 8)
	f[8] = 0x0D
	p.decodeFrame(f)
	if !p.buzzer.active {
		t.Fatalf("buzzer not active")
	}

	// Walk the envelope up, then check the buzzer keeps snapping it back.
	for i := 0; i < 500; i++ {
		chip.env.tick()
	}
	if chip.env.level() == 0 {
		t.Fatalf("envelope did not move before buzzer advance")
	}
	p.advance()
	if got := chip.env.level(); got != 0 {
		t.Fatalf("envelope level = %d after buzzer wrap, want retriggered 0", got)
	}
}

func TestSyncBuzzerAppliesShapeNibble(t *testing.T) {
	// The buzzer command carries its envelope shape in the voice volume
	// byte; the frame's own shape slot holds the keep-running marker.
	frames := []Frame{silentFrame(), silentFrame()}
	frames[0][1] = 0xD0
	frames[0][6] = 1 << 5
	frames[0][14] = 100
	frames[0][8] = 0x1A

	chip := newTestChip()
	engine, err := NewPlaybackEngine(chip, Song{Frames: frames, TickRate: DEFAULT_TICK_RATE}, SAMPLE_RATE)
	if err != nil {
		t.Fatalf("NewPlaybackEngine: %v", err)
	}
	engine.Play()
	engine.GenerateInto(make([]float32, 2000))

	if got := chip.DumpRegisters()[PSG_REG_ENV_SHAPE]; got != 0x0A {
		t.Fatalf("shape register = %#02x after buzzer frame, want 0x0A", got)
	}
}

func TestSyncBuzzerStopsUnlessReasserted(t *testing.T) {
	p, _ := newTestPipeline()
	p.decodeFrame(effectFrame(0xD0, 1, 8))
	p.decodeFrame(silentFrame())
	if p.buzzer.active {
		t.Fatalf("buzzer survived a frame that did not re-assert it")
	}
}

func TestDecodeZeroTimerIgnored(t *testing.T) {
	p, _ := newTestPipeline()
	// Counter byte 0 makes the timer division undefined; the command is dropped.
	p.decodeFrame(effectFrame(0x10, 1, 0))
	if p.sid[0].active {
		t.Fatalf("SID started with a zero timer count")
	}
	// Predivisor field 0 likewise.
	p.decodeFrame(effectFrame(0x10, 0, 10))
	if p.sid[0].active {
		t.Fatalf("SID started with predivisor 0")
	}
}

func TestSecondCommandSlotDecodes(t *testing.T) {
	p, _ := newTestPipeline()
	// Second slot: command byte 3, predivisor byte 8 top bits, counter byte 15.
	f := silentFrame()
	f[3] = 0x20 // SID on voice B
	f[8] = 1 << 5
	f[15] = 16
	p.decodeFrame(f)
	if !p.sid[1].active {
		t.Fatalf("second command slot not decoded")
	}
}

func TestEffectsPipelineInertWithoutCapability(t *testing.T) {
	// Synth does not implement EffectChip: the pipeline must degrade to
	// a no-op without panicking.
	synth := NewSynth(PSG_CLOCK_ATARI_ST, SAMPLE_RATE)
	p := newEffectsPipeline(synth, [][]uint8{{1, 2, 3}}, SAMPLE_RATE)
	p.decodeFrame(effectFrame(0x50, 2, 10))
	p.advance()
	p.reset()
	if p.drum[0].active {
		t.Fatalf("inert pipeline tracked drum state")
	}
}

func TestPipelineResetReleasesOverrides(t *testing.T) {
	p, chip := newTestPipeline()
	p.decodeFrame(effectFrame(0x50, 2, 10))
	p.advance()
	p.reset()
	for ch := 0; ch < PSG_CHANNELS; ch++ {
		if chip.drumActive[ch] || chip.forceTone[ch] || chip.forceNoise[ch] {
			t.Fatalf("reset left overrides on channel %d", ch)
		}
	}
}
