// psg_test_helpers_test.go - Shared constructors for the chip and player tests.

package ym2149

const testSeed = 0x5EED

// newTestChip returns a chip with a fixed power-on seed so tests are
// reproducible run to run.
func newTestChip() *PSG {
	return NewPSGSeeded(PSG_CLOCK_ATARI_ST, SAMPLE_RATE, testSeed)
}

// silentFrame returns a frame with all voices off and the envelope shape
// byte set to the "do not retrigger" marker.
func silentFrame() Frame {
	var f Frame
	f[PSG_REG_MIXER] = 0x3F
	f[PSG_REG_ENV_SHAPE] = 0xFF
	return f
}

// toneFrame returns a frame playing a square tone on channel A at the given
// 12-bit period and 4-bit volume, noise and the other voices off.
func toneFrame(period uint16, vol uint8) Frame {
	f := silentFrame()
	f[PSG_REG_TONE_A_LO] = uint8(period)
	f[PSG_REG_TONE_A_HI] = uint8(period >> 8)
	f[PSG_REG_MIXER] = 0x3E // tone A enabled, everything else off
	f[PSG_REG_VOL_A] = vol
	return f
}

// makeTestSong builds a song of n copies of frame at the default tick rate.
func makeTestSong(frame Frame, n int) Song {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = frame
	}
	return Song{Frames: frames, TickRate: DEFAULT_TICK_RATE}
}
