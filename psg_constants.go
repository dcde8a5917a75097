// psg_constants.go - YM2149 register layout, master clocks and timing constants.

// Package ym2149 emulates the Yamaha YM2149 programmable sound generator and
// drives it from a register-frame-based playback engine with a lock-free
// streaming transport towards an audio backend.
package ym2149

const (
	PSG_REG_TONE_A_LO = 0
	PSG_REG_TONE_A_HI = 1
	PSG_REG_TONE_B_LO = 2
	PSG_REG_TONE_B_HI = 3
	PSG_REG_TONE_C_LO = 4
	PSG_REG_TONE_C_HI = 5
	PSG_REG_NOISE     = 6
	PSG_REG_MIXER     = 7
	PSG_REG_VOL_A     = 8
	PSG_REG_VOL_B     = 9
	PSG_REG_VOL_C     = 10
	PSG_REG_ENV_LO    = 11
	PSG_REG_ENV_HI    = 12
	PSG_REG_ENV_SHAPE = 13
	PSG_REG_PORT_A    = 14
	PSG_REG_PORT_B    = 15

	PSG_REG_COUNT = 16
	PSG_CHANNELS  = 3
)

const (
	PSG_CLOCK_ATARI_ST    = 2000000
	PSG_CLOCK_ZX_SPECTRUM = 1773400
	PSG_CLOCK_CPC         = 1000000
	PSG_CLOCK_MSX         = 1789773

	// MFP timer clock, the Atari ST timer that paces hardware effects.
	MFP_CLOCK = 2457600
)

const (
	SAMPLE_RATE       = 44100
	DEFAULT_TICK_RATE = 50
)

// Significant bits per register. Unused bits are masked on write, never rejected.
var psgRegisterMask = [PSG_REG_COUNT]uint8{
	0xFF, 0x0F, 0xFF, 0x0F, 0xFF, 0x0F,
	0x1F,
	0xFF,
	0x1F, 0x1F, 0x1F,
	0xFF, 0xFF,
	0x0F,
	0xFF, 0xFF,
}
