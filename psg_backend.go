// psg_backend.go - Chip backend abstraction and optional effect capability.

package ym2149

// Chip is the register/sample contract every backend satisfies. Format
// loaders and CPU-emulation collaborators talk to a backend exclusively
// through this surface.
type Chip interface {
	Reset()
	WriteRegister(reg uint8, value uint8)
	ReadRegister(reg uint8) uint8
	LoadRegisters(frame [PSG_REG_COUNT]uint8)
	DumpRegisters() [PSG_REG_COUNT]uint8
	Clock()
	Sample() float32
	GenerateSamples(buf []float32)
	SetChannelMute(ch int, mute bool)
}

// EffectChip is the optional capability surface for hardware effects
// (digidrum, SID voice, sync buzzer). Backends that do not implement it still
// play register streams; the effects pipeline degrades to a no-op on them.
type EffectChip interface {
	SetMixerOverrides(ch int, forceTone, forceNoise bool)
	SetDrumSampleOverride(ch int, sample float32, active bool)
	TriggerEnvelope()
}

// effectHooks returns the backend's effect surface, or nil when the backend
// does not support hardware effects.
func effectHooks(c Chip) EffectChip {
	if ec, ok := c.(EffectChip); ok {
		return ec
	}
	return nil
}
