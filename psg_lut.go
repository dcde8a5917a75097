// psg_lut.go - Envelope shape tables and logarithmic volume table.

package ym2149

import "math"

const (
	envLevels    = 32 // 5-bit envelope DAC
	envPhaseLen  = 64 // two 32-step ramps per phase
	envPhaseMask = envPhaseLen - 1
)

// Envelope shapes as ramp endpoint pairs, one pair per 32-step ramp.
// Pairs 0-1 describe the one-shot phase, pairs 2-3 the repeating phase.
// Index is the shape nibble: Continue, Attack, Alternate, Hold.
var envShapePairs = [16][8]int8{
	{1, 0, 0, 0, 0, 0, 0, 0}, // 00xx: decay, then off
	{1, 0, 0, 0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0, 0, 0, 0},
	{0, 1, 0, 0, 0, 0, 0, 0}, // 01xx: attack, then off
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 0, 0, 0, 0, 0, 0},
	{1, 0, 1, 0, 1, 0, 1, 0}, // 1000: repeating decay
	{1, 0, 0, 0, 0, 0, 0, 0}, // 1001: decay, hold at 0
	{1, 0, 0, 1, 1, 0, 0, 1}, // 1010: decay/attack triangle
	{1, 0, 1, 1, 1, 1, 1, 1}, // 1011: decay, hold at max
	{0, 1, 0, 1, 0, 1, 0, 1}, // 1100: repeating attack
	{0, 1, 1, 1, 1, 1, 1, 1}, // 1101: attack, hold at max
	{0, 1, 1, 0, 0, 1, 1, 0}, // 1110: attack/decay triangle
	{0, 1, 0, 0, 0, 0, 0, 0}, // 1111: attack, hold at 0
}

// envShapeTable[shape][phase][step] holds envelope levels 0..31.
// Phase 0 runs once after a shape write or retrigger, phase 1 repeats.
var envShapeTable [16][2][envPhaseLen]uint8

// Measured YM2149 DAC output per level, 16 taps of the 32-level curve.
var psgVolumeBase = [16]int32{
	62, 161, 265, 377, 580, 774, 1155, 1575,
	2260, 3088, 4570, 6233, 9330, 13187, 21220, 32767,
}

// psgVolume maps a 5-bit level to linear amplitude [0,1]. Odd entries are the
// measured 4-bit taps, even entries are log-interpolated between neighbours.
var psgVolume [envLevels]float32

func init() {
	for shape := range envShapeTable {
		pairs := envShapePairs[shape]
		for phase := 0; phase < 2; phase++ {
			step := 0
			for half := 0; half < 2; half++ {
				a := int32(pairs[(phase*2+half)*2])
				b := int32(pairs[(phase*2+half)*2+1])
				level := a * (envLevels - 1)
				delta := b - a
				for i := 0; i < envLevels; i++ {
					v := level
					level += delta
					if v < 0 {
						v = 0
					} else if v > envLevels-1 {
						v = envLevels - 1
					}
					envShapeTable[shape][phase][step] = uint8(v)
					step++
				}
			}
		}
	}

	max := float64(psgVolumeBase[15])
	psgVolume[0] = 0
	for i := 0; i < 16; i++ {
		psgVolume[2*i+1] = float32(float64(psgVolumeBase[i]) / max)
		if i > 0 {
			// Geometric mean keeps the interpolated taps on the log curve.
			mid := math.Sqrt(float64(psgVolumeBase[i-1]) * float64(psgVolumeBase[i]))
			psgVolume[2*i] = float32(mid / max)
		}
	}
}

// volumeLevel returns the amplitude for a 4-bit manual volume register value.
func volumeLevel(vol uint8) float32 {
	return psgVolume[(vol&0x0F)*2+1]
}
