// psg_player.go - Frame-driven playback engine: state machine composing the
// frame sequencer, effects pipeline and a chip backend.

package ym2149

import (
	"fmt"
	"os"
	"strings"
)

type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StatePlaying
	StatePaused
	StateFinished
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PlaybackEngine turns a Song into samples on any Chip backend. It is
// single-threaded: one owner calls the control and generate methods; the
// streaming ring buffer is the intended cross-thread boundary.
type PlaybackEngine struct {
	chip    Chip
	seq     *frameSequencer
	effects *effectsPipeline

	state     PlaybackState
	remaining int // samples left in the current frame
}

// NewPlaybackEngine validates the song configuration; this is the only place
// in the package that returns an error. A zero TickRate selects the nominal
// 50 Hz, a zero sampleRate the package default.
func NewPlaybackEngine(chip Chip, song Song, sampleRate int) (*PlaybackEngine, error) {
	if chip == nil {
		return nil, fmt.Errorf("playback: nil chip backend")
	}
	if len(song.Frames) == 0 {
		return nil, fmt.Errorf("playback: song has no frames")
	}
	if song.TickRate < 0 {
		return nil, fmt.Errorf("playback: invalid tick rate %d", song.TickRate)
	}
	if song.LoopFrame < 0 || song.LoopFrame >= len(song.Frames) {
		return nil, fmt.Errorf("playback: loop frame %d out of range [0,%d)", song.LoopFrame, len(song.Frames))
	}
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}

	if ymDebugEnabled() {
		f := song.Frames[0]
		fmt.Printf("ym2149 debug: first frame R0=%02X R1=%02X R2=%02X R3=%02X R4=%02X R5=%02X R6=%02X R7=%02X R8=%02X R9=%02X R10=%02X R11=%02X R12=%02X R13=%02X\n",
			f[0], f[1], f[2], f[3], f[4], f[5], f[6], f[7], f[8], f[9], f[10], f[11], f[12], f[13])
	}

	return &PlaybackEngine{
		chip:    chip,
		seq:     newFrameSequencer(song, sampleRate),
		effects: newEffectsPipeline(chip, song.Drums, sampleRate),
		state:   StateIdle,
	}, nil
}

// Play starts playback from the beginning, or resumes when paused.
func (e *PlaybackEngine) Play() {
	if e.state == StateIdle || e.state == StateFinished {
		e.rewind()
	}
	e.state = StatePlaying
}

// Pause freezes playback; Play resumes at the same sample.
func (e *PlaybackEngine) Pause() {
	if e.state == StatePlaying {
		e.state = StatePaused
	}
}

// Stop returns to Idle immediately. An in-flight generate call is never
// interrupted; the new state is observed by the next one.
func (e *PlaybackEngine) Stop() {
	e.rewind()
	e.state = StateIdle
}

func (e *PlaybackEngine) rewind() {
	e.seq.reset()
	e.effects.reset()
	e.remaining = 0
}

// State reports the current playback state.
func (e *PlaybackEngine) State() PlaybackState {
	return e.state
}

// PlaybackPosition reports progress as a fraction of total frames,
// 1.0 once a non-looping song has finished.
func (e *PlaybackEngine) PlaybackPosition() float32 {
	return e.seq.position()
}

// SetChannelMute forwards a per-channel mute toggle to the chip backend.
func (e *PlaybackEngine) SetChannelMute(ch int, mute bool) {
	e.chip.SetChannelMute(ch, mute)
}

// Seek repositions the frame cursor and reloads that frame's registers.
// Generator phase, envelope and noise state are deliberately left alone:
// real hardware has no native seek, so this is best-effort. Seeking an Idle
// or Finished engine leaves it Paused so a following Play resumes at the
// seek target instead of rewinding.
func (e *PlaybackEngine) Seek(frame int) {
	f, ok := e.seq.seek(frame)
	if !ok {
		return
	}
	e.applyFrame(f)
	e.effects.decodeFrame(f)
	e.remaining = e.seq.frameLength()
	if e.state == StateIdle || e.state == StateFinished {
		e.state = StatePaused
	}
}

// GenerateSamples produces exactly count samples (empty for count <= 0).
func (e *PlaybackEngine) GenerateSamples(count int) []float32 {
	if count <= 0 {
		return nil
	}
	buf := make([]float32, count)
	e.GenerateInto(buf)
	return buf
}

// GenerateInto fills buf, interleaving frame-boundary bookkeeping with the
// per-sample chip clocking. It allocates nothing. Once a non-looping song
// ends the remainder (and every later call) is zero-filled.
func (e *PlaybackEngine) GenerateInto(buf []float32) {
	if e.state != StatePlaying {
		clear(buf)
		return
	}
	for i := range buf {
		for e.remaining == 0 {
			if !e.nextFrame() {
				e.state = StateFinished
				clear(buf[i:])
				return
			}
		}
		e.effects.advance()
		e.chip.Clock()
		buf[i] = e.chip.Sample()
		e.remaining--
	}
}

func (e *PlaybackEngine) nextFrame() bool {
	f, ok := e.seq.advance()
	if !ok {
		return false
	}
	e.applyFrame(f)
	e.effects.decodeFrame(f)
	e.remaining = e.seq.frameLength()
	return true
}

// applyFrame writes a frame's registers to the chip. The envelope shape is
// skipped when the stream carries 0xFF there, the stream convention for
// "do not retrigger this tick". Bytes 14/15 are effect timer parameters,
// not chip registers.
func (e *PlaybackEngine) applyFrame(f Frame) {
	for reg := uint8(0); reg <= PSG_REG_ENV_HI; reg++ {
		e.chip.WriteRegister(reg, f[reg])
	}
	if f[PSG_REG_ENV_SHAPE] != 0xFF {
		e.chip.WriteRegister(PSG_REG_ENV_SHAPE, f[PSG_REG_ENV_SHAPE])
	}
}

func ymDebugEnabled() bool {
	value := strings.ToLower(os.Getenv("YM2149_DEBUG"))
	return value == "1" || value == "true" || value == "yes"
}
