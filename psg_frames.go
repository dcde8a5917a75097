// psg_frames.go - Register frames and the sample-accurate frame sequencer.

package ym2149

// Frame is one immutable 16-byte register snapshot: registers 0-13 plus the
// two extra bytes YM-style streams use as hardware-effect timer parameters.
type Frame [PSG_REG_COUNT]uint8

// Song is an ordered frame stream with its timing and loop metadata, the
// contract every external loader produces. Drums holds optional 8-bit PCM
// one-shots referenced by digidrum effect commands.
type Song struct {
	Frames   []Frame
	TickRate int // frames per second; 0 means DEFAULT_TICK_RATE
	LoopFrame int
	Looping  bool
	Drums    [][]uint8

	Title  string
	Author string
}

// frameSequencer maps elapsed samples to the current frame. Frame lengths come
// from a rational accumulator so the long-run average is exactly
// sampleRate/tickRate with no floating-point drift.
type frameSequencer struct {
	frames     []Frame
	tickRate   int
	loopFrame  int
	looping    bool
	sampleRate int

	index    int // current frame, -1 before the first
	acc      int // remainder accumulator, always in [0, tickRate)
	finished bool
}

func newFrameSequencer(song Song, sampleRate int) *frameSequencer {
	tickRate := song.TickRate
	if tickRate == 0 {
		tickRate = DEFAULT_TICK_RATE
	}
	return &frameSequencer{
		frames:     song.Frames,
		tickRate:   tickRate,
		loopFrame:  song.LoopFrame,
		looping:    song.Looping,
		sampleRate: sampleRate,
		index:      -1,
	}
}

func (s *frameSequencer) reset() {
	s.index = -1
	s.acc = 0
	s.finished = false
}

// frameLength returns the sample count of the next frame, carrying the
// division remainder over to later frames.
func (s *frameSequencer) frameLength() int {
	s.acc += s.sampleRate
	n := s.acc / s.tickRate
	s.acc -= n * s.tickRate
	return n
}

// advance steps to the next frame, looping when enabled. It returns the new
// frame and false once a non-looping stream is exhausted.
func (s *frameSequencer) advance() (Frame, bool) {
	if s.finished || len(s.frames) == 0 {
		return Frame{}, false
	}
	next := s.index + 1
	if next >= len(s.frames) {
		if !s.looping {
			s.finished = true
			return Frame{}, false
		}
		next = s.loopFrame
	}
	s.index = next
	return s.frames[next], true
}

// seek repositions the cursor so that frame is the current one. The remainder
// accumulator is rebuilt as if playback had run straight to that point.
func (s *frameSequencer) seek(frame int) (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	if frame < 0 {
		frame = 0
	}
	if frame >= len(s.frames) {
		frame = len(s.frames) - 1
	}
	s.index = frame
	s.acc = (s.sampleRate * frame) % s.tickRate
	s.finished = false
	return s.frames[frame], true
}

// position reports playback progress as a fraction of total frames.
func (s *frameSequencer) position() float32 {
	if len(s.frames) == 0 || s.finished {
		return 1.0
	}
	if s.index < 0 {
		return 0.0
	}
	return float32(s.index) / float32(len(s.frames))
}
