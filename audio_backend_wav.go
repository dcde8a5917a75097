// audio_backend_wav.go - Offline rendering of a playback engine to a WAV
// file. Tooling path, not part of the real-time transport.

package ym2149

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavChunkSamples = 4096

// RenderWAV runs the engine for sampleCount samples and encodes them as
// 16-bit mono PCM. The engine is started if it is not already playing.
func RenderWAV(engine *PlaybackEngine, w io.WriteSeeker, sampleRate int, sampleCount int) error {
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}
	if engine.State() != StatePlaying {
		engine.Play()
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	chunk := make([]float32, wavChunkSamples)
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, wavChunkSamples),
		SourceBitDepth: 16,
	}

	for remaining := sampleCount; remaining > 0; {
		n := wavChunkSamples
		if n > remaining {
			n = remaining
		}
		engine.GenerateInto(chunk[:n])
		for i := 0; i < n; i++ {
			s := chunk[i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			intBuf.Data[i] = int(s * 32767)
		}
		intBuf.Data = intBuf.Data[:n]
		if err := enc.Write(intBuf); err != nil {
			enc.Close()
			return fmt.Errorf("wav render: %w", err)
		}
		intBuf.Data = intBuf.Data[:wavChunkSamples]
		remaining -= n
	}
	return enc.Close()
}

// RenderWAVFile renders seconds of playback to path.
func RenderWAVFile(engine *PlaybackEngine, path string, sampleRate int, seconds float64) error {
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return RenderWAV(engine, f, sampleRate, int(seconds*float64(sampleRate)))
}
