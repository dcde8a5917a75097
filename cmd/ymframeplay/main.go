// ymframeplay - plays a raw YM2149 register-frame dump: a file of
// concatenated 16-byte frames, one per tick, as produced by any format
// loader honoring the frame contract. No container parsing happens here.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	ym2149 "github.com/slippyex/ym2149-go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ymframeplay:", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	sampleRate := flagSet.Int("rate", ym2149.SAMPLE_RATE, "output sample rate")
	tickRate := flagSet.Int("tick", ym2149.DEFAULT_TICK_RATE, "frame tick rate in Hz")
	clock := flagSet.Uint("clock", ym2149.PSG_CLOCK_ATARI_ST, "PSG master clock in Hz")
	loopFrame := flagSet.Int("loop", -1, "loop frame index, -1 to play once")
	seconds := flagSet.Float64("seconds", 0, "stop after this many seconds (0 = whole song)")
	wavPath := flagSet.String("wav", "", "render to WAV file instead of playing")
	useSynth := flagSet.Bool("synth", false, "use the lightweight synth backend")
	ringSize := flagSet.Int("buffer", 8192, "ring buffer size in samples")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: ymframeplay [flags] <frames.bin>")
	}

	data, err := os.ReadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}
	if len(data) < 16 {
		return fmt.Errorf("%s: no complete frames", flagSet.Arg(0))
	}

	song := ym2149.Song{
		Frames:   make([]ym2149.Frame, len(data)/16),
		TickRate: *tickRate,
	}
	for i := range song.Frames {
		copy(song.Frames[i][:], data[i*16:])
	}
	if *loopFrame >= 0 {
		song.Looping = true
		song.LoopFrame = *loopFrame
	}

	var chip ym2149.Chip
	if *useSynth {
		chip = ym2149.NewSynth(uint32(*clock), *sampleRate)
	} else {
		chip = ym2149.NewPSG(uint32(*clock), *sampleRate)
	}

	engine, err := ym2149.NewPlaybackEngine(chip, song, *sampleRate)
	if err != nil {
		return err
	}

	total := int(*seconds * float64(*sampleRate))
	if total == 0 {
		total = len(song.Frames) * *sampleRate / *tickRate
		if song.Looping {
			total = 60 * *sampleRate
		}
	}

	if *wavPath != "" {
		return ym2149.RenderWAVFile(engine, *wavPath, *sampleRate, float64(total)/float64(*sampleRate))
	}
	return play(engine, *sampleRate, *ringSize, total)
}

func play(engine *ym2149.PlaybackEngine, sampleRate, ringSize, total int) error {
	cfg := ym2149.StreamConfig{
		RingBufferSize: ringSize,
		SampleRate:     sampleRate,
		ChannelCount:   1,
	}
	ring := ym2149.NewRingBuffer(cfg.RingBufferSize)
	out, err := ym2149.NewAudioOutput(ym2149.AUDIO_BACKEND_AUTO, cfg, ring)
	if err != nil {
		return err
	}
	defer out.Close()

	out.Start()
	engine.Play()

	chunk := make([]float32, 2048)
	for written := 0; written < total && engine.State() == ym2149.StatePlaying; {
		n := len(chunk)
		if n > total-written {
			n = total - written
		}
		engine.GenerateInto(chunk[:n])
		ring.WriteBlocking(chunk[:n])
		written += n
	}

	// Let the backend drain what is still buffered.
	for ring.AvailableRead() > 0 {
		time.Sleep(10 * time.Millisecond)
	}

	stats := ring.Stats()
	fmt.Printf("played %d samples, %d underruns\n", stats.SamplesPlayed, stats.UnderrunCount)
	return nil
}
