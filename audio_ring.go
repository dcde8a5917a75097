// audio_ring.go - Single-producer/single-consumer sample ring buffer, the one
// component in the package built for two concurrent threads.

package ym2149

import (
	"sync/atomic"
	"time"
)

const (
	// WriteBlocking backs off in short bounded sleeps; after this many empty
	// attempts it gives up and returns what it wrote. Soft backpressure, not
	// a hard guarantee.
	ringWriteRetries  = 100
	ringWriteInterval = time.Millisecond
)

// RingStats is a snapshot of the transport counters.
type RingStats struct {
	SamplesPlayed uint64
	UnderrunCount uint64
}

// RingBuffer moves samples from exactly one producer goroutine to exactly one
// consumer goroutine. The cursors are free-running counters published with
// release stores and observed with acquire loads, so fill accounting is never
// stale; one slot stays reserved to keep full and empty distinguishable.
type RingBuffer struct {
	buf  []float32
	mask uint64

	writePos atomic.Uint64
	readPos  atomic.Uint64

	samplesRead atomic.Uint64
	underruns   atomic.Uint64
}

// NewRingBuffer allocates a ring of at least size samples, rounded up to a
// power of two (minimum 2).
func NewRingBuffer(size int) *RingBuffer {
	n := 2
	for n < size {
		n <<= 1
	}
	return &RingBuffer{
		buf:  make([]float32, n),
		mask: uint64(n - 1),
	}
}

// Capacity returns the allocated slot count. Usable capacity is Capacity()-1.
func (r *RingBuffer) Capacity() int {
	return len(r.buf)
}

// AvailableRead returns how many samples the consumer may read.
func (r *RingBuffer) AvailableRead() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// AvailableWrite returns how many samples the producer may write.
func (r *RingBuffer) AvailableWrite() int {
	return len(r.buf) - 1 - r.AvailableRead()
}

// FillPercentage reports the buffered fraction in percent of usable capacity.
func (r *RingBuffer) FillPercentage() float32 {
	return float32(r.AvailableRead()) / float32(len(r.buf)-1) * 100.0
}

// WriteNonBlocking writes what fits and returns the count, 0 when full.
// Never blocks; producer-side only.
func (r *RingBuffer) WriteNonBlocking(samples []float32) int {
	w := r.writePos.Load()
	free := len(r.buf) - 1 - int(w-r.readPos.Load())
	n := len(samples)
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		r.buf[(w+uint64(i))&r.mask] = samples[i]
	}
	// Release-publish: payload is in place before the cursor moves.
	r.writePos.Store(w + uint64(n))
	return n
}

// WriteBlocking writes as much of samples as it can, sleeping in short
// bounded intervals while the ring is full. It returns the count written,
// which is less than len(samples) only if the consumer stalled past the
// retry budget.
func (r *RingBuffer) WriteBlocking(samples []float32) int {
	written := 0
	retries := 0
	for written < len(samples) {
		n := r.WriteNonBlocking(samples[written:])
		written += n
		if written == len(samples) {
			break
		}
		if n > 0 {
			retries = 0
			continue
		}
		retries++
		if retries > ringWriteRetries {
			break
		}
		time.Sleep(ringWriteInterval)
	}
	return written
}

// Read pulls up to len(out) samples, returning fewer when under-supplied.
// Any shortfall counts as one underrun for the call. Consumer-side only.
func (r *RingBuffer) Read(out []float32) int {
	// Acquire the producer's cursor before touching payload.
	w := r.writePos.Load()
	pos := r.readPos.Load()
	avail := int(w - pos)
	n := len(out)
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(pos+uint64(i))&r.mask]
	}
	r.readPos.Store(pos + uint64(n))
	if n > 0 {
		r.samplesRead.Add(uint64(n))
	}
	if n < len(out) {
		r.underruns.Add(1)
	}
	return n
}

// Flush drops all buffered samples. Consumer-side.
func (r *RingBuffer) Flush() {
	r.readPos.Store(r.writePos.Load())
}

// Stats snapshots the transport counters.
func (r *RingBuffer) Stats() RingStats {
	return RingStats{
		SamplesPlayed: r.samplesRead.Load(),
		UnderrunCount: r.underruns.Load(),
	}
}
