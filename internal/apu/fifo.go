package apu

// fifoCapacity is the GBA PCM FIFO's fixed depth.
const fifoCapacity = 32

// fifoDrainThreshold is the occupancy at or below which a fifo_empty
// signal goes out so DMA can refill.
const fifoDrainThreshold = fifoCapacity / 2

// pcmFIFO is one of the two DMA-fed 8-bit PCM sample queues.
type pcmFIFO struct {
	buf   [fifoCapacity]int8
	r, w  int
	count int

	current int8

	enableLeft  bool
	enableRight bool
	volumeFull  bool // false = 50% volume, true = 100%
	timerSelect int  // which timer (0 or 1) advances this fifo
}

// push appends one signed 8-bit sample, dropping the oldest on overflow.
func (f *pcmFIFO) push(v int8) {
	if f.count == fifoCapacity {
		f.r = (f.r + 1) % fifoCapacity
		f.count--
	}
	f.buf[f.w] = v
	f.w = (f.w + 1) % fifoCapacity
	f.count++
}

// pop advances the read pointer and latches the new current sample,
// reporting whether the fifo just drained to or below half capacity.
func (f *pcmFIFO) pop() (drained bool) {
	if f.count == 0 {
		return false
	}
	f.current = f.buf[f.r]
	f.r = (f.r + 1) % fifoCapacity
	f.count--
	return f.count <= fifoDrainThreshold
}

// reset clears the buffer and sample pointers only; enableLeft/enableRight/
// volumeFull/timerSelect are control fields set by WriteSoundCntH in the
// same write that can trigger a reset and must survive it.
func (f *pcmFIFO) reset() {
	f.buf = [fifoCapacity]int8{}
	f.r = 0
	f.w = 0
	f.count = 0
	f.current = 0
}

// sample returns the latched current sample, scaled by the fifo's own
// volume selector.
func (f *pcmFIFO) sample() int16 {
	v := int16(f.current)
	if !f.volumeFull {
		v /= 2
	}
	return v
}
