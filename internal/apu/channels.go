// Legacy Game Boy-style channels, generalized from the "struct-with-
// embedded envelope/length, dispatched by match rather than virtual call"
// shape original_source/src/core/apu/apu.hpp expresses as a C++ template
// base, and FabianRolfMatthiasNoll-GameBoyEmulator/internal/apu/apu.go
// expresses as plain Go structs (chSquare/chWave/chNoise) with duplicated
// envelope fields. Here the shared envelope/length fields live in one
// embedded struct instead.
package apu

// dutyPatterns are the four square-wave duty cycles, 8 steps each.
var dutyPatterns = [4][8]int8{
	{0, 0, 0, 0, 0, 0, 0, 1}, // 12.5%
	{1, 0, 0, 0, 0, 0, 0, 1}, // 25%
	{1, 0, 0, 0, 0, 1, 1, 1}, // 50%
	{0, 1, 1, 1, 1, 1, 1, 0}, // 75%
}

type lengthCounter struct {
	counter uint16
	enable  bool
}

// clock decrements the counter when enabled and disables the owning
// channel on reaching zero.
func (l *lengthCounter) clock(enabled *bool) {
	if !l.enable || l.counter == 0 {
		return
	}
	l.counter--
	if l.counter == 0 {
		*enabled = false
	}
}

type envelope struct {
	startVolume byte
	volume      byte
	period      byte
	timer       byte
	addMode     bool
}

func (e *envelope) trigger() {
	e.volume = e.startVolume
	e.timer = e.period
}

// clock increments or decrements volume per its period.
func (e *envelope) clock() {
	if e.period == 0 {
		return
	}
	if e.timer > 0 {
		e.timer--
	}
	if e.timer == 0 {
		e.timer = e.period
		if e.addMode {
			if e.volume < 15 {
				e.volume++
			}
		} else {
			if e.volume > 0 {
				e.volume--
			}
		}
	}
}

type sweep struct {
	shadowFreq uint16
	period     byte
	negate     bool
	shift      byte
	timer      byte
	enabled    bool
}

// square is the shared shape of the two GBA legacy tone channels (spec
// §3 "four legacy Game Boy tone channels"); channel 0 alone has a sweep
// unit, mirroring real hardware's CH1/CH2 asymmetry.
type square struct {
	len lengthCounter
	env envelope
	sw  sweep // unused (left zero) on the second square channel

	enabled   bool
	dutyIndex byte // which of dutyPatterns this channel plays
	step      int  // 0..7 position within the duty pattern

	freq  uint16 // 11-bit frequency code from the SOUND*CNT_X register
	timer int    // cycles remaining until the next duty step
}

func squareTimerPeriod(freq uint16) int {
	return (2048 - int(freq)) * 16
}

func (s *square) trigger() {
	s.enabled = true
	if s.len.counter == 0 {
		s.len.counter = 64
	}
	s.timer = squareTimerPeriod(s.freq)
	s.env.trigger()
	if s.sw.period != 0 || s.sw.shift != 0 {
		s.sw.shadowFreq = s.freq
		s.sw.timer = s.sw.period
		s.sw.enabled = s.sw.period != 0 || s.sw.shift != 0
	}
}

// advance steps the duty pattern forward by elapsed CPU cycles, using a
// bounded reload loop rather than a per-cycle tick; only the observable
// register/sample behavior needs to match, not the stepping granularity.
func (s *square) advance(elapsed int) {
	if !s.enabled {
		return
	}
	period := squareTimerPeriod(s.freq)
	if period <= 0 {
		return
	}
	s.timer -= elapsed
	for s.timer <= 0 {
		s.timer += period
		s.step = (s.step + 1) % 8
	}
}

// clockSweep recomputes frequency with optional negation, disabling the
// channel on overflow past the 11-bit frequency field.
func (s *square) clockSweep() {
	if !s.sw.enabled || s.sw.period == 0 {
		return
	}
	if s.sw.timer > 0 {
		s.sw.timer--
	}
	if s.sw.timer != 0 {
		return
	}
	s.sw.timer = s.sw.period
	delta := s.sw.shadowFreq >> s.sw.shift
	var next uint16
	if s.sw.negate {
		next = s.sw.shadowFreq - delta
	} else {
		next = s.sw.shadowFreq + delta
	}
	if next > 2047 {
		s.enabled = false
		return
	}
	if s.sw.shift != 0 {
		s.sw.shadowFreq = next
		s.freq = next
	}
}

func (s *square) sample() int16 {
	if !s.enabled {
		return 0
	}
	return int16(dutyPatterns[s.dutyIndex][s.step]) * int16(s.env.volume)
}

// wave plays 32 4-bit samples across two RAM banks.
type wave struct {
	len lengthCounter

	enabled  bool
	dacPower bool
	ram      [32]byte // one nibble per entry, across both banks concatenated
	volCode  byte     // 0=mute 1=100% 2=50% 3=25%

	freq     uint16
	timer    int
	position int
}

func waveTimerPeriod(freq uint16) int {
	return (2048 - int(freq)) * 8
}

func (w *wave) trigger() {
	w.enabled = w.dacPower
	if w.len.counter == 0 {
		w.len.counter = 256
	}
	w.timer = waveTimerPeriod(w.freq)
	w.position = 0
}

func (w *wave) advance(elapsed int) {
	if !w.enabled {
		return
	}
	period := waveTimerPeriod(w.freq)
	if period <= 0 {
		return
	}
	w.timer -= elapsed
	for w.timer <= 0 {
		w.timer += period
		w.position = (w.position + 1) % 32
	}
}

func (w *wave) sample() int16 {
	if !w.enabled || !w.dacPower {
		return 0
	}
	raw := int16(w.ram[w.position])
	switch w.volCode {
	case 0:
		return 0
	case 1:
		return raw
	case 2:
		return raw / 2
	case 3:
		return raw / 4
	default:
		return raw
	}
}

// noise generates pseudo-random output from a shift register.
type noise struct {
	len lengthCounter
	env envelope

	enabled bool
	lfsr    uint16

	clockShift  byte
	divisorCode byte
	widthMode7  bool // true = 7-bit LFSR, false = 15-bit

	timer int
}

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func noiseTimerPeriod(divisorCode, clockShift byte) int {
	return noiseDivisors[divisorCode&7] << clockShift
}

func (n *noise) trigger() {
	n.enabled = true
	if n.len.counter == 0 {
		n.len.counter = 64
	}
	n.lfsr = 0x7FFF
	n.timer = noiseTimerPeriod(n.divisorCode, n.clockShift)
	n.env.trigger()
}

// advance shifts the LFSR every timer expiry; bit 0 feeds the sample.
func (n *noise) advance(elapsed int) {
	if !n.enabled {
		return
	}
	period := noiseTimerPeriod(n.divisorCode, n.clockShift)
	if period <= 0 {
		return
	}
	n.timer -= elapsed
	for n.timer <= 0 {
		n.timer += period
		bit := (n.lfsr ^ (n.lfsr >> 1)) & 1
		n.lfsr = (n.lfsr >> 1) | (bit << 14)
		if n.widthMode7 {
			n.lfsr = (n.lfsr &^ (1 << 6)) | (bit << 6)
		}
	}
}

func (n *noise) sample() int16 {
	if !n.enabled {
		return 0
	}
	if n.lfsr&1 != 0 {
		return 0
	}
	return int16(n.env.volume)
}
