// Package apu implements the GBA's two DMA-fed PCM FIFOs and four legacy
// Game Boy tone channels, grounded in original_source/src/core/apu/
// apu.hpp for the FIFO occupancy/half-empty semantics and overall Apu
// aggregate shape, and in FabianRolfMatthiasNoll-GameBoyEmulator/internal/
// apu/apu.go for a plain-struct, non-CRTP channel representation.
package apu

import (
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
	"GoBA/internal/schedtag"
)

// ClockRate is the GBA's CPU clock in Hz, used to derive the 512 Hz frame
// sequencer and the output sample rate.
const ClockRate = 1 << 24

// SampleRate is the core's fixed output rate. DSP-accurate resampling is
// out of scope, so one fixed rate (matching the GBA BIOS's default
// SOUNDBIAS setting) is all this core offers; a host wanting a different
// rate resamples downstream.
const SampleRate = 32768

const frameSequencerPeriod = ClockRate / 512
const samplePeriod = ClockRate / SampleRate

// DMANotifier is the DMA controller's fifo-empty entry point
// ("on_fifo_empty" in the original source); kept as a narrow interface
// here so apu need not import the dma package.
type DMANotifier interface {
	OnFIFOEmpty(fifoNum int)
}

// AudioCallback receives one interleaved stereo 16-bit sample per call.
// This core calls back once per generated sample; a host frontend buffers
// as many as it needs before handing a block to its audio backend.
type AudioCallback func(left, right int16)

// APU owns both PCM FIFOs and the four legacy channels.
type APU struct {
	regs  *io.Registers
	sched *scheduler.Scheduler
	dma   DMANotifier

	fifo [2]pcmFIFO

	sq0 square
	sq1 square
	wv  wave
	ns  noise

	masterEnable bool
	fsStep       int

	legacyVolLeft  byte
	legacyVolRight byte
	legacyEnable   [4][2]bool // [channel][left,right]

	fifoVolLeft  byte // SOUNDCNT_H master volume for fifo A/B (shared, 0=25% 1=50% 2=100%)

	onAudio AudioCallback
}

// New wires an APU to the flat I/O register block (for read-back of
// raw-stored register bits) and the scheduler it paces the frame
// sequencer and sample emission against.
func New(regs *io.Registers, sched *scheduler.Scheduler, dma DMANotifier) *APU {
	a := &APU{regs: regs, sched: sched, dma: dma}
	a.fifo[0].volumeFull = true
	a.fifo[1].volumeFull = true
	a.scheduleFrameSequencer()
	a.scheduleSample()
	return a
}

// SetAudioCallback registers the host's sample sink.
func (a *APU) SetAudioCallback(cb AudioCallback) { a.onAudio = cb }

func (a *APU) scheduleFrameSequencer() {
	a.sched.Add(schedtag.APUFrameSequencer, frameSequencerPeriod, a.onFrameSequencer)
}

func (a *APU) scheduleSample() {
	a.sched.Add(schedtag.APUSampleEvent, samplePeriod, a.onSampleEvent)
}

// onFrameSequencer advances the 512 Hz frame sequencer by one of its
// eight steps: steps 0,2,4,6 clock length; 2,6 clock sweep; 7 clocks
// envelopes.
func (a *APU) onFrameSequencer() {
	switch a.fsStep {
	case 0, 2, 4, 6:
		a.sq0.len.clock(&a.sq0.enabled)
		a.sq1.len.clock(&a.sq1.enabled)
		a.wv.len.clock(&a.wv.enabled)
		a.ns.len.clock(&a.ns.enabled)
		if a.fsStep == 2 || a.fsStep == 6 {
			a.sq0.clockSweep()
		}
	case 7:
		a.sq0.env.clock()
		a.sq1.env.clock()
		a.ns.env.clock()
	}
	a.fsStep = (a.fsStep + 1) % 8
	a.scheduleFrameSequencer()
}

// onSampleEvent advances every channel's phase by one sample period and
// mixes the result into a stereo callback.
func (a *APU) onSampleEvent() {
	a.sq0.advance(samplePeriod)
	a.sq1.advance(samplePeriod)
	a.wv.advance(samplePeriod)
	a.ns.advance(samplePeriod)

	if a.onAudio != nil {
		l, r := a.mix()
		a.onAudio(l, r)
	}
	a.scheduleSample()
}

func (a *APU) mix() (left, right int16) {
	if !a.masterEnable {
		return 0, 0
	}

	var legacyL, legacyR int32
	chans := [4]int16{a.sq0.sample(), a.sq1.sample(), a.wv.sample(), a.ns.sample()}
	for i, s := range chans {
		if a.legacyEnable[i][0] {
			legacyL += int32(s)
		}
		if a.legacyEnable[i][1] {
			legacyR += int32(s)
		}
	}
	legacyL = legacyL * int32(a.legacyVolLeft+1) / 8
	legacyR = legacyR * int32(a.legacyVolRight+1) / 8

	var fifoL, fifoR int32
	for i := range a.fifo {
		s := int32(a.fifo[i].sample())
		if a.fifo[i].enableLeft {
			fifoL += s
		}
		if a.fifo[i].enableRight {
			fifoR += s
		}
	}

	return clampSample(legacyL*2 + fifoL*4), clampSample(legacyR*2 + fifoR*4)
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// PushFIFOWord feeds a 32-bit DMA special-mode transfer into fifo num as
// four little-endian bytes.
func (a *APU) PushFIFOWord(num int, value uint32) {
	if num < 0 || num > 1 {
		return
	}
	for i := 0; i < 4; i++ {
		a.fifo[num].push(int8(byte(value >> (8 * i))))
	}
}

// WriteFIFO8/16/32 service CPU-initiated writes to FIFO_A/FIFO_B (spec
// §4.6 "8/16/32-bit writes decompose to bytes appended in little-endian
// order").
func (a *APU) WriteFIFO8(num int, v byte)    { a.fifo[num].push(int8(v)) }
func (a *APU) WriteFIFO16(num int, v uint16) { a.fifo[num].push(int8(v)); a.fifo[num].push(int8(v >> 8)) }
func (a *APU) WriteFIFO32(num int, v uint32) { a.PushFIFOWord(num, v) }

// OnTimerOverflow pops one sample from whichever fifo(s) this timer
// drives, emitting fifo_empty to DMA when occupancy drains to half (spec
// §4.5/§4.6).
func (a *APU) OnTimerOverflow(timerNum int) {
	for i := range a.fifo {
		if a.fifo[i].timerSelect == timerNum {
			if a.fifo[i].pop() && a.dma != nil {
				a.dma.OnFIFOEmpty(i)
			}
		}
	}
}

// --- Register-backed control surface ---------------------------------

// WriteSound1CntL handles SOUND1CNT_L (sweep).
func (a *APU) WriteSound1CntL(v uint16) {
	a.sq0.sw.shift = byte(v & 0x7)
	a.sq0.sw.negate = v&(1<<3) != 0
	a.sq0.sw.period = byte((v >> 4) & 0x7)
}

// WriteSound1CntH / WriteSound2CntL handle duty/length/envelope, shared
// layout across both square channels.
func writeSquareCntH(s *square, v uint16) {
	s.dutyIndex = byte((v >> 6) & 0x3)
	s.len.counter = 64 - (v & 0x3F)
	s.env.startVolume = byte((v >> 12) & 0xF)
	s.env.addMode = v&(1<<11) != 0
	s.env.period = byte((v >> 8) & 0x7)
}

func (a *APU) WriteSound1CntH(v uint16) { writeSquareCntH(&a.sq0, v) }
func (a *APU) WriteSound2CntL(v uint16) { writeSquareCntH(&a.sq1, v) }

func writeSquareCntX(s *square, v uint16) {
	s.freq = v & 0x7FF
	s.len.enable = v&(1<<14) != 0
	if v&(1<<15) != 0 {
		s.trigger()
	}
}

func (a *APU) WriteSound1CntX(v uint16) { writeSquareCntX(&a.sq0, v) }
func (a *APU) WriteSound2CntH(v uint16) { writeSquareCntX(&a.sq1, v) }

func (a *APU) WriteSound3CntL(v uint16) {
	a.wv.dacPower = v&(1<<7) != 0
	if !a.wv.dacPower {
		a.wv.enabled = false
	}
}

func (a *APU) WriteSound3CntH(v uint16) {
	a.wv.len.counter = 256 - (v & 0xFF)
	a.wv.volCode = byte((v >> 13) & 0x3)
}

func (a *APU) WriteSound3CntX(v uint16) {
	a.wv.freq = v & 0x7FF
	a.wv.len.enable = v&(1<<14) != 0
	if v&(1<<15) != 0 {
		a.wv.trigger()
	}
}

func (a *APU) WriteWaveRAM8(offset uint32, v byte) {
	idx := int(offset) * 2
	if idx >= len(a.wv.ram) {
		return
	}
	a.wv.ram[idx] = v >> 4
	if idx+1 < len(a.wv.ram) {
		a.wv.ram[idx+1] = v & 0xF
	}
}

func (a *APU) ReadWaveRAM8(offset uint32) byte {
	idx := int(offset) * 2
	if idx+1 >= len(a.wv.ram) {
		return 0
	}
	return a.wv.ram[idx]<<4 | a.wv.ram[idx+1]
}

func (a *APU) WriteSound4CntL(v uint16) {
	a.ns.len.counter = 64 - (v & 0x3F)
	a.ns.env.startVolume = byte((v >> 12) & 0xF)
	a.ns.env.addMode = v&(1<<11) != 0
	a.ns.env.period = byte((v >> 8) & 0x7)
}

func (a *APU) WriteSound4CntH(v uint16) {
	a.ns.divisorCode = byte(v & 0x7)
	a.ns.widthMode7 = v&(1<<3) != 0
	a.ns.clockShift = byte((v >> 4) & 0xF)
	a.ns.len.enable = v&(1<<14) != 0
	if v&(1<<15) != 0 {
		a.ns.trigger()
	}
}

// WriteSoundCntL handles the legacy channel master volume/enable register.
func (a *APU) WriteSoundCntL(v uint16) {
	a.legacyVolRight = byte(v & 0x7)
	a.legacyVolLeft = byte((v >> 4) & 0x7)
	for ch := 0; ch < 4; ch++ {
		a.legacyEnable[ch][1] = v&(1<<uint(8+ch)) != 0 // right
		a.legacyEnable[ch][0] = v&(1<<uint(12+ch)) != 0 // left
	}
}

// WriteSoundCntH handles the DMA-fifo mix/reset register.
func (a *APU) WriteSoundCntH(v uint16) {
	a.fifoVolLeft = byte(v & 0x3)
	a.fifo[0].volumeFull = v&(1<<2) != 0
	a.fifo[1].volumeFull = v&(1<<3) != 0
	a.fifo[0].enableRight = v&(1<<8) != 0
	a.fifo[0].enableLeft = v&(1<<9) != 0
	a.fifo[0].timerSelect = int((v >> 10) & 1)
	a.fifo[1].enableRight = v&(1<<12) != 0
	a.fifo[1].enableLeft = v&(1<<13) != 0
	a.fifo[1].timerSelect = int((v >> 14) & 1)
	if v&(1<<11) != 0 {
		a.fifo[0].reset()
	}
	if v&(1<<15) != 0 {
		a.fifo[1].reset()
	}
}

// WriteSoundCntX handles the master enable bit; the remaining bits of
// this register are read-only channel-active status.
func (a *APU) WriteSoundCntX(v uint16) {
	a.masterEnable = v&(1<<7) != 0
}

// ReadSoundCntX composes the master enable bit with live per-channel
// active status for the SOUNDCNT_X read-back.
func (a *APU) ReadSoundCntX() uint16 {
	var v uint16
	if a.masterEnable {
		v |= 1 << 7
	}
	if a.sq0.enabled {
		v |= 1 << 0
	}
	if a.sq1.enabled {
		v |= 1 << 1
	}
	if a.wv.enabled {
		v |= 1 << 2
	}
	if a.ns.enabled {
		v |= 1 << 3
	}
	return v
}
