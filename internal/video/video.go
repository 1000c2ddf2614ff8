// Package video models GBA scanline/VCOUNT/DISPSTAT timing only: no pixel
// output. The PPU pixel renderer is treated as an external collaborator
// that only consumes VRAM and listens for the H-blank/V-blank events this
// package emits, so everything pixel-related from a typical internal/ppu
// package (image.RGBA framebuffer, RenderScanline, mode-3 bitmap
// conversion) is dropped; only the DISPCNT/DISPSTAT/VCOUNT register home
// and the line-timing state machine survive, generalized into a
// standalone package.
package video

import (
	"GoBA/internal/io"
	"GoBA/internal/scheduler"
	"GoBA/internal/schedtag"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	dotsPerLine      = 308
	cyclesPerDot     = 4
	visibleDots      = 240
	cyclesPerLine    = dotsPerLine * cyclesPerDot
	hblankStartDelay = visibleDots * cyclesPerDot
	linesPerFrame    = 228
)

// IRQRequester raises V-blank/H-blank/V-count-match interrupts, the
// DISPSTAT bits 3-5 condition.
type IRQRequester interface {
	RequestIRQ(bit uint16)
}

// DMAHooks are the DMA controller's blank-triggered entry points.
type DMAHooks interface {
	OnVBlank()
	OnHBlank()
}

const (
	irqVBlank = 1 << 0
	irqHBlank = 1 << 1
	irqVCount = 1 << 2
)

// Video owns VCOUNT/DISPSTAT timing and fires the scheduler events that
// pace DMA and the host's vblank/hblank callbacks.
type Video struct {
	regs  *io.Registers
	sched *scheduler.Scheduler
	irq   IRQRequester
	dma   DMAHooks

	line int

	onVBlank func()
	onHBlank func()
}

func New(regs *io.Registers, sched *scheduler.Scheduler, irq IRQRequester, dma DMAHooks) *Video {
	v := &Video{regs: regs, sched: sched, irq: irq, dma: dma}
	v.scheduleHBlank()
	return v
}

// SetVBlankCallback/SetHBlankCallback register the host's line-event
// hooks.
func (v *Video) SetVBlankCallback(cb func())  { v.onVBlank = cb }
func (v *Video) SetHBlankCallback(cb func())  { v.onHBlank = cb }

// Reset returns VCOUNT/DISPSTAT timing to line 0 and reschedules the
// h-blank event, mirroring a console power-on.
func (v *Video) Reset() {
	v.line = 0
	v.setDISPSTAT(0x7, 0) // clear the v-blank, h-blank and v-count match flags
	v.setVCount(0)
	v.sched.Remove(schedtag.VideoHBlankStart)
	v.sched.Remove(schedtag.VideoLineEnd)
	v.scheduleHBlank()
}

func (v *Video) scheduleHBlank() {
	v.sched.Add(schedtag.VideoHBlankStart, hblankStartDelay, v.onHBlankStart)
}

func (v *Video) onHBlankStart() {
	v.setDISPSTATBit(1, true)
	if v.dispstatBit(4) && v.irq != nil {
		v.irq.RequestIRQ(irqHBlank)
	}
	if v.dma != nil {
		v.dma.OnHBlank()
	}
	if v.onHBlank != nil {
		v.onHBlank()
	}
	v.sched.Add(schedtag.VideoLineEnd, cyclesPerLine-hblankStartDelay, v.onLineEnd)
}

func (v *Video) onLineEnd() {
	v.setDISPSTATBit(1, false)
	v.line = (v.line + 1) % linesPerFrame
	v.setVCount(uint16(v.line))

	switch v.line {
	case ScreenHeight:
		v.setDISPSTATBit(0, true)
		if v.dispstatBit(3) && v.irq != nil {
			v.irq.RequestIRQ(irqVBlank)
		}
		if v.dma != nil {
			v.dma.OnVBlank()
		}
		if v.onVBlank != nil {
			v.onVBlank()
		}
	case 0:
		v.setDISPSTATBit(0, false)
	}

	v.checkVCountMatch()
	v.scheduleHBlank()
}

func (v *Video) checkVCountMatch() {
	dispstat := v.regs.Get16(io.DISPSTAT)
	target := byte(dispstat >> 8)
	match := v.line == int(target)
	v.setDISPSTATBit(2, match)
	if match && dispstat&(1<<5) != 0 && v.irq != nil {
		v.irq.RequestIRQ(irqVCount)
	}
}

func (v *Video) setVCount(line uint16) {
	v.regs.Set16(io.VCOUNT, line)
}

func (v *Video) setDISPSTAT(clearMask, setMask uint16) {
	cur := v.regs.Get16(io.DISPSTAT)
	v.regs.Set16(io.DISPSTAT, (cur&^clearMask)|setMask)
}

func (v *Video) setDISPSTATBit(bit uint, on bool) {
	cur := v.regs.Get16(io.DISPSTAT)
	if on {
		cur |= 1 << bit
	} else {
		cur &^= 1 << bit
	}
	v.regs.Set16(io.DISPSTAT, cur)
}

func (v *Video) dispstatBit(bit uint) bool {
	return v.regs.Get16(io.DISPSTAT)&(1<<bit) != 0
}

// Line reports the current scanline (0-227), for diagnostics/tests.
func (v *Video) Line() int { return v.line }
