// Package dma implements the GBA's four-channel DMA controller, grounded
// directly in original_source/src/core/dma.cpp. It follows the module's
// usual per-subsystem-package style, sharing its register-offset constants
// from internal/io and its event pacing from internal/scheduler, same as
// internal/timer.
package dma

import (
	"GoBA/internal/io"
	"GoBA/internal/logx"
	"GoBA/internal/scheduler"
	"GoBA/internal/schedtag"
)

// Bus is the subset of bus.Bus the DMA controller drives transfers
// through, plus the EEPROM-width hook channel 3 needs for EEPROM
// detection. Transfers go through the same bus accesses CPU loads/stores
// use; the bus does not count access cycles, so a transfer charges none.
type Bus interface {
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
	SetEEPROMAddressWidth(bits int)
}

// IRQRequester lets a completed channel with its IRQ flag set raise the
// matching DMA interrupt. Entering the IRQ is the CPU's concern; this
// only flags the request.
type IRQRequester interface {
	RequestIRQ(bit uint16)
}

// FIFOPusher is the APU's sound-FIFO write path that DMA channels 1/2
// drive in special mode.
type FIFOPusher interface {
	PushFIFOWord(num int, value uint32)
}

// IRQ bits for DMA0..DMA3 in the IE/IF register.
const (
	irqDMA0 = 1 << 8
	irqDMA1 = 1 << 9
	irqDMA2 = 1 << 10
	irqDMA3 = 1 << 11
)

var irqBits = [4]uint16{irqDMA0, irqDMA1, irqDMA2, irqDMA3}
var tags = [4]scheduler.Tag{schedtag.DMA0, schedtag.DMA1, schedtag.DMA2, schedtag.DMA3}

type incType int

const (
	incInc incType = iota
	incDec
	incFixed
	incSpecial // destination "reload" mode: fixed during transfer, reloads on repeat
)

type sizeType int

const (
	sizeHalf sizeType = iota
	sizeWord
)

// Mode is the DMA trigger condition.
type Mode int

const (
	ModeImmediate Mode = iota
	ModeVBlank
	ModeHBlank
	ModeSpecial
)

type channel struct {
	num int

	srcAddr uint32
	dstAddr uint32
	length  uint32

	srcIncType incType
	dstIncType incType
	size       sizeType
	mode       Mode
	repeat     bool
	irq        bool
	enabled    bool

	srcStep int32
	dstStep int32

	// Shadows of the originally latched length/destination, restored on
	// repeat.
	shadowLength uint32
	shadowDst    uint32
}

// addrMasks bounds the latched source/destination per channel: ch0 has a
// 27-bit src/dst width, ch3 has 28-bit; channels 1/2 share ch0's source
// width and the general 27-bit destination width.
func (c *channel) addrMasks() (srcMask, dstMask uint32) {
	if c.num == 3 {
		return 0x0FFFFFFF, 0x0FFFFFFF
	}
	return 0x07FFFFFF, 0x07FFFFFF
}

// Controller owns the four DMA channels and the register state the bus
// writes into on a high-control-word write.
type Controller struct {
	ch    [4]channel
	regs  *io.Registers
	bus   Bus
	sched *scheduler.Scheduler
	irq   IRQRequester
	apu   FIFOPusher
}

// New wires a Controller to the flat I/O register block it reads
// SAD/DAD/CNT from, the bus it transfers through, the scheduler it
// defers immediate-mode transfers on, and the IRQ/APU collaborators
// completed transfers notify.
func New(regs *io.Registers, bus Bus, sched *scheduler.Scheduler, irq IRQRequester, apu FIFOPusher) *Controller {
	c := &Controller{regs: regs, bus: bus, sched: sched, irq: irq, apu: apu}
	for i := range c.ch {
		c.ch[i].num = i
	}
	return c
}

// SetFIFOPusher attaches the APU after construction, letting the console
// break the DMA<->APU construction cycle (each needs the other as a
// collaborator).
func (c *Controller) SetFIFOPusher(apu FIFOPusher) { c.apu = apu }

func channelRegs(ch int) (sad, dad, cntL, cntH uint32) {
	base := uint32(io.DMA0SAD + ch*0xC)
	return base, base + 4, base + 8, base + 10
}

// OnControlWrite is called when software writes a channel's CNT_H half.
// It latches the channel state from registers and, for
// immediate mode, schedules the transfer 2 cycles later (real hardware
// delays immediate DMA by a few cycles).
func (c *Controller) OnControlWrite(chNum int) {
	ch := &c.ch[chNum]
	sad, dad, cntL, cntH := channelRegs(chNum)

	cntHVal := c.regs.Get16(cntH)
	enable := cntHVal&(1<<15) != 0

	wasEnabled := ch.enabled
	if !enable {
		ch.enabled = false
		c.regs.Set16(cntH, cntHVal)
		return
	}

	ch.dstIncType = incType((cntHVal >> 5) & 0x3)
	ch.srcIncType = incType((cntHVal >> 7) & 0x3)
	ch.repeat = cntHVal&(1<<9) != 0
	if cntHVal&(1<<10) != 0 {
		ch.size = sizeWord
	} else {
		ch.size = sizeHalf
	}
	ch.mode = Mode((cntHVal >> 12) & 0x3)
	ch.irq = cntHVal&(1<<14) != 0

	srcMask, dstMask := ch.addrMasks()

	if !wasEnabled {
		ch.srcAddr = c.regs.Get32(sad) & srcMask
		ch.dstAddr = c.regs.Get32(dad) & dstMask
		ch.length = uint32(c.regs.Get16(cntL))

		if ch.length == 0 {
			if chNum == 3 {
				ch.length = 0x10000
			} else {
				ch.length = 0x4000
			}
		}
	}

	// Real hardware never sees DMA3 special mode; software that sets it
	// anyway falls back to normal DMA3 behavior.
	if chNum == 3 && ch.mode == ModeSpecial {
		ch.mode = ModeImmediate
	}

	if ch.mode == ModeSpecial {
		ch.length = 4
		ch.size = sizeWord
		ch.dstIncType = incSpecial
	}

	switch ch.size {
	case sizeHalf:
		ch.srcStep, ch.dstStep = 2, 2
	case sizeWord:
		ch.srcStep, ch.dstStep = 4, 4
	}
	applyIncrement(ch.srcIncType, &ch.srcStep)
	applyIncrement(ch.dstIncType, &ch.dstStep)

	ch.shadowLength = ch.length
	ch.shadowDst = ch.dstAddr
	ch.enabled = true

	if chNum == 3 && ch.dstAddr >= 0x0D000000 && ch.dstAddr <= 0x0DFFFFFF {
		width := 6
		if ch.length > 9 {
			width = 14
		}
		c.bus.SetEEPROMAddressWidth(width)
	}

	if ch.mode == ModeImmediate {
		c.sched.Add(tags[chNum], 2, func() { c.runImmediate(chNum) })
	}
}

func applyIncrement(t incType, step *int32) {
	switch t {
	case incInc:
	case incDec:
		*step = -*step
	case incFixed, incSpecial:
		*step = 0
	}
}

func (c *Controller) runImmediate(chNum int) {
	ch := &c.ch[chNum]
	if ch.enabled && ch.mode == ModeImmediate {
		c.run(ch)
	}
}

// OnVBlank fires every enabled V-blank-triggered channel.
func (c *Controller) OnVBlank() { c.runTriggered(ModeVBlank) }

// OnHBlank fires every enabled H-blank-triggered channel.
func (c *Controller) OnHBlank() { c.runTriggered(ModeHBlank) }

func (c *Controller) runTriggered(mode Mode) {
	for i := range c.ch {
		ch := &c.ch[i]
		if ch.enabled && ch.mode == mode {
			c.run(ch)
		}
	}
}

// OnFIFOEmpty is the APU's "occupancy dropped to half" signal; only
// channels 1 (FIFO A) and 2 (FIFO B) may legally service it.
func (c *Controller) OnFIFOEmpty(fifoNum int) {
	chNum := fifoNum + 1
	if chNum != 1 && chNum != 2 {
		return
	}
	ch := &c.ch[chNum]
	if ch.enabled && ch.mode == ModeSpecial {
		c.runSpecial(ch)
	}
}

// run executes one full transfer for a normal (non-special) channel.
func (c *Controller) run(ch *channel) {
	if ch.mode == ModeSpecial {
		c.runSpecial(ch)
		return
	}

	length := ch.length
	for ; ch.length > 0; ch.length-- {
		switch ch.size {
		case sizeHalf:
			v := c.bus.Read16(ch.srcAddr)
			c.bus.Write16(ch.dstAddr, v)
		case sizeWord:
			v := c.bus.Read32(ch.srcAddr)
			c.bus.Write32(ch.dstAddr, v)
		}
		ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcStep))
		ch.dstAddr = uint32(int64(ch.dstAddr) + int64(ch.dstStep))
	}

	c.finish(ch, length)
}

// runSpecial transfers exactly four 32-bit words into the FIFO register
// without advancing the destination.
func (c *Controller) runSpecial(ch *channel) {
	for i := 0; i < 4; i++ {
		v := c.bus.Read32(ch.srcAddr)
		c.apu.PushFIFOWord(ch.num-1, v)
		ch.srcAddr = uint32(int64(ch.srcAddr) + int64(ch.srcStep))
	}
	c.finish(ch, 4)
}

func (c *Controller) finish(ch *channel, transferredLen uint32) {
	if ch.irq && c.irq != nil {
		c.irq.RequestIRQ(irqBits[ch.num])
	}

	if ch.repeat && ch.mode != ModeImmediate {
		ch.length = transferredLen
		if ch.dstIncType == incSpecial {
			ch.dstAddr = ch.shadowDst
		}
		return
	}

	ch.enabled = false
	_, _, _, cntH := channelRegs(ch.num)
	v := c.regs.Get16(cntH)
	c.regs.Set16(cntH, v&^(1<<15))
	logx.Log.WithField("channel", ch.num).Debug("dma transfer complete")
}
