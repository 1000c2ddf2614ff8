// Package cpu implements the ARM7TDMI interpreter: ARM and Thumb decode,
// banked register model, two-stage pipeline, and exception entry, covering
// the instruction classes (multiply, halfword transfer, SWP, BX/BLX,
// MRS/MSR, a full Thumb set, and IRQ/SWI/undefined exception entry) a
// minimal interpreter tends to leave as panics.
package cpu

import (
	"GoBA/internal/logx"
	"GoBA/internal/memory"
)

// Bus is the subset of bus.Bus the CPU drives. Kept as a small interface
// (unlike the registers/memory types, which went concrete) because the bus
// is genuinely a different package the CPU must not import cyclically, and
// a narrow interface here avoids that import cycle without an all-purpose
// shared interfaces package.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// CPU is the ARM7TDMI interpreter core.
type CPU struct {
	registers *Registers
	bus       Bus
	cycles    uint64
	pipeline  [2]uint32
	halted    bool

	// IRQLine reflects IE&IF!=0 && IME; the console updates it whenever
	// those registers change.
	IRQLine bool
}

func NewCPU(bus Bus) *CPU {
	return &CPU{
		registers: NewRegisters(),
		bus:       bus,
	}
}

func (c *CPU) Registers() *Registers { return c.registers }

func (c *CPU) Cycles() uint64 { return c.cycles }

func (c *CPU) Halted() bool { return c.halted }

// Halt puts the CPU into low-power wait; Step becomes a one-cycle no-op
// until ResumeFromHalt is called or Step takes a pending enabled IRQ,
// mirroring a HALTCNT write.
func (c *CPU) Halt() { c.halted = true }

func (c *CPU) ResumeFromHalt() { c.halted = false }

func (c *CPU) Reset() {
	c.registers = NewRegisters()
	c.registers.SetPC(memory.BIOSStart)
	c.registers.SetMode(SVCMode)
	c.registers.SetIRQDisabled(true)
	c.registers.SetFIQDisabled(true)
	c.halted = false
	c.cycles = 0
}

// Step takes a pending IRQ (when IRQLine is set and IRQs are enabled,
// 3 cycles), idles one cycle while halted, or executes exactly one
// instruction, and returns the cycles charged.
func (c *CPU) Step() uint64 {
	if c.IRQLine && !c.registers.IsIRQDisabled() {
		c.halted = false
		c.enterIRQ()
		c.cycles += 3
		return 3
	}

	if c.halted {
		c.cycles++
		return 1
	}

	pc := c.registers.GetPC()
	if c.registers.IsThumb() {
		instr := c.bus.Read16(pc)
		c.registers.SetPC(pc + 2)
		c.executeThumb(instr)
	} else {
		instr := c.bus.Read32(pc)
		c.registers.SetPC(pc + 4)
		c.execute_Arm(instr)
	}

	c.cycles++
	return 1
}

// FlushPipeline refills the two-stage prefetch after a branch, mode switch,
// or any write to PC.
func (c *CPU) FlushPipeline() {
	pc := c.registers.GetPC()
	if c.registers.IsThumb() {
		c.pipeline[0] = uint32(c.bus.Read16(pc))
		c.pipeline[1] = uint32(c.bus.Read16(pc + 2))
	} else {
		c.pipeline[0] = c.bus.Read32(pc)
		c.pipeline[1] = c.bus.Read32(pc + 4)
	}
}

func warnUnimplemented(where string, v uint32) {
	logx.Log.WithField("at", where).WithField("opcode", v).Warn("unimplemented")
}
