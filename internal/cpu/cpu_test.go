package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBus is a byte-addressable RAM double good enough to fetch instructions
// and drive loads/stores without needing the real bus package.
type fakeBus struct {
	mem map[uint32]byte
}

func newFakeBus() *fakeBus { return &fakeBus{mem: make(map[uint32]byte)} }

func (b *fakeBus) Read8(addr uint32) uint8 { return b.mem[addr] }

func (b *fakeBus) Read16(addr uint32) uint16 {
	return uint16(b.mem[addr]) | uint16(b.mem[addr+1])<<8
}

func (b *fakeBus) Read32(addr uint32) uint32 {
	return uint32(b.mem[addr]) | uint32(b.mem[addr+1])<<8 |
		uint32(b.mem[addr+2])<<16 | uint32(b.mem[addr+3])<<24
}

func (b *fakeBus) Write8(addr uint32, v uint8) { b.mem[addr] = v }

func (b *fakeBus) Write16(addr uint32, v uint16) {
	b.mem[addr] = byte(v)
	b.mem[addr+1] = byte(v >> 8)
}

func (b *fakeBus) Write32(addr uint32, v uint32) {
	b.mem[addr] = byte(v)
	b.mem[addr+1] = byte(v >> 8)
	b.mem[addr+2] = byte(v >> 16)
	b.mem[addr+3] = byte(v >> 24)
}

func (b *fakeBus) putARM(addr uint32, instr uint32) { b.Write32(addr, instr) }

func (b *fakeBus) putThumb(addr uint32, instr uint16) { b.Write16(addr, instr) }

func TestResetEntersSVCModeWithInterruptsDisabled(t *testing.T) {
	c := NewCPU(newFakeBus())
	c.Reset()

	require.Equal(t, uint8(SVCMode), c.registers.GetMode())
	require.True(t, c.registers.IsIRQDisabled())
	require.True(t, c.registers.IsFIQDisabled())
	require.False(t, c.registers.IsThumb())
	require.False(t, c.halted)
	require.Equal(t, uint64(0), c.cycles)
}

func TestStepExecutesARMMovImmediateAndAdvancesPC(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	pc := c.registers.GetPC()

	// MOVS R0, #5 (cond=AL, I=1, opcode=MOV, S=1, Rd=0, imm=5)
	bus.putARM(pc, 0xE3B00005)

	charged := c.Step()

	require.Equal(t, uint64(1), charged)
	require.Equal(t, uint32(5), c.registers.GetReg(0))
	require.Equal(t, pc+4, c.registers.GetPC())
	require.False(t, c.registers.GetFlagZ())
	require.Equal(t, uint64(1), c.cycles)
}

func TestStepSkipsInstructionWhenConditionFails(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	pc := c.registers.GetPC()

	// MOVEQ R0, #5: Z is clear after reset so this must not execute.
	bus.putARM(pc, 0x03B00005)

	c.Step()

	require.Equal(t, uint32(0), c.registers.GetReg(0))
	require.Equal(t, pc+4, c.registers.GetPC())
}

func TestStepExecutesThumbMovImmediate(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.registers.SetThumbState(true)
	pc := c.registers.GetPC()

	bus.putThumb(pc, 0x2012) // MOV R0, #0x12

	c.Step()

	require.Equal(t, uint32(0x12), c.registers.GetReg(0))
	require.Equal(t, pc+2, c.registers.GetPC())
}

func TestStepWhileHaltedConsumesOneCycleWithoutFetching(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.Halt()
	pc := c.registers.GetPC()

	charged := c.Step()

	require.Equal(t, uint64(1), charged)
	require.Equal(t, pc, c.registers.GetPC(), "halted CPU never advances PC")
	require.True(t, c.halted)
}

func TestResumeFromHaltAllowsSteppingAgain(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.Halt()
	c.ResumeFromHalt()
	pc := c.registers.GetPC()
	bus.putARM(pc, 0xE3B00005)

	c.Step()

	require.False(t, c.halted)
	require.Equal(t, uint32(5), c.registers.GetReg(0))
}

func TestStepEntersIRQWhenLineAssertedAndEnabled(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.registers.SetIRQDisabled(false)
	c.IRQLine = true
	returnPC := c.registers.GetPC() + 4

	charged := c.Step()

	require.Equal(t, uint64(3), charged)
	require.Equal(t, uint8(IRQMode), c.registers.GetMode())
	require.Equal(t, uint32(0x18), c.registers.GetPC())
	require.Equal(t, returnPC, c.registers.LR_irq)
	require.True(t, c.registers.IsIRQDisabled())
	require.False(t, c.halted)
}

func TestStepIgnoresIRQLineWhenDisabled(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.IRQLine = true // IsIRQDisabled() is true after Reset
	pc := c.registers.GetPC()
	bus.putARM(pc, 0xE3B00005)

	c.Step()

	require.Equal(t, uint8(SVCMode), c.registers.GetMode())
	require.Equal(t, uint32(5), c.registers.GetReg(0))
}

func TestIRQWakesHaltedCPU(t *testing.T) {
	bus := newFakeBus()
	c := NewCPU(bus)
	c.Reset()
	c.Halt()
	c.registers.SetIRQDisabled(false)
	c.IRQLine = true

	c.Step()

	require.False(t, c.halted)
	require.Equal(t, uint8(IRQMode), c.registers.GetMode())
}
