package dma

import (
	"testing"

	"github.com/stretchr/testify/require"

	"GoBA/internal/io"
	"GoBA/internal/scheduler"
)

// fakeBus is a flat byte-addressed memory standing in for internal/bus in
// these unit tests, so DMA transfer semantics can be verified without
// wiring the whole memory map.
type fakeBus struct {
	mem       [0x10000]byte
	eepromBits int
}

func (f *fakeBus) Read16(addr uint32) uint16 {
	return uint16(f.mem[addr%uint32(len(f.mem))]) | uint16(f.mem[(addr+1)%uint32(len(f.mem))])<<8
}
func (f *fakeBus) Write16(addr uint32, v uint16) {
	f.mem[addr%uint32(len(f.mem))] = byte(v)
	f.mem[(addr+1)%uint32(len(f.mem))] = byte(v >> 8)
}
func (f *fakeBus) Read32(addr uint32) uint32 {
	return uint32(f.Read16(addr)) | uint32(f.Read16(addr+2))<<16
}
func (f *fakeBus) Write32(addr uint32, v uint32) {
	f.Write16(addr, uint16(v))
	f.Write16(addr+2, uint16(v>>16))
}
func (f *fakeBus) SetEEPROMAddressWidth(bits int) { f.eepromBits = bits }

type fakeIRQ struct{ requested uint16 }

func (f *fakeIRQ) RequestIRQ(bit uint16) { f.requested |= bit }

type fakeFIFO struct{ words []uint32 }

func (f *fakeFIFO) PushFIFOWord(num int, value uint32) { f.words = append(f.words, value) }

func setupChannel(t *testing.T, ch int) (*Controller, *fakeBus, *fakeIRQ, *scheduler.Scheduler, *io.Registers) {
	t.Helper()
	regs := io.NewRegisters()
	sched := scheduler.New()
	bus := &fakeBus{}
	irq := &fakeIRQ{}
	c := New(regs, bus, sched, irq, &fakeFIFO{})

	sad, dad, cntL, cntH := channelRegs(ch)
	regs.Set32(sad, 0x1000)
	regs.Set32(dad, 0x2000)
	regs.Set16(cntL, 4)
	regs.Set16(cntH, 1<<15) // enable, immediate, increment, halfword

	return c, bus, irq, sched, regs
}

func TestImmediateTransferCopiesHalfwords(t *testing.T) {
	c, bus, _, sched, _ := setupChannel(t, 0)
	for i := 0; i < 4; i++ {
		bus.Write16(0x1000+uint32(i*2), uint16(0xA000+i))
	}
	c.OnControlWrite(0)
	sched.Tick(2)

	for i := 0; i < 4; i++ {
		require.Equal(t, uint16(0xA000+i), bus.Read16(0x2000+uint32(i*2)))
	}
	require.False(t, c.ch[0].enabled)
}

func TestIRQFlagRequestsOnCompletion(t *testing.T) {
	c, _, irq, sched, regs := setupChannel(t, 0)
	_, _, _, cntH := channelRegs(0)
	regs.Set16(cntH, (1<<15)|(1<<14))
	c.OnControlWrite(0)
	sched.Tick(2)
	require.Equal(t, uint16(irqDMA0), irq.requested)
}

func TestVBlankTriggeredChannelWaitsForEvent(t *testing.T) {
	c, bus, _, _, regs := setupChannel(t, 1)
	_, _, _, cntH := channelRegs(1)
	regs.Set16(cntH, (1<<15)|(1<<12)) // enable, mode=vblank
	c.OnControlWrite(1)

	require.True(t, c.ch[1].enabled)
	c.OnVBlank()
	require.False(t, c.ch[1].enabled)
	_ = bus
}

func TestDMA3SpecialModeFallsBackToNormal(t *testing.T) {
	c, _, _, sched, regs := setupChannel(t, 3)
	_, _, _, cntH := channelRegs(3)
	regs.Set16(cntH, (1<<15)|(3<<12)) // enable, mode=special (forbidden on ch3)
	c.OnControlWrite(3)
	require.Equal(t, ModeImmediate, c.ch[3].mode)
	sched.Tick(2)
	require.False(t, c.ch[3].enabled)
}

func TestSpecialModeOnChannel1PushesFourWordsWithoutAdvancingDst(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	bus := &fakeBus{}
	fifo := &fakeFIFO{}
	c := New(regs, bus, sched, &fakeIRQ{}, fifo)

	sad, dad, cntL, cntH := channelRegs(1)
	regs.Set32(sad, 0x1000)
	regs.Set32(dad, io.FIFO_A)
	regs.Set16(cntL, 0)
	regs.Set16(cntH, (1<<15)|(3<<12)) // enable, mode=special
	c.OnControlWrite(1)
	c.OnFIFOEmpty(0) // FIFO A requests a refill

	require.Len(t, fifo.words, 4)
	require.Equal(t, uint32(io.FIFO_A), c.ch[1].dstAddr)
	_ = dad
}

func TestEEPROMWidthInferredFromChannel3Length(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	bus := &fakeBus{}
	c := New(regs, bus, sched, &fakeIRQ{}, &fakeFIFO{})

	sad, dad, cntL, cntH := channelRegs(3)
	regs.Set32(sad, 0x1000)
	regs.Set32(dad, 0x0D000000)
	regs.Set16(cntL, 17) // > 9 => 14-bit bus
	regs.Set16(cntH, 1<<15)
	c.OnControlWrite(3)

	require.Equal(t, 14, bus.eepromBits)
}

func TestRepeatReloadsFromShadow(t *testing.T) {
	c, _, _, sched, regs := setupChannel(t, 2)
	_, _, _, cntH := channelRegs(2)
	regs.Set16(cntH, (1<<15)|(1<<9)|(1<<12)) // enable, repeat, mode=vblank
	c.OnControlWrite(2)

	c.OnVBlank()
	require.True(t, c.ch[2].enabled, "repeat keeps the channel enabled")
	require.Equal(t, uint32(4), c.ch[2].length, "length reloads from the shadow on repeat")
	_ = sched
}
