package timer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"GoBA/internal/io"
	"GoBA/internal/scheduler"
)

type fakeIRQ struct{ requested uint16 }

func (f *fakeIRQ) RequestIRQ(bit uint16) { f.requested |= bit }

type fakeAPU struct{ overflows []int }

func (f *fakeAPU) OnTimerOverflow(num int) { f.overflows = append(f.overflows, num) }

func TestOverflowReloadsAndRequestsIRQ(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	irq := &fakeIRQ{}
	c := New(regs, sched, irq, &fakeAPU{})

	regs.Set16(counterOffset(0), 0xFFFE) // two ticks from overflow
	regs.Set16(ctrlOffset(0), (1<<6)|(1<<7))
	c.OnControlWrite(0)

	sched.Tick(2)
	require.Equal(t, uint16(1<<3), irq.requested)
	require.Equal(t, uint16(0xFFFE), c.Count(0))
}

func TestCascadeIgnoredOnTimer0(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	c := New(regs, sched, &fakeIRQ{}, &fakeAPU{})

	regs.Set16(ctrlOffset(0), (1 << 2) | (1 << 7)) // cascade bit set, but ignored on timer 0
	c.OnControlWrite(0)

	require.False(t, c.t[0].cascade)
}

func TestCascadeAdvancesOnPreviousOverflow(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	c := New(regs, sched, &fakeIRQ{}, &fakeAPU{})

	regs.Set16(counterOffset(1), 0xFFFF)
	regs.Set16(ctrlOffset(1), (1 << 2) | (1 << 7)) // timer 1 cascades off timer 0
	c.OnControlWrite(1)

	regs.Set16(counterOffset(0), 0xFFFF)
	regs.Set16(ctrlOffset(0), 1 << 7)
	c.OnControlWrite(0)

	sched.Tick(1) // timer 0 overflows, advances timer 1 by one -> wraps and reloads
	require.Equal(t, uint16(0xFFFF), c.t[1].counter)
}

func TestAPUFIFOClockFiresForTimers0And1Only(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	apu := &fakeAPU{}
	c := New(regs, sched, &fakeIRQ{}, apu)

	regs.Set16(counterOffset(1), 0xFFFF)
	regs.Set16(ctrlOffset(1), 1 << 7)
	c.OnControlWrite(1)
	sched.Tick(1)

	require.Equal(t, []int{1}, apu.overflows)
}

func TestDisablingTimerCancelsScheduledOverflow(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	irq := &fakeIRQ{}
	c := New(regs, sched, irq, &fakeAPU{})

	regs.Set16(counterOffset(2), 0xFFFE)
	regs.Set16(ctrlOffset(2), (1 << 6) | (1 << 7))
	c.OnControlWrite(2)

	regs.Set16(ctrlOffset(2), 0) // disable
	c.OnControlWrite(2)

	sched.Tick(10)
	require.Zero(t, irq.requested)
}
