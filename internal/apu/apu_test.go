package apu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"GoBA/internal/io"
	"GoBA/internal/scheduler"
)

type fakeDMA struct{ notified []int }

func (f *fakeDMA) OnFIFOEmpty(fifoNum int) { f.notified = append(f.notified, fifoNum) }

func TestFIFOPushDropsOldestOnOverflow(t *testing.T) {
	var f pcmFIFO
	for i := 0; i < fifoCapacity; i++ {
		f.push(int8(i))
	}
	f.push(99) // overflow, should drop the oldest (0)

	f.pop()
	require.Equal(t, int8(1), f.current)
}

func TestFIFOPopReportsDrainAtHalf(t *testing.T) {
	var f pcmFIFO
	for i := 0; i < fifoCapacity; i++ {
		f.push(int8(i))
	}
	var drained bool
	for i := 0; i < fifoCapacity-fifoDrainThreshold-1; i++ {
		drained = f.pop()
	}
	require.False(t, drained, "not yet at half")
	drained = f.pop()
	require.True(t, drained, "occupancy just reached half")
}

func TestPushFIFOWordAppendsFourBytesLittleEndian(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.PushFIFOWord(0, 0x04030201)

	require.Equal(t, 4, a.fifo[0].count)
	a.fifo[0].pop()
	require.Equal(t, int8(0x01), a.fifo[0].current)
}

func TestOnTimerOverflowPopsMatchingFIFOAndNotifiesDMAOnDrain(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	dma := &fakeDMA{}
	a := New(regs, sched, dma)
	a.fifo[0].timerSelect = 0
	a.fifo[1].timerSelect = 1
	for i := 0; i < fifoCapacity; i++ {
		a.fifo[0].push(int8(i))
		a.fifo[1].push(int8(i))
	}

	for i := 0; i < fifoCapacity-fifoDrainThreshold; i++ {
		a.OnTimerOverflow(0)
	}

	require.Equal(t, []int{0}, dma.notified, "only fifo 0 is clocked by timer 0")
}

func TestFrameSequencerClocksLengthOnEvenSteps(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.sq0.enabled = true
	a.sq0.len.enable = true
	a.sq0.len.counter = 1

	sched.Tick(frameSequencerPeriod) // step 0: length clocks

	require.Equal(t, uint16(0), a.sq0.len.counter)
	require.False(t, a.sq0.enabled, "length reaching zero disables the channel")
}

func TestFrameSequencerClocksEnvelopeOnStepSeven(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.sq0.env.period = 1
	a.sq0.env.volume = 5
	a.sq0.env.addMode = true

	for i := 0; i < 8; i++ {
		sched.Tick(frameSequencerPeriod)
	}

	require.Equal(t, byte(6), a.sq0.env.volume, "step 7 clocks the envelope once per full cycle")
}

func TestSquareTriggerSetsDefaultLengthWhenZero(t *testing.T) {
	var s square
	s.trigger()
	require.Equal(t, uint16(64), s.len.counter)
	require.True(t, s.enabled)
}

func TestSweepOverflowDisablesChannel(t *testing.T) {
	s := &square{}
	s.sw.period = 1
	s.sw.shift = 1
	s.sw.shadowFreq = 2047
	s.sw.negate = false
	s.sw.enabled = true
	s.sw.timer = 1

	s.enabled = true
	s.clockSweep()

	require.False(t, s.enabled, "frequency overflowing 11 bits disables the channel")
}

func TestWriteSound1CntXTriggersChannel(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.WriteSound1CntH(0) // duty 0, length 0, envelope silent
	a.WriteSound1CntX(uint16(1<<15) | 0x123)

	require.True(t, a.sq0.enabled)
	require.Equal(t, uint16(0x123), a.sq0.freq)
}

func TestWriteWaveRAMPacksTwoNibblesPerByte(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.WriteWaveRAM8(0, 0xAB)

	require.Equal(t, byte(0xA), a.wv.ram[0])
	require.Equal(t, byte(0xB), a.wv.ram[1])
	require.Equal(t, byte(0xAB), a.ReadWaveRAM8(0))
}

func TestReadSoundCntXReflectsLiveChannelStatus(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.WriteSoundCntX(1 << 7)
	a.sq1.enabled = true

	v := a.ReadSoundCntX()
	require.Equal(t, uint16((1<<7)|(1<<1)), v)
}

func TestWriteSoundCntHResetsFIFOOnBit(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.fifo[0].push(5)
	a.WriteSoundCntH(1 << 11)

	require.Equal(t, 0, a.fifo[0].count)
}

func TestMixReturnsSilenceWhenMasterDisabled(t *testing.T) {
	regs := io.NewRegisters()
	sched := scheduler.New()
	a := New(regs, sched, &fakeDMA{})

	a.sq0.enabled = true
	a.sq0.env.volume = 15

	l, r := a.mix()
	require.Zero(t, l)
	require.Zero(t, r)
}
