// Package console implements the Console aggregate: the single owner of
// CPU, bus, DMA, timers, APU, backup, scheduler, and video timing, driven
// top-down from Run(cycles). Grounded in the classic emulator main loop
// (cpu.Step / bus.Tick / frame-ready check), generalized into a reusable
// type instead of being inlined in main, the way a production core
// separates its embeddable engine from its demo frontend.
package console

import (
	"GoBA/internal/apu"
	"GoBA/internal/bus"
	"GoBA/internal/cartridge"
	"GoBA/internal/coreerr"
	"GoBA/internal/cpu"
	"GoBA/internal/dma"
	"GoBA/internal/io"
	"GoBA/internal/logx"
	"GoBA/internal/memory"
	"GoBA/internal/scheduler"
	"GoBA/internal/timer"
	"GoBA/internal/video"
)

// MaxROMSize bounds a cartridge dump to 32 MiB.
const MaxROMSize = 32 * 1024 * 1024

// Button bits for SetButton, matching KEYINPUT's bit order for the GBA's
// 10 input bits; KEYINPUT is active-low, which SetButton hides from the
// caller.
const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonR
	ButtonL
)

const allButtonsMask = 0x3FF

// Console owns every emulated subsystem and is the core's sole public
// entry point.
type Console struct {
	sched *scheduler.Scheduler
	regs  *io.Registers
	bus   *bus.Bus
	cpu   *cpu.CPU
	dma   *dma.Controller
	tim   *timer.Controller
	apu   *apu.APU
	vid   *video.Video
	cart  *cartridge.Cartridge

	keyState uint16 // bit set = pressed; inverted onto KEYINPUT

	stop bool
}

// New constructs a Console with an empty cartridge; LoadROM must be
// called before Run produces anything meaningful.
func New() *Console {
	c := &Console{}
	c.wire(cartridge.New(nil))
	return c
}

// wire (re)builds every subsystem against a freshly loaded cartridge.
// Called from both New and LoadROM, since loading a ROM returns the core
// to its defined power-on state.
func (c *Console) wire(cart *cartridge.Cartridge) {
	c.cart = cart
	c.sched = scheduler.New()
	c.regs = io.NewRegisters()

	bios := memory.NewBIOS(nil)
	b := bus.NewBus(bios, memory.NewEWRAM(), memory.NewIWRAM(),
		memory.NewPRAM(), memory.NewVRAM(), memory.NewOAM(), cart, c.regs)
	c.bus = b

	c.cpu = cpu.NewCPU(b)

	c.dma = dma.New(c.regs, b, c.sched, b, nil)
	c.apu = apu.New(c.regs, c.sched, c.dma)
	c.dma.SetFIFOPusher(c.apu)
	c.tim = timer.New(c.regs, c.sched, b, c.apu)
	c.vid = video.New(c.regs, c.sched, b, c.dma)

	b.DMAController = c.dma
	b.Timers = c.tim
	b.APU = c.apu
	b.Halter = c.cpu

	c.keyState = 0
	c.applyKeyState()
}

// Reset returns every subsystem to its power-on state against the
// currently loaded cartridge.
func (c *Console) Reset() {
	logx.Log.Info("console reset")
	c.wire(c.cart)
	c.cpu.Reset()
}

// LoadROM validates and installs a new cartridge image, then resets the
// core against it.
func (c *Console) LoadROM(data []byte) error {
	if len(data) == 0 {
		return coreerr.Load("ROM image is empty")
	}
	if len(data) > MaxROMSize {
		return coreerr.Load("ROM image %d bytes exceeds %d byte maximum", len(data), MaxROMSize)
	}
	cart := cartridge.New(data)
	c.wire(cart)
	c.cpu.Reset()
	logx.Log.WithField("bytes", len(data)).Info("rom loaded")
	return nil
}

// LoadSave restores a prior backup snapshot, rejecting a size mismatch
// without touching existing state.
func (c *Console) LoadSave(data []byte) error {
	existing := c.cart.GetSave()
	if existing != nil && len(data) != len(existing) {
		return coreerr.State("save size %d does not match expected %d", len(data), len(existing))
	}
	c.cart.LoadSave(data)
	return nil
}

// GetSave returns a snapshot of the cartridge's backup storage.
func (c *Console) GetSave() []byte { return c.cart.GetSave() }

// SetButton updates one button's pressed state and writes the inverted
// composite onto KEYINPUT.
func (c *Console) SetButton(mask uint16, pressed bool) {
	if pressed {
		c.keyState |= mask
	} else {
		c.keyState &^= mask
	}
	c.applyKeyState()
}

func (c *Console) applyKeyState() {
	c.bus.SetKeyInput(^c.keyState & allButtonsMask)
}

// SetVBlankCallback/SetHBlankCallback/SetAudioCallback register the
// host's line/sample callbacks.
func (c *Console) SetVBlankCallback(cb func())          { c.vid.SetVBlankCallback(cb) }
func (c *Console) SetHBlankCallback(cb func())          { c.vid.SetHBlankCallback(cb) }
func (c *Console) SetAudioCallback(cb apu.AudioCallback) { c.apu.SetAudioCallback(cb) }

// Stop requests that a running Run(cycles) call return at its next
// scheduler drain.
func (c *Console) Stop() { c.stop = true }

// Run advances emulated time by cycles CPU cycles, or until Stop is
// called. Each CPU step reports its program counter to the
// bus (for the BIOS open-bus latch) and its IRQ line before stepping, so
// interrupt entry happens on the correct instruction boundary.
func (c *Console) Run(cycles uint64) {
	c.stop = false
	var consumed uint64
	for consumed < cycles {
		if c.stop {
			return
		}
		c.bus.SetCurrentPC(c.cpu.Registers().GetPC())
		c.cpu.IRQLine = c.bus.IRQPending()
		charged := c.cpu.Step()
		consumed += charged
		c.sched.Tick(charged)
	}
}
