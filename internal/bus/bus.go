// Package bus implements the GBA memory map: region decoding by address
// bits 24-27, width-specific access rules, the VRAM mirror quirk,
// palette/VRAM byte-write widening, OAM byte-write suppression, and I/O
// register dispatch with side effects. One Bus struct is wired to every
// component. Each access switches on the region and indexes the owning
// component's backing slice with the region mask; there is no per-region
// lookup table, and outside the I/O region 16- and 32-bit accesses are
// built from 8-bit ones. Every region is wired to its owning component
// (DMA, timer, APU, cartridge backup).
package bus

import (
	"GoBA/internal/apu"
	"GoBA/internal/backup"
	"GoBA/internal/cartridge"
	"GoBA/internal/dma"
	"GoBA/internal/io"
	"GoBA/internal/memory"
	"GoBA/internal/timer"
	"GoBA/util/dbg"
)

// Region base addresses.
const (
	BIOSBase  = 0x00000000
	EWRAMBase = 0x02000000
	IWRAMBase = 0x03000000
	IOBase    = 0x04000000
	PRAMBase  = 0x05000000
	VRAMBase  = 0x06000000
	OAMBase   = 0x07000000
	ROMBase0  = 0x08000000
	ROMBase1  = 0x0A000000
	ROMBase2  = 0x0C000000
	SRAMBase  = 0x0E000000
)

// Halter is the CPU's low-power-wait entry point, driven by a HALTCNT
// write.
type Halter interface {
	Halt()
}

// Bus wires every memory-mapped component together. DMAController,
// Timers, APU, and Halter are public fields the console aggregate sets
// after construction rather than threading every dependency through one
// constructor.
type Bus struct {
	BIOS  *memory.BIOS
	EWRAM *memory.EWRAM
	IWRAM *memory.IWRAM
	PRAM  *memory.PRAM
	VRAM  *memory.VRAM
	OAM   *memory.OAM

	IORegs    *io.Registers
	Cartridge *cartridge.Cartridge

	DMAController *dma.Controller
	Timers        *timer.Controller
	APU           *apu.APU
	Halter        Halter

	currentPC uint32

	CycleCount uint64
}

// NewBus wires the fixed memory blocks, I/O register buffer, and loaded
// cartridge. DMAController/Timers/APU/Halter are attached afterward by
// the console, which must construct them with this Bus as their
// collaborator.
func NewBus(bios *memory.BIOS, ewram *memory.EWRAM, iwram *memory.IWRAM, pram *memory.PRAM, vram *memory.VRAM, oam *memory.OAM, cart *cartridge.Cartridge, regs *io.Registers) *Bus {
	return &Bus{
		BIOS:      bios,
		EWRAM:     ewram,
		IWRAM:     iwram,
		PRAM:      pram,
		VRAM:      vram,
		OAM:       oam,
		IORegs:    regs,
		Cartridge: cart,
	}
}

// SetCurrentPC lets the console report the CPU's program counter ahead of
// each step, which is how the bus knows whether a BIOS access is legal:
// BIOS is readable only when PC resides in it.
func (b *Bus) SetCurrentPC(pc uint32) { b.currentPC = pc }

func (b *Bus) pcInBIOS() bool { return b.currentPC <= memory.BIOSEnd }

// RequestIRQ ORs bit into the IF register; satisfies dma.IRQRequester,
// timer.IRQRequester, and video.IRQRequester.
func (b *Bus) RequestIRQ(bit uint16) {
	b.IORegs.Set16(io.IF, b.IORegs.Get16(io.IF)|bit)
}

// IRQPending reports whether the CPU should take an IRQ exception on its
// next step, aside from the CPSR I-bit check, which is the CPU's own
// concern.
func (b *Bus) IRQPending() bool {
	ime := b.IORegs.Get16(io.IME)
	ie := b.IORegs.Get16(io.IE)
	iff := b.IORegs.Get16(io.IF)
	return ime&1 != 0 && ie&iff != 0
}

// SetEEPROMAddressWidth implements dma.Bus: it forwards to the cartridge
// backup if (and only if) it is actually an EEPROM.
func (b *Bus) SetEEPROMAddressWidth(bits int) {
	if e, ok := b.Cartridge.Backup.(*backup.EEPROM); ok {
		e.SetAddressWidth(bits)
	}
}

func region(addr uint32) uint32 { return (addr >> 24) & 0xF }

// vramIndex applies the VRAM mirror quirk: if addr & 0x1FFFF > 0x17FFF,
// subtract 0x8000 before indexing.
func vramIndex(addr uint32) uint32 {
	idx := addr & 0x1FFFF
	if idx > 0x17FFF {
		idx -= 0x8000
	}
	return idx
}

// isBitmapMode reports whether DISPCNT selects a bitmap video mode (3, 4,
// or 5), which widens the palette/VRAM 8-bit write replication window.
func (b *Bus) isBitmapMode() bool {
	return b.IORegs.Get16(io.DISPCNT)&0x7 >= 3
}

// Read8 reads one byte from the memory map.
func (b *Bus) Read8(addr uint32) uint8 {
	switch region(addr) {
	case 0x0:
		return b.BIOS.Read8(addr, b.pcInBIOS())
	case 0x2:
		return b.EWRAM.Bytes()[addr&(memory.EWRAMSize-1)]
	case 0x3:
		return b.IWRAM.Bytes()[addr&(memory.IWRAMSize-1)]
	case 0x4:
		return b.ioRead8(addr & 0x3FF)
	case 0x5:
		return b.PRAM.Bytes()[addr&(memory.PRAMSize-1)]
	case 0x6:
		return b.VRAM.Bytes()[vramIndex(addr)]
	case 0x7:
		return b.OAM.Bytes()[addr&(memory.OAMSize-1)]
	case 0x8, 0x9:
		return b.Cartridge.ReadByte(addr - ROMBase0)
	case 0xA, 0xB:
		return b.Cartridge.ReadByte(addr - ROMBase1)
	case 0xC:
		return b.Cartridge.ReadByte(addr - ROMBase2)
	case 0xD:
		if b.Cartridge.Backup.Kind() == backup.KindEEPROM {
			return byte(b.Cartridge.Backup.ReadBit())
		}
		return b.Cartridge.ReadByte(addr - ROMBase2)
	case 0xE, 0xF:
		return b.Cartridge.Backup.Read8(addr - SRAMBase)
	default:
		dbg.Printf("bus: open-bus 8-bit read at %08X\n", addr)
		return 0xFF
	}
}

// Write8 writes one byte to the memory map, applying the VRAM/PRAM
// replication quirk and the OAM byte-write suppression.
func (b *Bus) Write8(addr uint32, v uint8) {
	switch region(addr) {
	case 0x2:
		b.EWRAM.Bytes()[addr&(memory.EWRAMSize-1)] = v
	case 0x3:
		b.IWRAM.Bytes()[addr&(memory.IWRAMSize-1)] = v
	case 0x4:
		b.ioWrite8(addr&0x3FF, v)
	case 0x5:
		b.writeHalfReplicated(b.PRAM.Bytes(), addr&(memory.PRAMSize-1), v)
	case 0x6:
		limit := uint32(0x10000)
		if b.isBitmapMode() {
			limit = 0x14000
		}
		idx := vramIndex(addr)
		if idx >= limit {
			return
		}
		b.writeHalfReplicated(b.VRAM.Bytes(), idx, v)
	case 0x7:
		// OAM ignores 8-bit stores entirely.
	case 0x8, 0x9, 0xA, 0xB, 0xC:
		dbg.Printf("bus: write to read-only ROM at %08X\n", addr)
	case 0xD:
		if b.Cartridge.Backup.Kind() == backup.KindEEPROM {
			b.Cartridge.Backup.WriteBit(uint16(v))
			return
		}
		dbg.Printf("bus: write to read-only ROM at %08X\n", addr)
	case 0xE, 0xF:
		b.Cartridge.Backup.Write8(addr-SRAMBase, v)
	default:
		dbg.Printf("bus: open-bus 8-bit write at %08X\n", addr)
	}
}

// writeHalfReplicated stores v to both bytes of the half-word addr falls
// within: 8-bit writes to VRAM/PRAM widen to a mirrored 16-bit write.
func (b *Bus) writeHalfReplicated(backing []byte, idx uint32, v uint8) {
	base := idx &^ 1
	if int(base)+1 >= len(backing) {
		return
	}
	backing[base] = v
	backing[base+1] = v
}

// Read16 reads a half-word, forced to a 2-byte boundary. The I/O region
// is dispatched specially so register reads that are
// synthesized rather than stored (timer counters, SOUNDCNT_X) come back
// correct regardless of the access width software used.
func (b *Bus) Read16(addr uint32) uint16 {
	addr &^= 1
	if region(addr) == 0x4 {
		return b.ioRead16(addr & 0x3FF)
	}
	lo := uint16(b.Read8(addr))
	hi := uint16(b.Read8(addr + 1))
	return lo | hi<<8
}

// Write16 writes a half-word, forced to a 2-byte boundary.
func (b *Bus) Write16(addr uint32, v uint16) {
	addr &^= 1
	if region(addr) == 0x4 {
		b.ioWrite16(addr&0x3FF, v)
		return
	}
	b.Write8(addr, uint8(v))
	b.Write8(addr+1, uint8(v>>8))
}

// Read32 reads a word, forced to a 4-byte boundary. The CPU, not the bus,
// is responsible for the ARM7TDMI misaligned-load rotation.
func (b *Bus) Read32(addr uint32) uint32 {
	addr &^= 3
	if region(addr) == 0x4 {
		return b.ioRead32(addr & 0x3FF)
	}
	b0 := uint32(b.Read8(addr))
	b1 := uint32(b.Read8(addr + 1))
	b2 := uint32(b.Read8(addr + 2))
	b3 := uint32(b.Read8(addr + 3))
	return b0 | b1<<8 | b2<<16 | b3<<24
}

// Write32 writes a word, forced to a 4-byte boundary.
func (b *Bus) Write32(addr uint32, v uint32) {
	addr &^= 3
	if region(addr) == 0x4 {
		b.ioWrite32(addr&0x3FF, v)
		return
	}
	b.Write8(addr, uint8(v))
	b.Write8(addr+1, uint8(v>>8))
	b.Write8(addr+2, uint8(v>>16))
	b.Write8(addr+3, uint8(v>>24))
}

// SetKeyInput lets the console host drive KEYINPUT directly: there is no
// dedicated joypad subsystem, since the register is a plain passive input.
// KEYCNT is not evaluated here or by the console, so a key update never
// raises the keypad IRQ.
func (b *Bus) SetKeyInput(mask uint16) {
	b.IORegs.Set16(io.KEYINPUT, mask)
}

// FetchWord reads a word as an instruction fetch: inside BIOS it is the
// only access that updates the open-bus latch the rest of the BIOS region
// reads from while PC is elsewhere. The CPU's Step fetches through
// Read32/Read16 and does not call FetchWord, so instruction fetches do
// not update the latch.
func (b *Bus) FetchWord(addr uint32) uint32 {
	if addr <= memory.BIOSEnd {
		return b.BIOS.FetchWord(addr)
	}
	return b.Read32(addr)
}
