package backup

// SRAMSize is the GBA's standard battery-backed SRAM size.
const SRAMSize = 32 * 1024

// SRAM is a direct 32 KiB byte-addressable backup, grounded in
// original_source/src/core/backup/sram.cpp: reads are unconditional,
// writes unconditionally set dirty regardless of whether the byte
// actually changed.
type SRAM struct {
	data  [SRAMSize]byte
	dirty bool
}

func NewSRAM() *SRAM { return &SRAM{} }

func (s *SRAM) Kind() Kind { return KindSRAM }

func (s *SRAM) Read8(addr uint32) byte {
	return s.data[addr%SRAMSize]
}

func (s *SRAM) Write8(addr uint32, v byte) {
	s.data[addr%SRAMSize] = v
	markDirty(&s.dirty, "sram")
}

func (s *SRAM) ReadBit() uint16     { return 1 }
func (s *SRAM) WriteBit(uint16)     {}
func (s *SRAM) Dirty() bool         { return s.dirty }
func (s *SRAM) ClearDirty()         { s.dirty = false }

func (s *SRAM) Save() []byte {
	out := make([]byte, SRAMSize)
	copy(out, s.data[:])
	return out
}

func (s *SRAM) LoadSave(data []byte) {
	copy(s.data[:], data)
}
