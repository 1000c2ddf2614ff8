package memory

// VRAMSize is the GBA's 96 KiB video RAM. Real hardware leaves
// a mirror quirk in the upper 32 KiB of the 128 KiB-aligned window the
// bus masks against; the bus package applies that quirk on the raw
// address before indexing here.
const VRAMSize = 96 * 1024

type VRAM struct {
	data [VRAMSize]byte
}

func NewVRAM() *VRAM { return &VRAM{} }

func (v *VRAM) Bytes() []byte { return v.data[:] }
