package memory

// PRAMSize is the GBA's 1 KiB palette RAM.
const PRAMSize = 1024

type PRAM struct {
	data [PRAMSize]byte
}

func NewPRAM() *PRAM { return &PRAM{} }

func (p *PRAM) Bytes() []byte { return p.data[:] }
