package memory

// EWRAM is the GBA's 256 KiB external work RAM.
type EWRAM struct {
	data [EWRAMSize]byte
}

func NewEWRAM() *EWRAM { return &EWRAM{} }

// Bytes exposes the backing array, which the bus indexes directly with the
// region mask.
func (e *EWRAM) Bytes() []byte { return e.data[:] }
