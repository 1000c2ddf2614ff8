package memory

// IWRAM is the GBA's 32 KiB on-chip work RAM.
type IWRAM struct {
	data [IWRAMSize]byte
}

func NewIWRAM() *IWRAM { return &IWRAM{} }

// Bytes exposes the backing array, which the bus indexes directly with the
// region mask.
func (i *IWRAM) Bytes() []byte { return i.data[:] }
