package memory

// OAMSize is the GBA's 1 KiB object attribute memory.
const OAMSize = 1024

type OAM struct {
	data [OAMSize]byte
}

func NewOAM() *OAM { return &OAM{} }

func (o *OAM) Bytes() []byte { return o.data[:] }
