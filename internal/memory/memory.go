// Package memory holds the GBA's fixed memory blocks the bus maps
// directly: BIOS (read-only, 16 KiB), EWRAM (256 KiB), IWRAM (32 KiB),
// PRAM, VRAM and OAM. The BIOS/EWRAM/IWRAM region base addresses and
// sizes are defined here; the other three define their sizes in their
// own files.
package memory

const (
	BIOSStart = 0x00000000
	BIOSEnd   = 0x00003FFF
	BIOSSize  = BIOSEnd - BIOSStart + 1 // 16 KiB

	EWRAMStart = 0x02000000
	EWRAMEnd   = 0x0203FFFF
	EWRAMSize  = EWRAMEnd - EWRAMStart + 1 // 256 KiB

	IWRAMStart = 0x03000000
	IWRAMEnd   = 0x03007FFF
	IWRAMSize  = IWRAMEnd - IWRAMStart + 1 // 32 KiB
)
