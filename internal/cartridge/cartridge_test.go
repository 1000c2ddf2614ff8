package cartridge

import (
	"testing"

	"GoBA/internal/backup"

	"github.com/stretchr/testify/require"
)

func makeROM(idString string, size int) []byte {
	rom := make([]byte, size)
	copy(rom[size/2:], idString)
	return rom
}

func TestDetectsEEPROM(t *testing.T) {
	c := New(makeROM("EEPROM_V120", 0x1000))
	require.Equal(t, backup.KindEEPROM, c.Backup.Kind())
}

func TestDetectsFlash1M(t *testing.T) {
	c := New(makeROM("FLASH1M_V102", 0x1000))
	require.Equal(t, backup.KindFlash128, c.Backup.Kind())
}

func TestDetectsSRAM(t *testing.T) {
	c := New(makeROM("SRAM_V113", 0x1000))
	require.Equal(t, backup.KindSRAM, c.Backup.Kind())
}

func TestNoIDStringMeansNoBackup(t *testing.T) {
	c := New(make([]byte, 0x1000))
	require.Equal(t, backup.None, c.Backup.Kind())
}

func TestReadByteMirrorsSmallROM(t *testing.T) {
	c := New(makeROM("x", 0x100))
	require.Equal(t, c.ROM[5], c.ReadByte(uint32(0x100+5)))
}
