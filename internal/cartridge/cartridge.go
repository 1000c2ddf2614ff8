// Package cartridge owns the ROM image and detects/constructs the backup
// storage a given ROM expects: EEPROM, Flash (64 KiB or 128 KiB), SRAM, or
// none, picked by scanning the ROM for its save-type ID string. Region
// dispatch (0xD=EEPROM, 0xE=SRAM/Flash, per original_source/src/core/
// mem.cpp's rmap_16/wmap_16 table) lives in internal/bus; this package
// only decides which Backup to build.
package cartridge

import (
	"strings"

	"GoBA/internal/backup"
	"GoBA/internal/logx"
)

// ROMBase is where cartridge ROM is mapped, region 0x08-0x0D, mirrored
// across wait-state regions 0/1/2.
const ROMBase = 0x08000000

// idStrings are the save-type ID strings real GBA ROMs embed verbatim
// somewhere in the cartridge image. Real hardware has no save-type
// register, so the detection this package does is the same plain
// substring scan every GBA loader performs at load time.
var idStrings = []struct {
	needle string
	kind   backup.Kind
}{
	{"EEPROM_V", backup.KindEEPROM},
	{"FLASH1M_V", backup.KindFlash128},
	{"FLASH512_V", backup.KindFlash64},
	{"FLASH_V", backup.KindFlash64},
	{"SRAM_V", backup.KindSRAM},
}

// Cartridge holds the loaded ROM image and its detected backup storage.
type Cartridge struct {
	ROM    []byte
	Backup backup.Backup
}

// New loads romData and detects the backup kind by scanning for the
// GBA's standard save-type ID string. A ROM with no recognized string gets
// an inert None backup, matching real hardware behavior for homebrew/test
// ROMs that never touch cartridge save space.
func New(romData []byte) *Cartridge {
	kind := detectKind(romData)
	c := &Cartridge{ROM: romData, Backup: newBackup(kind)}
	logx.Log.WithField("backup", kindName(kind)).Info("cartridge loaded")
	return c
}

func detectKind(rom []byte) backup.Kind {
	s := string(rom)
	for _, id := range idStrings {
		if strings.Contains(s, id.needle) {
			return id.kind
		}
	}
	return backup.None
}

func newBackup(kind backup.Kind) backup.Backup {
	switch kind {
	case backup.KindSRAM:
		return backup.NewSRAM()
	case backup.KindFlash64:
		return backup.NewFlash64()
	case backup.KindFlash128:
		return backup.NewFlash128()
	case backup.KindEEPROM:
		return backup.NewEEPROM()
	default:
		return backup.NoneBackup()
	}
}

func kindName(kind backup.Kind) string {
	switch kind {
	case backup.KindSRAM:
		return "sram"
	case backup.KindFlash64:
		return "flash64"
	case backup.KindFlash128:
		return "flash128"
	case backup.KindEEPROM:
		return "eeprom"
	default:
		return "none"
	}
}

// ReadByte reads a ROM byte, mirroring across the 32 MiB window when the
// ROM is smaller than its mapped window.
func (c *Cartridge) ReadByte(addr uint32) byte {
	if len(c.ROM) == 0 {
		return 0xFF
	}
	return c.ROM[int(addr)%len(c.ROM)]
}

// GetSave returns a snapshot of the cartridge's backup storage, or nil if
// the cartridge has none.
func (c *Cartridge) GetSave() []byte { return c.Backup.Save() }

// LoadSave restores a prior backup snapshot.
func (c *Cartridge) LoadSave(data []byte) { c.Backup.LoadSave(data) }
