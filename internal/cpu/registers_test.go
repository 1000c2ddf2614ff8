package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSPAndLRAreBankedPerMode(t *testing.T) {
	r := NewRegisters()

	r.SetMode(USRMode)
	r.SetReg(13, 0x1000)
	r.SetReg(14, 0x1004)

	r.SetMode(SVCMode)
	r.SetReg(13, 0x2000)
	r.SetReg(14, 0x2004)

	r.SetMode(IRQMode)
	r.SetReg(13, 0x3000)
	r.SetReg(14, 0x3004)

	r.SetMode(USRMode)
	require.Equal(t, uint32(0x1000), r.GetReg(13))
	require.Equal(t, uint32(0x1004), r.GetReg(14))

	r.SetMode(SVCMode)
	require.Equal(t, uint32(0x2000), r.GetReg(13))
	require.Equal(t, uint32(0x2004), r.GetReg(14))

	r.SetMode(IRQMode)
	require.Equal(t, uint32(0x3000), r.GetReg(13))
	require.Equal(t, uint32(0x3004), r.GetReg(14))
}

func TestFIQBanksR8ThroughR12(t *testing.T) {
	r := NewRegisters()

	r.SetMode(USRMode)
	r.SetReg(8, 0xAA)
	r.SetReg(12, 0xBB)

	r.SetMode(FIQMode)
	require.Equal(t, uint32(0), r.GetReg(8), "FIQ mode has its own banked R8")
	r.SetReg(8, 0xCC)
	r.SetReg(12, 0xDD)

	r.SetMode(USRMode)
	require.Equal(t, uint32(0xAA), r.GetReg(8))
	require.Equal(t, uint32(0xBB), r.GetReg(12))

	r.SetMode(FIQMode)
	require.Equal(t, uint32(0xCC), r.GetReg(8))
	require.Equal(t, uint32(0xDD), r.GetReg(12))
}

func TestSystemModeSharesUserBank(t *testing.T) {
	r := NewRegisters()

	r.SetMode(USRMode)
	r.SetReg(13, 0x5000)

	r.SetMode(SYSMode)
	require.Equal(t, uint32(0x5000), r.GetReg(13), "SYS shares R13_usr")
}

func TestSetModeNoOpWhenModeUnchanged(t *testing.T) {
	r := NewRegisters()
	r.SetMode(SVCMode)
	r.SetReg(13, 0x42)

	r.SetMode(SVCMode) // same mode, must not reset anything

	require.Equal(t, uint32(0x42), r.GetReg(13))
}

func TestFlagSettersRoundTripIndependently(t *testing.T) {
	r := NewRegisters()

	r.SetFlagN(true)
	r.SetFlagZ(true)
	r.SetFlagC(true)
	r.SetFlagV(true)
	require.True(t, r.GetFlagN())
	require.True(t, r.GetFlagZ())
	require.True(t, r.GetFlagC())
	require.True(t, r.GetFlagV())

	r.SetFlagZ(false)
	require.True(t, r.GetFlagN(), "clearing Z must not disturb N")
	require.False(t, r.GetFlagZ())
	require.True(t, r.GetFlagC())
	require.True(t, r.GetFlagV())
}

func TestSPSRIsPerModeAndAbsentInUserMode(t *testing.T) {
	r := NewRegisters()

	r.SetMode(SVCMode)
	r.SetSPSR(0x12345678)
	require.Equal(t, uint32(0x12345678), r.GetSPSR())

	r.SetMode(IRQMode)
	require.Equal(t, uint32(0), r.GetSPSR(), "IRQ mode has its own SPSR")

	r.SetMode(USRMode)
	r.SetSPSR(0xDEADBEEF) // no-op: SPSR_usr does not exist
	require.Equal(t, uint32(0), r.GetSPSR())
}

func TestThumbStateToggles(t *testing.T) {
	r := NewRegisters()
	require.False(t, r.IsThumb())

	r.SetThumbState(true)
	require.True(t, r.IsThumb())

	r.SetThumbState(false)
	require.False(t, r.IsThumb())
}

func TestPC15IsNotBankedAcrossModes(t *testing.T) {
	r := NewRegisters()
	r.SetMode(USRMode)
	r.SetReg(15, 0x08000100)

	r.SetMode(FIQMode)
	// In ARM state R15 reads 4 past the (already advanced) PC.
	require.Equal(t, uint32(0x08000104), r.GetReg(15))
}
