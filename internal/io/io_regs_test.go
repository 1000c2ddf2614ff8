package io

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGet16ForcesHalfwordAlignment(t *testing.T) {
	r := NewRegisters()
	r.Set16(DISPCNT, 0xBEEF)

	require.Equal(t, uint16(0xBEEF), r.Get16(DISPCNT+1), "odd offset rounds down to the containing halfword")
}

func TestGet32ForcesWordAlignment(t *testing.T) {
	r := NewRegisters()
	r.Set32(0x100, 0xDEADBEEF)

	require.Equal(t, uint32(0xDEADBEEF), r.Get32(0x103))
}

func TestOffsetWrapsAtBufferSize(t *testing.T) {
	r := NewRegisters()
	r.Set8(0x400, 0x7)

	require.Equal(t, byte(0x7), r.Get8(0))
}

func TestSizeReportsBufferLength(t *testing.T) {
	r := NewRegisters()
	require.Equal(t, uint32(0x400), r.Size())
}
