package bits

import "testing"

func TestSignExtend8(t *testing.T) {
	if got := SignExtend8(0xFF); got != 0xFFFFFFFF {
		t.Fatalf("SignExtend8(0xFF) = %#x, want 0xFFFFFFFF", got)
	}
	if got := SignExtend8(0x7F); got != 0x7F {
		t.Fatalf("SignExtend8(0x7F) = %#x, want 0x7F", got)
	}
}

func TestExtract(t *testing.T) {
	v := uint32(0xABCD1234)
	if got := Extract(v, 31, 28); got != 0xA {
		t.Fatalf("Extract(31,28) = %#x, want 0xA", got)
	}
	if got := Extract(v, 7, 4); got != 0x3 {
		t.Fatalf("Extract(7,4) = %#x, want 0x3", got)
	}
}

func TestRORShifterCarry(t *testing.T) {
	// ROR 0 is RRX: result is v>>1 with carry-in in bit 31, carry-out is old bit 0.
	res, c := RORShifterCarry(0x00000001, 0, true)
	if res != 0x80000000 || !c {
		t.Fatalf("RRX(0x1, carryIn=true) = %#x,%v want 0x80000000,true", res, c)
	}
	// ROR #8 of 0x3: carry-out is the old bit 7, which is 0.
	res, c = RORShifterCarry(0x00000003, 8, false)
	if c != false {
		t.Fatalf("ROR carry out wrong: %v", c)
	}
	_ = res
}

func TestLSLShifterCarryZero(t *testing.T) {
	// LSL 0 leaves carry unchanged.
	_, c := LSLShifterCarry(0xFFFFFFFF, 0, true)
	if !c {
		t.Fatalf("LSL 0 must preserve carryIn")
	}
	_, c = LSLShifterCarry(0xFFFFFFFF, 0, false)
	if c {
		t.Fatalf("LSL 0 must preserve carryIn")
	}
}

func TestLSRImmediateZeroIsShiftBy32(t *testing.T) {
	res, c := LSRShifterCarry(0x80000000, 0, true)
	if res != 0 || !c {
		t.Fatalf("LSR#0 (encoded shift by 32) = %#x,%v want 0,true", res, c)
	}
}

func TestASRImmediateZeroIsShiftBy32(t *testing.T) {
	res, c := ASRShifterCarry(0x80000000, 0, true)
	if res != 0xFFFFFFFF || !c {
		t.Fatalf("ASR#0 (encoded shift by 32) = %#x,%v want 0xFFFFFFFF,true", res, c)
	}
}

func TestAddCarryOverflow(t *testing.T) {
	res, c, v := AddCarryOverflow(0x7FFFFFFF, 1, false)
	if res != 0x80000000 || c || !v {
		t.Fatalf("ADD overflow case: res=%#x carry=%v overflow=%v", res, c, v)
	}
	res, c, v = AddCarryOverflow(0xFFFFFFFF, 1, false)
	if res != 0 || !c || v {
		t.Fatalf("ADD wraparound case: res=%#x carry=%v overflow=%v", res, c, v)
	}
}

func TestSubCarryOverflow(t *testing.T) {
	// SUB: carry out means "no borrow".
	res, c, v := SubCarryOverflow(5, 3, true)
	if res != 2 || !c || v {
		t.Fatalf("SUB simple case: res=%d carry=%v overflow=%v", res, c, v)
	}
	res, c, _ = SubCarryOverflow(0, 1, true)
	if res != 0xFFFFFFFF || c {
		t.Fatalf("SUB borrow case: res=%#x carry=%v", res, c)
	}
}

func TestRotateReadWord(t *testing.T) {
	// Write 0x11223344 at addr, read misaligned at addr+1.
	if got := RotateReadWord(0x11223344, 1); got != 0x44112233 {
		t.Fatalf("RotateReadWord = %#x, want 0x44112233", got)
	}
	if got := RotateReadWord(0x11223344, 0); got != 0x11223344 {
		t.Fatalf("RotateReadWord aligned must be unchanged")
	}
}
