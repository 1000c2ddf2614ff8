package cpu

import (
	"GoBA/internal/bits"
)

// executeThumb decodes and runs one 16-bit Thumb instruction. Thumb gates
// only on branches, with no per-instruction condition field, so every
// format here always executes once reached; format 16 (conditional
// branch) is the one exception and checks its own condition.
func (c *CPU) executeThumb(instr uint16) {
	switch {
	case instr&0xF800 == 0x1800: // 00011: add/subtract (format 2)
		c.thumbAddSub(instr)
	case instr&0xE000 == 0x0000: // 000: move shifted register (format 1)
		c.thumbMoveShifted(instr)
	case instr&0xE000 == 0x2000: // 001: move/compare/add/subtract immediate (format 3)
		c.thumbImmediateOp(instr)
	case instr&0xFC00 == 0x4000: // 010000: ALU operations (format 4)
		c.thumbALU(instr)
	case instr&0xFC00 == 0x4400: // 010001: hi register ops / BX (format 5)
		c.thumbHiRegOps(instr)
	case instr&0xF800 == 0x4800: // 01001: PC-relative load (format 6)
		c.thumbPCRelativeLoad(instr)
	case instr&0xF200 == 0x5000: // 0101..0.: load/store with register offset (format 7)
		c.thumbLoadStoreRegOffset(instr)
	case instr&0xF200 == 0x5200: // 0101..1.: load/store sign-extended (format 8)
		c.thumbLoadStoreSignExtended(instr)
	case instr&0xE000 == 0x6000: // 011: load/store with immediate offset (format 9)
		c.thumbLoadStoreImmOffset(instr)
	case instr&0xF000 == 0x8000: // 1000: load/store halfword (format 10)
		c.thumbLoadStoreHalfword(instr)
	case instr&0xF000 == 0x9000: // 1001: SP-relative load/store (format 11)
		c.thumbSPRelativeLoadStore(instr)
	case instr&0xF000 == 0xA000: // 1010: load address (format 12)
		c.thumbLoadAddress(instr)
	case instr&0xFF00 == 0xB000: // 10110000: add offset to SP (format 13)
		c.thumbAddOffsetToSP(instr)
	case instr&0xF600 == 0xB400: // 1011.10.: push/pop registers (format 14)
		c.thumbPushPop(instr)
	case instr&0xF000 == 0xC000: // 1100: multiple load/store (format 15)
		c.thumbMultipleLoadStore(instr)
	case instr&0xFF00 == 0xDF00: // 11011111: software interrupt (format 17)
		c.enterSWI()
	case instr&0xF000 == 0xD000: // 1101: conditional branch (format 16)
		c.thumbConditionalBranch(instr)
	case instr&0xF800 == 0xE000: // 11100: unconditional branch (format 18)
		c.thumbUnconditionalBranch(instr)
	case instr&0xF000 == 0xF000: // 1111: long branch with link (format 19)
		c.thumbLongBranchLink(instr)
	default:
		warnUnimplemented("thumb", uint32(instr))
	}
}

// --- Format 1: move shifted register ---

func (c *CPU) thumbMoveShifted(instr uint16) {
	op := (instr >> 11) & 0x3
	offset := uint((instr >> 6) & 0x1F)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	rsVal := c.registers.GetReg(rs)
	var result uint32
	var carryOut bool
	switch op {
	case 0: // LSL
		result, carryOut = bits.LSLShifterCarry(rsVal, offset, c.registers.GetFlagC())
	case 1: // LSR
		result, carryOut = bits.LSRShifterCarry(rsVal, offset, true)
	case 2: // ASR
		result, carryOut = bits.ASRShifterCarry(rsVal, offset, true)
	}
	c.registers.SetReg(rd, result)
	c.setLogicFlags(result, carryOut)
}

// --- Format 2: add/subtract ---

func (c *CPU) thumbAddSub(instr uint16) {
	immediate := (instr>>10)&1 != 0
	sub := (instr>>9)&1 != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	var operand uint32
	if immediate {
		operand = rnOrImm
	} else {
		operand = c.registers.GetReg(uint8(rnOrImm))
	}

	rsVal := c.registers.GetReg(rs)
	var result uint32
	var carryOut, overflow bool
	if sub {
		result, carryOut, overflow = bits.SubCarryOverflow(rsVal, operand, true)
	} else {
		result, carryOut, overflow = bits.AddCarryOverflow(rsVal, operand, false)
	}
	c.registers.SetReg(rd, result)
	c.setArithFlags(result, carryOut, overflow, rd)
}

// --- Format 3: move/compare/add/subtract immediate ---

func (c *CPU) thumbImmediateOp(instr uint16) {
	op := (instr >> 11) & 0x3
	rd := uint8((instr >> 8) & 0x7)
	imm := uint32(instr & 0xFF)

	rdVal := c.registers.GetReg(rd)
	switch op {
	case 0: // MOV
		c.registers.SetReg(rd, imm)
		c.setLogicFlags(imm, c.registers.GetFlagC())
	case 1: // CMP
		result, carryOut, overflow := bits.SubCarryOverflow(rdVal, imm, true)
		c.setArithFlags(result, carryOut, overflow, 0)
	case 2: // ADD
		result, carryOut, overflow := bits.AddCarryOverflow(rdVal, imm, false)
		c.registers.SetReg(rd, result)
		c.setArithFlags(result, carryOut, overflow, rd)
	case 3: // SUB
		result, carryOut, overflow := bits.SubCarryOverflow(rdVal, imm, true)
		c.registers.SetReg(rd, result)
		c.setArithFlags(result, carryOut, overflow, rd)
	}
}

// --- Format 4: ALU operations ---

func (c *CPU) thumbALU(instr uint16) {
	op := (instr >> 6) & 0xF
	rs := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	rdVal := c.registers.GetReg(rd)
	rsVal := c.registers.GetReg(rs)

	switch op {
	case 0x0: // AND
		result := rdVal & rsVal
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, c.registers.GetFlagC())
	case 0x1: // EOR
		result := rdVal ^ rsVal
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, c.registers.GetFlagC())
	case 0x2: // LSL
		result, carryOut := bits.LSLShifterCarry(rdVal, uint(rsVal&0xFF), c.registers.GetFlagC())
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, carryOut)
	case 0x3: // LSR
		result, carryOut := bits.LSRShifterCarry(rdVal, uint(rsVal&0xFF), false)
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, carryOut)
	case 0x4: // ASR
		result, carryOut := bits.ASRShifterCarry(rdVal, uint(rsVal&0xFF), false)
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, carryOut)
	case 0x5: // ADC
		result, carryOut, overflow := bits.AddCarryOverflow(rdVal, rsVal, c.registers.GetFlagC())
		c.registers.SetReg(rd, result)
		c.setArithFlags(result, carryOut, overflow, rd)
	case 0x6: // SBC
		result, carryOut, overflow := bits.SubCarryOverflow(rdVal, rsVal, c.registers.GetFlagC())
		c.registers.SetReg(rd, result)
		c.setArithFlags(result, carryOut, overflow, rd)
	case 0x7: // ROR
		result, carryOut := bits.RORShifterCarry(rdVal, uint(rsVal&0xFF), c.registers.GetFlagC())
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, carryOut)
	case 0x8: // TST
		c.setLogicFlags(rdVal&rsVal, c.registers.GetFlagC())
	case 0x9: // NEG
		result, carryOut, overflow := bits.SubCarryOverflow(0, rsVal, true)
		c.registers.SetReg(rd, result)
		c.setArithFlags(result, carryOut, overflow, rd)
	case 0xA: // CMP
		result, carryOut, overflow := bits.SubCarryOverflow(rdVal, rsVal, true)
		c.setArithFlags(result, carryOut, overflow, 0)
	case 0xB: // CMN
		result, carryOut, overflow := bits.AddCarryOverflow(rdVal, rsVal, false)
		c.setArithFlags(result, carryOut, overflow, 0)
	case 0xC: // ORR
		result := rdVal | rsVal
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, c.registers.GetFlagC())
	case 0xD: // MUL
		result := rdVal * rsVal
		c.registers.SetReg(rd, result)
		c.registers.SetFlagN(result&0x80000000 != 0)
		c.registers.SetFlagZ(result == 0)
	case 0xE: // BIC
		result := rdVal &^ rsVal
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, c.registers.GetFlagC())
	case 0xF: // MVN
		result := ^rsVal
		c.registers.SetReg(rd, result)
		c.setLogicFlags(result, c.registers.GetFlagC())
	}
}

// --- Format 5: hi register operations / branch exchange ---

func (c *CPU) thumbHiRegOps(instr uint16) {
	op := (instr >> 8) & 0x3
	h1 := (instr>>7)&1 != 0
	h2 := (instr>>6)&1 != 0
	rs := uint8((instr>>3)&0x7) + boolToReg(h2)*8
	rd := uint8(instr&0x7) + boolToReg(h1)*8

	rsVal := c.registers.GetReg(rs)
	switch op {
	case 0: // ADD
		c.registers.SetReg(rd, c.registers.GetReg(rd)+rsVal)
	case 1: // CMP
		result, carryOut, overflow := bits.SubCarryOverflow(c.registers.GetReg(rd), rsVal, true)
		c.setArithFlags(result, carryOut, overflow, 0)
	case 2: // MOV
		c.registers.SetReg(rd, rsVal)
	case 3: // BX/BLX
		if h1 {
			c.registers.SetReg(14, c.registers.PC|1)
		}
		c.registers.SetThumbState(rsVal&1 != 0)
		if c.registers.IsThumb() {
			c.registers.PC = rsVal &^ 1
		} else {
			c.registers.PC = rsVal &^ 3
		}
		c.FlushPipeline()
		return
	}
	if rd == 15 {
		c.registers.PC &^= 1
		c.FlushPipeline()
	}
}

func boolToReg(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// --- Format 6: PC-relative load ---

func (c *CPU) thumbPCRelativeLoad(instr uint16) {
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2
	base := (c.registers.PC + 2) &^ 3 // PC reads as instrAddr+4, word-aligned
	c.registers.SetReg(rd, c.bus.Read32(base+word))
}

// --- Format 7/8: load/store with register offset ---

func (c *CPU) thumbLoadStoreRegOffset(instr uint16) {
	l := (instr>>11)&1 != 0
	b := (instr>>10)&1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + c.registers.GetReg(ro)
	switch {
	case l && b:
		c.registers.SetReg(rd, uint32(c.bus.Read8(addr)))
	case l && !b:
		c.registers.SetReg(rd, bits.RotateReadWord(c.bus.Read32(addr), addr))
	case !l && b:
		c.bus.Write8(addr, uint8(c.registers.GetReg(rd)))
	default:
		c.bus.Write32(addr&^3, c.registers.GetReg(rd))
	}
}

func (c *CPU) thumbLoadStoreSignExtended(instr uint16) {
	h := (instr>>11)&1 != 0
	s := (instr>>10)&1 != 0
	ro := uint8((instr >> 6) & 0x7)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + c.registers.GetReg(ro)
	switch {
	case !s && !h: // STRH
		c.bus.Write16(addr&^1, uint16(c.registers.GetReg(rd)))
	case !s && h: // LDRH
		raw := c.bus.Read16(addr &^ 1)
		c.registers.SetReg(rd, uint32(raw))
	case s && !h: // LDSB
		c.registers.SetReg(rd, bits.SignExtend8(uint32(c.bus.Read8(addr))))
	default: // LDSH
		if addr&1 != 0 {
			c.registers.SetReg(rd, bits.SignExtend8(uint32(c.bus.Read8(addr))))
		} else {
			c.registers.SetReg(rd, bits.SignExtend16(uint32(c.bus.Read16(addr))))
		}
	}
}

// --- Format 9: load/store with immediate offset ---

func (c *CPU) thumbLoadStoreImmOffset(instr uint16) {
	b := (instr>>12)&1 != 0
	l := (instr>>11)&1 != 0
	offset := uint32((instr >> 6) & 0x1F)
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	if !b {
		offset <<= 2
	}
	addr := c.registers.GetReg(rb) + offset

	switch {
	case l && b:
		c.registers.SetReg(rd, uint32(c.bus.Read8(addr)))
	case l && !b:
		c.registers.SetReg(rd, bits.RotateReadWord(c.bus.Read32(addr), addr))
	case !l && b:
		c.bus.Write8(addr, uint8(c.registers.GetReg(rd)))
	default:
		c.bus.Write32(addr&^3, c.registers.GetReg(rd))
	}
}

// --- Format 10: load/store halfword ---

func (c *CPU) thumbLoadStoreHalfword(instr uint16) {
	l := (instr>>11)&1 != 0
	offset := uint32((instr>>6)&0x1F) << 1
	rb := uint8((instr >> 3) & 0x7)
	rd := uint8(instr & 0x7)

	addr := c.registers.GetReg(rb) + offset
	if l {
		c.registers.SetReg(rd, uint32(c.bus.Read16(addr&^1)))
	} else {
		c.bus.Write16(addr&^1, uint16(c.registers.GetReg(rd)))
	}
}

// --- Format 11: SP-relative load/store ---

func (c *CPU) thumbSPRelativeLoadStore(instr uint16) {
	l := (instr>>11)&1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2

	addr := c.registers.GetReg(13) + word
	if l {
		c.registers.SetReg(rd, bits.RotateReadWord(c.bus.Read32(addr), addr))
	} else {
		c.bus.Write32(addr&^3, c.registers.GetReg(rd))
	}
}

// --- Format 12: load address ---

func (c *CPU) thumbLoadAddress(instr uint16) {
	sp := (instr>>11)&1 != 0
	rd := uint8((instr >> 8) & 0x7)
	word := uint32(instr&0xFF) << 2

	if sp {
		c.registers.SetReg(rd, c.registers.GetReg(13)+word)
	} else {
		c.registers.SetReg(rd, ((c.registers.PC+2)&^3)+word)
	}
}

// --- Format 13: add offset to stack pointer ---

func (c *CPU) thumbAddOffsetToSP(instr uint16) {
	negative := (instr>>7)&1 != 0
	word := uint32(instr&0x7F) << 2
	sp := c.registers.GetReg(13)
	if negative {
		c.registers.SetReg(13, sp-word)
	} else {
		c.registers.SetReg(13, sp+word)
	}
}

// --- Format 14: push/pop registers ---

func (c *CPU) thumbPushPop(instr uint16) {
	pop := (instr>>11)&1 != 0
	pclr := (instr>>8)&1 != 0
	rlist := uint8(instr & 0xFF)

	sp := c.registers.GetReg(13)

	if rlist == 0 && !pclr {
		// Empty register list edge case: still transfers R15 and moves SP by
		// 0x40.
		if pop {
			c.registers.PC = bits.RotateReadWord(c.bus.Read32(sp), sp) &^ 1
			c.registers.SetReg(13, sp+0x40)
			c.FlushPipeline()
		} else {
			c.bus.Write32(sp-0x40, c.registers.PC)
			c.registers.SetReg(13, sp-0x40)
		}
		return
	}

	if pop {
		addr := sp
		for i := 0; i < 8; i++ {
			if (rlist>>i)&1 != 0 {
				c.registers.SetReg(uint8(i), c.bus.Read32(addr))
				addr += 4
			}
		}
		if pclr {
			v := c.bus.Read32(addr)
			c.registers.SetThumbState(v&1 != 0)
			c.registers.PC = v &^ 1
			addr += 4
			c.FlushPipeline()
		}
		c.registers.SetReg(13, addr)
	} else {
		count := 0
		for i := 0; i < 8; i++ {
			if (rlist>>i)&1 != 0 {
				count++
			}
		}
		if pclr {
			count++
		}
		addr := sp - uint32(count)*4
		c.registers.SetReg(13, addr)
		for i := 0; i < 8; i++ {
			if (rlist>>i)&1 != 0 {
				c.bus.Write32(addr, c.registers.GetReg(uint8(i)))
				addr += 4
			}
		}
		if pclr {
			c.bus.Write32(addr, c.registers.GetReg(14))
		}
	}
}

// --- Format 15: multiple load/store ---

func (c *CPU) thumbMultipleLoadStore(instr uint16) {
	l := (instr>>11)&1 != 0
	rb := uint8((instr >> 8) & 0x7)
	rlist := uint8(instr & 0xFF)

	addr := c.registers.GetReg(rb)
	if rlist == 0 {
		return
	}
	for i := 0; i < 8; i++ {
		if (rlist>>i)&1 != 0 {
			if l {
				c.registers.SetReg(uint8(i), c.bus.Read32(addr))
			} else {
				c.bus.Write32(addr, c.registers.GetReg(uint8(i)))
			}
			addr += 4
		}
	}
	if !(l && (rlist>>rb)&1 != 0) {
		c.registers.SetReg(rb, addr)
	}
}

// --- Format 16: conditional branch ---

func (c *CPU) thumbConditionalBranch(instr uint16) {
	cond := uint32((instr >> 8) & 0xF)
	if !c.checkCondition_Arm(cond) {
		return
	}
	offset := int32(int8(instr & 0xFF))
	c.registers.PC = uint32(int32(c.registers.PC+2) + offset*2)
	c.FlushPipeline()
}

// --- Format 17 is handled inline in executeThumb (SWI) ---

// --- Format 18: unconditional branch ---

func (c *CPU) thumbUnconditionalBranch(instr uint16) {
	offset := int32(instr&0x7FF) << 21 >> 20 // sign-extend 11-bit, then *2
	c.registers.PC = uint32(int32(c.registers.PC+2) + offset)
	c.FlushPipeline()
}

// --- Format 19: long branch with link ---

func (c *CPU) thumbLongBranchLink(instr uint16) {
	high := (instr>>11)&1 != 0
	offset := uint32(instr & 0x7FF)

	if !high {
		signExtended := int32(offset<<21) >> 9 // sign-extend 11 bits, shift left 12
		c.registers.SetReg(14, uint32(int32(c.registers.PC+2)+signExtended))
		return
	}

	nextInstr := c.registers.PC
	target := c.registers.GetReg(14) + (offset << 1)
	c.registers.SetReg(14, nextInstr|1)
	c.registers.PC = target
	c.FlushPipeline()
}
