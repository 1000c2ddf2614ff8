package cpu

import (
	"GoBA/internal/bits"
	"GoBA/internal/logx"
)

// execute ARM instruction based on opcode.
func (c *CPU) execute_Arm(instruction uint32) {
	cond := (instruction >> 28) & 0xF
	if !c.checkCondition_Arm(cond) {
		return // Condition not met, treat as NOP
	}

	decoded := DecodeInstruction_Arm(instruction)
	switch inst := decoded.(type) {
	case ARMDataProcessingInstruction:
		switch inst.Opcode {
		case AND:
			c.execArm_And(inst)
		case EOR:
			c.execArm_Eor(inst)
		case SUB:
			c.execArm_Sub(inst)
		case RSB:
			c.execArm_Rsb(inst)
		case ADD:
			c.execArm_Add(inst)
		case ADC:
			c.execArm_Adc(inst)
		case SBC:
			c.execArm_Sbc(inst)
		case RSC:
			c.execArm_Rsc(inst)
		case TST:
			c.execArm_Tst(inst)
		case TEQ:
			c.execArm_Teq(inst)
		case CMP:
			c.execArm_Cmp(inst)
		case CMN:
			c.execArm_Cmn(inst)
		case ORR:
			c.execArm_Orr(inst)
		case MOV:
			c.execArm_Mov(inst)
		case BIC:
			c.execArm_Bic(inst)
		case MVN:
			c.execArm_Mvn(inst)
		}

	case ARMMultiplyInstruction:
		c.execArm_Multiply(inst)

	case ARMSingleDataSwapInstruction:
		c.execArm_Swap(inst)

	case ARMBranchExchangeInstruction:
		c.execArm_BX(inst)

	case ARMPSRTransferInstruction:
		c.execArm_PSRTransfer(inst)

	case ARMHalfwordTransferInstruction:
		c.execArm_HalfwordTransfer(inst, c.registers.PC-4)

	case ARMLoadStoreInstruction:
		c.execArm_LoadStore(inst, c.registers.PC-4)

	case ARMBranchInstruction:
		c.execArm_Branch(inst, c.registers.PC-4)

	case ARMBlockDataTransferInstruction:
		c.execArm_BlockDataTransfer(inst, c.registers.PC-4)

	case ARMSWIInstruction:
		c.execArm_SWI(inst)

	case ARMControlInstruction:
		logx.Log.WithField("opcode", instruction).Warn("undefined ARM control instruction")
		c.enterUndefined()

	default:
		logx.Log.WithField("opcode", instruction).Warn("unimplemented ARM instruction")
	}
}

func (c *CPU) checkCondition_Arm(cond uint32) bool {
	n := c.registers.GetFlagN()
	z := c.registers.GetFlagZ()
	cf := c.registers.GetFlagC()
	v := c.registers.GetFlagV()

	switch ARMCondition(cond) {
	case EQ:
		return z
	case NE:
		return !z
	case CS:
		return cf
	case CC:
		return !cf
	case MI:
		return n
	case PL:
		return !n
	case VS:
		return v
	case VC:
		return !v
	case HI:
		return cf && !z
	case LS:
		return !cf || z
	case GE:
		return n == v
	case LT:
		return n != v
	case GT:
		return !z && (n == v)
	case LE:
		return z || (n != v)
	case AL:
		return true
	case NV:
		return false
	default:
		return false
	}
}

// ##################################################
// ARM Data Processing Instructions
// ##################################################

func (c *CPU) execArm_Add(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.AddCarryOverflow(rn, op2, false)
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_Adc(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.AddCarryOverflow(rn, op2, c.registers.GetFlagC())
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_Sbc(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.SubCarryOverflow(rn, op2, c.registers.GetFlagC())
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_Rsc(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.SubCarryOverflow(op2, rn, c.registers.GetFlagC())
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_Tst(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) & op2
	c.setLogicFlags(result, carryOut)
}

func (c *CPU) execArm_Teq(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) ^ op2
	c.setLogicFlags(result, carryOut)
}

func (c *CPU) execArm_Cmp(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.SubCarryOverflow(rn, op2, true)
	c.setArithFlags(result, carryOut, overflow, 0)
}

func (c *CPU) execArm_Cmn(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.AddCarryOverflow(rn, op2, false)
	c.setArithFlags(result, carryOut, overflow, 0)
}

func (c *CPU) execArm_Sub(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.SubCarryOverflow(rn, op2, true)
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_Rsb(instruction ARMDataProcessingInstruction) {
	op2, _ := c.calcOp2(instruction)
	rn := c.registers.GetReg(instruction.Rn)
	result, carryOut, overflow := bits.SubCarryOverflow(op2, rn, true)
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S {
		c.setArithFlags(result, carryOut, overflow, instruction.Rd)
	}
}

func (c *CPU) execArm_And(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) & op2
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(result, carryOut)
	}
}

func (c *CPU) execArm_Orr(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) | op2
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(result, carryOut)
	}
}

func (c *CPU) execArm_Mov(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	c.registers.SetReg(instruction.Rd, op2)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(op2, carryOut)
	}
}

func (c *CPU) execArm_Bic(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) &^ op2
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(result, carryOut)
	}
}

func (c *CPU) execArm_Mvn(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := ^op2
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(result, carryOut)
	}
}

func (c *CPU) execArm_Eor(instruction ARMDataProcessingInstruction) {
	op2, carryOut := c.calcOp2(instruction)
	result := c.registers.GetReg(instruction.Rn) ^ op2
	c.registers.SetReg(instruction.Rd, result)
	c.writePCFlags(instruction.Rd, instruction.S)
	if instruction.S && instruction.Rd != 15 {
		c.setLogicFlags(result, carryOut)
	}
}

// writePCFlags handles the "S=1, Rd=R15" special case: instead of updating
// NZCV, the SPSR of the current mode is copied back into the CPSR (this is
// how ARM user code returns from an exception via e.g. MOVS PC, LR).
func (c *CPU) writePCFlags(rd uint8, s bool) {
	if s && rd == 15 {
		c.registers.CPSR = c.registers.GetSPSR()
		c.FlushPipeline()
	}
}

func (c *CPU) setLogicFlags(result uint32, carryOut bool) {
	c.registers.SetFlagN(result&0x80000000 != 0)
	c.registers.SetFlagZ(result == 0)
	c.registers.SetFlagC(carryOut)
}

func (c *CPU) setArithFlags(result uint32, carryOut, overflow bool, rd uint8) {
	if rd == 15 {
		return
	}
	c.registers.SetFlagN(result&0x80000000 != 0)
	c.registers.SetFlagZ(result == 0)
	c.registers.SetFlagC(carryOut)
	c.registers.SetFlagV(overflow)
}

// calcOp2 computes the data-processing second operand and the shifter carry
// out per the ARM7TDMI barrel shifter rules: LSL #0 leaves carry
// unchanged, LSR/ASR #0 are encoded as shifts by 32, ROR #0 is RRX.
func (c *CPU) calcOp2(instruction ARMDataProcessingInstruction) (uint32, bool) {
	if instruction.I {
		rotate := uint(instruction.Is) * 2
		if rotate == 0 {
			// An unrotated immediate is the plain byte; carry is unchanged.
			return uint32(instruction.Nn), c.registers.GetFlagC()
		}
		return bits.RORShifterCarry(uint32(instruction.Nn), rotate, c.registers.GetFlagC())
	}

	rm := c.registers.GetReg(instruction.Rm)
	var amount uint
	immediate := !instruction.R
	if instruction.R {
		amount = uint(c.registers.GetReg(instruction.Rs) & 0xFF)
	} else {
		amount = uint(instruction.Is)
	}

	switch instruction.ShiftType {
	case LSL:
		return bits.LSLShifterCarry(rm, amount, c.registers.GetFlagC())
	case LSR:
		return bits.LSRShifterCarry(rm, amount, immediate)
	case ASR:
		return bits.ASRShifterCarry(rm, amount, immediate)
	case ROR:
		return bits.RORShifterCarry(rm, amount, c.registers.GetFlagC())
	}
	return rm, c.registers.GetFlagC()
}

// #############################
// Multiply
// #############################

func (c *CPU) execArm_Multiply(inst ARMMultiplyInstruction) {
	rm := c.registers.GetReg(inst.Rm)
	rs := c.registers.GetReg(inst.Rs)
	result := rm * rs
	if inst.A {
		result += c.registers.GetReg(inst.Rn)
	}
	c.registers.SetReg(inst.Rd, result)
	if inst.S {
		// C is unpredictable on real hardware; left unchanged here.
		c.registers.SetFlagN(result&0x80000000 != 0)
		c.registers.SetFlagZ(result == 0)
	}
}

// #############################
// Single Data Swap
// #############################

func (c *CPU) execArm_Swap(inst ARMSingleDataSwapInstruction) {
	addr := c.registers.GetReg(inst.Rn)
	if inst.B {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, uint8(c.registers.GetReg(inst.Rm)))
		c.registers.SetReg(inst.Rd, uint32(old))
	} else {
		old := bits.RotateReadWord(c.bus.Read32(addr), addr)
		c.bus.Write32(addr, c.registers.GetReg(inst.Rm))
		c.registers.SetReg(inst.Rd, old)
	}
}

// #############################
// Branch Exchange
// #############################

func (c *CPU) execArm_BX(inst ARMBranchExchangeInstruction) {
	target := c.registers.GetReg(inst.Rm)
	if inst.Link {
		c.registers.SetReg(14, c.registers.PC)
	}
	c.registers.SetThumbState(target&1 != 0)
	if c.registers.IsThumb() {
		c.registers.PC = target &^ 1
	} else {
		c.registers.PC = target &^ 3
	}
	c.FlushPipeline()
}

// #############################
// PSR Transfer
// #############################

func (c *CPU) execArm_PSRTransfer(inst ARMPSRTransferInstruction) {
	if !inst.IsMSR {
		var v uint32
		if inst.ToSPSR {
			v = c.registers.GetSPSR()
		} else {
			v = c.registers.CPSR
		}
		c.registers.SetReg(inst.Rd, v)
		return
	}

	var operand uint32
	if inst.I && inst.RotateIs == 0 {
		operand = uint32(inst.Nn)
	} else if inst.I {
		operand, _ = bits.RORShifterCarry(uint32(inst.Nn), uint(inst.RotateIs), c.registers.GetFlagC())
	} else {
		operand = c.registers.GetReg(inst.Rm)
	}

	mask := uint32(0xFFFFFFFF)
	if inst.FlagsOnly {
		mask = 0xF0000000 // only NZCV
	}

	if inst.ToSPSR {
		cur := c.registers.GetSPSR()
		c.registers.SetSPSR((cur &^ mask) | (operand & mask))
		return
	}

	cur := c.registers.CPSR
	newCPSR := (cur &^ mask) | (operand & mask)
	if newCPSR&0x1F != cur&0x1F {
		c.registers.SetMode(uint8(newCPSR & 0x1F))
	}
	c.registers.CPSR = newCPSR
}

// #############################
// Halfword/signed data transfer
// #############################

func (c *CPU) execArm_HalfwordTransfer(inst ARMHalfwordTransferInstruction, currentInstructionAddr uint32) {
	baseAddr := c.registers.GetReg(inst.Rn)
	var offset uint32
	if inst.I {
		offset = uint32(inst.Immed)
	} else {
		offset = c.registers.GetReg(inst.Rm)
	}
	if !inst.U {
		offset = ^offset + 1
	}

	addr := baseAddr
	if inst.P {
		addr = baseAddr + offset
	}

	if inst.L {
		var v uint32
		switch {
		case inst.S && inst.H: // LDRSH
			raw := c.bus.Read16(addr)
			if addr&1 != 0 {
				v = bits.SignExtend8(uint32(raw >> 8)) // misaligned: sign-extend the single byte
			} else {
				v = bits.SignExtend16(uint32(raw))
			}
		case inst.S && !inst.H: // LDRSB
			v = bits.SignExtend8(uint32(c.bus.Read8(addr)))
		default: // LDRH
			raw := c.bus.Read16(addr)
			if addr&1 != 0 {
				raw = (raw >> 8) | (raw << 8) // odd address rotates
			}
			v = uint32(raw)
		}
		c.registers.SetReg(inst.Rd, v)
	} else {
		v := c.registers.GetReg(inst.Rd)
		c.bus.Write16(addr, uint16(v))
	}

	if inst.W || !inst.P {
		final := baseAddr + offset
		if inst.P {
			final = addr
		}
		c.registers.SetReg(inst.Rn, final)
	}
}

// #############################
// Branch
// #############################

func (c *CPU) execArm_Branch(inst ARMBranchInstruction, currentInstructionAddr uint32) {
	var signedOffset int32
	if (inst.TargetAddr & 0x02000000) != 0 {
		signedOffset = int32(inst.TargetAddr | 0xFC000000)
	} else {
		signedOffset = int32(inst.TargetAddr)
	}

	targetAddress := (currentInstructionAddr + 8) + uint32(signedOffset)

	if inst.Link {
		c.registers.SetReg(14, currentInstructionAddr+4)
	}

	c.registers.PC = targetAddress
	c.FlushPipeline()
}

// #############################
// Load/Store (single)
// #############################

func (c *CPU) execArm_LoadStore(inst ARMLoadStoreInstruction, currentInstructionAddr uint32) {
	baseAddr := c.registers.GetReg(inst.Rn)
	offset := inst.Offset

	effectiveOffset := offset
	if !inst.U {
		effectiveOffset = ^offset + 1
	}

	var finalAddr uint32
	if inst.P {
		finalAddr = baseAddr + effectiveOffset
	} else {
		finalAddr = baseAddr
	}

	if inst.L {
		var loadedValue uint32
		if inst.B {
			loadedValue = uint32(c.bus.Read8(finalAddr))
		} else {
			loadedValue = bits.RotateReadWord(c.bus.Read32(finalAddr), finalAddr)
		}
		c.registers.SetReg(inst.Rd, loadedValue)

		if inst.Rd == 15 {
			c.registers.SetThumbState(loadedValue&0x1 != 0)
			if c.registers.IsThumb() {
				c.registers.PC = loadedValue &^ 1
			} else {
				c.registers.PC = loadedValue &^ 3
			}
			c.FlushPipeline()
		}
	} else {
		valueToStore := c.registers.GetReg(inst.Rd)
		if inst.B {
			c.bus.Write8(finalAddr, uint8(valueToStore))
		} else {
			c.bus.Write32(finalAddr&^3, valueToStore)
		}
	}

	if inst.W || !inst.P {
		if inst.P {
			c.registers.SetReg(inst.Rn, finalAddr)
		} else {
			c.registers.SetReg(inst.Rn, baseAddr+effectiveOffset)
		}
	}
}

// #############################
// Control
// #############################

func (c *CPU) execArm_SWI(inst ARMSWIInstruction) {
	c.enterSWI()
}

func (c *CPU) execArm_BlockDataTransfer(inst ARMBlockDataTransferInstruction, currentInstructionAddr uint32) {
	baseAddr := c.registers.GetReg(inst.Rn)
	numRegisters := 0
	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 != 0 {
			numRegisters++
		}
	}
	if numRegisters == 0 {
		return
	}

	var currentTransferAddr uint32
	var finalBaseAddr uint32

	if inst.U {
		if inst.P {
			currentTransferAddr = baseAddr + 4
		} else {
			currentTransferAddr = baseAddr
		}
		finalBaseAddr = baseAddr + uint32(numRegisters)*4
	} else {
		if inst.P {
			currentTransferAddr = baseAddr - uint32(numRegisters)*4
		} else {
			currentTransferAddr = baseAddr - uint32(numRegisters)*4 + 4
		}
		finalBaseAddr = baseAddr - uint32(numRegisters)*4
	}

	baseIsFirstInList := false
	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 != 0 {
			baseIsFirstInList = uint8(i) == inst.Rn
			break
		}
	}

	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 != 0 {
			if inst.L {
				val := c.bus.Read32(currentTransferAddr)
				if i == 15 {
					c.registers.SetReg(15, val&0xFFFFFFFC)
					c.FlushPipeline()
				} else {
					c.registers.SetReg(uint8(i), val)
				}
			} else {
				val := c.registers.GetReg(uint8(i))
				if i == 15 {
					val = currentInstructionAddr + 12
				}
				// STM with base in list: the first register written stores the
				// original base value if the base is first in the list, else the
				// already-updated base.
				if uint8(i) == inst.Rn && !baseIsFirstInList {
					val = finalBaseAddr
				}
				c.bus.Write32(currentTransferAddr, val)
			}

			if inst.U {
				currentTransferAddr += 4
			} else {
				currentTransferAddr -= 4
			}
		}
	}

	if inst.W {
		// LDM with the base register in the register list inhibits writeback.
		baseInList := (inst.RegisterList>>inst.Rn)&1 != 0
		if !(inst.L && baseInList) {
			c.registers.SetReg(inst.Rn, finalBaseAddr)
		}
	}
}
