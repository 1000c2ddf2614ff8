package cpu

// Exception entry sequences. Each banks into the target mode,
// saves LR/SPSR, disables further interrupts as required, and vectors PC
// into the (HLE, in this core) BIOS exception table.

func (c *CPU) enterSWI() {
	returnPC := c.registers.PC // already advanced past the SWI instruction
	oldCPSR := c.registers.CPSR

	c.registers.SetMode(SVCMode)
	c.registers.LR_svc = returnPC
	c.registers.SPSR_svc = oldCPSR
	c.registers.SetThumbState(false)
	c.registers.SetIRQDisabled(true)
	c.registers.PC = 0x08
	c.FlushPipeline()
}

func (c *CPU) enterIRQ() {
	// LR_irq = address of the next instruction to execute after return,
	// offset by the pipeline depth the real core would have prefetched.
	returnPC := c.registers.PC + 4
	oldCPSR := c.registers.CPSR

	c.registers.SetMode(IRQMode)
	c.registers.LR_irq = returnPC
	c.registers.SPSR_irq = oldCPSR
	c.registers.SetThumbState(false)
	c.registers.SetIRQDisabled(true)
	c.registers.PC = 0x18
	c.FlushPipeline()
}

func (c *CPU) enterUndefined() {
	returnPC := c.registers.PC
	oldCPSR := c.registers.CPSR

	c.registers.SetMode(UNDMode)
	c.registers.LR_und = returnPC
	c.registers.SPSR_und = oldCPSR
	c.registers.SetThumbState(false)
	c.registers.SetIRQDisabled(true)
	c.registers.PC = 0x04
	c.FlushPipeline()
}
