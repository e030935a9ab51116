package cpu

// setZN sets the zero and negative flags from a result byte.
func (c *Cpu) setZN(value byte) {
	c.Z = value == 0
	c.N = value&0x80 != 0
}

// adc adds the operand and carry into the accumulator. Carry is the
// unsigned overflow of the nine-bit sum; overflow is set when two
// same-signed operands produce a result of the opposite sign. Always
// binary: the D flag has no effect.
func (c *Cpu) adc(value byte) {
	var carry uint16
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(value) + carry
	result := byte(sum)
	c.C = sum > 0xFF
	c.V = (c.A^value)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.A = result
	c.setZN(result)
}

// compare computes reg-value without storing it.
func (c *Cpu) compare(reg, value byte) {
	c.C = reg >= value
	c.setZN(reg - value)
}

// branchTaken evaluates a branch condition against the current flags.
func (c *Cpu) branchTaken(m Mnemonic) bool {
	switch m {
	case BCC:
		return !c.C
	case BCS:
		return c.C
	case BNE:
		return !c.Z
	case BEQ:
		return c.Z
	case BPL:
		return !c.N
	case BMI:
		return c.N
	case BVC:
		return !c.V
	case BVS:
		return c.V
	}
	return false
}

// execute applies one instruction's effect to registers, flags and
// memory. PC already points past the instruction; for branches and
// jumps the operand address is the resolved target.
func (c *Cpu) execute(in Instruction, opr operand) error {
	switch in.Mnemonic {

	// Loads and stores
	case LDA:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.A = value
		c.setZN(c.A)
	case LDX:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.X = value
		c.setZN(c.X)
	case LDY:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.Y = value
		c.setZN(c.Y)
	case STA:
		return c.write(opr.addr, c.A)
	case STX:
		return c.write(opr.addr, c.X)
	case STY:
		return c.write(opr.addr, c.Y)

	// Register transfers
	case TAX:
		c.X = c.A
		c.setZN(c.X)
	case TAY:
		c.Y = c.A
		c.setZN(c.Y)
	case TXA:
		c.A = c.X
		c.setZN(c.A)
	case TYA:
		c.A = c.Y
		c.setZN(c.A)
	case TSX:
		c.X = c.SP
		c.setZN(c.X)
	case TXS:
		// no flags
		c.SP = c.X

	// Stack
	case PHA:
		return c.push(c.A)
	case PHP:
		return c.push(c.Status(true))
	case PLA:
		value, err := c.pull()
		if err != nil {
			return err
		}
		c.A = value
		c.setZN(c.A)
	case PLP:
		value, err := c.pull()
		if err != nil {
			return err
		}
		c.SetStatus(value)

	// Arithmetic
	case ADC:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.adc(value)
	case SBC:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		// subtraction is addition of the one's complement; the
		// borrow rides on the inverted carry
		c.adc(^value)
	case CMP:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.compare(c.A, value)
	case CPX:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.compare(c.X, value)
	case CPY:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.compare(c.Y, value)

	// Logical
	case AND:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.A &= value
		c.setZN(c.A)
	case ORA:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.A |= value
		c.setZN(c.A)
	case EOR:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.A ^= value
		c.setZN(c.A)
	case BIT:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.Z = c.A&value == 0
		c.V = value&0x40 != 0
		c.N = value&0x80 != 0

	// Shifts and rotates
	case ASL:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.C = value&0x80 != 0
		result := value << 1
		c.setZN(result)
		return c.store(opr, result)
	case LSR:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		c.C = value&0x01 != 0
		result := value >> 1
		c.setZN(result)
		return c.store(opr, result)
	case ROL:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		result := value << 1
		if c.C {
			result |= 0x01
		}
		c.C = value&0x80 != 0
		c.setZN(result)
		return c.store(opr, result)
	case ROR:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		result := value >> 1
		if c.C {
			result |= 0x80
		}
		c.C = value&0x01 != 0
		c.setZN(result)
		return c.store(opr, result)

	// Increments and decrements
	case INC:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		value++
		c.setZN(value)
		return c.store(opr, value)
	case DEC:
		value, err := c.load(opr)
		if err != nil {
			return err
		}
		value--
		c.setZN(value)
		return c.store(opr, value)
	case INX:
		c.X++
		c.setZN(c.X)
	case INY:
		c.Y++
		c.setZN(c.Y)
	case DEX:
		c.X--
		c.setZN(c.X)
	case DEY:
		c.Y--
		c.setZN(c.Y)

	// Jumps and subroutines
	case JMP:
		c.PC = opr.addr
	case JSR:
		if err := c.pushWord(c.PC - 1); err != nil {
			return err
		}
		c.PC = opr.addr
	case RTS:
		addr, err := c.pullWord()
		if err != nil {
			return err
		}
		c.PC = addr + 1

	// Branches
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS:
		if c.branchTaken(in.Mnemonic) {
			c.PC = opr.addr
		}

	// Interrupts
	case BRK:
		if err := c.pushWord(c.PC); err != nil {
			return err
		}
		if err := c.push(c.Status(true)); err != nil {
			return err
		}
		c.I = true
		pc, err := c.readWord(IrqVector)
		if err != nil {
			return err
		}
		c.PC = pc
	case RTI:
		status, err := c.pull()
		if err != nil {
			return err
		}
		c.SetStatus(status)
		pc, err := c.pullWord()
		if err != nil {
			return err
		}
		c.PC = pc

	// Flag changes
	case CLC:
		c.C = false
	case SEC:
		c.C = true
	case CLI:
		c.I = false
	case SEI:
		c.I = true
	case CLV:
		c.V = false
	case CLD:
		// decimal mode is tracked but never applied
		c.D = false
	case SED:
		c.D = true

	case NOP:
		// nothing

	default:
		panic("unknown mnemonic")
	}

	return nil
}
