package cpu

// operand is the resolved location an instruction works on. For the
// Relative mode addr holds the branch target; for Implied and
// Accumulator there is no address at all.
type operand struct {
	mode      AddrMode
	addr      uint16
	pageCross bool
}

// samePage reports whether two addresses share a 256-byte page.
func samePage(a, b uint16) bool {
	return a&0xFF00 == b&0xFF00
}

// resolve computes the effective operand address for the instruction's
// addressing mode, consuming operand bytes from under PC. It reports
// whether indexing crossed a page boundary, which costs an extra cycle
// on the modes that charge one.
func (c *Cpu) resolve(in Instruction) (operand, error) {
	opr := operand{mode: in.Mode}

	switch in.Mode {
	case Implied, Accumulator:
		// no operand

	case Immediate:
		opr.addr = c.PC
		c.PC++

	case ZeroPage:
		zp, err := c.fetch()
		if err != nil {
			return opr, err
		}
		opr.addr = uint16(zp)

	case ZeroPageX:
		zp, err := c.fetch()
		if err != nil {
			return opr, err
		}
		// indexing wraps within page zero
		opr.addr = uint16(zp + c.X)

	case ZeroPageY:
		zp, err := c.fetch()
		if err != nil {
			return opr, err
		}
		opr.addr = uint16(zp + c.Y)

	case Absolute:
		base, err := c.fetchWord()
		if err != nil {
			return opr, err
		}
		opr.addr = base

	case AbsoluteX:
		base, err := c.fetchWord()
		if err != nil {
			return opr, err
		}
		opr.addr = base + uint16(c.X)
		opr.pageCross = !samePage(base, opr.addr)

	case AbsoluteY:
		base, err := c.fetchWord()
		if err != nil {
			return opr, err
		}
		opr.addr = base + uint16(c.Y)
		opr.pageCross = !samePage(base, opr.addr)

	case Indirect:
		ptr, err := c.fetchWord()
		if err != nil {
			return opr, err
		}
		lo, err := c.read(ptr)
		if err != nil {
			return opr, err
		}
		// The 6502 never carries into the pointer's high byte: a
		// pointer at $xxFF reads its high byte from $xx00.
		hi, err := c.read(ptr&0xFF00 | uint16(byte(ptr)+1))
		if err != nil {
			return opr, err
		}
		opr.addr = uint16(hi)<<8 | uint16(lo)

	case IndirectX:
		zp, err := c.fetch()
		if err != nil {
			return opr, err
		}
		ptr := zp + c.X // wraps within page zero
		lo, err := c.read(uint16(ptr))
		if err != nil {
			return opr, err
		}
		hi, err := c.read(uint16(ptr + 1))
		if err != nil {
			return opr, err
		}
		opr.addr = uint16(hi)<<8 | uint16(lo)

	case IndirectY:
		zp, err := c.fetch()
		if err != nil {
			return opr, err
		}
		lo, err := c.read(uint16(zp))
		if err != nil {
			return opr, err
		}
		hi, err := c.read(uint16(zp + 1))
		if err != nil {
			return opr, err
		}
		base := uint16(hi)<<8 | uint16(lo)
		opr.addr = base + uint16(c.Y)
		opr.pageCross = !samePage(base, opr.addr)

	case Relative:
		off, err := c.fetch()
		if err != nil {
			return opr, err
		}
		// Signed displacement from the address after the instruction.
		opr.addr = c.PC + uint16(int16(int8(off)))
		opr.pageCross = !samePage(c.PC, opr.addr)
	}

	return opr, nil
}

// load reads the operand value: the accumulator for Accumulator mode,
// a bus read otherwise.
func (c *Cpu) load(opr operand) (byte, error) {
	if opr.mode == Accumulator {
		return c.A, nil
	}
	return c.read(opr.addr)
}

// store writes the operand value back where load found it.
func (c *Cpu) store(opr operand, value byte) error {
	if opr.mode == Accumulator {
		c.A = value
		return nil
	}
	return c.write(opr.addr, value)
}
