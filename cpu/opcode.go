package cpu

import (
	"strings"
)

// Mnemonic names one of the 56 documented 6502 instructions. The zero
// value XXX marks opcode table entries with no documented instruction;
// it is a distinct value, not an absence, so that decoding an unused
// opcode byte is a detectable error.
type Mnemonic byte

const (
	XXX Mnemonic = iota // no documented instruction

	ADC // Add with Carry
	AND // Logical AND
	ASL // Arithmetic Shift Left
	BCC // Branch if Carry Clear
	BCS // Branch if Carry Set
	BEQ // Branch if Equal
	BIT // Bit Test
	BMI // Branch if Minus
	BNE // Branch if Not Equal
	BPL // Branch if Positive
	BRK // Force Interrupt
	BVC // Branch if Overflow Clear
	BVS // Branch if Overflow Set
	CLC // Clear Carry Flag
	CLD // Clear Decimal Mode
	CLI // Clear Interrupt Disable
	CLV // Clear Overflow Flag
	CMP // Compare
	CPX // Compare X Register
	CPY // Compare Y Register
	DEC // Decrement Memory
	DEX // Decrement X Register
	DEY // Decrement Y Register
	EOR // Exclusive OR
	INC // Increment Memory
	INX // Increment X Register
	INY // Increment Y Register
	JMP // Jump
	JSR // Jump to Subroutine
	LDA // Load Accumulator
	LDX // Load X Register
	LDY // Load Y Register
	LSR // Logical Shift Right
	NOP // No Operation
	ORA // Logical Inclusive OR
	PHA // Push Accumulator
	PHP // Push Processor Status
	PLA // Pull Accumulator
	PLP // Pull Processor Status
	ROL // Rotate Left
	ROR // Rotate Right
	RTI // Return from Interrupt
	RTS // Return from Subroutine
	SBC // Subtract with Carry
	SEC // Set Carry Flag
	SED // Set Decimal Flag
	SEI // Set Interrupt Disable
	STA // Store Accumulator
	STX // Store X Register
	STY // Store Y Register
	TAX // Transfer Accumulator to X
	TAY // Transfer Accumulator to Y
	TSX // Transfer Stack Pointer to X
	TXA // Transfer X to Accumulator
	TXS // Transfer X to Stack Pointer
	TYA // Transfer Y to Accumulator
)

var mnemonicNames = [...]string{
	XXX: "???",
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS",
	BEQ: "BEQ", BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL",
	BRK: "BRK", BVC: "BVC", BVS: "BVS", CLC: "CLC", CLD: "CLD",
	CLI: "CLI", CLV: "CLV", CMP: "CMP", CPX: "CPX", CPY: "CPY",
	DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR", INC: "INC",
	INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA",
	PHA: "PHA", PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL",
	ROR: "ROR", RTI: "RTI", RTS: "RTS", SBC: "SBC", SEC: "SEC",
	SED: "SED", SEI: "SEI", STA: "STA", STX: "STX", STY: "STY",
	TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA", TXS: "TXS",
	TYA: "TYA",
}

func (m Mnemonic) String() string {
	if int(m) >= len(mnemonicNames) {
		return "???"
	}
	return mnemonicNames[m]
}

// ParseMnemonic looks up a mnemonic by its three-letter name,
// case-insensitively.
func ParseMnemonic(name string) (m Mnemonic, ok bool) {
	name = strings.ToUpper(name)
	for i, s := range mnemonicNames {
		if s == name && Mnemonic(i) != XXX {
			return Mnemonic(i), true
		}
	}
	return XXX, false
}

// AddrMode is the rule for deriving an instruction's operand location
// from the bytes following the opcode and the current register values.
type AddrMode byte

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX // Indexed Indirect: (zp,X)
	IndirectY // Indirect Indexed: (zp),Y
)

var modeNames = [...]string{
	Implied:     "implied",
	Accumulator: "accumulator",
	Immediate:   "immediate",
	ZeroPage:    "zeropage",
	ZeroPageX:   "zeropage,X",
	ZeroPageY:   "zeropage,Y",
	Relative:    "relative",
	Absolute:    "absolute",
	AbsoluteX:   "absolute,X",
	AbsoluteY:   "absolute,Y",
	Indirect:    "(indirect)",
	IndirectX:   "(indirect,X)",
	IndirectY:   "(indirect),Y",
}

func (a AddrMode) String() string {
	if int(a) >= len(modeNames) {
		return "?"
	}
	return modeNames[a]
}

// OperandBytes returns how many bytes follow the opcode.
func (a AddrMode) OperandBytes() int {
	switch a {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, Relative, IndirectX, IndirectY:
		return 1
	default:
		return 2
	}
}

// Instruction is the immutable description of one opcode: what it does,
// how its operand is addressed, and what it costs.
type Instruction struct {
	Mnemonic  Mnemonic
	Mode      AddrMode
	Cycles    int  // base cycle cost
	PageCycle bool // one extra cycle when indexing crosses a page
}

// Valid reports whether the entry describes a documented instruction.
func (in Instruction) Valid() bool {
	return in.Mnemonic != XXX
}

// Length returns the full instruction length in bytes.
func (in Instruction) Length() int {
	return 1 + in.Mode.OperandBytes()
}

func (in Instruction) String() string {
	return in.Mnemonic.String() + " " + in.Mode.String()
}

// op builds a table entry.
func op(m Mnemonic, a AddrMode, cycles int) Instruction {
	return Instruction{Mnemonic: m, Mode: a, Cycles: cycles}
}

// opx builds a table entry that pays a page-crossing penalty.
func opx(m Mnemonic, a AddrMode, cycles int) Instruction {
	return Instruction{Mnemonic: m, Mode: a, Cycles: cycles, PageCycle: true}
}

// opcodes is the static instruction table, indexed by opcode byte.
// Undocumented opcodes stay at the zero value and decode to ErrBadOpCode.
var opcodes = [256]Instruction{
	0x00: op(BRK, Implied, 7),
	0x01: op(ORA, IndirectX, 6),
	0x05: op(ORA, ZeroPage, 3),
	0x06: op(ASL, ZeroPage, 5),
	0x08: op(PHP, Implied, 3),
	0x09: op(ORA, Immediate, 2),
	0x0A: op(ASL, Accumulator, 2),
	0x0D: op(ORA, Absolute, 4),
	0x0E: op(ASL, Absolute, 6),
	0x10: op(BPL, Relative, 2),
	0x11: opx(ORA, IndirectY, 5),
	0x15: op(ORA, ZeroPageX, 4),
	0x16: op(ASL, ZeroPageX, 6),
	0x18: op(CLC, Implied, 2),
	0x19: opx(ORA, AbsoluteY, 4),
	0x1D: opx(ORA, AbsoluteX, 4),
	0x1E: op(ASL, AbsoluteX, 7),
	0x20: op(JSR, Absolute, 6),
	0x21: op(AND, IndirectX, 6),
	0x24: op(BIT, ZeroPage, 3),
	0x25: op(AND, ZeroPage, 3),
	0x26: op(ROL, ZeroPage, 5),
	0x28: op(PLP, Implied, 4),
	0x29: op(AND, Immediate, 2),
	0x2A: op(ROL, Accumulator, 2),
	0x2C: op(BIT, Absolute, 4),
	0x2D: op(AND, Absolute, 4),
	0x2E: op(ROL, Absolute, 6),
	0x30: op(BMI, Relative, 2),
	0x31: opx(AND, IndirectY, 5),
	0x35: op(AND, ZeroPageX, 4),
	0x36: op(ROL, ZeroPageX, 6),
	0x38: op(SEC, Implied, 2),
	0x39: opx(AND, AbsoluteY, 4),
	0x3D: opx(AND, AbsoluteX, 4),
	0x3E: op(ROL, AbsoluteX, 7),
	0x40: op(RTI, Implied, 6),
	0x41: op(EOR, IndirectX, 6),
	0x45: op(EOR, ZeroPage, 3),
	0x46: op(LSR, ZeroPage, 5),
	0x48: op(PHA, Implied, 3),
	0x49: op(EOR, Immediate, 2),
	0x4A: op(LSR, Accumulator, 2),
	0x4C: op(JMP, Absolute, 3),
	0x4D: op(EOR, Absolute, 4),
	0x4E: op(LSR, Absolute, 6),
	0x50: op(BVC, Relative, 2),
	0x51: opx(EOR, IndirectY, 5),
	0x55: op(EOR, ZeroPageX, 4),
	0x56: op(LSR, ZeroPageX, 6),
	0x58: op(CLI, Implied, 2),
	0x59: opx(EOR, AbsoluteY, 4),
	0x5D: opx(EOR, AbsoluteX, 4),
	0x5E: op(LSR, AbsoluteX, 7),
	0x60: op(RTS, Implied, 6),
	0x61: op(ADC, IndirectX, 6),
	0x65: op(ADC, ZeroPage, 3),
	0x66: op(ROR, ZeroPage, 5),
	0x68: op(PLA, Implied, 4),
	0x69: op(ADC, Immediate, 2),
	0x6A: op(ROR, Accumulator, 2),
	0x6C: op(JMP, Indirect, 5),
	0x6D: op(ADC, Absolute, 4),
	0x6E: op(ROR, Absolute, 6),
	0x70: op(BVS, Relative, 2),
	0x71: opx(ADC, IndirectY, 5),
	0x75: op(ADC, ZeroPageX, 4),
	0x76: op(ROR, ZeroPageX, 6),
	0x78: op(SEI, Implied, 2),
	0x79: opx(ADC, AbsoluteY, 4),
	0x7D: opx(ADC, AbsoluteX, 4),
	0x7E: op(ROR, AbsoluteX, 7),
	0x81: op(STA, IndirectX, 6),
	0x84: op(STY, ZeroPage, 3),
	0x85: op(STA, ZeroPage, 3),
	0x86: op(STX, ZeroPage, 3),
	0x88: op(DEY, Implied, 2),
	0x8A: op(TXA, Implied, 2),
	0x8C: op(STY, Absolute, 4),
	0x8D: op(STA, Absolute, 4),
	0x8E: op(STX, Absolute, 4),
	0x90: op(BCC, Relative, 2),
	0x91: op(STA, IndirectY, 6),
	0x94: op(STY, ZeroPageX, 4),
	0x95: op(STA, ZeroPageX, 4),
	0x96: op(STX, ZeroPageY, 4),
	0x98: op(TYA, Implied, 2),
	0x99: op(STA, AbsoluteY, 5),
	0x9A: op(TXS, Implied, 2),
	0x9D: op(STA, AbsoluteX, 5),
	0xA0: op(LDY, Immediate, 2),
	0xA1: op(LDA, IndirectX, 6),
	0xA2: op(LDX, Immediate, 2),
	0xA4: op(LDY, ZeroPage, 3),
	0xA5: op(LDA, ZeroPage, 3),
	0xA6: op(LDX, ZeroPage, 3),
	0xA8: op(TAY, Implied, 2),
	0xA9: op(LDA, Immediate, 2),
	0xAA: op(TAX, Implied, 2),
	0xAC: op(LDY, Absolute, 4),
	0xAD: op(LDA, Absolute, 4),
	0xAE: op(LDX, Absolute, 4),
	0xB0: op(BCS, Relative, 2),
	0xB1: opx(LDA, IndirectY, 5),
	0xB4: op(LDY, ZeroPageX, 4),
	0xB5: op(LDA, ZeroPageX, 4),
	0xB6: op(LDX, ZeroPageY, 4),
	0xB8: op(CLV, Implied, 2),
	0xB9: opx(LDA, AbsoluteY, 4),
	0xBA: op(TSX, Implied, 2),
	0xBC: opx(LDY, AbsoluteX, 4),
	0xBD: opx(LDA, AbsoluteX, 4),
	0xBE: opx(LDX, AbsoluteY, 4),
	0xC0: op(CPY, Immediate, 2),
	0xC1: op(CMP, IndirectX, 6),
	0xC4: op(CPY, ZeroPage, 3),
	0xC5: op(CMP, ZeroPage, 3),
	0xC6: op(DEC, ZeroPage, 5),
	0xC8: op(INY, Implied, 2),
	0xC9: op(CMP, Immediate, 2),
	0xCA: op(DEX, Implied, 2),
	0xCC: op(CPY, Absolute, 4),
	0xCD: op(CMP, Absolute, 4),
	0xCE: op(DEC, Absolute, 6),
	0xD0: op(BNE, Relative, 2),
	0xD1: opx(CMP, IndirectY, 5),
	0xD5: op(CMP, ZeroPageX, 4),
	0xD6: op(DEC, ZeroPageX, 6),
	0xD8: op(CLD, Implied, 2),
	0xD9: opx(CMP, AbsoluteY, 4),
	0xDD: opx(CMP, AbsoluteX, 4),
	0xDE: op(DEC, AbsoluteX, 7),
	0xE0: op(CPX, Immediate, 2),
	0xE1: op(SBC, IndirectX, 6),
	0xE4: op(CPX, ZeroPage, 3),
	0xE5: op(SBC, ZeroPage, 3),
	0xE6: op(INC, ZeroPage, 5),
	0xE8: op(INX, Implied, 2),
	0xE9: op(SBC, Immediate, 2),
	0xEA: op(NOP, Implied, 2),
	0xEC: op(CPX, Absolute, 4),
	0xED: op(SBC, Absolute, 4),
	0xEE: op(INC, Absolute, 6),
	0xF0: op(BEQ, Relative, 2),
	0xF1: opx(SBC, IndirectY, 5),
	0xF5: op(SBC, ZeroPageX, 4),
	0xF6: op(INC, ZeroPageX, 6),
	0xF8: op(SED, Implied, 2),
	0xF9: opx(SBC, AbsoluteY, 4),
	0xFD: opx(SBC, AbsoluteX, 4),
	0xFE: op(INC, AbsoluteX, 7),
}

// Lookup returns the instruction table entry for an opcode byte.
func Lookup(opcode byte) Instruction {
	return opcodes[opcode]
}

// Encode finds the opcode byte for a (mnemonic, addressing mode) pair.
// Used by the assembler; decode never needs it.
func Encode(m Mnemonic, a AddrMode) (opcode byte, ok bool) {
	for i := range opcodes {
		if opcodes[i].Mnemonic == m && opcodes[i].Mode == a {
			return byte(i), true
		}
	}
	return 0, false
}

// IsBranch reports whether the mnemonic is a conditional branch.
func (m Mnemonic) IsBranch() bool {
	switch m {
	case BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS:
		return true
	}
	return false
}
