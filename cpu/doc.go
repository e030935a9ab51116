// Package cpu implements the MOS 6502 microprocessor at the instruction level.
//
// The processor owns an accumulator, two index registers, a stack pointer
// confined to page one, a 16-bit program counter, and seven status flags.
// Instructions are decoded through a static 256-entry opcode table; operand
// addresses are resolved per addressing mode through the attached address
// space, which is usually a bus.Bus but can be a bare bus.Memory in tests.
//
// Two execution modes are supported. In Fast mode every clock tick executes
// one whole instruction. In Original mode one tick is one CPU cycle, and a
// multi-cycle instruction holds its effects until its final cycle commits.
//
// Decimal (BCD) arithmetic is not supported: SED and CLD maintain the D flag
// but ADC and SBC always operate in binary.
package cpu
