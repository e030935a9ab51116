package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcode_TableSize(t *testing.T) {
	assert := assert.New(t)

	var valid int
	for code := range 256 {
		in := Lookup(byte(code))
		if in.Valid() {
			valid++
		}
	}
	// The MOS 6502 documents exactly 151 opcodes.
	assert.Equal(151, valid)
}

func TestOpcode_TableSane(t *testing.T) {
	assert := assert.New(t)

	for code := range 256 {
		in := Lookup(byte(code))
		if !in.Valid() {
			assert.Equal(Instruction{}, in, "invalid entries stay zero")
			continue
		}
		assert.Positive(in.Cycles, "opcode $%02X has no cycle cost", code)
		assert.LessOrEqual(in.Cycles, 7, "opcode $%02X", code)
		assert.GreaterOrEqual(in.Length(), 1)
		assert.LessOrEqual(in.Length(), 3)

		if in.Mnemonic.IsBranch() {
			assert.Equal(Relative, in.Mode, "opcode $%02X", code)
		}
		if in.PageCycle {
			switch in.Mode {
			case AbsoluteX, AbsoluteY, IndirectY:
			default:
				assert.Fail("page penalty on non-indexed mode", "opcode $%02X %v", code, in)
			}
		}
	}
}

func TestOpcode_EncodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for code := range 256 {
		in := Lookup(byte(code))
		if !in.Valid() {
			continue
		}
		found, ok := Encode(in.Mnemonic, in.Mode)
		assert.True(ok, "opcode $%02X %v", code, in)
		assert.Equal(byte(code), found, "%v", in)
	}

	_, ok := Encode(LDA, Implied)
	assert.False(ok)
}

func TestOpcode_Lengths(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		mode   AddrMode
		length int
	}{
		{Implied, 1},
		{Accumulator, 1},
		{Immediate, 2},
		{ZeroPage, 2},
		{ZeroPageX, 2},
		{ZeroPageY, 2},
		{Relative, 2},
		{IndirectX, 2},
		{IndirectY, 2},
		{Absolute, 3},
		{AbsoluteX, 3},
		{AbsoluteY, 3},
		{Indirect, 3},
	}
	for _, tc := range cases {
		assert.Equal(tc.length, 1+tc.mode.OperandBytes(), "%v", tc.mode)
	}
}

func TestMnemonic_Parse(t *testing.T) {
	assert := assert.New(t)

	m, ok := ParseMnemonic("lda")
	assert.True(ok)
	assert.Equal(LDA, m)

	m, ok = ParseMnemonic("BRK")
	assert.True(ok)
	assert.Equal(BRK, m)

	_, ok = ParseMnemonic("MOV")
	assert.False(ok)
	_, ok = ParseMnemonic("???")
	assert.False(ok)
}

func TestMnemonic_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ADC", ADC.String())
	assert.Equal("???", XXX.String())
	assert.Equal("???", Mnemonic(0xFF).String())
	assert.Equal("LDA immediate", Lookup(0xA9).String())
}
