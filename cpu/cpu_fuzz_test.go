package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosbit/m6502/bus"
)

// FuzzAdc checks the add and subtract flag arithmetic against a wide
// integer reference model across the whole input space.
func FuzzAdc(f *testing.F) {
	f.Add(uint8(0x01), uint8(0x02), false, false)
	f.Add(uint8(0xFF), uint8(0x01), false, false)
	f.Add(uint8(0x7F), uint8(0x01), false, false)
	f.Add(uint8(0x80), uint8(0xFF), true, false)
	f.Add(uint8(0x50), uint8(0x10), true, true)
	f.Add(uint8(0x00), uint8(0x00), false, true)

	f.Fuzz(func(t *testing.T, a uint8, m uint8, carry bool, subtract bool) {
		assert := assert.New(t)

		mem := bus.NewMemory(0x10000)
		c := New(mem)
		c.resetPending = false
		c.A = a
		c.C = carry

		operand := m
		if subtract {
			operand = ^m
		}
		c.adc(operand)

		var carryIn uint16
		if carry {
			carryIn = 1
		}
		sum := uint16(a) + uint16(operand) + carryIn
		want := byte(sum)

		assert.Equal(want, c.A)
		assert.Equal(sum > 0xFF, c.C, "carry")
		assert.Equal(want == 0, c.Z, "zero")
		assert.Equal(want&0x80 != 0, c.N, "negative")

		// Overflow means the signed result left the int8 range.
		signed := int16(int8(a)) + int16(int8(operand)) + int16(carryIn)
		assert.Equal(signed < -128 || signed > 127, c.V, "overflow")
	})
}

// FuzzStatus checks that any status byte survives a pack/unpack round
// trip with the unused bit forced on.
func FuzzStatus(f *testing.F) {
	f.Add(uint8(0x00))
	f.Add(uint8(0xFF))
	f.Add(uint8(0xA5))

	f.Fuzz(func(t *testing.T, p uint8) {
		assert := assert.New(t)

		c := &Cpu{}
		c.SetStatus(p)
		packed := c.Status(p&FlagB != 0)
		assert.Equal(p|FlagU, packed)
	})
}
