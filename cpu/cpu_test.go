package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosbit/m6502/bus"
)

var loadBase = uint16(0x0200)

// testCpu builds a CPU over 64KiB of RAM with the program loaded at
// loadBase and the reset vector pointing at it. The reset sequence has
// not run yet; the first Tick performs it.
func testCpu(t *testing.T, program ...byte) (*Cpu, bus.Memory) {
	t.Helper()

	mem := bus.NewMemory(0x10000)
	if err := mem.Load(loadBase, program); err != nil {
		t.Fatal(err)
	}
	if err := mem.Load(ResetVector, []byte{byte(loadBase), byte(loadBase >> 8)}); err != nil {
		t.Fatal(err)
	}
	return New(mem), mem
}

// runCpu additionally runs the reset sequence and the whole program,
// which must end with a NOP.
func runCpu(t *testing.T, program ...byte) (*Cpu, bus.Memory) {
	t.Helper()

	c, mem := testCpu(t, program...)
	if err := c.TickUntilNop(); err != nil {
		t.Fatal(err)
	}
	return c, mem
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA)
	assert.NoError(c.Tick())

	assert.Equal(loadBase, c.PC)
	assert.Equal(SpReset, c.SP)
	assert.Equal(byte(0), c.A)
	assert.Equal(byte(0), c.X)
	assert.Equal(byte(0), c.Y)
	assert.True(c.I)
	assert.False(c.D)
	assert.Equal(uint64(7), c.Cycles)
}

func TestCpu_Reset_Requested(t *testing.T) {
	assert := assert.New(t)

	// LDA #$55, NOP
	c, _ := runCpu(t, 0xA9, 0x55, 0xEA)
	assert.Equal(byte(0x55), c.A)

	c.Reset()
	assert.NoError(c.Tick())
	assert.Equal(loadBase, c.PC)
	assert.Equal(byte(0), c.A)
}

func TestCpu_Status_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA)
	c.C = true
	c.Z = true
	c.V = true
	c.N = true

	// The unused bit reads as set either way.
	assert.Equal(FlagU|FlagC|FlagZ|FlagV|FlagN, c.Status(false))
	assert.Equal(FlagU|FlagB|FlagC|FlagZ|FlagV|FlagN, c.Status(true))

	d := &Cpu{}
	d.SetStatus(c.Status(false))
	assert.Equal(c.Status(false), d.Status(false))

	d.SetStatus(0xFF)
	assert.True(d.C && d.Z && d.I && d.D && d.B && d.V && d.N)
	d.SetStatus(0x00)
	assert.False(d.C || d.Z || d.I || d.D || d.B || d.V || d.N)
}

func TestCpu_Stack_Wrap(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(t, 0xEA)
	assert.NoError(c.Tick())

	// Push at SP=$00 writes $0100 and wraps the pointer to $FF.
	c.SP = 0x00
	assert.NoError(c.push(0xAB))
	assert.Equal(byte(0xFF), c.SP)

	value, err := mem.Read(StackPage)
	assert.NoError(err)
	assert.Equal(byte(0xAB), value)

	value, err = c.pull()
	assert.NoError(err)
	assert.Equal(byte(0xAB), value)
	assert.Equal(byte(0x00), c.SP)
}

func TestCpu_Irq_Masked(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA)
	assert.NoError(c.Tick())

	// Reset leaves I set; the request is discarded outright.
	c.Irq()
	assert.Empty(c.interrupts)

	c.I = false
	c.Irq()
	assert.Equal([]uint16{IrqVector}, c.interrupts)
}

func TestCpu_Irq_Service(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(t, 0xEA)
	assert.NoError(mem.Load(IrqVector, []byte{0x00, 0x03}))
	assert.NoError(c.Tick())

	c.I = false
	c.C = true
	c.Irq()

	sp := c.SP
	cycles := c.Cycles
	assert.NoError(c.Tick())

	assert.Equal(uint16(0x0300), c.PC)
	assert.True(c.I)
	assert.Equal(cycles+7, c.Cycles)

	// Status was pushed with B clear, after the return address.
	status, err := mem.Read(StackPage | uint16(sp-2))
	assert.NoError(err)
	assert.Equal(byte(0), status&FlagB)
	assert.NotEqual(byte(0), status&FlagC)

	lo, _ := mem.Read(StackPage | uint16(sp-1))
	hi, _ := mem.Read(StackPage | uint16(sp))
	assert.Equal(loadBase, uint16(hi)<<8|uint16(lo))
}

func TestCpu_Nmi_Unmasked(t *testing.T) {
	assert := assert.New(t)

	c, mem := testCpu(t, 0xEA)
	assert.NoError(mem.Load(NmiVector, []byte{0x00, 0x04}))
	assert.NoError(c.Tick())

	assert.True(c.I)
	c.Nmi()
	assert.NoError(c.Tick())
	assert.Equal(uint16(0x0400), c.PC)
}

func TestCpu_Nmi_JumpsQueue(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA)
	assert.NoError(c.Tick())

	c.I = false
	c.Irq()
	c.Nmi()
	c.Nmi() // coalesces with the one already at the front

	assert.Equal([]uint16{NmiVector, IrqVector}, c.interrupts)
}

func TestCpu_BadOpcode(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0x02)
	assert.NoError(c.Tick())

	err := c.Tick()
	assert.ErrorIs(err, ErrBadOpCode(0))
	// PC still points at the offending byte.
	assert.Equal(loadBase, c.PC)
}

func TestCpu_Original_HoldsState(t *testing.T) {
	assert := assert.New(t)

	// LDA #$7F (2 cycles)
	c, _ := testCpu(t, 0xA9, 0x7F)
	c.Mode = Original

	// Reset takes seven ticks; nothing visible until the last.
	for i := 0; i < 6; i++ {
		assert.NoError(c.Tick())
		assert.Equal(uint16(0), c.PC)
	}
	assert.NoError(c.Tick())
	assert.Equal(loadBase, c.PC)

	// First cycle of LDA: registers and PC untouched.
	assert.NoError(c.Tick())
	assert.Equal(loadBase, c.PC)
	assert.Equal(byte(0), c.A)
	assert.False(c.N)

	_, err := c.Snapshot()
	assert.ErrorIs(err, ErrMidInstruction)

	// Final cycle commits everything at once.
	assert.NoError(c.Tick())
	assert.Equal(loadBase+2, c.PC)
	assert.Equal(byte(0x7F), c.A)
	assert.Equal(uint64(9), c.Cycles)
}

func TestCpu_Modes_Agree(t *testing.T) {
	assert := assert.New(t)

	// LDX #$08, DEX, BNE -1, STX $10, NOP
	program := []byte{0xA2, 0x08, 0xCA, 0xD0, 0xFD, 0x86, 0x10, 0xEA}

	fast, fastMem := runCpu(t, program...)

	slow, slowMem := testCpu(t, program...)
	slow.Mode = Original
	assert.NoError(slow.TickUntilNop())

	assert.Equal(fast.PC, slow.PC)
	assert.Equal(fast.SP, slow.SP)
	assert.Equal(fast.A, slow.A)
	assert.Equal(fast.X, slow.X)
	assert.Equal(fast.Y, slow.Y)
	assert.Equal(fast.Status(false), slow.Status(false))
	assert.Equal(fast.Cycles, slow.Cycles)
	assert.Equal(fastMem.Snapshot(), slowMem.Snapshot())
}

func TestCpu_TickFor(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA, 0xEA, 0xEA)
	c.Mode = Original

	// Reset (7) plus one and a half NOPs.
	assert.NoError(c.TickFor(10))
	assert.Equal(uint64(10), c.Cycles)
	assert.Equal(loadBase+1, c.PC)
}

func TestCpu_Snapshot(t *testing.T) {
	assert := assert.New(t)

	// LDA #$80, NOP
	c, _ := runCpu(t, 0xA9, 0x80, 0xEA)

	snap, err := c.Snapshot()
	assert.NoError(err)
	assert.Equal(c.PC, snap.PC)
	assert.Equal(byte(0x80), snap.A)
	assert.True(snap.N)
	assert.False(snap.Z)

	// The dump covers the whole address space and holds the program.
	assert.Equal(0x10000, len(snap.Dump))
	assert.Equal(byte(0xA9), snap.Dump[loadBase])

	// Mutating the snapshot leaves the CPU alone.
	snap.Dump[loadBase] = 0x00
	value, err := c.read(loadBase)
	assert.NoError(err)
	assert.Equal(byte(0xA9), value)
}

func TestCpu_NotRunnable(t *testing.T) {
	assert := assert.New(t)

	c := &Cpu{}
	assert.ErrorIs(c.Tick(), ErrNotRunnable)
}

func TestCpu_Defines(t *testing.T) {
	assert := assert.New(t)

	c, _ := testCpu(t, 0xEA)
	defines := map[string]string{}
	for name, value := range c.Defines() {
		defines[name] = value
	}
	assert.Equal("$FFFC", defines["RESET_VECTOR"])
	assert.Equal("$FFFA", defines["NMI_VECTOR"])
	assert.Equal("$FFFE", defines["IRQ_VECTOR"])
	assert.Equal("$0100", defines["STACK_PAGE"])
}
