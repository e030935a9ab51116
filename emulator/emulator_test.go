package emulator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosbit/m6502/cpu"
)

// runSource assembles and runs a program to its terminating NOP.
func runSource(t *testing.T, source string) *Emulator {
	t.Helper()

	emu, err := New(DefaultMhz)
	if err != nil {
		t.Fatal(err)
	}

	prog, err := emu.Assemble(strings.NewReader(source))
	if err != nil {
		t.Fatal(err)
	}
	if err := emu.LoadProgram(prog); err != nil {
		t.Fatal(err)
	}
	if err := emu.RunUntilNop(); err != nil {
		t.Fatal(err)
	}
	return emu
}

func TestEmulator_AddAndStore(t *testing.T) {
	assert := assert.New(t)

	emu := runSource(t, `
	.org $0200
start:	LDA #$01
	ADC #$02
	STA $0402
	NOP
`)

	value, err := emu.Bus.Read(0x0402)
	assert.NoError(err)
	assert.Equal(byte(0x03), value)
	assert.Equal(byte(0x03), emu.Cpu.A)
}

func TestEmulator_CountdownLoop(t *testing.T) {
	assert := assert.New(t)

	emu := runSource(t, `
	.org $0200
start:	LDX #$05
	LDA #$00
loop:	CLC
	ADC #$02
	DEX
	BNE loop
	STA result
	NOP

result:	.byte 0
`)

	assert.Equal(byte(0x0A), emu.Cpu.A)
	assert.Equal(byte(0x00), emu.Cpu.X)
	assert.True(emu.Cpu.Z)
}

func TestEmulator_Subroutine(t *testing.T) {
	assert := assert.New(t)

	emu := runSource(t, `
	.org $0200
start:	LDA #$21
	JSR double
	STA $0300
	NOP

double:	ASL A
	RTS
`)

	value, err := emu.Bus.Read(0x0300)
	assert.NoError(err)
	assert.Equal(byte(0x42), value)
}

func TestEmulator_ResetVector_FromSource(t *testing.T) {
	assert := assert.New(t)

	// The program sets its own reset vector; LoadProgram must not
	// replace it.
	emu := runSource(t, `
	.org $0200
	LDA #$FF	; never reached
	NOP
entry:	LDA #$01
	NOP

	.org RESET_VECTOR
	.word entry
`)

	assert.Equal(byte(0x01), emu.Cpu.A)
}

func TestEmulator_ResetVector_Defaulted(t *testing.T) {
	assert := assert.New(t)

	// No vector in the program: it defaults to the entry address.
	emu := runSource(t, `
	.org $0280
	LDX #$11
	NOP
`)

	assert.Equal(byte(0x11), emu.Cpu.X)

	lo, err := emu.Bus.Read(cpu.ResetVector)
	assert.NoError(err)
	assert.Equal(byte(0x80), lo)
}

func TestEmulator_OriginalMode(t *testing.T) {
	assert := assert.New(t)

	emu, err := New(DefaultMhz)
	assert.NoError(err)
	emu.Cpu.Mode = cpu.Original

	prog, err := emu.Assemble(strings.NewReader(`
	.org $0200
	LDA #$01
	ADC #$02
	STA $0402
	NOP
`))
	assert.NoError(err)
	assert.NoError(emu.LoadProgram(prog))
	assert.NoError(emu.RunUntilNop())

	value, err := emu.Bus.Read(0x0402)
	assert.NoError(err)
	assert.Equal(byte(0x03), value)
	// reset(7) + LDA(2) + ADC(2) + STA abs(4) + NOP(2), one per tick
	assert.Equal(uint64(17), emu.Cpu.Cycles)
}

func TestEmulator_TickLimit(t *testing.T) {
	assert := assert.New(t)

	emu, err := New(DefaultMhz)
	assert.NoError(err)
	emu.TickLimit = 100

	prog, err := emu.Assemble(strings.NewReader(`
	.org $0200
spin:	JMP spin
`))
	assert.NoError(err)
	assert.NoError(emu.LoadProgram(prog))

	err = emu.RunUntilNop()
	assert.ErrorIs(err, ErrTickLimit(0))
}

func TestEmulator_Tick_ErrorLocation(t *testing.T) {
	assert := assert.New(t)

	emu, err := New(DefaultMhz)
	assert.NoError(err)

	// Jump into a sea of zero: $00 is BRK, and the zeroed IRQ
	// vector points at more BRKs until the stack has cycled; use an
	// undocumented opcode instead to fail immediately.
	assert.NoError(emu.Load(0x0200, []byte{0x02}))
	assert.NoError(emu.Load(cpu.ResetVector, []byte{0x00, 0x02}))

	err = emu.RunUntilNop()
	assert.ErrorIs(err, cpu.ErrBadOpCode(0))

	var located *ErrRuntime
	assert.ErrorAs(err, &located)
	assert.Equal(uint16(0x0200), located.PC)
}

func TestEmulator_Interrupts(t *testing.T) {
	assert := assert.New(t)

	emu, err := New(DefaultMhz)
	assert.NoError(err)

	prog, err := emu.Assemble(strings.NewReader(`
	.org $0200
start:	CLI
	LDA #$01
	NOP

	.org $0300
handler: LDX #$99
	RTI

	.org IRQ_VECTOR
	.word handler
`))
	assert.NoError(err)
	assert.NoError(emu.LoadProgram(prog))

	assert.NoError(emu.Tick()) // reset
	assert.NoError(emu.Tick()) // CLI

	emu.Cpu.Irq()
	assert.NoError(emu.RunUntilNop())

	assert.Equal(byte(0x99), emu.Cpu.X)
	assert.Equal(byte(0x01), emu.Cpu.A)
}

func TestEmulator_Snapshot(t *testing.T) {
	assert := assert.New(t)

	emu := runSource(t, `
	.org $0200
	LDA #$80
	NOP
`)

	snap, err := emu.Cpu.Snapshot()
	assert.NoError(err)
	assert.Equal(byte(0x80), snap.A)
	assert.True(snap.N)
	assert.Equal(MemorySize, len(snap.Dump))
	assert.Equal(byte(0xA9), snap.Dump[0x0200])
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu, err := New(DefaultMhz)
	assert.NoError(err)

	defines := map[string]string{}
	for name, value := range emu.Defines() {
		defines[name] = value
	}
	assert.Equal("$FFFC", defines["RESET_VECTOR"])
	assert.Equal("65536", defines["MEMORY_SIZE"])
}
