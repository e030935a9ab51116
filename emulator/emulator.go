package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/mosbit/m6502/asm"
	"github.com/mosbit/m6502/bus"
	"github.com/mosbit/m6502/cpu"
	"github.com/mosbit/m6502/internal"
	"github.com/mosbit/m6502/osc"
)

const (
	MemorySize = 0x10000 // Full 16-bit address space, all RAM.
	DefaultMhz = 1.0     // NTSC-era clock rate.

	// DefaultTickLimit bounds RunUntilNop. At 1MHz this is about
	// ten seconds of simulated time.
	DefaultTickLimit = 10_000_000
)

var _emulator_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MemorySize),
}

// Emulator state. CPU + RAM on a bus, paced by an oscillator.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Bus    *bus.Bus        // Address decoding between CPU and devices.
	Memory bus.Memory      // The mapped RAM.
	Clock  *osc.Oscillator // Pacing for Run.

	TickLimit int // Tick budget for RunUntilNop; 0 means DefaultTickLimit.
}

// New creates an emulator clocked at the given rate. RAM covers the
// whole address space, so the reset and interrupt vectors are writable
// and programs may be loaded anywhere.
func New(mhz float64) (emu *Emulator, err error) {
	emu = &Emulator{
		Bus:    &bus.Bus{},
		Memory: bus.NewMemory(MemorySize),
		Clock:  osc.FromMegahertz(mhz),
	}

	err = emu.Bus.Map("ram", 0, emu.Memory)
	if err != nil {
		return nil, err
	}

	emu.Cpu = cpu.New(emu.Bus)
	emu.Clock.Connect("cpu", emu.Cpu)

	return emu, nil
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load copies data into RAM at the given address.
func (emu *Emulator) Load(addr uint16, data []byte) error {
	return emu.Memory.Load(addr, data)
}

// LoadProgram loads every segment of an assembled program. When the
// program leaves the reset vector untouched, it is pointed at the
// program's entry address so that Reset starts it.
func (emu *Emulator) LoadProgram(prog *asm.Program) error {
	for _, seg := range prog.Segments {
		if err := emu.Load(seg.Addr, seg.Code); err != nil {
			return err
		}
	}

	lo, _ := emu.Memory.Read(cpu.ResetVector)
	hi, _ := emu.Memory.Read(cpu.ResetVector + 1)
	if lo == 0 && hi == 0 {
		if entry, ok := prog.Entry(); ok {
			if err := emu.Load(cpu.ResetVector,
				[]byte{byte(entry), byte(entry >> 8)}); err != nil {
				return err
			}
		}
	}

	return nil
}

// Assemble runs the assembler over a source stream with the emulator's
// defines predefined.
func (emu *Emulator) Assemble(source io.Reader) (*asm.Program, error) {
	assembler := &asm.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		assembler.Predefine(name, value)
	}
	return assembler.Parse(source)
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.PC
	defer func() {
		if err != nil {
			err = &ErrRuntime{PC: pc, Err: err}
		}
	}()

	return emu.Cpu.Tick()
}

// Run ticks at the oscillator's pace until Stop is called or a device
// fails.
func (emu *Emulator) Run() error {
	emu.Cpu.Verbose = emu.Verbose
	return emu.Clock.Run()
}

// Stop ends a Run cooperatively.
func (emu *Emulator) Stop() {
	emu.Clock.Stop()
}

// RunUntilNop ticks as fast as possible until a NOP has been executed,
// the halt convention, or the tick budget runs out.
func (emu *Emulator) RunUntilNop() error {
	limit := emu.TickLimit
	if limit <= 0 {
		limit = DefaultTickLimit
	}

	for range limit {
		if err := emu.Tick(); err != nil {
			return err
		}
		if emu.Cpu.Halted() {
			return nil
		}
	}
	return ErrTickLimit(limit)
}
