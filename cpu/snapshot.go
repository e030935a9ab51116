package cpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mosbit/m6502/bus"
)

// Snapshot is an immutable point-in-time copy of the register and flag
// state, plus a dump of the address space when it can provide one. It
// is for inspection only; mutating it has no effect on the CPU.
type Snapshot struct {
	Dump []byte // contents of the mapped address space, may be nil

	PC uint16
	SP byte
	A  byte
	X  byte
	Y  byte

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool
}

// Snapshot copies the CPU state. It is only legal at an instruction
// boundary: mid-instruction, registers do not yet reflect the
// instruction in flight.
func (c *Cpu) Snapshot() (Snapshot, error) {
	if c.pending != nil {
		return Snapshot{}, errors.Join(ErrMidInstruction,
			fmt.Errorf("%s", c.pending.what))
	}

	snap := Snapshot{
		PC: c.PC,
		SP: c.SP,
		A:  c.A,
		X:  c.X,
		Y:  c.Y,
		C:  c.C,
		Z:  c.Z,
		I:  c.I,
		D:  c.D,
		B:  c.B,
		V:  c.V,
		N:  c.N,
	}
	if s, ok := c.addr.(bus.Snapshottable); ok {
		snap.Dump = s.Snapshot()
	}
	return snap, nil
}

func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "PC\tSP\tA\tX\tY\tCZIDBVN")
	fmt.Fprintf(&b, "$%04X\t$%02X\t$%02X\t$%02X\t$%02X\t%d%d%d%d%d%d%d",
		s.PC, s.SP, s.A, s.X, s.Y,
		b2i(s.C), b2i(s.Z), b2i(s.I), b2i(s.D), b2i(s.B), b2i(s.V), b2i(s.N))
	return b.String()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
