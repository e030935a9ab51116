package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/mosbit/m6502/bus"
)

// Vector and stack locations fixed by the hardware.
const (
	NmiVector   = uint16(0xFFFA) // non-maskable interrupt
	ResetVector = uint16(0xFFFC)
	IrqVector   = uint16(0xFFFE) // maskable interrupt and BRK

	StackPage = uint16(0x0100)
	SpReset   = byte(0xFD) // documented power-on stack pointer

	// Reset and interrupt sequences take seven cycles.
	interruptCycles = 7
)

// Status byte bit positions. Pushed and pulled status bytes must
// round-trip through RTI bit-for-bit, so these are fixed.
const (
	FlagC = byte(1 << 0) // Carry
	FlagZ = byte(1 << 1) // Zero
	FlagI = byte(1 << 2) // Interrupt Disable
	FlagD = byte(1 << 3) // Decimal (inert, no BCD arithmetic)
	FlagB = byte(1 << 4) // Break
	FlagU = byte(1 << 5) // Unused, reads as set
	FlagV = byte(1 << 6) // Overflow
	FlagN = byte(1 << 7) // Negative
)

var _cpu_defines = map[string]string{
	"NMI_VECTOR":   fmt.Sprintf("$%04X", NmiVector),
	"RESET_VECTOR": fmt.Sprintf("$%04X", ResetVector),
	"IRQ_VECTOR":   fmt.Sprintf("$%04X", IrqVector),
	"STACK_PAGE":   fmt.Sprintf("$%04X", StackPage),
}

// ExecMode selects how much work one clock tick performs.
type ExecMode int

const (
	// Fast executes one full instruction per tick; the cycle cost is
	// recorded but not independently timed.
	Fast ExecMode = iota
	// Original executes one CPU cycle per tick; a multi-cycle
	// instruction commits its effects on its final cycle.
	Original
)

// inflight is a partially executed instruction in Original mode:
// everything is resolved, nothing has been committed.
type inflight struct {
	what      string
	remaining int
	commit    func() error
}

// Cpu is the decode/execute engine. It owns its registers and flags and
// reaches memory only through the attached address space.
type Cpu struct {
	Verbose bool     // Set to enable verbose logging.
	Mode    ExecMode // Fast or Original (cycle-accurate) stepping.

	addr bus.Addressable

	PC uint16 // Program Counter
	SP byte   // Stack Pointer, indexes page one
	A  byte   // Accumulator
	X  byte   // Index Register X
	Y  byte   // Index Register Y

	C bool // Carry Flag
	Z bool // Zero Flag
	I bool // Interrupt Disable
	D bool // Decimal Mode (maintained, never applied)
	B bool // Break Command
	V bool // Overflow Flag
	N bool // Negative Flag

	// Cycles counts every CPU cycle since power-on, in both modes.
	Cycles uint64

	resetPending bool
	interrupts   []uint16 // queued interrupt vectors, front first
	pending      *inflight
	lastOp       Mnemonic
}

// New creates a CPU attached to an address space. The first tick
// performs the reset sequence.
func New(addr bus.Addressable) *Cpu {
	return &Cpu{
		addr:         addr,
		resetPending: true,
	}
}

// Defines exposes the hardware constants to external tooling such as
// the assembler's predefined equates.
func (c *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current register and flag state on one line.
func (c *Cpu) String() string {
	return fmt.Sprintf("PC=$%04X SP=$%02X A=$%02X X=$%02X Y=$%02X P=%s",
		c.PC, c.SP, c.A, c.X, c.Y, c.flagString())
}

func (c *Cpu) flagString() string {
	bits := []bool{c.N, c.V, true, c.B, c.D, c.I, c.Z, c.C}
	out := []byte("NV-BDIZC")
	for i, set := range bits {
		if !set {
			out[i] = '.'
		}
	}
	return string(out)
}

// Status packs the flags into the documented status byte layout.
// The pushed B bit distinguishes BRK/PHP (set) from hardware
// interrupts (clear).
func (c *Cpu) Status(brk bool) byte {
	var p = FlagU
	if c.C {
		p |= FlagC
	}
	if c.Z {
		p |= FlagZ
	}
	if c.I {
		p |= FlagI
	}
	if c.D {
		p |= FlagD
	}
	if brk {
		p |= FlagB
	}
	if c.V {
		p |= FlagV
	}
	if c.N {
		p |= FlagN
	}
	return p
}

// SetStatus unpacks a status byte into the flags.
func (c *Cpu) SetStatus(p byte) {
	c.C = p&FlagC != 0
	c.Z = p&FlagZ != 0
	c.I = p&FlagI != 0
	c.D = p&FlagD != 0
	c.B = p&FlagB != 0
	c.V = p&FlagV != 0
	c.N = p&FlagN != 0
}

func (c *Cpu) read(addr uint16) (byte, error) {
	return c.addr.Read(addr)
}

func (c *Cpu) write(addr uint16, value byte) error {
	return c.addr.Write(addr, value)
}

// readWord reads a little-endian word.
func (c *Cpu) readWord(addr uint16) (uint16, error) {
	lo, err := c.read(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.read(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// fetch reads the byte under PC and advances it.
func (c *Cpu) fetch() (byte, error) {
	value, err := c.read(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC++
	return value, nil
}

func (c *Cpu) fetchWord() (uint16, error) {
	lo, err := c.fetch()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetch()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// push writes to the stack page and decrements SP. SP wraps within its
// byte; the page never changes, as on the original hardware.
func (c *Cpu) push(value byte) error {
	if err := c.write(StackPage|uint16(c.SP), value); err != nil {
		return err
	}
	c.SP--
	return nil
}

// pull increments SP and reads from the stack page.
func (c *Cpu) pull() (byte, error) {
	c.SP++
	return c.read(StackPage | uint16(c.SP))
}

func (c *Cpu) pushWord(value uint16) error {
	if err := c.push(byte(value >> 8)); err != nil {
		return err
	}
	return c.push(byte(value))
}

func (c *Cpu) pullWord() (uint16, error) {
	lo, err := c.pull()
	if err != nil {
		return 0, err
	}
	hi, err := c.pull()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Reset requests the reset sequence. It runs on the next instruction
// boundary, never mid-instruction. Memory is not touched.
func (c *Cpu) Reset() {
	c.resetPending = true
}

// Irq requests a maskable interrupt. The request is discarded when the
// interrupt disable flag is set.
func (c *Cpu) Irq() {
	if !c.I {
		c.interrupts = append(c.interrupts, IrqVector)
	}
}

// Nmi requests a non-maskable interrupt. It is never masked and jumps
// ahead of any queued maskable interrupts.
func (c *Cpu) Nmi() {
	if len(c.interrupts) > 0 && c.interrupts[0] == NmiVector {
		return
	}
	c.interrupts = append([]uint16{NmiVector}, c.interrupts...)
}

// doReset performs the reset sequence: registers cleared, I set,
// SP at its power-on value, PC loaded from the reset vector.
func (c *Cpu) doReset() error {
	if c.Verbose {
		log.Printf("cpu: reset")
	}

	pc, err := c.readWord(ResetVector)
	if err != nil {
		return err
	}

	c.PC = pc
	c.SP = SpReset
	c.A = 0
	c.X = 0
	c.Y = 0

	c.C = false
	c.Z = false
	c.I = true
	c.D = false
	c.B = true
	c.V = false
	c.N = false

	c.resetPending = false
	c.interrupts = c.interrupts[:0]
	c.lastOp = XXX
	return nil
}

// service runs the interrupt sequence for a vector: PC and status are
// pushed (B clear, as for any hardware interrupt), I is set, and PC is
// loaded from the vector.
func (c *Cpu) service(vector uint16) error {
	if c.Verbose {
		log.Printf("cpu: interrupt via $%04X", vector)
	}
	if err := c.pushWord(c.PC); err != nil {
		return err
	}
	if err := c.push(c.Status(false)); err != nil {
		return err
	}
	c.I = true
	pc, err := c.readWord(vector)
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

// Tick advances the CPU by one unit of work: a full instruction in Fast
// mode, a single cycle in Original mode. Reset and interrupt requests
// are sampled only at instruction boundaries.
func (c *Cpu) Tick() error {
	if c.addr == nil {
		return ErrNotRunnable
	}

	// Mid-instruction in Original mode: burn a cycle, commit on the
	// last one.
	if c.pending != nil {
		c.pending.remaining--
		c.Cycles++
		if c.pending.remaining > 0 {
			return nil
		}
		fl := c.pending
		c.pending = nil
		return fl.commit()
	}

	if c.resetPending {
		return c.begin(interruptCycles, "reset", c.doReset)
	}
	if len(c.interrupts) > 0 {
		vector := c.interrupts[0]
		c.interrupts = c.interrupts[1:]
		return c.begin(interruptCycles, "interrupt", func() error {
			return c.service(vector)
		})
	}

	return c.step()
}

// begin starts a unit of work costing the given number of cycles. In
// Fast mode it commits immediately; in Original mode the current tick
// is the first cycle and the commit is held until the last one.
func (c *Cpu) begin(cost int, what string, commit func() error) error {
	if c.Mode == Fast {
		c.Cycles += uint64(cost)
		return commit()
	}
	c.Cycles++
	if cost <= 1 {
		return commit()
	}
	c.pending = &inflight{
		what:      what,
		remaining: cost - 1,
		commit:    commit,
	}
	return nil
}

// step decodes the instruction under PC and begins its execution. All
// operand resolution happens up front on a scratch PC: until the commit
// runs, no architectural state has changed.
func (c *Cpu) step() error {
	startPC := c.PC

	opcode, err := c.fetch()
	if err != nil {
		c.PC = startPC
		return err
	}

	in := Lookup(opcode)
	if !in.Valid() {
		c.PC = startPC
		return ErrBadOpCode(opcode)
	}

	opr, err := c.resolve(in)
	if err != nil {
		c.PC = startPC
		return err
	}

	if c.Verbose {
		log.Printf("cpu: $%04X %v", startPC, in)
	}

	nextPC := c.PC
	c.PC = startPC

	return c.begin(c.cycleCost(in, opr), in.String(), func() error {
		c.PC = nextPC
		c.lastOp = in.Mnemonic
		return c.execute(in, opr)
	})
}

// cycleCost is the exact cycle count for one execution of the
// instruction: base cost, page-crossing penalty where the mode charges
// one, and branch penalties. Branch outcome can be decided at decode
// time because flags cannot change before the commit.
func (c *Cpu) cycleCost(in Instruction, opr operand) int {
	cost := in.Cycles
	if in.PageCycle && opr.pageCross {
		cost++
	}
	if in.Mnemonic.IsBranch() && c.branchTaken(in.Mnemonic) {
		cost++
		if opr.pageCross {
			cost++
		}
	}
	return cost
}

// Halted reports whether the most recently completed instruction was a
// NOP, the halt convention used by the run helpers.
func (c *Cpu) Halted() bool {
	return c.lastOp == NOP && c.pending == nil
}

// TickUntilNop ticks until a NOP has been executed. The NOP itself is
// executed. Used by harnesses as a halt convention.
func (c *Cpu) TickUntilNop() error {
	for c.lastOp != NOP {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// TickFor ticks exactly count times.
func (c *Cpu) TickFor(count int) error {
	for range count {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}
