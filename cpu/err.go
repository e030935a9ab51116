package cpu

import (
	"errors"

	"github.com/mosbit/m6502/translate"
)

var f = translate.From

var (
	ErrMidInstruction = errors.New(f("instruction in flight"))
	ErrNotRunnable    = errors.New(f("cpu has no address space"))
)

// ErrBadOpCode indicates an opcode byte with no entry in the instruction
// table. Execution cannot continue past it: the next instruction boundary
// is unknown.
type ErrBadOpCode byte

func (e ErrBadOpCode) Error() string {
	return f("bad opcode $%02X", byte(e))
}

func (e ErrBadOpCode) Is(err error) (ok bool) {
	_, ok = err.(ErrBadOpCode)
	return
}
