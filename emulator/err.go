package emulator

import (
	"github.com/mosbit/m6502/translate"
)

var f = translate.From

// ErrRuntime locates a runtime error at the program counter where it
// happened.
type ErrRuntime struct {
	PC  uint16
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("at $%04X %v", err.PC, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrTickLimit reports a run that did not halt within its tick budget.
type ErrTickLimit int

func (e ErrTickLimit) Error() string {
	return f("no halt after %v ticks", int(e))
}

func (e ErrTickLimit) Is(err error) (ok bool) {
	_, ok = err.(ErrTickLimit)
	return
}
