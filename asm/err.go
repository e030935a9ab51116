package asm

import (
	"errors"

	"github.com/mosbit/m6502/translate"
)

var f = translate.From

var (
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOperandSyntax   = errors.New(f("operand syntax"))
	ErrOperandRange    = errors.New(f("operand out of range"))
	ErrBranchRange     = errors.New(f("branch target out of range"))
	ErrModeInvalid     = errors.New(f("addressing mode not valid for instruction"))
	ErrOrgSyntax       = errors.New(f(".org syntax"))
	ErrOrgBackwards    = errors.New(f(".org behind emitted code"))
	ErrValueMissing    = errors.New(f("value missing"))
	ErrEquateLoop      = errors.New(f("equate expansion loop"))
)

// ErrMnemonicInvalid names an unknown instruction mnemonic.
type ErrMnemonicInvalid string

func (e ErrMnemonicInvalid) Error() string {
	return f("unknown mnemonic %q", string(e))
}

func (e ErrMnemonicInvalid) Is(err error) (ok bool) {
	_, ok = err.(ErrMnemonicInvalid)
	return
}

// ErrLabelMissing names a label that was referenced but never defined.
type ErrLabelMissing string

func (e ErrLabelMissing) Error() string {
	return f("label %v missing", string(e))
}

func (e ErrLabelMissing) Is(err error) (ok bool) {
	_, ok = err.(ErrLabelMissing)
	return
}

// ErrParseNumber marks a word that should have been a number.
type ErrParseNumber string

func (e ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(e))
}

func (e ErrParseNumber) Is(err error) (ok bool) {
	_, ok = err.(ErrParseNumber)
	return
}

// ErrParseExpression marks a failed $( ) evaluation.
type ErrParseExpression string

func (e ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(e))
}

// ErrSyntax locates an assembly error on its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (e *ErrSyntax) Error() string {
	return f("line %d '%v' %v", e.LineNo, e.Line, e.Err)
}

func (e *ErrSyntax) Unwrap() error {
	return e.Err
}
