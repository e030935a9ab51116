package bus

import (
	"errors"

	"github.com/mosbit/m6502/translate"
)

var f = translate.From

var (
	// Device errors
	ErrReadOnly  = errors.New(f("write to read-only device"))
	ErrEmptyData = errors.New(f("device has no backing data"))
)

// ErrUnmapped indicates an access to an address no mapping contains.
type ErrUnmapped uint16

func (e ErrUnmapped) Error() string {
	return f("no device mapped at $%04X", uint16(e))
}

func (e ErrUnmapped) Is(err error) (ok bool) {
	_, ok = err.(ErrUnmapped)
	return
}

// ErrOutOfBounds indicates a device access outside its backing size.
type ErrOutOfBounds uint16

func (e ErrOutOfBounds) Error() string {
	return f("address $%04X outside device bounds", uint16(e))
}

func (e ErrOutOfBounds) Is(err error) (ok bool) {
	_, ok = err.(ErrOutOfBounds)
	return
}

// ErrOverlap indicates a mapping that would overlap an existing one.
type ErrOverlap struct {
	Name  string // Name of the rejected mapping.
	Other string // Name of the mapping already occupying the range.
}

func (e *ErrOverlap) Error() string {
	return f("mapping %q overlaps %q", e.Name, e.Other)
}

func (e *ErrOverlap) Is(err error) (ok bool) {
	_, ok = err.(*ErrOverlap)
	return
}
