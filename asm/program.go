package asm

import (
	"iter"
)

// Segment is a contiguous block of machine code located at an absolute
// address.
type Segment struct {
	Addr uint16
	Code []byte
}

// Program is the assembler output: located segments in source order.
type Program struct {
	Segments []Segment
}

// Entry returns the load address of the first segment, the conventional
// entry point when the source does not set a reset vector itself.
func (p *Program) Entry() (addr uint16, ok bool) {
	if len(p.Segments) == 0 {
		return 0, false
	}
	return p.Segments[0].Addr, true
}

// Codes iterates over every emitted byte as (address, value) pairs.
func (p *Program) Codes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, seg := range p.Segments {
			for i, value := range seg.Code {
				if !yield(seg.Addr+uint16(i), value) {
					return
				}
			}
		}
	}
}

// Size returns the total number of emitted bytes.
func (p *Program) Size() (n int) {
	for _, seg := range p.Segments {
		n += len(seg.Code)
	}
	return
}
