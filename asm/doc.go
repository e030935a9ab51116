// Package asm implements a small single-pass 6502 assembler.
//
// It supports the documented instruction set with all addressing modes,
// labels with forward references, the directives .org, .byte, .word and
// .equ (or NAME = VALUE), character literals and compile-time $( )
// expressions evaluated with Starlark. It produces a Program of located
// code segments for the emulator to load; it performs no emulation of
// its own.
package asm
