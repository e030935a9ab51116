// Package emulator assembles the machine: 64KiB of RAM on a bus, the
// CPU, and an oscillator pacing it. It is the surface the command line
// tool and most tests talk to.
package emulator
