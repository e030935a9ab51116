// Package bus provides the address space shared by the CPU and its devices.
//
// A Device owns a local address range starting at zero; the Bus maps each
// device into the 16-bit global address space and routes reads and writes to
// the owning device, translating global addresses to local offsets. Mapped
// ranges must never overlap; an access outside every mapping is an error,
// never a silent zero.
package bus
