package bus

import (
	"iter"
)

// Addressable is anything the CPU can read and write through 16-bit
// addresses. Both the Bus (global address space) and a bare device
// (local address space) satisfy it.
type Addressable interface {
	Read(addr uint16) (byte, error)
	Write(addr uint16, value byte) error
}

// Snapshottable is implemented by address spaces that can dump their
// contents for inspection.
type Snapshottable interface {
	Snapshot() []byte
}

// Device is an addressable peripheral with a fixed backing size.
// Addresses handed to a device are local: the bus subtracts the
// mapping start before delegating.
type Device interface {
	Addressable

	// Size returns the number of addressable bytes.
	Size() int
}

type mapping struct {
	name   string
	start  uint16
	length int
	device Device
}

// contains reports whether the global address falls inside the mapping.
func (m *mapping) contains(addr uint16) bool {
	return addr >= m.start && int(addr-m.start) < m.length
}

// overlaps reports whether two half-open extents share any address.
func (m *mapping) overlaps(start uint16, length int) bool {
	return int(m.start)+m.length > int(start) && int(start)+length > int(m.start)
}

// Bus routes reads and writes to the device whose mapping contains the
// address. It owns its devices; nothing else should access them while
// the bus is in use.
type Bus struct {
	devices []mapping
}

// Map registers a device for the half-open range [start, start+Size()).
// It fails if the range overlaps an existing mapping or runs past the
// top of the address space.
func (b *Bus) Map(name string, start uint16, device Device) error {
	length := device.Size()
	if length == 0 {
		return ErrEmptyData
	}
	if int(start)+length > 0x10000 {
		return ErrOutOfBounds(start)
	}
	for i := range b.devices {
		if b.devices[i].overlaps(start, length) {
			return &ErrOverlap{Name: name, Other: b.devices[i].name}
		}
	}
	b.devices = append(b.devices, mapping{
		name:   name,
		start:  start,
		length: length,
		device: device,
	})
	return nil
}

// Read returns the byte at a global address.
func (b *Bus) Read(addr uint16) (byte, error) {
	for i := range b.devices {
		if b.devices[i].contains(addr) {
			return b.devices[i].device.Read(addr - b.devices[i].start)
		}
	}
	return 0, ErrUnmapped(addr)
}

// Write stores a byte at a global address.
func (b *Bus) Write(addr uint16, value byte) error {
	for i := range b.devices {
		if b.devices[i].contains(addr) {
			return b.devices[i].device.Write(addr-b.devices[i].start, value)
		}
	}
	return ErrUnmapped(addr)
}

// Devices iterates over the registered mappings as (name, start) pairs
// in registration order.
func (b *Bus) Devices() iter.Seq2[string, uint16] {
	return func(yield func(name string, start uint16) bool) {
		for i := range b.devices {
			if !yield(b.devices[i].name, b.devices[i].start) {
				return
			}
		}
	}
}

// Snapshot dumps the mapped address space from zero up to the end of
// the highest mapping. Unmapped holes read as zero.
func (b *Bus) Snapshot() []byte {
	var end int
	for i := range b.devices {
		if top := int(b.devices[i].start) + b.devices[i].length; top > end {
			end = top
		}
	}
	dump := make([]byte, end)
	for i := range b.devices {
		m := &b.devices[i]
		for off := 0; off < m.length; off++ {
			value, err := m.device.Read(uint16(off))
			if err != nil {
				continue
			}
			dump[int(m.start)+off] = value
		}
	}
	return dump
}
