package bus

// Memory is a byte-addressable RAM of caller-specified size.
type Memory []byte

var _ Device = Memory(nil)

// NewMemory creates a zeroed RAM of the given size.
func NewMemory(size int) Memory {
	return make(Memory, size)
}

func (m Memory) Read(addr uint16) (byte, error) {
	if int(addr) >= len(m) {
		return 0, ErrOutOfBounds(addr)
	}
	return m[addr], nil
}

func (m Memory) Write(addr uint16, value byte) error {
	if int(addr) >= len(m) {
		return ErrOutOfBounds(addr)
	}
	m[addr] = value
	return nil
}

func (m Memory) Size() int {
	return len(m)
}

// Load copies a program image into memory at the given local offset.
// Loading happens before the clock starts; a running CPU only touches
// memory through the bus.
func (m Memory) Load(offset uint16, data []byte) error {
	if int(offset)+len(data) > len(m) {
		return ErrOutOfBounds(offset)
	}
	copy(m[offset:], data)
	return nil
}

// Snapshot returns an independent copy of the memory contents.
func (m Memory) Snapshot() []byte {
	dump := make([]byte, len(m))
	copy(dump, m)
	return dump
}
