package bus

// Rom is a read-only device, typically holding a program image or the
// interrupt vectors. Writes fail rather than being dropped.
type Rom struct {
	Data []byte
}

var _ Device = (*Rom)(nil)

func (r *Rom) Read(addr uint16) (byte, error) {
	if int(addr) >= len(r.Data) {
		return 0, ErrOutOfBounds(addr)
	}
	return r.Data[addr], nil
}

func (r *Rom) Write(addr uint16, value byte) error {
	if int(addr) >= len(r.Data) {
		return ErrOutOfBounds(addr)
	}
	return ErrReadOnly
}

func (r *Rom) Size() int {
	return len(r.Data)
}
