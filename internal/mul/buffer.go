package mul

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("mul: negative offset")

// Buffer is an in-memory io.ReadWriteSeeker. Writes past the end grow the
// buffer, so a Reader and a Writer can share a pair of Buffers.
type Buffer struct {
	buf []byte
	pos int64
}

// NewBuffer returns a Buffer holding a copy of b.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: append([]byte(nil), b...)}
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("mul: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	b.pos = abs
	return abs, nil
}

// Memory is a container held entirely in memory.
type Memory struct {
	Index *Buffer
	Data  *Buffer
}

// NewMemory builds an in-memory container with one record per payload,
// all sharing the given metadata fields.
func NewMemory(opt1, opt2 uint16, payloads ...[]byte) *Memory {
	m := &Memory{Index: NewBuffer(nil), Data: NewBuffer(nil)}
	w := m.Writer()
	for _, p := range payloads {
		// Buffer writes cannot fail and offsets stay far below 4 GiB.
		_ = w.Append(p, WithOpt1(opt1), WithOpt2(opt2))
	}
	return m
}

// Reader returns a Reader over the container.
func (m *Memory) Reader() *Reader { return NewReader(m.Index, m.Data) }

// Writer returns a Writer appending to the container.
func (m *Memory) Writer() *Writer { return NewWriter(m.Index, m.Data) }
