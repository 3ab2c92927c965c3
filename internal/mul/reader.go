// Package mul implements the indexed record container shared by the client's
// asset files.
//
// An index stream holds one fixed 12-byte entry per record id:
//
//	offset:u32 | length:u32 | opt1:u16 | opt2:u16   (little-endian)
//
// offset and length address a byte range in the companion data stream.
// opt1 and opt2 are format specific; gumps store their height and width there.
package mul

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// EntrySize is the width of one index entry in bytes.
	EntrySize = 12

	undefinedOffset = 0xFEFEFEFF
	invalidOffset   = 0xFFFFFFFF
)

// Entry is one decoded index entry.
type Entry struct {
	Offset uint32
	Length uint32
	Opt1   uint16
	Opt2   uint16
}

// Absent reports whether the entry carries one of the absent-record sentinels.
func (e Entry) Absent() bool {
	return e.Offset == undefinedOffset || e.Offset == invalidOffset
}

func (e Entry) marshal() []byte {
	buf := make([]byte, EntrySize)
	binary.LittleEndian.PutUint32(buf[0:], e.Offset)
	binary.LittleEndian.PutUint32(buf[4:], e.Length)
	binary.LittleEndian.PutUint16(buf[8:], e.Opt1)
	binary.LittleEndian.PutUint16(buf[10:], e.Opt2)
	return buf
}

func unmarshalEntry(buf []byte) Entry {
	return Entry{
		Offset: binary.LittleEndian.Uint32(buf[0:]),
		Length: binary.LittleEndian.Uint32(buf[4:]),
		Opt1:   binary.LittleEndian.Uint16(buf[8:]),
		Opt2:   binary.LittleEndian.Uint16(buf[10:]),
	}
}

// Record is the raw payload of one container record.
type Record struct {
	Data   []byte
	Start  uint32
	Length uint32
	Opt1   uint16
	Opt2   uint16
}

// Reader resolves record ids against an index/data stream pair.
//
// Every Read repositions both streams with absolute seeks, so sequential use
// from several call sites is fine. A Reader must not be used from several
// goroutines at once.
type Reader struct {
	idx  io.ReadSeeker
	data io.ReadSeeker
}

// NewReader wraps already opened index and data streams.
func NewReader(idx, data io.ReadSeeker) *Reader {
	return &Reader{idx: idx, data: data}
}

// Open opens the index and data files at the given paths.
func Open(idxPath, mulPath string) (*Reader, error) {
	idx, err := os.Open(idxPath)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	data, err := os.Open(mulPath)
	if err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("open data: %w", err)
	}

	return NewReader(idx, data), nil
}

// Entry reads the raw index entry for id without touching the data stream.
func (r *Reader) Entry(id uint32) (Entry, error) {
	if _, err := r.idx.Seek(int64(id)*EntrySize, io.SeekStart); err != nil {
		return Entry{}, fmt.Errorf("record %d: seek index: %w", id, err)
	}

	buf := make([]byte, EntrySize)
	if _, err := io.ReadFull(r.idx, buf); err != nil {
		return Entry{}, fmt.Errorf("record %d: read index: %w", id, err)
	}

	return unmarshalEntry(buf), nil
}

// Read returns a copy of the bytes stored for id together with its index
// metadata. It returns an error wrapping ErrNotFound when the entry is a
// sentinel, and an I/O error when the index or data stream ends early.
func (r *Reader) Read(id uint32) (*Record, error) {
	entry, err := r.Entry(id)
	if err != nil {
		return nil, err
	}

	if entry.Absent() {
		return nil, fmt.Errorf("record %d (offset 0x%08X): %w", id, entry.Offset, ErrNotFound)
	}

	size, err := r.data.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("record %d: seek data end: %w", id, err)
	}
	if int64(entry.Offset)+int64(entry.Length) > size {
		return nil, fmt.Errorf("record %d: %d bytes at 0x%X past data end 0x%X: %w",
			id, entry.Length, entry.Offset, size, io.ErrUnexpectedEOF)
	}

	if _, err := r.data.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("record %d: seek data: %w", id, err)
	}

	data := make([]byte, entry.Length)
	if _, err := io.ReadFull(r.data, data); err != nil {
		if err == io.EOF && entry.Length > 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("record %d: read %d bytes at 0x%X: %w", id, entry.Length, entry.Offset, err)
	}

	return &Record{
		Data:   data,
		Start:  entry.Offset,
		Length: entry.Length,
		Opt1:   entry.Opt1,
		Opt2:   entry.Opt2,
	}, nil
}

// Len returns the number of index entries, present or not.
func (r *Reader) Len() (int, error) {
	size, err := r.idx.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek index end: %w", err)
	}
	return int(size / EntrySize), nil
}

// Close closes the underlying streams when they are closers.
func (r *Reader) Close() error {
	var firstErr error
	for _, s := range []any{r.idx, r.data} {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
