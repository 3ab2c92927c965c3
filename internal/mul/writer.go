package mul

import (
	"fmt"
	"io"
	"math"
	"os"
)

// WriteMode selects how Create treats existing files.
type WriteMode int

const (
	// ModeAppend keeps existing records and appends after them.
	ModeAppend WriteMode = iota
	// ModeTruncate discards any existing content.
	ModeTruncate
)

// Writer appends records to an index/data stream pair. It never edits
// existing entries. Two writers must not target the same pair at once: an
// append is a read-size, seek, write sequence with no atomicity.
type Writer struct {
	idx  io.WriteSeeker
	data io.WriteSeeker
}

// NewWriter wraps already opened index and data streams.
func NewWriter(idx, data io.WriteSeeker) *Writer {
	return &Writer{idx: idx, data: data}
}

// Create opens (creating if needed) the index and data files for writing.
func Create(idxPath, mulPath string, mode WriteMode) (*Writer, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if mode == ModeTruncate {
		flags |= os.O_TRUNC
	}

	idx, err := os.OpenFile(idxPath, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	data, err := os.OpenFile(mulPath, flags, 0o644)
	if err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("open data: %w", err)
	}

	return NewWriter(idx, data), nil
}

type appendOptions struct {
	opt1 uint16
	opt2 uint16
}

// AppendOption sets one of the opaque metadata fields of an appended record.
type AppendOption func(*appendOptions)

// WithOpt1 sets the first metadata field. It defaults to 0.
func WithOpt1(v uint16) AppendOption {
	return func(o *appendOptions) { o.opt1 = v }
}

// WithOpt2 sets the second metadata field. It defaults to 0.
func WithOpt2(v uint16) AppendOption {
	return func(o *appendOptions) { o.opt2 = v }
}

// Append writes data at the end of the data stream and a matching entry at
// the end of the index stream. The new record's id is the previous index
// length divided by EntrySize.
func (w *Writer) Append(data []byte, opts ...AppendOption) error {
	var o appendOptions
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := w.idx.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek index end: %w", err)
	}

	start, err := w.data.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek data end: %w", err)
	}

	if start+int64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrRecordTooLarge, len(data), start)
	}

	// Data goes first so a failed write never leaves an entry pointing past
	// the end of the data stream.
	if _, err := w.data.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	entry := Entry{
		Offset: uint32(start),
		Length: uint32(len(data)),
		Opt1:   o.opt1,
		Opt2:   o.opt2,
	}
	if _, err := w.idx.Write(entry.marshal()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

// AppendAbsent writes an index entry with the absent-record sentinel. It is
// used to keep ids aligned when a container has gaps.
func (w *Writer) AppendAbsent() error {
	if _, err := w.idx.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek index end: %w", err)
	}

	entry := Entry{Offset: undefinedOffset}
	if _, err := w.idx.Write(entry.marshal()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Close closes the underlying streams when they are closers.
func (w *Writer) Close() error {
	var firstErr error
	for _, s := range []any{w.idx, w.data} {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
