// Package cstring handles the NUL terminated and NUL padded names found in
// the client's data files. Names are Windows-1252 encoded.
package cstring

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// CString is a byte string that ends at the first NUL.
type CString []byte

// Bytes returns the bytes before the first NUL.
func (c CString) Bytes() []byte {
	i := bytes.IndexByte(c, 0)
	switch {
	case i == -1:
		return c
	case i == 0:
		return nil
	default:
		return c[:i]
	}
}

// String decodes the name from Windows-1252. Undecodable input falls back to
// the raw bytes.
func (c CString) String() string {
	raw := c.Bytes()
	buf, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(buf)
}

func encodeRunes(dst []byte, s string, limit int) []byte {
	for _, r := range s {
		if limit >= 0 && len(dst) >= limit {
			break
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		dst = append(dst, b)
	}
	return dst
}

// Padded encodes s as Windows-1252, truncated or NUL padded to width bytes.
// Runes with no Windows-1252 form become '?'.
func Padded(s string, width int) []byte {
	out := encodeRunes(make([]byte, 0, width), s, width)
	return append(out, make([]byte, width-len(out))...)
}

// Terminated encodes s as Windows-1252 followed by a NUL.
func Terminated(s string) []byte {
	return append(encodeRunes(make([]byte, 0, len(s)+1), s, -1), 0)
}
