package codec

import "errors"

var (
	ErrTruncated           = errors.New("codec: truncated record")
	ErrInvalidTileSize     = errors.New("codec: invalid tile size")
	ErrMalformedDimensions = errors.New("codec: malformed dimensions")
	ErrInvariantViolation  = errors.New("codec: invariant violation")
	ErrMalformedGump       = errors.New("codec: malformed gump")
	ErrUnsupportedFrame    = errors.New("codec: unsupported frame")
	ErrInvalidTextureSize  = errors.New("codec: invalid texture size")
)
