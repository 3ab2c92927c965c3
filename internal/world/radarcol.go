package world

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rcarmo/uomul/internal/codec"
)

// RadarStaticOffset is the radarcol index of static graphic 0. Land graphics
// use their own id.
const RadarStaticOffset = 0x4000

// RadarColors holds the minimap colour of every land and static graphic.
type RadarColors []codec.Color16

// ReadRadarColors reads radarcol.mul. A trailing odd byte is ignored.
func ReadRadarColors(r io.Reader) (RadarColors, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out := make(RadarColors, len(data)/2)
	for i := range out {
		out[i] = codec.Color16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out, nil
}

// OpenRadarColors reads the radarcol.mul file at path.
func OpenRadarColors(path string) (RadarColors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRadarColors(f)
}

// Color returns the colour at index id.
func (rc RadarColors) Color(id uint32) (codec.Color16, error) {
	if int(id) >= len(rc) {
		return 0, fmt.Errorf("%w: radar colour %d of %d", ErrOutOfBounds, id, len(rc))
	}
	return rc[id], nil
}

// Land returns the colour of a land graphic.
func (rc RadarColors) Land(graphic uint16) (codec.Color16, error) {
	return rc.Color(uint32(graphic))
}

// Static returns the colour of a placed static.
func (rc RadarColors) Static(s StaticLocation) (codec.Color16, error) {
	return rc.Color(s.ColorIndex())
}
