package export

import (
	"fmt"
	"image"

	"github.com/rcarmo/uomul/internal/world"
)

// Radar draws a minimap of the blocks in area, one pixel per cell. Each cell
// takes the radar colour of its highest static, or of its terrain when it has
// none. blocks is the facet size in blocks.
func Radar(f *world.Facet, blocks world.Size, colors world.RadarColors, area image.Rectangle) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, area.Dx()*world.BlockEdge, area.Dy()*world.BlockEdge))

	for by := area.Min.Y; by < area.Max.Y; by++ {
		for bx := area.Min.X; bx < area.Max.X; bx++ {
			if bx < 0 || by < 0 {
				return nil, fmt.Errorf("%w: block %d,%d", world.ErrOutOfBounds, bx, by)
			}
			id, err := blocks.BlockID(uint32(bx), uint32(by))
			if err != nil {
				return nil, err
			}
			if err := drawRadarBlock(img, f, colors, id, (bx-area.Min.X)*world.BlockEdge, (by-area.Min.Y)*world.BlockEdge); err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

func drawRadarBlock(img *image.NRGBA, f *world.Facet, colors world.RadarColors, id uint32, ox, oy int) error {
	block, err := f.Block(id)
	if err != nil {
		return err
	}

	statics, err := f.StaticsBlock(id)
	if err != nil {
		return err
	}
	var top [world.BlockCells]*world.StaticLocation
	for i := range statics {
		s := &statics[i]
		if s.X >= world.BlockEdge || s.Y >= world.BlockEdge {
			continue
		}
		cell := int(s.Y)*world.BlockEdge + int(s.X)
		if top[cell] == nil || s.Altitude >= top[cell].Altitude {
			top[cell] = s
		}
	}

	for cell := 0; cell < world.BlockCells; cell++ {
		x, y := cell%world.BlockEdge, cell/world.BlockEdge
		c, err := colors.Land(block.Cell(x, y).Graphic)
		if top[cell] != nil {
			c, err = colors.Static(*top[cell])
		}
		if err != nil {
			return fmt.Errorf("block %d: %w", id, err)
		}
		img.SetNRGBA(ox+x, oy+y, c.NRGBA())
	}
	return nil
}
