package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/rcarmo/uomul/internal/config"
	"github.com/rcarmo/uomul/internal/export"
	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
	"github.com/rcarmo/uomul/internal/skills"
	"github.com/rcarmo/uomul/internal/tiledata"
	"github.com/rcarmo/uomul/internal/world"
)

func kindFlag() cli.Flag {
	return &cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: string(export.KindGump), Usage: "tile, static, gump, anim or texmap"}
}

func (a *app) openKind(cmd *cli.Command) (export.Kind, *mul.Reader, error) {
	kind, err := export.ParseKind(cmd.String("kind"))
	if err != nil {
		return "", nil, err
	}
	idx, data, err := kind.Files(a.cfg.Data.Files)
	if err != nil {
		return "", nil, err
	}
	r, err := mul.Open(a.cfg.Data.Path(idx), a.cfg.Data.Path(data))
	if err != nil {
		return "", nil, err
	}
	return kind, r, nil
}

func (a *app) infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "summarise the records of a container",
		Flags: []cli.Flag{kindFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, r, err := a.openKind(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.Len()
			if err != nil {
				return err
			}

			var present int
			var total uint64
			for id := 0; id < n; id++ {
				e, err := r.Entry(uint32(id))
				if err != nil {
					return err
				}
				if e.Absent() {
					continue
				}
				present++
				total += uint64(e.Length)
			}

			fmt.Fprintf(a.out, "%s: %d entries, %d present, %s\n", kind, n, present, humanize.Bytes(total))
			return nil
		},
	}
}

func (a *app) exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write records as image files",
		Flags: []cli.Flag{
			kindFlag(),
			&cli.IntFlag{Name: "from", Usage: "first id"},
			&cli.IntFlag{Name: "to", Value: -1, Usage: "last id, defaults to the last index entry"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "png or bmp"},
			&cli.IntFlag{Name: "scale", Usage: "integer upscale factor"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "parallel workers"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, err := export.ParseKind(cmd.String("kind"))
			if err != nil {
				return err
			}

			exp := a.cfg.Export
			if s := cmd.String("out"); s != "" {
				exp.OutputDir = s
			}
			if s := cmd.String("format"); s != "" {
				exp.Format = s
			}
			if n := cmd.Int("scale"); n > 0 {
				exp.Scale = n
			}
			if n := cmd.Int("workers"); n > 0 {
				exp.Workers = n
			}
			format, err := export.ParseFormat(exp.Format)
			if err != nil {
				return err
			}

			open := func() (export.Source, error) {
				return export.OpenSource(kind, a.cfg.Data)
			}

			from, to := cmd.Int("from"), cmd.Int("to")
			if from < 0 {
				return fmt.Errorf("invalid --from %d", from)
			}
			if to < 0 {
				src, err := open()
				if err != nil {
					return err
				}
				n, err := src.Len()
				_ = src.Close()
				if err != nil {
					return err
				}
				to = n - 1
			}

			if to < from {
				fmt.Fprintln(a.out, export.Summary{})
				return nil
			}

			b := &export.Batch{
				Kind:      kind,
				OutputDir: exp.OutputDir,
				Format:    format,
				Scale:     exp.Scale,
				Workers:   exp.Workers,
				Open:      open,
			}
			summary, err := b.Run(ctx, export.Range(uint32(from), uint32(to)))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, summary)
			return nil
		},
	}
}

func (a *app) radarCommand() *cli.Command {
	return &cli.Command{
		Name:  "radar",
		Usage: "render a minimap of a block area",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "x", Usage: "first block column"},
			&cli.IntFlag{Name: "y", Usage: "first block row"},
			&cli.IntFlag{Name: "width", Value: 64, Usage: "width in blocks"},
			&cli.IntFlag{Name: "height", Value: 64, Usage: "height in blocks"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "radar.png", Usage: "output file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			size, ok := world.FacetSize(a.cfg.Data.Facet)
			if !ok {
				return fmt.Errorf("unknown facet %q", a.cfg.Data.Facet)
			}
			facet, closeFacet, err := openFacet(a.cfg.Data, size)
			if err != nil {
				return err
			}
			defer closeFacet()

			colors, err := world.OpenRadarColors(a.cfg.Data.Path(a.cfg.Data.Files.RadarColors))
			if err != nil {
				return err
			}

			area := image.Rect(cmd.Int("x"), cmd.Int("y"), cmd.Int("x")+cmd.Int("width"), cmd.Int("y")+cmd.Int("height"))
			img, err := export.Radar(facet, size.Blocks(), colors, area)
			if err != nil {
				return err
			}

			out := cmd.String("out")
			format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Encode(f, img, format); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s (%dx%d)\n", out, img.Bounds().Dx(), img.Bounds().Dy())
			return nil
		},
	}
}

// openFacet opens the map of a facet together with whichever of its statics
// and patch files exist. Missing optional files are logged and skipped.
func openFacet(data config.DataConfig, size world.Size) (*world.Facet, func(), error) {
	files := data.Files
	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	m, err := world.OpenMap(data.Path(files.Map), size)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, m)
	facet := &world.Facet{Map: m}

	optional := func(what string, err error) error {
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn("facet: no %s: %v", what, err)
			return nil
		}
		return err
	}

	statics, err := world.OpenStatics(data.Path(files.StaticsIndex), data.Path(files.Statics), size)
	if err == nil {
		closers = append(closers, statics)
		facet.Statics = statics
	} else if err := optional("statics, drawing terrain only", err); err != nil {
		closeAll()
		return nil, nil, err
	}

	if !data.UseDiffs {
		return facet, closeAll, nil
	}

	mapDiff, err := world.OpenMapDiff(data.Path(files.MapDiffLookup), data.Path(files.MapDiff))
	if err == nil {
		closers = append(closers, mapDiff)
		facet.MapDiff = mapDiff
		logging.Debug("facet: %d patched map blocks", mapDiff.Len())
	} else if err := optional("map patches", err); err != nil {
		closeAll()
		return nil, nil, err
	}

	staticsDiff, err := world.OpenStaticDiff(data.Path(files.StaticsDiffLookup), data.Path(files.StaticsDiffIndex), data.Path(files.StaticsDiff))
	if err == nil {
		closers = append(closers, staticsDiff)
		facet.StaticsDiff = staticsDiff
		logging.Debug("facet: %d patched statics blocks", staticsDiff.Len())
	} else if err := optional("statics patches", err); err != nil {
		closeAll()
		return nil, nil, err
	}

	return facet, closeAll, nil
}

func (a *app) appendCommand() *cli.Command {
	return &cli.Command{
		Name:      "append",
		Usage:     "append files as records to an index/data pair",
		ArgsUsage: "IDX MUL FILE...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "opt1", Usage: "first metadata field"},
			&cli.IntFlag{Name: "opt2", Usage: "second metadata field"},
			&cli.BoolFlag{Name: "truncate", Usage: "start a new container instead of appending"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 3 {
				return fmt.Errorf("usage: %s append IDX MUL FILE...", appName)
			}
			idxPath, mulPath := cmd.Args().Get(0), cmd.Args().Get(1)

			opt1, opt2 := cmd.Int("opt1"), cmd.Int("opt2")
			if opt1 < 0 || opt1 > 0xFFFF || opt2 < 0 || opt2 > 0xFFFF {
				return fmt.Errorf("metadata fields must fit in 16 bits")
			}

			mode := mul.ModeAppend
			if cmd.Bool("truncate") {
				mode = mul.ModeTruncate
			}
			w, err := mul.Create(idxPath, mulPath, mode)
			if err != nil {
				return err
			}
			if err := appendFiles(w, cmd.Args().Slice()[2:], mul.WithOpt1(uint16(opt1)), mul.WithOpt2(uint16(opt2))); err != nil {
				return err
			}

			fi, err := os.Stat(idxPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s now holds %d entries\n", idxPath, fi.Size()/mul.EntrySize)
			return nil
		},
	}
}

func (a *app) skillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "list the skills menu",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := a.cfg.Data.Files
			list, err := skills.Open(a.cfg.Data.Path(files.SkillsIndex), a.cfg.Data.Path(files.Skills))
			if err != nil {
				return err
			}
			for i, s := range list {
				mark := " "
				if s.Clickable {
					mark = "*"
				}
				fmt.Fprintf(a.out, "%3d %s %s\n", i, mark, s.Name)
			}
			return nil
		},
	}
}

func (a *app) tiledataCommand() *cli.Command {
	return &cli.Command{
		Name:      "tiledata",
		Usage:     "show the properties of a land tile or static",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "static", Aliases: []string{"s"}, Usage: "look up a static instead of a land tile"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var id uint32
			if _, err := fmt.Sscan(cmd.Args().First(), &id); err != nil {
				return fmt.Errorf("invalid id %q", cmd.Args().First())
			}

			r, err := tiledata.Open(a.cfg.Data.Path(a.cfg.Data.Files.TileData))
			if err != nil {
				return err
			}
			defer r.Close()

			if cmd.Bool("static") {
				t, err := r.StaticTile(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "static %d %q flags=0x%08X weight=%d height=%d anim=%d hue=%d\n",
					id, t.Name, uint32(t.Flags), t.Weight, t.Height, t.Anim, t.Hue)
				return nil
			}

			t, err := r.LandTile(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "land %d %q flags=0x%08X texture=%d\n", id, t.Name, uint32(t.Flags), t.Texture)
			return nil
		},
	}
}

// appendFiles appends each file as one record and closes w. A failed close is
// reported since the last writes may not have reached the files.
func appendFiles(w *mul.Writer, names []string, opts ...mul.AppendOption) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close container: %w", cerr)
		}
	}()

	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if err := w.Append(data, opts...); err != nil {
			return fmt.Errorf("append %s: %w", name, err)
		}
		logging.Info("appended %s (%s)", name, humanize.Bytes(uint64(len(data))))
	}
	return nil
}
