package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	"github.com/rcarmo/uomul/internal/logging"
	"github.com/rcarmo/uomul/internal/mul"
)

// Summary counts the outcome of a batch.
type Summary struct {
	Written int
	Missing int
	Skipped int
	Bytes   uint64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files (%s), %d missing, %d skipped", s.Written, humanize.Bytes(s.Bytes), s.Missing, s.Skipped)
}

// Batch exports a range of ids from one kind of container.
type Batch struct {
	Kind      Kind
	OutputDir string
	Format    Format
	Scale     int
	Workers   int
	// Open returns a fresh Source. Each worker owns one.
	Open func() (Source, error)
}

// FileName returns the output name for frame of record id. Single-image
// records ignore frame.
func (b *Batch) FileName(id uint32, frame, frames int) string {
	if frames > 1 {
		return fmt.Sprintf("%s_%05d_%02d%s", b.Kind, id, frame, b.Format.Extension())
	}
	return fmt.Sprintf("%s_%05d%s", b.Kind, id, b.Format.Extension())
}

// Run exports every id. Absent records are counted as missing and records
// that fail to decode are logged and skipped; only I/O errors on the output
// side, a failure to open a source and cancellation stop the batch.
func (b *Batch) Run(ctx context.Context, ids []uint32) (Summary, error) {
	workers := max(b.Workers, 1)
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	pool := make(chan Source, workers)
	defer func() {
		close(pool)
		for src := range pool {
			_ = src.Close()
		}
	}()
	for i := 0; i < workers; i++ {
		src, err := b.Open()
		if err != nil {
			return Summary{}, fmt.Errorf("open %s source: %w", b.Kind, err)
		}
		pool <- src
	}

	var (
		mu       sync.Mutex
		summary  Summary
		firstErr error
	)

	logging.Info("export: %d %s records to %s with %d workers", len(ids), b.Kind, b.OutputDir, workers)

	wg := sizedwaitgroup.New(workers)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		wg.Add()
		go func(id uint32) {
			defer wg.Done()
			src := <-pool
			defer func() { pool <- src }()

			written, err := b.export(src, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, mul.ErrNotFound):
				summary.Missing++
				logging.Debug("export: %s %d absent", b.Kind, id)
			case errors.As(err, new(*writeError)):
				if firstErr == nil {
					firstErr = err
				}
			case err != nil:
				summary.Skipped++
				logging.Warn("export: skipping %s %d: %v", b.Kind, id, err)
			default:
				summary.Written += len(written)
				for _, n := range written {
					summary.Bytes += uint64(n)
				}
			}
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return summary, firstErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	logging.Info("export: %s", summary)
	return summary, nil
}

type writeError struct {
	err error
}

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

func (b *Batch) export(src Source, id uint32) ([]int, error) {
	imgs, err := src.Images(id)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, 0, len(imgs))
	for i, img := range imgs {
		if img == nil {
			continue
		}
		var buf bytes.Buffer
		if err := Encode(&buf, Scale(img, b.Scale), b.Format); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
		path := filepath.Join(b.OutputDir, b.FileName(id, i, len(imgs)))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, &writeError{err: err}
		}
		sizes = append(sizes, buf.Len())
	}
	return sizes, nil
}

// Range returns the ids from first to last inclusive.
func Range(first, last uint32) []uint32 {
	if last < first {
		return nil
	}
	ids := make([]uint32, 0, last-first+1)
	for id := first; ; id++ {
		ids = append(ids, id)
		if id == last {
			return ids
		}
	}
}
