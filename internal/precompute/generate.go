package precompute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rainbow/internal/store"
)

// RangeError reports the range of a run that could not be written.
type RangeError struct {
	Index int
	Range Range
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range #%d (%s): %v", e.Index+1, e.Range, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// Summary describes a finished generation run.
type Summary struct {
	RunID   string
	Ranges  int
	Records int64
}

// Generator writes ranges into a store, one transaction per range.
type Generator struct {
	DB     *sql.DB
	Logger *slog.Logger

	// Progress receives human readable progress lines. May be nil.
	Progress func(string)
}

// Run validates every range, drops the digest index, writes the ranges one after the other
// and rebuilds the index.
//
// Each range is its own transaction. The first range that fails is rolled back and stops
// the run; ranges committed before it stay. The index is rebuilt even after a failed range
// so that the committed data stays fast to query.
func (g *Generator) Run(ctx context.Context, ranges []Range) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := g.logger().With("run", summary.RunID)

	for i, r := range ranges {
		if err := r.Validate(); err != nil {
			return summary, &RangeError{Index: i, Range: r, Err: err}
		}
	}

	logger.Debug("create table")
	if err := store.EnsureSchema(ctx, g.DB); err != nil {
		return summary, err
	}
	if err := store.DropLookupIndex(ctx, g.DB); err != nil {
		return summary, err
	}

	writeErr := g.writeRanges(ctx, logger, ranges, &summary)

	logger.Debug("create index")
	g.progress("Building digest index...")
	if err := store.BuildLookupIndex(ctx, g.DB); err != nil {
		return summary, errors.Join(writeErr, err)
	}

	return summary, writeErr
}

func (g *Generator) writeRanges(ctx context.Context, logger *slog.Logger, ranges []Range, summary *Summary) error {
	for i, r := range ranges {
		logger.Debug("generate range", "start", r.Start, "end", r.End,
			"prefix", r.Prefix, "global_prefix", r.GlobalPrefix)
		g.progress(fmt.Sprintf("Writing range %d/%d: %s (%d values)", i+1, len(ranges), r, r.Len()))

		start := time.Now()
		written, err := store.WriteRange(ctx, g.DB, r.Records())
		if err != nil {
			logger.Error("range rolled back", "range", r.String(), "err", err)
			return &RangeError{Index: i, Range: r, Err: err}
		}

		summary.Ranges++
		summary.Records += written
		logger.Info("range committed", "range", r.String(), "records", written,
			"took", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Generator) progress(msg string) {
	if g.Progress != nil {
		g.Progress(msg)
	}
}
