package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sqlgate/internal/database"
)

// ExportResult holds statistics about a completed export.
type ExportResult struct {
	RowsProcessed int64
	Duration      time.Duration
}

// Streamer feeds the records of a query into a RowEncoder.
type Streamer struct {
	db     *database.Database
	txOpts *sql.TxOptions
}

// NewStreamer returns a Streamer reading through db. When txOpts is non-nil
// every export runs inside its own transaction opened with those options,
// so a read-only repeatable-read export sees a single snapshot.
func NewStreamer(db *database.Database, txOpts *sql.TxOptions) *Streamer {
	return &Streamer{db: db, txOpts: txOpts}
}

// StreamQuery executes query and writes its rows to encoder. The header is
// taken from the first result set; it is written even when the query returns
// no rows. The encoder is not closed.
func (s *Streamer) StreamQuery(ctx context.Context, query string, encoder RowEncoder) (*ExportResult, error) {
	start := time.Now()

	var (
		header []string
		count  int64
	)
	fn := func(rec database.Record) error {
		if header == nil {
			header = rec.Columns.Names()
			if err := encoder.WriteHeader(header); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
		if rec.Done {
			return nil
		}

		values := make([]any, len(header))
		for i, name := range header {
			values[i] = rec.Row[name]
		}
		if err := encoder.WriteRow(values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}

		count++
		if count%100000 == 0 {
			slog.Debug("Export progress", "rows", count)
		}
		return nil
	}

	var err error
	if s.txOpts == nil {
		err = s.db.RunQuery(ctx, query, fn)
	} else {
		_, err = database.InTransaction(ctx, s.db, s.txOpts, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.db.RunQuery(ctx, query, fn)
		})
	}
	if err != nil {
		return nil, err
	}
	if err := encoder.Error(); err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}

	return &ExportResult{
		RowsProcessed: count,
		Duration:      time.Since(start),
	}, nil
}
