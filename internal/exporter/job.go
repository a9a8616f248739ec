package exporter

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sqlgate/internal/storage"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending    JobStatus = "PENDING"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// aborter is implemented by writers that can fail the upload they feed,
// such as the pipe behind S3 storage.
type aborter interface {
	CloseWithError(err error) error
}

// Job is one query exported to one stored file.
type Job struct {
	ID     string
	Query  string
	Format string
	// Key is the storage key of the output, set once the job has run.
	Key      string
	Compress bool

	Submitted time.Time
	Started   time.Time
	Finished  time.Time
	Status    JobStatus
	Err       error
	Stats     *ExportResult
}

// NewJob creates a pending job. An empty format means csv.
func NewJob(query, format string, compress bool) *Job {
	if format == "" {
		format = "csv"
	}
	return &Job{
		ID:        uuid.New().String(),
		Query:     query,
		Format:    format,
		Compress:  compress,
		Submitted: time.Now(),
		Status:    StatusPending,
	}
}

// Run exports the job's query into store:
// DB -> encoder -> [gzip] -> storage writer.
func (j *Job) Run(ctx context.Context, s *Streamer, store storage.Provider) error {
	j.Started = time.Now()
	j.Status = StatusProcessing

	if err := j.export(ctx, s, store); err != nil {
		j.Status = StatusFailed
		j.Err = err
		j.Finished = time.Now()
		slog.Error("Job failed", "job_id", j.ID, "error", err)
		return err
	}

	j.Status = StatusCompleted
	j.Finished = time.Now()
	slog.Info("Job completed",
		"job_id", j.ID,
		"key", j.Key,
		"rows", j.Stats.RowsProcessed,
		"wait", j.Started.Sub(j.Submitted),
		"query_duration", j.Stats.Duration,
	)
	return nil
}

func (j *Job) export(ctx context.Context, s *Streamer, store storage.Provider) error {
	j.Key = fmt.Sprintf("exports/%s.%s", j.ID, Extension(j.Format))
	if j.Compress {
		j.Key += ".gz"
	}

	// Validate the format before anything is created in storage.
	if _, err := NewEncoder(j.Format, io.Discard); err != nil {
		return err
	}

	storageWriter, errChan := store.StreamToFile(ctx, j.Key)
	if storageWriter == nil {
		return fmt.Errorf("storage open failed: %w", <-errChan)
	}

	var out io.Writer = storageWriter
	var gz *gzip.Writer
	if j.Compress {
		gz = gzip.NewWriter(storageWriter)
		out = gz
	}

	encoder, _ := NewEncoder(j.Format, out)

	stats, exportErr := s.StreamQuery(ctx, j.Query, encoder)

	// Close in pipeline order so every stage flushes into the next.
	encoderCloseErr := encoder.Close()
	var gzipCloseErr error
	if gz != nil {
		gzipCloseErr = gz.Close()
	}
	var storageCloseErr error
	if ac, ok := storageWriter.(aborter); ok && exportErr != nil {
		// Abort the upload instead of storing a truncated file.
		storageCloseErr = ac.CloseWithError(exportErr)
	} else {
		storageCloseErr = storageWriter.Close()
	}
	uploadErr := <-errChan

	if exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}
	if encoderCloseErr != nil {
		return fmt.Errorf("encoder close failed: %w", encoderCloseErr)
	}
	if gzipCloseErr != nil {
		return fmt.Errorf("gzip close failed: %w", gzipCloseErr)
	}
	if storageCloseErr != nil {
		return fmt.Errorf("storage close failed: %w", storageCloseErr)
	}
	if uploadErr != nil {
		return fmt.Errorf("upload failed: %w", uploadErr)
	}

	j.Stats = stats
	return nil
}
