package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider writes files below a base directory.
type LocalProvider struct {
	basePath string
}

func NewLocalProvider(basePath string) *LocalProvider {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		slog.Error("Failed to ensure local storage directory exists", "path", basePath, "error", err)
	}
	return &LocalProvider{
		basePath: basePath,
	}
}

// path resolves key below basePath, rejecting keys that escape it.
func (p *LocalProvider) path(key string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(key))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(p.basePath, rel), nil
}

func (p *LocalProvider) StreamToFile(ctx context.Context, key string) (io.WriteCloser, <-chan error) {
	errChan := make(chan error, 1)
	fail := func(err error) (io.WriteCloser, <-chan error) {
		errChan <- err
		close(errChan)
		return nil, errChan
	}

	fullPath, err := p.path(key)
	if err != nil {
		return fail(err)
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create directory %s: %w", dir, err))
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fail(fmt.Errorf("failed to create file %s: %w", fullPath, err))
	}

	return &localWriter{
		f:       f,
		errChan: errChan,
		path:    fullPath,
	}, errChan
}

func (p *LocalProvider) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := p.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// GetDownloadURL returns a file:// URL of the absolute path.
func (p *LocalProvider) GetDownloadURL(key string) string {
	fullPath := filepath.Join(p.basePath, filepath.FromSlash(key))
	abs, _ := filepath.Abs(fullPath)
	return "file://" + filepath.ToSlash(abs)
}

// localWriter reports the result of the file on errChan when closed.
type localWriter struct {
	f       *os.File
	errChan chan error
	path    string
}

func (w *localWriter) Write(p []byte) (n int, err error) {
	return w.f.Write(p)
}

func (w *localWriter) Close() error {
	err := w.f.Close()
	if err != nil {
		w.errChan <- err
	} else {
		slog.Info("Local file write completed", "path", w.path)
		w.errChan <- nil
	}
	close(w.errChan)
	return err
}

// CloseWithError discards the partial file.
func (w *localWriter) CloseWithError(cause error) error {
	closeErr := w.f.Close()
	if err := os.Remove(w.path); err != nil && closeErr == nil {
		closeErr = err
	}
	slog.Warn("Local file discarded", "path", w.path, "error", cause)
	w.errChan <- cause
	close(w.errChan)
	return closeErr
}
