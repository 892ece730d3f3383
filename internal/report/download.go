package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Downloader delivers a finished PDF under the given file name.
type Downloader interface {
	Download(ctx context.Context, filename string, pdf []byte) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, filename string, pdf []byte) error

func (f DownloaderFunc) Download(ctx context.Context, filename string, pdf []byte) error {
	return f(ctx, filename, pdf)
}

// DirDownloader saves reports into Dir. Files are written to a temporary
// name first and renamed into place, so a reader never sees a partial PDF.
type DirDownloader struct {
	Dir string
}

// Path returns where filename ends up.
func (d DirDownloader) Path(filename string) string {
	return filepath.Join(d.Dir, filepath.Base(filename))
}

func (d DirDownloader) Download(ctx context.Context, filename string, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hosereport-*.pdf.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, filepath.Base(filename))); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}
