// Package report fetches the backend-rendered PDF case report. Reports are
// generated server side from the case record; there is no offline variant.
package report

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
)

type Fetcher struct {
	client *backend.Client
	logger *slog.Logger
}

func NewFetcher(client *backend.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger.With("source", "report.Fetcher"),
	}
}

// Download streams the case report into w.
func (f *Fetcher) Download(ctx context.Context, caseID int64, w io.Writer) error {
	if err := f.client.Report(ctx, caseID, w); err != nil {
		return errors.Wrap(err, "download report", slog.Int64("case_id", caseID))
	}
	return nil
}

// SaveTo downloads the case report to a file. A failed download leaves no
// partial file behind.
func (f *Fetcher) SaveTo(ctx context.Context, caseID int64, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report file", slog.String("path", path))
	}

	if err = f.Download(ctx, caseID, file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	if err = file.Close(); err != nil {
		return errors.Wrap(err, "close report file", slog.String("path", path))
	}

	f.logger.LogAttrs(ctx, slog.LevelInfo, "report saved",
		slog.Int64("case_id", caseID), slog.String("path", path))
	return nil
}
