package report_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/report"
	"github.com/crimetryx/crimetryx/internal/testhelpers"
)

func TestFetcher_SaveTo(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.4 case report")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases/{caseID}/report", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger := testhelpers.NewLogger(io.Discard)
	fetcher := report.NewFetcher(backend.NewClient(server.URL, logger), logger)

	path := filepath.Join(t.TempDir(), "CRX-2024-0001.pdf")
	require.NoError(t, fetcher.SaveTo(context.Background(), 1, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)

	var buf bytes.Buffer
	require.NoError(t, fetcher.Download(context.Background(), 1, &buf))
	assert.Equal(t, pdf, buf.Bytes())
}

func TestFetcher_FailedDownloadLeavesNoFile(t *testing.T) {
	t.Parallel()

	logger := testhelpers.NewLogger(io.Discard)
	fetcher := report.NewFetcher(backend.NewClient("http://127.0.0.1:1", logger), logger)

	path := filepath.Join(t.TempDir(), "report.pdf")
	err := fetcher.SaveTo(context.Background(), 1, path)
	require.ErrorIs(t, err, backend.ErrUnreachable)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
