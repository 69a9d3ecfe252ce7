package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// ResultSink receives the responses of a finished batch, in input order.
type ResultSink interface {
	WriteResults(ctx context.Context, responses []models.Response) error
}

// CSVSink writes a header row followed by one row per response.
type CSVSink struct {
	w io.Writer
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

func (s *CSVSink) WriteResults(_ context.Context, responses []models.Response) error {
	writer := csv.NewWriter(s.w)
	if err := writer.Write(models.ResponseColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, resp := range responses {
		if err := writer.Write(resp.Record()); err != nil {
			return fmt.Errorf("write result %s: %w", resp.RequestID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// FileSink writes results as CSV to path. The file is replaced atomically, so
// an earlier results file survives any run that never reaches the sinks.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) WriteResults(ctx context.Context, responses []models.Response) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".results-*.csv")
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod results file: %w", err)
	}
	if err = NewCSVSink(tmp).WriteResults(ctx, responses); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}
