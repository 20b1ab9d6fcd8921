package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"go.uber.org/zap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer serialises a tag table as BOM-prefixed UTF-8 CSV so spreadsheet
// tools and the KingSCADA importer both read the Chinese text correctly.
type Writer struct {
	layout Layout
	logger *zap.Logger
}

func NewWriter(layout Layout, logger *zap.Logger) *Writer {
	if layout == nil {
		layout = kingSCADALayout{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{layout: layout, logger: logger}
}

func (w *Writer) Layout() Layout {
	return w.layout
}

// WriteFile writes the table to path. The file only appears once it is
// complete; on any error the target is left untouched.
func (w *Writer) WriteFile(path string, table *types.TagTable) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = w.Encode(tmp, table); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	w.logger.Info("Tag table written",
		zap.String("path", path),
		zap.String("layout", w.layout.Name()),
		zap.Int("rows", table.Len()))

	return nil
}

// Encode writes BOM, header and rows with CRLF line endings.
func (w *Writer) Encode(out io.Writer, table *types.TagTable) error {
	buf := bufio.NewWriter(out)
	if _, err := buf.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(buf)
	cw.UseCRLF = true

	if err := cw.Write(w.layout.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range table.Records {
		if err := cw.Write(w.layout.Row(rec, table.Config)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
