package devices

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errInvalidGBK = errors.New("invalid GBK sequence")

// readText reads a file as UTF-8 (with or without BOM), falling back to GBK.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return decodeText(path, data)
}

func decodeText(path string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", &types.DecodeError{Path: path, Err: err}
	}
	// the GBK decoder substitutes U+FFFD instead of failing
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", &types.DecodeError{Path: path, Err: errInvalidGBK}
	}
	return string(decoded), nil
}

// csvRow is one data row addressed by column name.
type csvRow struct {
	line  int
	cells map[string]string
}

func (r csvRow) get(column string) string {
	return r.cells[column]
}

// readTable parses CSV text with a header row and checks that every
// required column is present.
func readTable(path, text string, required []string) ([]csvRow, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, &types.MissingColumnError{Path: path, Column: col}
		}
	}

	rows := make([]csvRow, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row := csvRow{line: line, cells: make(map[string]string, len(index))}
		for name, i := range index {
			if i < len(record) {
				row.cells[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
