// Package export writes cached series records to CSV and JSONL files.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aluiziolira/go-manga-series/models"
)

// ListSeparator joins list values inside a single CSV cell.
const ListSeparator = "; "

// Writer consumes batches of series records.
type Writer interface {
	Write(records []models.SeriesRecord) error
	Close() error
}

// Lister is implemented by stores that can enumerate complete records.
type Lister interface {
	ListSeries(ctx context.Context) ([]models.SeriesRecord, error)
}

// Run copies every complete record from src into w and returns how many were written.
func Run(ctx context.Context, src Lister, w Writer) (int, error) {
	records, err := src.ListSeries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list series: %w", err)
	}
	if err := w.Write(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// NewWriter builds a writer for format (csv, json or dual). For dual output the
// JSONL file shares output's base name with a .jsonl extension.
func NewWriter(format, output string, columns []string) (Writer, error) {
	switch format {
	case "csv":
		return NewCSVWriter(output, columns)
	case "json":
		return NewJSONWriter(output)
	case "dual":
		base := strings.TrimSuffix(output, filepath.Ext(output))
		return NewDualWriter(base+".csv", base+".jsonl", columns)
	default:
		return nil, fmt.Errorf("output format must be csv, json, or dual")
	}
}

// CSVWriter writes one row per series with a fixed column set.
type CSVWriter struct {
	file    *os.File
	writer  *csv.Writer
	columns []string
	mu      sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row: mangaId followed by columns.
func NewCSVWriter(filename string, columns []string) (*CSVWriter, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("csv writer needs at least one column")
	}
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	header := append([]string{models.MangaIDKey}, columns...)
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:    f,
		writer:  writer,
		columns: append([]string(nil), columns...),
	}, nil
}

// Write appends records to the CSV output. Missing fields become empty cells.
func (cw *CSVWriter) Write(records []models.SeriesRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, rec := range records {
		row := make([]string, 0, len(cw.columns)+1)
		row = append(row, rec.MangaID)
		for _, col := range cw.columns {
			row = append(row, cell(rec.Fields[col]))
		}
		if err := cw.writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

func cell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ListSeparator)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends records in JSONL format.
func (jw *JSONWriter) Write(records []models.SeriesRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, rec := range records {
		if err := jw.encoder.Encode(rec); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
