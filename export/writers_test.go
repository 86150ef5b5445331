package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-manga-series/models"
)

func sampleRecord() models.SeriesRecord {
	rec := models.NewSeriesRecord("12345")
	rec.Fields["title"] = "Demo, Vol. 1"
	rec.Fields["genres"] = []string{"Action", "Drama"}
	rec.Complete = true
	return rec
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func readJSONL(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var row map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		out = append(out, row)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	return out
}

func TestCSVWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "series.csv")

	writer, err := NewCSVWriter(path, []string{"title", "genres", "status"})
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]models.SeriesRecord{sampleRecord()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "mangaId" || records[0][1] != "title" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	want := []string{"12345", "Demo, Vol. 1", "Action; Drama", ""}
	for i, v := range want {
		if records[1][i] != v {
			t.Fatalf("column %d = %q, want %q", i, records[1][i], v)
		}
	}
}

func TestCSVWriterRequiresColumns(t *testing.T) {
	if _, err := NewCSVWriter(filepath.Join(t.TempDir(), "x.csv"), nil); err == nil {
		t.Fatalf("expected error without columns")
	}
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]models.SeriesRecord{sampleRecord(), sampleRecord()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	rows := readJSONL(t, path)
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(rows))
	}
	if rows[0]["mangaId"] != "12345" || rows[0]["title"] != "Demo, Vol. 1" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}

func TestNewWriterDual(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter("dual", filepath.Join(dir, "series.csv"), []string{"title"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Write([]models.SeriesRecord{sampleRecord()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := len(readCSV(t, filepath.Join(dir, "series.csv"))); got != 2 {
		t.Fatalf("csv rows=%d, want 2", got)
	}
	if got := len(readJSONL(t, filepath.Join(dir, "series.jsonl"))); got != 1 {
		t.Fatalf("json rows=%d, want 1", got)
	}
}

func TestNewWriterUnknownFormat(t *testing.T) {
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "x"), []string{"title"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

type stubLister struct {
	records []models.SeriesRecord
	err     error
}

func (s stubLister) ListSeries(context.Context) ([]models.SeriesRecord, error) {
	return s.records, s.err
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.jsonl")
	w, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}

	n, err := Run(context.Background(), stubLister{records: []models.SeriesRecord{sampleRecord()}}, w)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 1 {
		t.Fatalf("exported %d, want 1", n)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(readJSONL(t, path)); got != 1 {
		t.Fatalf("rows=%d, want 1", got)
	}

	if _, err := Run(context.Background(), stubLister{err: errors.New("locked")}, w); err == nil {
		t.Fatalf("expected list error")
	}
}
