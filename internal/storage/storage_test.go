package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmohb/iiroc-scrape/internal/config"
	"github.com/bmohb/iiroc-scrape/internal/notice"
)

var testEntries = []notice.Entry{
	{Title: "Notice of Hearing ", Link: "http://www.iiroc.ca/Documents/2016/a.pdf"},
	{Title: "Settlement, Jane Doe ", Link: "http://www.iiroc.ca/Documents/2016/b.pdf"},
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Scrapes", "nested")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("output directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}
	if store.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", store.Dir(), dir)
	}
}

func TestOutputPath(t *testing.T) {
	store := &Store{dir: "/Scrapes"}

	if got := store.OutputPath("04122016"); got != "/Scrapes/04122016_IIROC_Scrape.csv" {
		t.Errorf("OutputPath() = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		entries []notice.Entry
		format  config.RowFormat
		want    string
	}{
		{
			name:   "legacy header only",
			format: config.RowLegacySingleField,
			want:   "Name,Link\r\n",
		},
		{
			name:    "legacy single field rows",
			entries: testEntries,
			format:  config.RowLegacySingleField,
			want: "Name,Link\r\n" +
				"Notice of Hearing ,http://www.iiroc.ca/Documents/2016/a.pdf\r\n" +
				"Settlement, Jane Doe ,http://www.iiroc.ca/Documents/2016/b.pdf\r\n",
		},
		{
			name:   "two column header only",
			format: config.RowTwoColumn,
			want:   "Name,Link\r\n",
		},
		{
			name:    "two column quotes embedded commas",
			entries: testEntries,
			format:  config.RowTwoColumn,
			want: "Name,Link\r\n" +
				"Notice of Hearing ,http://www.iiroc.ca/Documents/2016/a.pdf\r\n" +
				"\"Settlement, Jane Doe \",http://www.iiroc.ca/Documents/2016/b.pdf\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteCSV(&buf, tt.entries, tt.format); err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCSV_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, testEntries, "tsv")
	if !errors.Is(err, config.ErrInvalidRowFormat) {
		t.Errorf("WriteCSV() error = %v, want %v", err, config.ErrInvalidRowFormat)
	}
}

func TestWriteEntries(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	path := store.OutputPath("04122016")

	// a stale file from an earlier run is truncated
	if err := os.WriteFile(path, []byte("stale content that is longer than the new file\r\n"), 0644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	if err := store.WriteEntries(path, testEntries[:1], config.RowLegacySingleField); err != nil {
		t.Fatalf("WriteEntries() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "Name,Link\r\nNotice of Hearing ,http://www.iiroc.ca/Documents/2016/a.pdf\r\n"
	if string(data) != want {
		t.Errorf("file content = %q, want %q", string(data), want)
	}
}

func TestWriteEntries_MissingDirectory(t *testing.T) {
	store := &Store{dir: filepath.Join(t.TempDir(), "missing")}

	err := store.WriteEntries(store.OutputPath("04122016"), testEntries, config.RowLegacySingleField)
	if err == nil {
		t.Error("WriteEntries() into missing directory expected error")
	}
}
