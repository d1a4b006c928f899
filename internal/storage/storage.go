package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmohb/iiroc-scrape/internal/config"
	"github.com/bmohb/iiroc-scrape/internal/notice"
)

// FileSuffix is appended to the MMDDYYYY date to form the output file name
const FileSuffix = "_IIROC_Scrape.csv"

// Header is the first row of every output file
var Header = []string{"Name", "Link"}

// Store handles writing scrape results under an output directory
type Store struct {
	dir string
}

// New creates a new Store, creating the output directory if needed
func New(dir string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Store{
		dir: dir,
	}, nil
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// OutputPath returns the CSV path for a MMDDYYYY file date
func (s *Store) OutputPath(fileDate string) string {
	return filepath.Join(s.dir, fileDate+FileSuffix)
}

// WriteEntries creates (or truncates) path and writes the header followed by one row per entry
func (s *Store) WriteEntries(path string, entries []notice.Entry, format config.RowFormat) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	if err := WriteCSV(f, entries, format); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// WriteCSV writes the header and entries to w in the given row format.
// Lines end with CRLF in both formats.
func WriteCSV(w io.Writer, entries []notice.Entry, format config.RowFormat) error {
	switch format {
	case config.RowLegacySingleField:
		return writeLegacy(w, entries)
	case config.RowTwoColumn:
		return writeTwoColumn(w, entries)
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidRowFormat, format)
	}
}

// writeLegacy writes each entry as a single unquoted field holding "<title>,<link>"
func writeLegacy(w io.Writer, entries []notice.Entry) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(strings.Join(Header, ",") + "\r\n")
	for _, e := range entries {
		bw.WriteString(legacyRow(e) + "\r\n")
	}

	return bw.Flush()
}

// legacyRow joins the entry fields with a trailing comma, then strips it
func legacyRow(e notice.Entry) string {
	var row strings.Builder
	for _, field := range e.Fields() {
		row.WriteString(field)
		row.WriteString(",")
	}
	return strings.TrimSuffix(row.String(), ",")
}

// writeTwoColumn writes a standard CSV with title and link columns
func writeTwoColumn(w io.Writer, entries []notice.Entry) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(e.Fields()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
