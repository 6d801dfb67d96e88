package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CSVFilename is the metrics file written inside the output directory.
const CSVFilename = "data.csv"

const csvSeparator = ", "

// CSVWriter appends records to <dir>/data.csv. The file is created with a
// header on the first append and never rewritten afterwards.
type CSVWriter struct {
	path   string
	header string
	f      *os.File
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{path: filepath.Join(dir, CSVFilename)}
}

func (w *CSVWriter) Path() string { return w.path }

func (w *CSVWriter) Record(rec Record) error {
	header := strings.Join(rec.Columns, csvSeparator)
	if w.f == nil {
		if err := w.open(header); err != nil {
			return err
		}
	} else if header != w.header {
		return fmt.Errorf("%w: columns changed mid-run", ErrIO)
	}

	// One write per row, so an interrupted run never leaves half a line.
	line := strings.Join(rec.Fields(), csvSeparator) + "\n"
	if _, err := w.f.WriteString(line); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrIO, w.path, err)
	}
	return nil
}

func (w *CSVWriter) open(header string) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
	switch {
	case err == nil:
		if _, err := f.WriteString(header + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("%w: write header %s: %v", ErrIO, w.path, err)
		}
	case errors.Is(err, fs.ErrExist):
		existing, err := readFirstLine(w.path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if existing != header {
			return fmt.Errorf("%w: %s has header %q, run logs %q", ErrIO, w.path, existing, header)
		}
		f, err = os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	default:
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	w.f = f
	w.header = header
	return nil
}

func (w *CSVWriter) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return sc.Text(), nil
	}
	return "", sc.Err()
}
