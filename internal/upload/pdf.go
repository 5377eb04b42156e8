package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when a selected file does not carry a .pdf extension.
var ErrNotPDF = errors.New("only PDF files are accepted")

// File is a document selected for upload.
type File struct {
	Path string
	Name string
	Size int64
	// Pages is 0 when the page count could not be read.
	Pages int
}

func (f *File) String() string {
	if f == nil {
		return ""
	}
	return f.Name
}

// IsPDF reports whether path names a PDF by extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func inspectFile(path string, countPages func(string) (int, error)) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("no file given")
	}
	if !IsPDF(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filepath.Base(abs))
	}

	f := &File{Path: abs, Name: filepath.Base(abs), Size: info.Size()}
	if countPages != nil {
		// The page count is informational; the server decides whether the
		// document is usable.
		if n, err := countPages(abs); err == nil {
			f.Pages = n
		}
	}
	return f, nil
}

// CountPages returns the number of pages in the PDF at path.
func CountPages(path string) (n int, err error) {
	// The parser panics on some truncated documents.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	return reader.NumPage(), nil
}
