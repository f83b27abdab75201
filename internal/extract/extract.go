// Package extract pulls plain text out of uploaded files.
package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"textprep/internal/chunker"
)

// Kind is the detected upload format.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindCSV  Kind = "csv"
)

var (
	ErrUnsupported = errors.New("extract: unsupported file type")
	ErrInvalidUTF8 = errors.New("extract: text is not valid UTF-8")
	ErrNoColumn    = errors.New("extract: column out of range")
)

// Detect maps a content type, or the filename extension when the content
// type is empty or generic, to a Kind.
func Detect(filename, contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "text/plain":
		return KindText, nil
	case "application/pdf":
		return KindPDF, nil
	case "text/csv", "application/csv":
		return KindCSV, nil
	case "", "application/octet-stream":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ct)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return KindText, nil
	case ".pdf":
		return KindPDF, nil
	case ".csv":
		return KindCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
}

var bom = []byte("\ufeff")

// Text returns the document text. PDFs go through the PDF reader; any other
// kind must already be valid UTF-8. A leading byte order mark is dropped.
func Text(kind Kind, content []byte) (string, error) {
	if kind == KindPDF {
		return PDFText(content)
	}
	content = bytes.TrimPrefix(content, bom)
	if !utf8.Valid(content) {
		return "", ErrInvalidUTF8
	}
	return string(content), nil
}

// PDFText concatenates the plain text of every readable page.
func PDFText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}

	var sb strings.Builder
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// CSVColumn reads column (zero based) from every record of r. With
// skipHeader the first record is dropped. Records too short for column fail.
func CSVColumn(r io.Reader, column int, skipHeader bool) ([]string, error) {
	if column < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoColumn, column)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []string
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract: read csv: %w", err)
		}
		if row == 0 && skipHeader {
			continue
		}
		if column >= len(rec) {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrNoColumn, row, len(rec))
		}
		if !utf8.ValidString(rec[column]) {
			return nil, fmt.Errorf("%w: row %d", ErrInvalidUTF8, row)
		}
		out = append(out, rec[column])
	}
	return out, nil
}

// Rows splits a document into the units the worker normalizes: one per CSV
// row (column 0, header kept) or word-bounded paragraph windows for
// everything else.
func Rows(kind Kind, content []byte) ([]string, error) {
	if kind == KindCSV {
		content = bytes.TrimPrefix(content, bom)
		if !utf8.Valid(content) {
			return nil, ErrInvalidUTF8
		}
		return CSVColumn(bytes.NewReader(content), 0, false)
	}
	text, err := Text(kind, content)
	if err != nil {
		return nil, err
	}
	chunks := chunker.ChunkText(text, chunker.Options{})
	rows := make([]string, len(chunks))
	for i, c := range chunks {
		rows[i] = c.Text
	}
	return rows, nil
}
