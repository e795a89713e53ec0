// Package pdfpage counts pages in uploaded PDF documents without a full
// PDF parser. Counting scans for page objects in the raw byte stream,
// which is accurate for the unencrypted, non-linearized files drawing
// scanners produce.
package pdfpage

import (
	"bytes"
	"regexp"

	"github.com/calibrant/gdtbench/errors"
)

var magic = []byte("%PDF")

// ErrNotPDF reports that the data does not start with the PDF magic bytes.
var ErrNotPDF = errors.New("not a PDF document")

// IsPDF reports whether data begins with the %PDF file signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Matches "/Type /Page" object markers but not "/Type /Pages" tree nodes.
var pageObjectRe = regexp.MustCompile(`/Type\s*/Page[^s]`)

// Count returns the number of pages in the document. A valid PDF that
// yields no recognizable page objects counts as a single page, matching
// how single-scan uploads are treated elsewhere.
func Count(data []byte) (int, error) {
	if !IsPDF(data) {
		return 0, errors.WithHint(ErrNotPDF, "only PDF drawings can be uploaded")
	}
	n := len(pageObjectRe.FindAll(data, -1))
	if n == 0 {
		n = 1
	}
	return n, nil
}
