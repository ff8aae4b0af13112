// Package pdftext pulls plain text out of PDF files on disk.
package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

// Extractor returns the text content of the PDF at path.
type Extractor interface {
	Extract(path string) (string, error)
}

// Reader extracts text with github.com/ledongthuc/pdf.
type Reader struct{}

func New() Reader { return Reader{} }

// Extract returns UnparsablePDF for anything the parser rejects, including
// files that make it panic.
func (Reader) Extract(path string) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", apperr.UnparsablePDF(fmt.Errorf("pdf parser panic: %v", rec))
		}
	}()

	f, r, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", apperr.UnparsablePDF(err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", apperr.UnparsablePDF(err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", apperr.UnparsablePDF(err)
	}
	return buf.String(), nil
}
