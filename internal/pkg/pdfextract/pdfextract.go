package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidPDF means the bytes are not a parseable PDF. Deterministic
	// for the same input; retrying is pointless.
	ErrInvalidPDF = errors.New("not a parseable pdf")

	// ErrNoExtractableText means the PDF parsed fine but no page yields
	// any text, e.g. a scanned image without an OCR layer.
	ErrNoExtractableText = errors.New("pdf contains no extractable text")
)

// ExtractPages reads the entire content of r and returns the plain text of
// each page in document order. Pages without text are kept as empty strings
// so page numbering stays intact.
func ExtractPages(r io.Reader) (pages []string, err error) {
	b, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, fmt.Errorf("read pdf bytes failed: %w", readErr)
	}
	if len(b) == 0 {
		return nil, ErrInvalidPDF
	}

	// The parser panics on some malformed inputs instead of returning an
	// error; fold those into ErrInvalidPDF.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, rec)
		}
	}()

	readerAt := bytes.NewReader(b)
	pdfReader, openErr := pdf.NewReader(readerAt, int64(len(b)))
	if openErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, openErr)
	}

	total := pdfReader.NumPage()
	pages = make([]string, 0, total)
	hasText := false
	for i := 1; i <= total; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			// A single unreadable page does not invalidate the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
		if strings.TrimSpace(text) != "" {
			hasText = true
		}
	}

	if !hasText {
		return nil, ErrNoExtractableText
	}
	return pages, nil
}
