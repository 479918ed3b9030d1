package retrieval

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/domain"
)

var (
	pdfMagic    = []byte("%PDF-")
	errNoText   = errors.New("document has no extractable text")
	errBadBytes = errors.New("document is neither PDF nor UTF-8 text")
)

// LoadText extracts plain text from a PDF or UTF-8 text document.
// Failures come back as *domain.IngestionError.
func LoadText(doc domain.Document) (string, error) {
	var (
		text string
		err  error
	)

	switch {
	case bytes.HasPrefix(doc.Data, pdfMagic):
		text, err = pdfText(doc.Data)
	case utf8.Valid(doc.Data) && !bytes.ContainsRune(doc.Data, 0):
		text = string(doc.Data)
	default:
		err = fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, errBadBytes)
	}
	if err != nil {
		return "", &domain.IngestionError{Document: doc.Name, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &domain.IngestionError{Document: doc.Name, Err: errNoText}
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return string(b), nil
}
