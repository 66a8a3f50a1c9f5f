// Package formtext pulls plain text out of uploaded funding forms.
package formtext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxUploadBytes is the largest form accepted.
const MaxUploadBytes = 10 << 20

// Kinds of document Extract understands.
const (
	KindPDF  = "pdf"
	KindDOCX = "docx"
	KindText = "text"
)

var (
	ErrUnsupported = errors.New("unsupported file type; upload a PDF, DOCX or plain text file")
	ErrTooLarge    = errors.New("file exceeds 10 MiB")
)

// Detect names the document kind from the file name, falling back to the
// content itself.
func Detect(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	case ".txt", ".text", ".md":
		return KindText, nil
	}
	switch ct := http.DetectContentType(data); {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return KindPDF, nil
	case ct == "application/zip" && isDOCX(data):
		return KindDOCX, nil
	case strings.HasPrefix(ct, "text/plain"):
		return KindText, nil
	}
	return "", ErrUnsupported
}

// Extract returns the readable text of an uploaded form.
// PRE: none
// POST: ErrTooLarge above MaxUploadBytes, ErrUnsupported for unknown kinds
func Extract(filename string, data []byte) (string, error) {
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}
	kind, err := Detect(filename, data)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindPDF:
		return extractPDF(data)
	case KindDOCX:
		return extractDOCX(data)
	default:
		if !utf8.Valid(data) {
			return "", ErrUnsupported
		}
		return string(data), nil
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func isDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}

// extractDOCX walks word/document.xml, emitting text runs, a tab for
// <w:tab/>, and a newline for each paragraph or <w:br/>.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", ErrUnsupported
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(io.LimitReader(rc, MaxUploadBytes*4))
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
