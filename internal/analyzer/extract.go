package analyzer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/normalize"
)

var ErrNoText = errors.New("no text content found in resume")

// ExtractText returns the readable text of a résumé. PDF and DOCX files are
// decoded; anything else must already be valid UTF-8 text.
func ExtractText(doc *analysis.Document) (string, error) {
	if doc == nil || len(doc.Content) == 0 {
		return "", analysis.ErrMissingResume
	}

	var (
		text string
		err  error
	)

	switch {
	case is(doc, analysis.MimePDF, ".pdf"):
		text, err = extractPDF(doc.Content)
	case is(doc, analysis.MimeDOCX, ".docx"):
		text, err = extractDOCX(doc.Content)
	case utf8.Valid(doc.Content) && !bytes.ContainsRune(doc.Content, 0):
		text = string(doc.Content)
	default:
		return "", fmt.Errorf("%w: cannot read text from %s (%s)", analysis.ErrUnsupportedDocument, doc.Name, doc.ContentType)
	}
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", doc.Name, err)
	}

	text = normalize.Text(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, doc.Name)
	}

	return text, nil
}

func is(doc *analysis.Document, mime, ext string) bool {
	if strings.HasPrefix(doc.ContentType, mime) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(doc.Name), ext)
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		return docxText(rc)
	}

	return "", errors.New("document.xml not found in docx")
}

// docxText keeps character data and breaks lines at paragraph ends.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				b.WriteString("\n")
			}
		}
	}

	return b.String(), nil
}
