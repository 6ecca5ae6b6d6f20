package analysis

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultMaxSize is the largest résumé accepted at selection time.
	DefaultMaxSize int64 = 5 * 1024 * 1024
)

var (
	ErrUnsupportedDocument = errors.New("unsupported resume file type")
	ErrDocumentTooLarge    = errors.New("resume file is too large")
	ErrEmptyDocument       = errors.New("resume file is empty")
)

// Document is a résumé file as selected by the user.
type Document struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}

// NewDocument wraps content, detecting its content type from the bytes.
func NewDocument(name string, content []byte) *Document {
	return &Document{
		Name:        filepath.Base(name),
		Size:        int64(len(content)),
		ContentType: mimetype.Detect(content).String(),
		Content:     content,
	}
}

// LoadDocument reads the file at path.
func LoadDocument(path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrMissingResume
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	return NewDocument(path, data), nil
}

// Accept holds the rules a file must pass before it is taken as a résumé.
type Accept struct {
	MaxSize int64
	// Types maps accepted MIME types to their file extensions.
	Types map[string]string
}

// DefaultAccept takes PDF, DOC and DOCX files up to DefaultMaxSize.
func DefaultAccept() Accept {
	return Accept{
		MaxSize: DefaultMaxSize,
		Types: map[string]string{
			MimePDF:  ".pdf",
			MimeDOC:  ".doc",
			MimeDOCX: ".docx",
		},
	}
}

// Check returns nil when doc may be submitted.
func (a Accept) Check(doc *Document) error {
	if doc == nil {
		return ErrMissingResume
	}

	if doc.Size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, doc.Name)
	}

	if a.MaxSize > 0 && doc.Size > a.MaxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrDocumentTooLarge, doc.Name, doc.Size, a.MaxSize)
	}

	if len(a.Types) == 0 {
		return nil
	}

	detected := mimetype.Detect(doc.Content)
	for m := detected; m != nil; m = m.Parent() {
		for accepted := range a.Types {
			if m.Is(accepted) {
				return nil
			}
		}
	}

	// Office files are containers; trust the extension when the bytes only
	// reveal the container format.
	if detected.Is("application/zip") || detected.Is("application/x-ole-storage") {
		ext := strings.ToLower(filepath.Ext(doc.Name))
		for _, accepted := range a.Types {
			if ext == accepted {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s (%s)", ErrUnsupportedDocument, doc.Name, detected.String())
}
