// Package extract provides text extraction from the document formats accepted
// into the corpus.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Extractor extracts plain text from document files, keyed by file extension.
type Extractor struct {
	byExt map[string]func([]byte) (string, error)
}

// NewExtractor returns an Extractor supporting .txt, .md, .pdf, .docx, and .xlsx.
func NewExtractor() *Extractor {
	return &Extractor{
		byExt: map[string]func([]byte) (string, error){
			".txt":  extractPlain,
			".md":   extractPlain,
			".pdf":  extractPDF,
			".docx": extractDOCX,
			".xlsx": extractExcel,
		},
	}
}

// Supports reports whether the extension (with leading dot, any case) has an
// extractor. Used both to filter the corpus scan and to validate uploads.
func (e *Extractor) Supports(ext string) bool {
	_, ok := e.byExt[strings.ToLower(ext)]
	return ok
}

// Extensions returns the supported extensions in sorted order.
func (e *Extractor) Extensions() []string {
	exts := make([]string, 0, len(e.byExt))
	for ext := range e.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read, its format is unsupported,
// or the content cannot be parsed.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := e.byExt[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("unsupported extension %q", ext)
	}
	return fn(content)
}

// extractPlain returns content as string, validating it is valid UTF-8.
// Invalid UTF-8 sequences are replaced with the replacement character.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
