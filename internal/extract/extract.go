// Package extract turns an uploaded resume document into plain text so it can
// be sent as resume_text instead of a file.
package extract

import (
	"bytes"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxTextLength caps extracted text at roughly 3000 words.
const MaxTextLength = 15000

// AllowedExtensions lists the document types accepted for extraction.
var AllowedExtensions = map[string]bool{
	"pdf":  true,
	"txt":  true,
	"doc":  true,
	"docx": true,
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Text extracts plain text from a resume document.
func Text(filename string, content []byte) (string, error) {
	if filename == "" {
		return "", newError(filename, "No file provided.", nil)
	}

	ext := Extension(filename)
	if !AllowedExtensions[ext] {
		return "", newError(filename, "Unsupported file type '."+ext+"'. Supported formats: PDF, TXT, DOC, DOCX.", nil)
	}

	if len(content) == 0 {
		return "", newError(filename, "Uploaded file is empty.", nil)
	}

	switch ext {
	case "pdf":
		return fromPDF(filename, content)
	case "txt":
		return fromTXT(filename, content)
	default:
		return fromDOCX(filename, content)
	}
}

func fromPDF(filename string, content []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", newError(filename, "Could not read PDF: malformed document", nil)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", readError(filename, "PDF", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, pageText)
	}

	text = CleanText(strings.Join(pages, "\n"))
	if text == "" {
		return "", newError(filename, "PDF appears to be image-based or empty. Please paste your resume text instead.", nil)
	}
	return truncate(text, MaxTextLength), nil
}

func fromTXT(filename string, content []byte) (string, error) {
	if !utf8.Valid(content) {
		content = bytes.ToValidUTF8(content, nil)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", newError(filename, "Text file is empty.", nil)
	}
	return truncate(text, MaxTextLength), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	tabElement   = regexp.MustCompile(`<w:tab/>`)
	breakElement = regexp.MustCompile(`<w:br/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

func fromDOCX(filename string, content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", readError(filename, "DOCX file", err)
	}
	defer func() { _ = doc.Close() }()

	text := docxPlainText(doc.Editable().GetContent())
	if text == "" {
		return "", newError(filename, "DOCX file appears to be empty.", nil)
	}
	return truncate(text, MaxTextLength), nil
}

// docxPlainText strips WordprocessingML markup, one line per paragraph.
func docxPlainText(documentXML string) string {
	s := paragraphEnd.ReplaceAllString(documentXML, "\n")
	s = tabElement.ReplaceAllString(s, "\t")
	s = breakElement.ReplaceAllString(s, "\n")
	s = xmlTag.ReplaceAllString(s, "")
	return CleanText(html.UnescapeString(s))
}
