// Package extract turns an analyze request (pasted text or an uploaded
// .txt/.pdf file) into the raw email text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// Client-facing messages.
const (
	MsgMissingPayload = "Envie um arquivo (.txt/.pdf) ou cole o texto do e-mail."
	msgUnsupported    = "Extensão não suportada: %s. Use .txt ou .pdf"
	msgPDFFailure     = "Falha ao ler PDF: %v"
)

// InputError is a problem with what the client sent. Its message is safe to
// return to the caller as is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func inputErrorf(format string, args ...interface{}) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// File is an uploaded file.
type File struct {
	Name string
	Data []byte
}

// Payload picks the raw email text. Non-blank text wins and is trimmed;
// otherwise the file is decoded. With neither present an InputError is
// returned. Blank text and no file yields "" and no error.
func Payload(text string, file *File) (string, error) {
	if file == nil && text == "" {
		return "", &InputError{Message: MsgMissingPayload}
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return trimmed, nil
	}

	if file == nil {
		return "", nil
	}

	return FileText(file.Name, file.Data)
}

// FileText extracts text from an uploaded file based on its extension.
func FileText(name string, data []byte) (string, error) {
	if name == "" {
		name = "upload"
	}
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".txt":
		return decodeText(data), nil
	case ".pdf":
		text, err := pdfText(data)
		if err != nil {
			return "", inputErrorf(msgPDFFailure, err)
		}
		return text, nil
	default:
		return "", inputErrorf(msgUnsupported, ext)
	}
}

// decodeText reads UTF-8, falling back to Latin-1 for anything that is not
// valid UTF-8.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

// pdfText joins the plain text of every page with newlines. Pages without
// content contribute an empty line.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}
