package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartForm is a multipart/form-data body for [PostMultipart].
type MultipartForm struct {
	// Fields are plain form values, written in key order.
	Fields map[string]string
	Files  []FormFile
}

// FormFile is a file part of a [MultipartForm].
type FormFile struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Data is used when Reader is nil.
	Data   []byte
	Reader io.Reader
}

// Content returns the file content as a reader.
func (f FormFile) Content() io.Reader {
	if f.Reader != nil {
		return f.Reader
	}

	return bytes.NewReader(f.Data)
}

// File is a convenience for a form holding a single file part.
func File(fieldName, fileName string, r io.Reader) *MultipartForm {
	return &MultipartForm{
		Files: []FormFile{{FieldName: fieldName, FileName: fileName, Reader: r}},
	}
}

// SortedFields returns the field names in the order they are written.
func (m *MultipartForm) SortedFields() []string {
	return slices.Sorted(maps.Keys(m.Fields))
}

func (m *MultipartForm) validate() error {
	for i, f := range m.Files {
		if f.FieldName == "" {
			return fmt.Errorf("file[%d]: field name must not be empty", i)
		}
	}

	return nil
}

// encode writes the form and returns the body with its Content-Type.
func (m *MultipartForm) encode() (io.Reader, string, error) {
	if m == nil {
		return nil, "", errors.New("multipart form must not be nil")
	}

	if err := m.validate(); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range m.SortedFields() {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("writing field[%s]: %w", k, err)
		}
	}

	for _, f := range m.Files {
		part, err := w.CreatePart(fileHeader(f))
		if err != nil {
			return nil, "", fmt.Errorf("creating part[%s]: %w", f.FieldName, err)
		}

		if _, err := io.Copy(part, f.Content()); err != nil {
			return nil, "", fmt.Errorf("writing part[%s]: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func fileHeader(f FormFile) textproto.MIMEHeader {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.FieldName), escapeQuotes(f.FileName)))
	h.Set("Content-Type", contentType)

	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
