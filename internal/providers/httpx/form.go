package httpx

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Form builds a multipart/form-data body.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// Field adds a text field. Empty values are skipped.
func (f *Form) Field(name, value string) *Form {
	if f.err != nil || value == "" {
		return f
	}
	f.err = f.writer.WriteField(name, value)
	return f
}

// File adds a file part with an explicit content type sniffed from data.
func (f *Form) File(field, basename string, data []byte) *Form {
	if f.err != nil {
		return f
	}
	mimeType := http.DetectContentType(data)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, basename+Extension(mimeType)))
	h.Set("Content-Type", mimeType)
	part, err := f.writer.CreatePart(h)
	if err != nil {
		f.err = err
		return f
	}
	_, f.err = part.Write(data)
	return f
}

// Encode closes the form and returns the body and its content type.
func (f *Form) Encode() (*bytes.Reader, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("encode form: %w", f.err)
	}
	if err := f.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return bytes.NewReader(f.buf.Bytes()), f.writer.FormDataContentType(), nil
}

// Extension maps an image MIME type to a file extension.
func Extension(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ".bin"
	}
}
