// Package netx holds HTTP plumbing that does not depend on session state:
// multipart form construction and the plain reachability probe.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Form builds a multipart/form-data body in memory. The body is buffered so
// callers can replay it. Errors are sticky and reported by Encode.
type Form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func NewForm() *Form {
	f := &Form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// Field appends a plain form value.
func (f *Form) Field(name, value string) *Form {
	if f.err != nil {
		return f
	}
	f.err = f.w.WriteField(name, value)
	return f
}

// File appends a file part. The part Content-Type is derived from the
// file name extension, falling back to application/octet-stream.
func (f *Form) File(field, fileName string, r io.Reader) *Form {
	if f.err != nil {
		return f
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(fileName)))
	h.Set("Content-Type", ContentTypeOf(fileName))

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return f
	}
	if _, err := io.Copy(part, r); err != nil {
		f.err = fmt.Errorf("copy %s: %w", fileName, err)
	}
	return f
}

// FilePath appends the file at path under its base name.
func (f *Form) FilePath(field, path string) *Form {
	return f.FileNamed(field, filepath.Base(path), path)
}

// FileNamed appends the file at path under fileName.
func (f *Form) FileNamed(field, fileName, path string) *Form {
	if f.err != nil {
		return f
	}
	file, err := os.Open(path)
	if err != nil {
		f.err = err
		return f
	}
	defer file.Close()
	return f.File(field, fileName, file)
}

// Encode finalizes the form and returns the body and its Content-Type.
func (f *Form) Encode() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.w.Close(); err != nil {
		return nil, "", err
	}
	return f.buf.Bytes(), f.w.FormDataContentType(), nil
}

// ContentTypeOf guesses a media type from the file extension.
func ContentTypeOf(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Probe issues a GET to url bounded by timeout and reports whether the
// server answered with a 2xx status.
func Probe(ctx context.Context, hc *http.Client, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe %s: %s", url, resp.Status)
	}
	return nil
}
