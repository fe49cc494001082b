package sakeapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// Upload is a CSV file submitted to the import endpoints.
type Upload struct {
	Filename string
	Encoding Encoding
	Content  []byte
}

func (u Upload) filename() string {
	if name := filepath.Base(u.Filename); name != "." && name != "/" && name != "" {
		return name
	}
	return "import.csv"
}

// form builds the multipart body. Unknown encodings fall back to the default.
func (u Upload) form(extra map[string]string) (*bytes.Buffer, string, error) {
	if len(u.Content) == 0 {
		return nil, "", ErrEmptyUpload
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", u.filename())
	if err != nil {
		return nil, "", fmt.Errorf("sakeapi: create form file: %w", err)
	}
	if _, err := part.Write(u.Content); err != nil {
		return nil, "", fmt.Errorf("sakeapi: write form file: %w", err)
	}
	if err := w.WriteField("encoding", string(u.Encoding.OrDefault())); err != nil {
		return nil, "", fmt.Errorf("sakeapi: write encoding field: %w", err)
	}
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("sakeapi: write %s field: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("sakeapi: close multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// PreviewImport parses the upload on the server without writing anything.
func (c *Client) PreviewImport(ctx context.Context, u Upload) (ImportPreview, error) {
	body, contentType, err := u.form(nil)
	if err != nil {
		return ImportPreview{}, err
	}
	var preview ImportPreview
	r := request{method: http.MethodPost, path: "/admin/import/sakes/preview", body: body, contentType: contentType}
	if err := c.do(ctx, r, &preview); err != nil {
		return ImportPreview{}, err
	}
	return preview, nil
}

// CommitImport writes the upload into the catalog.
func (c *Client) CommitImport(ctx context.Context, u Upload) (ImportResult, error) {
	body, contentType, err := u.form(map[string]string{"dry_run": "false"})
	if err != nil {
		return ImportResult{}, err
	}
	var result ImportResult
	r := request{method: http.MethodPost, path: "/admin/import/sakes", body: body, contentType: contentType}
	if err := c.do(ctx, r, &result); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}
