package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

// UploadCSV sends a CSV export as multipart field "file". Uploads are never retried.
func (c *BackendClient) UploadCSV(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var res domain.UploadResult
	if err := c.do(ctx, request{
		op:          "UploadCSV",
		method:      http.MethodPost,
		path:        "/upload/",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		resource:    "upload",
	}, &res); err != nil {
		return nil, err
	}
	c.bumpGeneration()
	if res.SkippedRows == nil {
		res.SkippedRows = []domain.SkippedRow{}
	}
	return &res, nil
}
