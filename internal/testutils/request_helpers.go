package testutils

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
)

// CreateTestRequest builds a request carrying a discarding request logger, the
// way middleware.Logging would.
func CreateTestRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	return req.WithContext(ctx)
}

// CreateUploadRequest builds a multipart POST with content stored under field.
func CreateUploadRequest(target, field, filename string, content []byte) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := CreateTestRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}
