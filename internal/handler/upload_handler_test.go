package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/service"
)

type uploadServiceMock struct {
	service.UploadService
	fileName string
	userID   string
	err      error
}

func (m *uploadServiceMock) Upload(_ context.Context, file *multipart.FileHeader, userID string) (dto.UploadResponse, error) {
	m.fileName = file.Filename
	m.userID = userID
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return dto.UploadResponse{URL: "https://cdn.example.com/creasta.png", FileName: file.Filename, MimeType: "image/png"}, nil
}

func newUploadRequest(t *testing.T, path, field, name string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newUploadApp(svc service.UploadService) *fiber.App {
	app := newTestApp("hiker-1", "user")
	handler.NewUploadHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/uploads"))
	return app
}

func TestUploadHandlerStoresFile(t *testing.T) {
	svc := &uploadServiceMock{}
	app := newUploadApp(svc)

	resp, err := app.Test(newUploadRequest(t, "/api/v1/uploads", "file", "creasta.png", []byte("png-bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var upload dto.UploadResponse
	decodeEnvelope(t, resp, &upload)
	require.Equal(t, "creasta.png", upload.FileName)
	require.Equal(t, "hiker-1", svc.userID)
}

func TestUploadHandlerMissingFile(t *testing.T) {
	app := newUploadApp(&uploadServiceMock{})

	resp, err := app.Test(newUploadRequest(t, "/api/v1/uploads", "attachment", "creasta.png", []byte("png-bytes")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandlerMapsServiceErrors(t *testing.T) {
	cases := map[error]int{
		service.ErrUploadTooLarge:       fiber.StatusRequestEntityTooLarge,
		service.ErrUploadTypeNotAllowed: fiber.StatusBadRequest,
		service.ErrUnauthenticated:      fiber.StatusUnauthorized,
	}
	for serviceErr, status := range cases {
		app := newUploadApp(&uploadServiceMock{err: serviceErr})
		resp, err := app.Test(newUploadRequest(t, "/api/v1/uploads", "file", "creasta.png", []byte("png-bytes")), -1)
		require.NoError(t, err)
		require.Equal(t, status, resp.StatusCode, serviceErr.Error())
	}
}
