package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtlessApps/ruckplan/internal/domain"
)

type stubProgramRepo struct {
	program  *domain.Program
	imageURL string
}

func (r *stubProgramRepo) Create(ctx context.Context, p *domain.Program) error { return nil }

func (r *stubProgramRepo) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	if r.program == nil || r.program.ID != id {
		return nil, domain.ErrProgramNotFound
	}
	return r.program, nil
}

func (r *stubProgramRepo) List(ctx context.Context) ([]*domain.Program, error) { return nil, nil }

func (r *stubProgramRepo) Update(ctx context.Context, p *domain.Program) error { return nil }

func (r *stubProgramRepo) UpdateImageURL(ctx context.Context, id, url string) error {
	r.imageURL = url
	return nil
}

func (r *stubProgramRepo) Delete(ctx context.Context, id string) error { return nil }

// capturingFileRepo records the exact bytes handed to Upload.
type capturingFileRepo struct {
	data        []byte
	key         string
	contentType string
}

func (r *capturingFileRepo) Upload(ctx context.Context, file []byte, filename, contentType string) (string, error) {
	r.data = append([]byte(nil), file...)
	r.key = filename
	r.contentType = contentType
	return "http://store/" + filename, nil
}

func multipartImage(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadProgramImage_FullBodyReachesStore(t *testing.T) {
	programRepo := &stubProgramRepo{program: &domain.Program{ID: "prog-1", Name: "Ruck Foundations"}}
	fileRepo := &capturingFileRepo{}
	h := NewProgramHandler(programRepo, fileRepo, 10)

	app := fiber.New()
	app.Post("/programs/:id/image", h.UploadProgramImage)

	// Larger than one read-buffer fill; a partial read would zero-pad the tail.
	payload := bytes.Repeat([]byte{0xAB, 0xCD}, 256*1024)
	body, contentType := multipartImage(t, payload)

	req, err := http.NewRequest(http.MethodPost, "/programs/prog-1/image", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	respBody, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(respBody))

	assert.Equal(t, payload, fileRepo.data)
	assert.Equal(t, "image/jpeg", fileRepo.contentType)
	assert.Contains(t, fileRepo.key, "programs/prog-1-")
	assert.Equal(t, "http://store/"+fileRepo.key, programRepo.imageURL)
}

func TestUploadProgramImage_RejectsNonImage(t *testing.T) {
	programRepo := &stubProgramRepo{program: &domain.Program{ID: "prog-1"}}
	h := NewProgramHandler(programRepo, &capturingFileRepo{}, 10)

	app := fiber.New()
	app.Post("/programs/:id/image", h.UploadProgramImage)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/programs/prog-1/image", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
