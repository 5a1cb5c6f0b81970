package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ArtlessApps/ruckplan/internal/domain"
)

// ProgramHandler serves the program catalog. Reads are public (the app shows
// the catalog before login); writes are admin only, enforced by middleware.
type ProgramHandler struct {
	programRepo domain.ProgramRepository
	fileRepo    domain.FileRepository
	maxUploadMB int64
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(programRepo domain.ProgramRepository, fileRepo domain.FileRepository, maxUploadMB int64) *ProgramHandler {
	return &ProgramHandler{
		programRepo: programRepo,
		fileRepo:    fileRepo,
		maxUploadMB: maxUploadMB,
	}
}

// ListPrograms handles GET /v1/programs
func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	programs, err := h.programRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(programs)
}

// GetProgram handles GET /v1/programs/:id
func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	program, err := h.programRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(program)
}

// CreateProgram handles POST /v1/programs (admin)
func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	var req domain.Program
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.programRepo.Create(c.Context(), &req); err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// UpdateProgram handles PUT /v1/programs/:id (admin)
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	var req domain.Program
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = c.Params("id")
	if err := h.programRepo.Update(c.Context(), &req); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(req)
}

// DeleteProgram handles DELETE /v1/programs/:id (admin)
func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	if err := h.programRepo.Delete(c.Context(), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// UploadProgramImage handles POST /v1/programs/:id/image (admin)
func (h *ProgramHandler) UploadProgramImage(c *fiber.Ctx) error {
	id := c.Params("id")

	// The program must exist before we attach an image to it
	if _, err := h.programRepo.GetByID(c.Context(), id); err != nil {
		return mapDomainError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid multipart form: " + err.Error(),
		})
	}

	files := form.File["image"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'image' field in form data",
		})
	}

	imageFile := files[0]

	maxBytes := h.maxUploadMB * 1024 * 1024
	if imageFile.Size > maxBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("file size exceeds maximum of %dMB", h.maxUploadMB),
		})
	}

	if !isValidImageType(imageFile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid file type, only JPEG, PNG, and HEIC images are allowed",
		})
	}

	fileHandle, err := imageFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer fileHandle.Close()

	imageData, err := io.ReadAll(fileHandle)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	// Timestamped key so stale CDN caches never serve an old cover
	ext := strings.ToLower(filepath.Ext(imageFile.Filename))
	key := fmt.Sprintf("programs/%s-%d%s", id, time.Now().Unix(), ext)

	url, err := h.fileRepo.Upload(c.Context(), imageData, key, imageFile.Header.Get("Content-Type"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to upload image: " + err.Error(),
		})
	}

	if err := h.programRepo.UpdateImageURL(c.Context(), id, url); err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(fiber.Map{"image_url": url})
}

// isValidImageType checks if the uploaded file is a valid image type
func isValidImageType(file *multipart.FileHeader) bool {
	contentType := file.Header.Get("Content-Type")
	if contentType == "image/jpeg" ||
		contentType == "image/jpg" ||
		contentType == "image/png" ||
		contentType == "image/heic" ||
		contentType == "image/heif" {
		return true
	}

	// Fallback: check by file extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".heic" || ext == ".heif"
}
