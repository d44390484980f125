package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/imagineserve/imagine-serve/middleware"
	"github.com/imagineserve/imagine-serve/uploader"
)

type UploadHandler struct {
	up uploader.Uploader
}

func NewUploadHandler(up uploader.Uploader) *UploadHandler {
	return &UploadHandler{up: up}
}

// UploadImage stores the original media and its thumbnail, returning the
// minted asset id the transformation form works against.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	if _, err := middleware.CheckUserLoggedIn(c); err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file provided")
	}

	blobFile, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error opening the file",
			"data":    nil,
		})
	}
	defer blobFile.Close()

	result, err := h.up.Upload(c.Context(), blobFile, file.Filename)
	if err != nil {
		log.Printf("upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error uploading the file",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Successfully uploaded the file",
		"data":    result,
	})
}
