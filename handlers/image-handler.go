package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/middleware"
	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ImageHandler struct {
	images *actions.Images
	users  *actions.Users
}

func NewImageHandler(images *actions.Images, users *actions.Users) *ImageHandler {
	return &ImageHandler{images: images, users: users}
}

type imageRequest struct {
	Title              string           `json:"title"`
	TransformationType string           `json:"transformation_type"`
	PublicID           string           `json:"public_id"`
	Width              int              `json:"width"`
	Height             int              `json:"height"`
	Config             transform.Config `json:"config"`
	SecureURL          string           `json:"secure_url"`
	TransformationURL  string           `json:"transformation_url"`
	AspectRatio        string           `json:"aspect_ratio"`
	Prompt             string           `json:"prompt"`
	Color              string           `json:"color"`
	Path               string           `json:"path"`
}

func (r *imageRequest) toModel() *models.Image {
	return &models.Image{
		Title:              r.Title,
		TransformationType: transform.Type(r.TransformationType),
		PublicID:           r.PublicID,
		Width:              r.Width,
		Height:             r.Height,
		Config:             r.Config,
		SecureURL:          r.SecureURL,
		TransformationURL:  r.TransformationURL,
		AspectRatio:        r.AspectRatio,
		Prompt:             r.Prompt,
		Color:              r.Color,
	}
}

func (h *ImageHandler) resolveUser(c *fiber.Ctx) (*models.User, error) {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return nil, err
	}
	return h.users.GetUserByAuthID(c.Context(), authID)
}

func (h *ImageHandler) AddImage(c *fiber.Ctx) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return unauthorized(c)
	}

	input := new(imageRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !transform.Valid(transform.Type(input.TransformationType)) {
		return badRequest(c, "Unknown transformation type")
	}
	if input.Path == "" {
		input.Path = "/"
	}

	stored, err := h.images.AddImage(c.Context(), input.toModel(), user.ID, input.Path)
	if err != nil {
		return imageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Image saved",
		"data": fiber.Map{
			"image":    stored,
			"redirect": "/transformations/" + stored.ID.Hex(),
		},
	})
}

func (h *ImageHandler) UpdateImage(c *fiber.Ctx) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid image id")
	}

	input := new(imageRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !transform.Valid(transform.Type(input.TransformationType)) {
		return badRequest(c, "Unknown transformation type")
	}
	if input.Path == "" {
		input.Path = "/transformations/" + id.Hex()
	}

	img := input.toModel()
	img.ID = id

	stored, err := h.images.UpdateImage(c.Context(), img, user.ID, input.Path)
	if err != nil {
		return imageError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Image updated",
		"data": fiber.Map{
			"image":    stored,
			"redirect": "/transformations/" + stored.ID.Hex(),
		},
	})
}

// DeleteImage removes the record and redirects home. The redirect runs
// regardless of the delete outcome; a failure is only logged.
func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	defer func() {
		if err := c.Redirect("/", fiber.StatusSeeOther); err != nil {
			log.Printf("redirect after delete failed: %v", err)
		}
	}()

	if _, err := h.resolveUser(c); err != nil {
		log.Printf("delete image: %v", err)
		return nil
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		log.Printf("delete image: invalid id %q", c.Params("id"))
		return nil
	}

	if err := h.images.DeleteImage(c.Context(), id); err != nil {
		log.Printf("delete image %s failed: %v", id.Hex(), err)
	}
	return nil
}

func (h *ImageHandler) GetImageByID(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid image id")
	}

	img, err := h.images.GetImageByID(c.Context(), id)
	if err != nil {
		return imageError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Image found",
		"data":    img,
	})
}

func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	q := actions.ImageQuery{
		Search:  c.Query("search"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 9),
	}

	images, total, err := h.images.ListImages(c.Context(), q)
	if err != nil {
		return imageError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Images found",
		"data": fiber.Map{
			"images": images,
			"total":  total,
			"page":   q.Page,
		},
	})
}

func (h *ImageHandler) ListMyImages(c *fiber.Ctx) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return unauthorized(c)
	}

	q := actions.ImageQuery{
		Search:  c.Query("search"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 9),
	}

	images, total, err := h.images.ListUserImages(c.Context(), user.ID, q)
	if err != nil {
		return imageError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Images found",
		"data": fiber.Map{
			"images": images,
			"total":  total,
			"page":   q.Page,
		},
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func imageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, actions.ErrImageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Image not found",
			"data":    nil,
		})
	case errors.Is(err, actions.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "No user found",
			"data":    nil,
		})
	case errors.Is(err, actions.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized or image not found",
			"data":    nil,
		})
	default:
		log.Printf("image action failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Database error",
			"data":    nil,
		})
	}
}
