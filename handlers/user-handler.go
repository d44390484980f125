package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/auth"
	"github.com/imagineserve/imagine-serve/middleware"
	"github.com/imagineserve/imagine-serve/models"
)

type UserHandler struct {
	users *actions.Users
}

func NewUserHandler(users *actions.Users) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser is called by the auth collaborator on first sign-in.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	type NewUser struct {
		AuthID    string `json:"auth_id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		Photo     string `json:"photo"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	input := new(NewUser)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Wrong input data format",
			"data":    nil,
		})
	}

	if input.AuthID == "" || input.Email == "" || input.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "auth_id, email and username are required",
			"data":    nil,
		})
	}

	user := &models.User{
		AuthID:    input.AuthID,
		Email:     input.Email,
		Username:  input.Username,
		Photo:     input.Photo,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Failed to hash password",
				"data":    nil,
			})
		}
		user.PasswordHash = hash
	}

	created, err := h.users.CreateUser(c.Context(), user)
	if err != nil {
		log.Printf("creating user failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to create user",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "User created successfully",
		"data":    created,
	})
}

// GetMe returns the authenticated user's record, credit balance included.
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.users.GetUserByAuthID(c.Context(), authID)
	if err != nil {
		return userError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "User found",
		"data":    user,
	})
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type UpdateUser struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Photo     string `json:"photo"`
	}

	input := new(UpdateUser)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid input",
			"data":    nil,
		})
	}

	if input.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Username is required",
			"data":    nil,
		})
	}

	updated, err := h.users.UpdateUser(c.Context(), authID, actions.UserUpdate{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Photo:     input.Photo,
	})
	if err != nil {
		return userError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "User successfully updated",
		"data":    updated,
	})
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.users.GetUserByAuthID(c.Context(), authID)
	if err != nil {
		return userError(c, err)
	}

	if _, err := h.users.DeleteUser(c.Context(), user.ID); err != nil {
		return userError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "User deleted successfully",
		"data":    nil,
	})
}

// AddCredits applies a purchased credit pack to the balance. The checkout
// itself is handled by the billing collaborator.
func (h *UserHandler) AddCredits(c *fiber.Ctx) error {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type CreditUpdate struct {
		Credits int `json:"credits"`
	}

	input := new(CreditUpdate)
	if err := c.BodyParser(input); err != nil || input.Credits <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "A positive credits amount is required",
			"data":    nil,
		})
	}

	user, err := h.users.GetUserByAuthID(c.Context(), authID)
	if err != nil {
		return userError(c, err)
	}

	updated, err := h.users.UpdateCredits(c.Context(), user.ID, input.Credits)
	if err != nil {
		return userError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Credits updated",
		"data":    updated,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "Authentication required",
		"data":    nil,
	})
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, actions.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "No user found",
			"data":    nil,
		})
	case errors.Is(err, actions.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"status":  "error",
			"message": "Insufficient credit balance",
			"data":    nil,
		})
	default:
		log.Printf("user action failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Database error",
			"data":    nil,
		})
	}
}
