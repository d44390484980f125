package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/editor"
	"github.com/imagineserve/imagine-serve/jobs"
	"github.com/imagineserve/imagine-serve/middleware"
	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Refiner rewrites remove/recolor prompts; *ai.PromptRefiner satisfies
// it. A nil refiner echoes prompts back unchanged.
type Refiner interface {
	Refine(ctx context.Context, prompt string) string
}

// Abandoned sessions are dropped after this long without a request.
const sessionTTL = 30 * time.Minute

type sessionEntry struct {
	session *editor.Session
	touched time.Time
}

// EditorHandler owns the in-memory transformation-form sessions, one per
// image being edited. Sessions end on save, on an explicit close, or by
// idling past the TTL.
type EditorHandler struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration

	images  *actions.Images
	users   *actions.Users
	runner  *jobs.Runner
	refiner Refiner
	baseURL string
}

func NewEditorHandler(images *actions.Images, users *actions.Users, runner *jobs.Runner, refiner Refiner, providerBaseURL string) *EditorHandler {
	return &EditorHandler{
		sessions: make(map[string]*sessionEntry),
		ttl:      sessionTTL,
		images:   images,
		users:    users,
		runner:   runner,
		refiner:  refiner,
		baseURL:  providerBaseURL,
	}
}

// session returns the live session for id, expiring it when it has been
// idle past the TTL.
func (h *EditorHandler) session(id string) *editor.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.sessions[id]
	if !ok {
		return nil
	}
	if time.Since(e.touched) > h.ttl {
		e.session.Close()
		delete(h.sessions, id)
		return nil
	}
	e.touched = time.Now()
	return e.session
}

func (h *EditorHandler) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.sessions[id]; ok {
		e.session.Close()
		delete(h.sessions, id)
	}
}

// sweepExpired drops every session idle past the TTL. Called on session
// creation so the map cannot grow without bound.
func (h *EditorHandler) sweepExpired() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, e := range h.sessions {
		if time.Since(e.touched) > h.ttl {
			e.session.Close()
			delete(h.sessions, id)
		}
	}
}

// CreateSession opens a form session, either for a fresh upload or for an
// existing image being re-edited.
func (h *EditorHandler) CreateSession(c *fiber.Ctx) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return unauthorized(c)
	}

	type SessionRequest struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		PublicID  string `json:"public_id"`
		SecureURL string `json:"secure_url"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		ImageID   string `json:"image_id"`
	}

	input := new(SessionRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var existing *models.Image
	if input.ImageID != "" {
		id, err := primitive.ObjectIDFromHex(input.ImageID)
		if err != nil {
			return badRequest(c, "Invalid image id")
		}
		detail, err := h.images.GetImageByID(c.Context(), id)
		if err != nil {
			return imageError(c, err)
		}
		if detail.Author != user.ID {
			return imageError(c, actions.ErrUnauthorized)
		}
		existing = &detail.Image
	}

	session, err := editor.NewSession(editor.Params{
		Type:            transform.Type(input.Type),
		UserID:          user.ID,
		Balance:         user.CreditBalance,
		Title:           input.Title,
		PublicID:        input.PublicID,
		SecureURL:       input.SecureURL,
		Width:           input.Width,
		Height:          input.Height,
		Existing:        existing,
		ProviderBaseURL: h.baseURL,
	}, h.images, h.users, h.runner)
	if err != nil {
		return badRequest(c, "Unknown transformation type")
	}

	h.sweepExpired()

	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = &sessionEntry{session: session, touched: time.Now()}
	h.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Editor session created",
		"data": fiber.Map{
			"session_id": id,
			"state":      session.Snapshot(),
		},
	})
}

func (h *EditorHandler) GetState(c *fiber.Ctx) error {
	session := h.session(c.Params("id"))
	if session == nil {
		return sessionNotFound(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Editor state",
		"data":    session.Snapshot(),
	})
}

// SetField merges a partial transformation object into the pending
// buffer; the change lands after the debounce delay.
func (h *EditorHandler) SetField(c *fiber.Ctx) error {
	session := h.session(c.Params("id"))
	if session == nil {
		return sessionNotFound(c)
	}

	type FieldRequest struct {
		Title  string           `json:"title"`
		Config transform.Config `json:"config"`
	}

	input := new(FieldRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if input.Title != "" {
		session.SetTitle(input.Title)
	}
	if input.Config != nil {
		session.SetField(input.Config)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "success",
		"message": "Edit queued",
		"data":    nil,
	})
}

func (h *EditorHandler) SetAspectRatio(c *fiber.Ctx) error {
	session := h.session(c.Params("id"))
	if session == nil {
		return sessionNotFound(c)
	}

	type RatioRequest struct {
		Ratio string `json:"ratio"`
	}

	input := new(RatioRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := session.SetAspectRatio(input.Ratio); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Aspect ratio set",
		"data":    session.Snapshot(),
	})
}

// Apply merges pending edits into the configuration and returns the new
// preview URL. The credit debit runs in the background.
func (h *EditorHandler) Apply(c *fiber.Ctx) error {
	session := h.session(c.Params("id"))
	if session == nil {
		return sessionNotFound(c)
	}

	session.FlushEdits()

	url, err := session.Apply(c.Context())
	if err != nil {
		if errors.Is(err, editor.ErrNothingToApply) || errors.Is(err, editor.ErrTransformInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
				"data":    nil,
			})
		}
		return badRequest(c, err.Error())
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Transformation applied",
		"data": fiber.Map{
			"preview_url": url,
			"state":       session.Snapshot(),
		},
	})
}

// PreviewLoaded is the client's signal that the rendered preview arrived.
func (h *EditorHandler) PreviewLoaded(c *fiber.Ctx) error {
	session := h.session(c.Params("id"))
	if session == nil {
		return sessionNotFound(c)
	}

	session.PreviewLoaded()

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Preview acknowledged",
		"data":    session.Snapshot(),
	})
}

// Save persists the image and returns the detail route to navigate to.
// The session is dropped on success.
func (h *EditorHandler) Save(c *fiber.Ctx) error {
	id := c.Params("id")
	session := h.session(id)
	if session == nil {
		return sessionNotFound(c)
	}

	type SaveRequest struct {
		Path string `json:"path"`
	}

	input := new(SaveRequest)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if input.Path == "" {
		input.Path = "/"
	}

	if !session.CanSave() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "error",
			"message": editor.ErrSaveInFlight.Error(),
			"data":    nil,
		})
	}

	route, err := session.Save(c.Context(), input.Path)
	if err != nil {
		return imageError(c, err)
	}

	h.drop(id)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Image saved",
		"data": fiber.Map{
			"redirect": route,
		},
	})
}

// CloseSession discards an abandoned session without saving.
func (h *EditorHandler) CloseSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.session(id) == nil {
		return sessionNotFound(c)
	}

	h.drop(id)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Editor session closed",
		"data":    nil,
	})
}

// RefinePrompt rewrites a remove/recolor object prompt.
func (h *EditorHandler) RefinePrompt(c *fiber.Ctx) error {
	if _, err := h.resolveUser(c); err != nil {
		return unauthorized(c)
	}

	type PromptRequest struct {
		Prompt string `json:"prompt"`
	}

	input := new(PromptRequest)
	if err := c.BodyParser(input); err != nil || input.Prompt == "" {
		return badRequest(c, "Prompt is required")
	}
	if len(input.Prompt) > 1000 {
		return badRequest(c, "Prompt too long (max 1000 characters)")
	}

	refined := input.Prompt
	if h.refiner != nil {
		refined = h.refiner.Refine(c.Context(), input.Prompt)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Prompt refined",
		"data": fiber.Map{
			"prompt": refined,
		},
	})
}

func (h *EditorHandler) resolveUser(c *fiber.Ctx) (*models.User, error) {
	authID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return nil, err
	}
	return h.users.GetUserByAuthID(c.Context(), authID)
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Editor session not found",
		"data":    nil,
	})
}
