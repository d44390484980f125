package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/imagineserve/imagine-serve/auth"
	handler "github.com/imagineserve/imagine-serve/handlers"
	"github.com/imagineserve/imagine-serve/middleware"
	"github.com/imagineserve/imagine-serve/revalidate"
)

// Handlers bundles the constructed endpoint handlers for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Image  *handler.ImageHandler
	Upload *handler.UploadHandler
	Editor *handler.EditorHandler
}

func SetupRoutes(app *fiber.App, svc *auth.Service, cache *revalidate.PathCache, h Handlers) {
	api := app.Group("/api", logger.New())

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/logout", h.Auth.Logout)

	// User record creation is driven by the auth collaborator's
	// first-sign-in callback, so it is not behind the middleware.
	api.Post("/user", h.User.CreateUser)

	authed := middleware.AuthMiddleware(svc)

	user := api.Group("/user", authed)
	user.Get("/me", h.User.GetMe)
	user.Put("/me", h.User.UpdateMe)
	user.Delete("/me", h.User.DeleteMe)
	user.Post("/credits", h.User.AddCredits)

	// Gallery reads go through the path cache; mutations revalidate it.
	images := api.Group("/images", revalidate.Middleware(cache))
	images.Get("/", h.Image.ListImages)
	images.Get("/:id", h.Image.GetImageByID)

	image := api.Group("/image", authed)
	image.Get("/mine", h.Image.ListMyImages)
	image.Post("/", h.Image.AddImage)
	image.Put("/:id", h.Image.UpdateImage)
	image.Delete("/:id", h.Image.DeleteImage)

	api.Post("/upload", authed, h.Upload.UploadImage)

	editor := api.Group("/editor", authed)
	editor.Post("/", h.Editor.CreateSession)
	editor.Get("/:id", h.Editor.GetState)
	editor.Post("/:id/field", h.Editor.SetField)
	editor.Post("/:id/aspect", h.Editor.SetAspectRatio)
	editor.Post("/:id/apply", h.Editor.Apply)
	editor.Post("/:id/preview-loaded", h.Editor.PreviewLoaded)
	editor.Post("/:id/save", h.Editor.Save)
	editor.Delete("/:id", h.Editor.CloseSession)

	api.Post("/transform/prompt", authed, h.Editor.RefinePrompt)
}
