package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/ai"
	"github.com/imagineserve/imagine-serve/auth"
	"github.com/imagineserve/imagine-serve/config"
	"github.com/imagineserve/imagine-serve/database"
	handler "github.com/imagineserve/imagine-serve/handlers"
	"github.com/imagineserve/imagine-serve/jobs"
	"github.com/imagineserve/imagine-serve/revalidate"
	"github.com/imagineserve/imagine-serve/router"
	"github.com/imagineserve/imagine-serve/uploader"
)

func main() {
	ctx := context.Background()

	mongo := database.NewFromEnv()
	db, err := mongo.Database(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			log.Printf("Error closing the database connection: %v", err)
		}
	}()

	userStore := database.NewUserStore(db)
	imageStore := database.NewImageStore(db)

	cache := revalidate.NewPathCache(5 * time.Minute)
	userActions := actions.NewUsers(userStore, cache)
	imageActions := actions.NewImages(userStore, imageStore, cache)

	up, err := uploader.NewGCSUploader(ctx, config.MustGet("GCS_BUCKET_NAME"))
	if err != nil {
		log.Fatalf("Failed to create uploader: %v", err)
	}

	// Prompt refinement is optional; without credentials the raw prompt
	// is used as-is.
	var refiner handler.Refiner
	if r, err := ai.NewPromptRefiner(ctx); err != nil {
		log.Printf("prompt refiner disabled: %v", err)
	} else {
		refiner = r
	}

	authService := auth.NewService(userStore)
	runner := &jobs.Runner{}
	providerBaseURL := config.MustGet("IMAGE_PROVIDER_BASE_URL")

	app := fiber.New()
	router.SetupRoutes(app, authService, cache, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userActions),
		Image:  handler.NewImageHandler(imageActions, userActions),
		Upload: handler.NewUploadHandler(up),
		Editor: handler.NewEditorHandler(imageActions, userActions, runner, refiner, providerBaseURL),
	})

	defer runner.Wait()

	fmt.Println("Server is listening at the port 3000")
	log.Fatal(app.Listen(":3000"))
}
